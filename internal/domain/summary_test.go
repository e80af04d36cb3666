package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func commitIn(repo string) Commit {
	return Commit{Repository: SourceRepository{FullName: repo}}
}

func TestSummarize(t *testing.T) {
	commits := []Commit{
		commitIn("acme/api"),
		commitIn("acme/api"),
		commitIn("acme/api"),
		commitIn("acme/web"),
		commitIn("acme/infra"),
	}

	summary := Summarize(commits)

	assert.Equal(t, 5, summary.TotalCommits)
	assert.Equal(t, 3, summary.RepositoryCount)
	assert.Equal(t, []RepoActivity{
		{FullName: "acme/api", Commits: 3},
		{FullName: "acme/infra", Commits: 1},
		{FullName: "acme/web", Commits: 1},
	}, summary.PerRepository)
	assert.InDelta(t, 5.0/3.0, summary.MeanPerRepo, 1e-9)
	assert.InDelta(t, 1.0, summary.MedianPerRepo, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)

	assert.Zero(t, summary.TotalCommits)
	assert.Zero(t, summary.RepositoryCount)
	assert.Empty(t, summary.PerRepository)
	assert.Zero(t, summary.MeanPerRepo)
}
