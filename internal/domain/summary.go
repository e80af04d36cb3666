package domain

import (
	"sort"

	"github.com/montanaflynn/stats"
)

// RepoActivity holds the commit count for a single repository within an
// aggregation window.
type RepoActivity struct {
	FullName string `json:"full_name"`
	Commits  int    `json:"commits"`
}

// ActivitySummary condenses an aggregation result for the dashboard's
// overview panel.
type ActivitySummary struct {
	TotalCommits    int            `json:"total_commits"`
	RepositoryCount int            `json:"repository_count"`
	PerRepository   []RepoActivity `json:"per_repository"`
	MeanPerRepo     float64        `json:"mean_per_repo"`
	MedianPerRepo   float64        `json:"median_per_repo"`
	P90PerRepo      float64        `json:"p90_per_repo"`
}

// Summarize folds a commit list into an ActivitySummary. Repositories are
// reported in descending commit-count order, ties broken by name for stable
// output.
func Summarize(commits []Commit) ActivitySummary {
	counts := make(map[string]int)
	for _, c := range commits {
		counts[c.Repository.FullName]++
	}

	perRepo := make([]RepoActivity, 0, len(counts))
	samples := make([]float64, 0, len(counts))
	for name, n := range counts {
		perRepo = append(perRepo, RepoActivity{FullName: name, Commits: n})
		samples = append(samples, float64(n))
	}
	sort.Slice(perRepo, func(i, j int) bool {
		if perRepo[i].Commits != perRepo[j].Commits {
			return perRepo[i].Commits > perRepo[j].Commits
		}
		return perRepo[i].FullName < perRepo[j].FullName
	})

	summary := ActivitySummary{
		TotalCommits:    len(commits),
		RepositoryCount: len(counts),
		PerRepository:   perRepo,
	}
	if len(samples) == 0 {
		return summary
	}

	// stats only errors on empty input, which is handled above.
	summary.MeanPerRepo, _ = stats.Mean(samples)
	summary.MedianPerRepo, _ = stats.Median(samples)
	summary.P90PerRepo, _ = stats.Percentile(samples, 90)
	return summary
}
