package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/devpulse/devpulse/internal/domain"
	"github.com/devpulse/devpulse/internal/gateway"
)

// batchSize bounds the concurrent per-repository fan-out. Batches execute
// strictly sequentially; only the fetches inside one batch run concurrently.
const batchSize = 5

// fallbackStage names one attempt of the author-resolution strategy.
// Upstream author filtering is brittle (display name vs. login vs. committer
// mismatches), so an empty result widens the filter instead of returning
// nothing: explicit author, then the first repository's owner, then no
// filter at all. The first non-empty stage wins.
type fallbackStage int

const (
	stageExplicitAuthor fallbackStage = iota
	stageOwnerAuthor
	stageNoAuthor
	stageDone
)

func (s fallbackStage) String() string {
	switch s {
	case stageExplicitAuthor:
		return "explicit-author"
	case stageOwnerAuthor:
		return "owner-author"
	case stageNoAuthor:
		return "no-author"
	default:
		return "done"
	}
}

// filter returns the author filter this stage applies, given the caller's
// filter and the repository list the owner login is derived from.
func (s fallbackStage) filter(author string, repos []string) string {
	switch s {
	case stageExplicitAuthor:
		return author
	case stageOwnerAuthor:
		owner, _, _ := strings.Cut(repos[0], "/")
		return owner
	default:
		return ""
	}
}

// Aggregator retrieves commits across many repositories within a date
// window, batching the per-repository fetches with bounded concurrency.
type Aggregator struct {
	client gateway.Client
	logger *zap.SugaredLogger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(client gateway.Client, logger *zap.SugaredLogger) *Aggregator {
	return &Aggregator{client: client, logger: logger}
}

// Aggregate fetches the commits of every named repository within the window.
// When an author filter is supplied and yields nothing, the fetch is retried
// with the repository owner's login, then with no filter at all; an empty
// result after all stages is a valid outcome, not an error. Errors during
// any stage propagate immediately without advancing to the next stage.
func (a *Aggregator) Aggregate(ctx context.Context, repos []string, window domain.DateWindow, author string) ([]domain.Commit, error) {
	if len(repos) == 0 {
		return []domain.Commit{}, nil
	}
	if a.client == nil {
		return nil, &gateway.ConfigurationError{Reason: "no authenticated client supplied"}
	}

	stage := stageExplicitAuthor
	if author == "" {
		stage = stageNoAuthor
	}

	for ; stage != stageDone; stage++ {
		filter := stage.filter(author, repos)
		a.logger.Debugw("running aggregation stage", "stage", stage.String(), "author_filter", filter)

		commits, err := a.fetchBatches(ctx, repos, window, filter)
		if err != nil {
			return nil, err
		}
		if len(commits) > 0 {
			a.logger.Infow("aggregation complete",
				"stage", stage.String(),
				"repositories", len(repos),
				"commits", len(commits),
			)
			return commits, nil
		}
		a.logger.Debugw("aggregation stage yielded no commits", "stage", stage.String())
	}

	a.logger.Infow("no commits found in window after all fallback stages", "repositories", len(repos))
	return []domain.Commit{}, nil
}

// fetchBatches walks the repository list in fixed-size batches. Within a
// batch every repository is fetched concurrently into its own slot, so the
// concatenated result is deterministic at the batch level while per-batch
// completion order stays free. A single failed repository aborts the whole
// aggregation.
func (a *Aggregator) fetchBatches(ctx context.Context, repos []string, window domain.DateWindow, author string) ([]domain.Commit, error) {
	var all []domain.Commit
	for start := 0; start < len(repos); start += batchSize {
		batch := repos[start:min(start+batchSize, len(repos))]
		results := make([][]domain.Commit, len(batch))

		eg, egCtx := errgroup.WithContext(ctx)
		for i, fullName := range batch {
			i, fullName := i, fullName
			eg.Go(func() error {
				commits, err := a.fetchRepository(egCtx, fullName, window, author)
				if err != nil {
					return err
				}
				results[i] = commits
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}

		for _, commits := range results {
			all = append(all, commits...)
		}
	}
	return all, nil
}

// fetchRepository retrieves one repository's commits and tags each with its
// source repository.
func (a *Aggregator) fetchRepository(ctx context.Context, fullName string, window domain.DateWindow, author string) ([]domain.Commit, error) {
	owner, name, _ := strings.Cut(fullName, "/")
	commits, err := a.client.ListCommits(ctx, owner, name, window, author)
	if err != nil {
		return nil, err
	}
	source := domain.SourceRepository{Owner: owner, Name: name, FullName: fullName}
	for i := range commits {
		commits[i].Repository = source
	}
	return commits, nil
}
