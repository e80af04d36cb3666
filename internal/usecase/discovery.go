package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/devpulse/devpulse/internal/domain"
	"github.com/devpulse/devpulse/internal/gateway"
)

// Discoverer resolves the set of repositories reachable by a credential.
type Discoverer struct {
	client gateway.Client
	logger *zap.SugaredLogger
}

// NewDiscoverer creates a new Discoverer instance.
func NewDiscoverer(client gateway.Client, logger *zap.SugaredLogger) *Discoverer {
	return &Discoverer{client: client, logger: logger}
}

// Discover lists every repository the credential can reach, deduplicated by
// full name with the first-seen entry winning. OAuth credentials use a
// single combined-affiliation query; installation credentials list the
// installation's repository set.
func (d *Discoverer) Discover(ctx context.Context) ([]domain.Repository, error) {
	if d.client == nil {
		return nil, &gateway.ConfigurationError{Reason: "no authenticated client supplied"}
	}

	var (
		repos []domain.Repository
		err   error
	)
	if d.client.HasInstallation() {
		d.logger.Debug("discovering repositories accessible to the installation")
		repos, err = d.client.ListRepositoriesForInstallation(ctx)
	} else {
		d.logger.Debug("discovering repositories visible to the authenticated user")
		repos, err = d.client.ListRepositoriesForUser(ctx)
	}
	if err != nil {
		return nil, err
	}

	// The one-pass query returns unique entries; this dedup is a safety net
	// that keeps the first-seen snapshot per full name.
	seen := make(map[string]bool, len(repos))
	unique := make([]domain.Repository, 0, len(repos))
	for _, r := range repos {
		if seen[r.FullName] {
			continue
		}
		seen[r.FullName] = true
		unique = append(unique, r)
	}

	d.logger.Infow("repository discovery complete", "count", len(unique))
	return unique, nil
}
