// Package gateway provides a gateway to the GitHub API, abstracting away the
// underlying REST client, credential form, and pagination.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/devpulse/devpulse/internal/domain"
)

const listPageSize = 100

// Credential is the opaque authorization context handed in by the auth
// layer. Exactly one form is expected; the installation identity takes
// priority when both are present.
type Credential struct {
	OAuthToken        string
	InstallationToken string
	InstallationID    int64
}

func (c Credential) installation() bool {
	return c.InstallationToken != ""
}

func (c Credential) token() string {
	if c.installation() {
		return c.InstallationToken
	}
	return c.OAuthToken
}

// RateBudget reports the upstream core call quota as of the last probe.
type RateBudget struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Client defines the behavior of a gateway for fetching information from GitHub.
type Client interface {
	ListRepositoriesForUser(ctx context.Context) ([]domain.Repository, error)
	ListRepositoriesForInstallation(ctx context.Context) ([]domain.Repository, error)
	ListCommits(ctx context.Context, owner, repo string, window domain.DateWindow, author string) ([]domain.Commit, error)
	RateLimit(ctx context.Context) (RateBudget, error)
	TokenScopes(ctx context.Context) ([]string, error)
	HasInstallation() bool
}

// GitHubGateway is the concrete implementation of the Client interface.
type GitHubGateway struct {
	restClient   *github.Client
	installation bool
	logger       *zap.SugaredLogger
}

// NewGitHubGateway builds a gateway whose HTTP transport waits out GitHub's
// secondary rate limits and injects the credential's token on every request.
func NewGitHubGateway(cred Credential, logger *zap.SugaredLogger) (*GitHubGateway, error) {
	if cred.token() == "" {
		return nil, &ConfigurationError{Reason: "no GitHub credential supplied"}
	}
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cred.token()})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:   github.NewClient(httpClient),
		installation: cred.installation(),
		logger:       logger,
	}, nil
}

// HasInstallation reports whether the gateway authenticates as an app
// installation rather than an OAuth user.
func (g *GitHubGateway) HasInstallation() bool {
	return g.installation
}

// ListRepositoriesForUser pages through every repository visible to the
// authenticated user across all affiliations and visibility levels in a
// single query.
func (g *GitHubGateway) ListRepositoriesForUser(ctx context.Context) ([]domain.Repository, error) {
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		Visibility:  "all",
		Affiliation: "owner,collaborator,organization_member",
		ListOptions: github.ListOptions{PerPage: listPageSize},
	}
	var all []domain.Repository
	for {
		repos, resp, err := g.restClient.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, mapError(err, "")
		}
		for _, r := range repos {
			all = append(all, toRepository(r))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debugw("fetching next page of user repositories", "page", resp.NextPage)
	}
	return all, nil
}

// ListRepositoriesForInstallation pages through every repository the app
// installation has been granted access to.
func (g *GitHubGateway) ListRepositoriesForInstallation(ctx context.Context) ([]domain.Repository, error) {
	opts := &github.ListOptions{PerPage: listPageSize}
	var all []domain.Repository
	for {
		list, resp, err := g.restClient.Apps.ListRepos(ctx, opts)
		if err != nil {
			return nil, mapError(err, "")
		}
		for _, r := range list.Repositories {
			all = append(all, toRepository(r))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debugw("fetching next page of installation repositories", "page", resp.NextPage)
	}
	return all, nil
}

// ListCommits pages through the commits of owner/repo within the window,
// filtered server-side by author when one is given. The returned commits
// carry no source-repository metadata; the aggregation layer attaches it.
func (g *GitHubGateway) ListCommits(ctx context.Context, owner, repo string, window domain.DateWindow, author string) ([]domain.Commit, error) {
	if owner == "" || repo == "" {
		return nil, &NotFoundError{Repository: strings.Trim(owner+"/"+repo, "/")}
	}
	opts := &github.CommitsListOptions{
		Author:      author,
		Since:       window.Since,
		Until:       window.Until,
		ListOptions: github.ListOptions{PerPage: listPageSize},
	}
	var all []domain.Commit
	for {
		commits, resp, err := g.restClient.Repositories.ListCommits(ctx, owner, repo, opts)
		if err != nil {
			return nil, mapError(err, owner+"/"+repo)
		}
		for _, c := range commits {
			all = append(all, toCommit(c))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debugw("fetching next page of commits", "repository", owner+"/"+repo, "page", resp.NextPage)
	}
	return all, nil
}

// RateLimit probes the remaining core call quota.
func (g *GitHubGateway) RateLimit(ctx context.Context) (RateBudget, error) {
	limits, _, err := g.restClient.RateLimit.Get(ctx)
	if err != nil {
		return RateBudget{}, mapError(err, "")
	}
	core := limits.GetCore()
	if core == nil {
		return RateBudget{}, nil
	}
	return RateBudget{
		Limit:     core.Limit,
		Remaining: core.Remaining,
		ResetAt:   core.Reset.Time,
	}, nil
}

// TokenScopes reports the OAuth scopes granted to the credential. GitHub has
// no dedicated endpoint for this; the scopes ride on the X-OAuth-Scopes
// header of any authenticated response, so a cheap identity call is used as
// the probe.
func (g *GitHubGateway) TokenScopes(ctx context.Context) ([]string, error) {
	_, resp, err := g.restClient.Users.Get(ctx, "")
	if err != nil {
		return nil, mapError(err, "")
	}
	header := resp.Header.Get("X-OAuth-Scopes")
	if header == "" {
		return nil, nil
	}
	parts := strings.Split(header, ",")
	scopes := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes, nil
}

func toRepository(r *github.Repository) domain.Repository {
	return domain.Repository{
		ID:              r.GetID(),
		Name:            r.GetName(),
		FullName:        r.GetFullName(),
		Owner:           r.GetOwner().GetLogin(),
		Private:         r.GetPrivate(),
		PrimaryLanguage: r.GetLanguage(),
		HTMLURL:         r.GetHTMLURL(),
	}
}

func toCommit(c *github.RepositoryCommit) domain.Commit {
	return domain.Commit{
		SHA:             c.GetSHA(),
		Message:         c.GetCommit().GetMessage(),
		AuthorName:      c.GetCommit().GetAuthor().GetName(),
		AuthorDate:      c.GetCommit().GetAuthor().GetDate().Time,
		AuthorLogin:     c.GetAuthor().GetLogin(),
		AuthorAvatarURL: c.GetAuthor().GetAvatarURL(),
		HTMLURL:         c.GetHTMLURL(),
	}
}
