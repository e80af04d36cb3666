package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/devpulse/devpulse/internal/cachestore"
	"github.com/devpulse/devpulse/internal/domain"
	"github.com/devpulse/devpulse/internal/gateway"
	"github.com/devpulse/devpulse/internal/httpcache"
)

type commitQuery struct {
	window domain.DateWindow
	since  string
	until  string
	author string
	repos  []string
}

func parseCommitQuery(r *http.Request) (commitQuery, error) {
	q := r.URL.Query()
	since := q.Get("since")
	until := q.Get("until")
	if since == "" || until == "" {
		return commitQuery{}, errors.New("both since and until query parameters are required")
	}
	window, err := domain.ParseWindow(since, until)
	if err != nil {
		return commitQuery{}, err
	}

	var repos []string
	if raw := q.Get("repos"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				repos = append(repos, trimmed)
			}
		}
	}

	return commitQuery{
		window: window,
		since:  since,
		until:  until,
		author: q.Get("author"),
		repos:  repos,
	}, nil
}

// handleCommits runs the full pipeline: cache lookup, guard, discovery when
// no repository list was given, aggregation, then cache write.
func (s *Server) handleCommits(w http.ResponseWriter, r *http.Request) {
	query, err := parseCommitQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	key := httpcache.Key("commits", map[string]any{
		"cred":   s.fingerprint,
		"since":  query.since,
		"until":  query.until,
		"author": query.author,
		"repos":  query.repos,
	})
	if s.serveFromStore(w, r, key, s.rules.Commits) {
		return
	}

	ctx := r.Context()
	s.guard.CheckBudget(ctx)
	if err := s.guard.CheckScopes(ctx); err != nil {
		s.writeTaxonomyError(w, err)
		return
	}

	repos := query.repos
	if len(repos) == 0 {
		discovered, err := s.discoverer.Discover(ctx)
		if err != nil {
			s.writeTaxonomyError(w, err)
			return
		}
		for _, repo := range discovered {
			repos = append(repos, repo.FullName)
		}
	}

	commits, err := s.aggregator.Aggregate(ctx, repos, query.window, query.author)
	if err != nil {
		s.writeTaxonomyError(w, err)
		return
	}

	s.respondAndStore(w, r, key, s.rules.Commits, commits)
}

// handleRepositories serves the discovered repository set.
func (s *Server) handleRepositories(w http.ResponseWriter, r *http.Request) {
	key := httpcache.Key("repos", map[string]any{"cred": s.fingerprint})
	if s.serveFromStore(w, r, key, s.rules.Repositories) {
		return
	}

	ctx := r.Context()
	s.guard.CheckBudget(ctx)
	if err := s.guard.CheckScopes(ctx); err != nil {
		s.writeTaxonomyError(w, err)
		return
	}

	repos, err := s.discoverer.Discover(ctx)
	if err != nil {
		s.writeTaxonomyError(w, err)
		return
	}

	s.respondAndStore(w, r, key, s.rules.Repositories, repos)
}

// handleSummary aggregates and folds the result into the dashboard summary.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	query, err := parseCommitQuery(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	key := httpcache.Key("summary", map[string]any{
		"cred":   s.fingerprint,
		"since":  query.since,
		"until":  query.until,
		"author": query.author,
		"repos":  query.repos,
	})
	if s.serveFromStore(w, r, key, s.rules.Summary) {
		return
	}

	ctx := r.Context()
	s.guard.CheckBudget(ctx)
	if err := s.guard.CheckScopes(ctx); err != nil {
		s.writeTaxonomyError(w, err)
		return
	}

	repos := query.repos
	if len(repos) == 0 {
		discovered, err := s.discoverer.Discover(ctx)
		if err != nil {
			s.writeTaxonomyError(w, err)
			return
		}
		for _, repo := range discovered {
			repos = append(repos, repo.FullName)
		}
	}

	commits, err := s.aggregator.Aggregate(ctx, repos, query.window, query.author)
	if err != nil {
		s.writeTaxonomyError(w, err)
		return
	}

	s.respondAndStore(w, r, key, s.rules.Summary, domain.Summarize(commits))
}

// serveFromStore replays a stored entry when one exists, returning true when
// the request was fully handled without re-running aggregation.
func (s *Server) serveFromStore(w http.ResponseWriter, r *http.Request, key string, maxAge int) bool {
	entry, err := s.store.Get(r.Context(), key)
	if err != nil {
		s.logger.Warnw("cache store lookup failed, falling through to aggregation", "error", err)
		return false
	}
	if entry == nil {
		return false
	}
	s.logger.Debugw("serving response from cache store", "key", key)
	s.responder.RawJSON(w, r, http.StatusOK, entry.Payload, httpcache.Options{
		MaxAge:               maxAge,
		StaleWhileRevalidate: entry.StaleWhileRevalidate,
		ETag:                 entry.ETag,
	})
	return true
}

// respondAndStore writes the fresh payload and records it for subsequent
// requests. The store TTL covers the stale-while-revalidate grace period.
func (s *Server) respondAndStore(w http.ResponseWriter, r *http.Request, key string, maxAge int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		s.logger.Errorw("failed to encode response payload", "error", err)
		s.writeError(w, http.StatusInternalServerError, errors.New("could not encode response"))
		return
	}

	etag := httpcache.ETagForBody(body)
	entry := &cachestore.Entry{
		Key:                  key,
		ETag:                 etag,
		Payload:              body,
		MaxAgeSeconds:        maxAge,
		StaleWhileRevalidate: 2 * maxAge,
		Private:              true,
		StoredAt:             time.Now().UTC(),
	}
	ttl := time.Duration(3*maxAge) * time.Second
	if err := s.store.Set(r.Context(), key, entry, ttl); err != nil {
		s.logger.Warnw("cache store write failed, response served uncached", "error", err)
	}

	s.responder.RawJSON(w, r, http.StatusOK, body, httpcache.Options{MaxAge: maxAge, ETag: etag})
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// writeTaxonomyError maps gateway error kinds to actionable HTTP responses.
func (s *Server) writeTaxonomyError(w http.ResponseWriter, err error) {
	var (
		cfgErr   *gateway.ConfigurationError
		authErr  *gateway.AuthError
		scopeErr *gateway.AuthScopeError
		rateErr  *gateway.RateLimitError
		nfErr    *gateway.NotFoundError
		upErr    *gateway.UpstreamError
	)
	switch {
	case errors.As(err, &cfgErr):
		s.logger.Errorw("configuration error", "error", err)
		s.writeError(w, http.StatusInternalServerError, err)
	case errors.As(err, &authErr):
		s.writeError(w, http.StatusUnauthorized, err)
	case errors.As(err, &scopeErr):
		s.writeError(w, http.StatusForbidden, err)
	case errors.As(err, &rateErr):
		w.Header().Set("Retry-After", strconv.FormatInt(int64(time.Until(rateErr.ResetAt).Seconds())+1, 10))
		s.writeError(w, http.StatusTooManyRequests, err)
	case errors.As(err, &nfErr):
		s.writeError(w, http.StatusNotFound, err)
	case errors.As(err, &upErr):
		s.writeError(w, http.StatusBadGateway, err)
	default:
		s.logger.Errorw("unclassified error", "error", err)
		s.writeError(w, http.StatusInternalServerError, err)
	}
}
