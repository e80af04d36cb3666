package httpcache

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// Options controls the cache headers of one response.
type Options struct {
	// MaxAge is the freshness lifetime in seconds.
	MaxAge int
	// StaleWhileRevalidate is the revalidation grace period in seconds;
	// zero defaults to twice MaxAge.
	StaleWhileRevalidate int
	// Public marks the response shareable by intermediary caches. The zero
	// value keeps responses private, which is the right default for
	// credential-scoped data.
	Public bool
	// ETag overrides the computed tag, e.g. when serving a stored entry.
	ETag string
	// ExtraHeaders are set verbatim on the response.
	ExtraHeaders map[string]string
}

// ControlHeader renders a Cache-Control value of the form
// "<private|public>, max-age=<n>, stale-while-revalidate=<m>".
func ControlHeader(maxAge, staleWhileRevalidate int, private bool) string {
	visibility := "public"
	if private {
		visibility = "private"
	}
	return fmt.Sprintf("%s, max-age=%d, stale-while-revalidate=%d", visibility, maxAge, staleWhileRevalidate)
}

// Responder writes JSON responses carrying ETag and Cache-Control headers
// and short-circuits to a bodyless 304 when the request's conditional header
// matches.
type Responder struct {
	logger *zap.SugaredLogger
}

// NewResponder creates a new Responder instance.
func NewResponder(logger *zap.SugaredLogger) *Responder {
	return &Responder{logger: logger}
}

// JSON serializes payload and writes it with the configured cache headers.
// ETag and Cache-Control are set on both the 200 and the 304 path.
func (rp *Responder) JSON(w http.ResponseWriter, r *http.Request, status int, payload any, opts Options) {
	body, err := json.Marshal(payload)
	if err != nil {
		rp.logger.Errorw("failed to encode response payload", "error", err)
		http.Error(w, "could not encode response", http.StatusInternalServerError)
		return
	}
	rp.RawJSON(w, r, status, body, opts)
}

// RawJSON writes an already-serialized JSON body, computing the ETag from
// the bytes unless one was supplied. Used when replaying stored cache
// entries without re-encoding.
func (rp *Responder) RawJSON(w http.ResponseWriter, r *http.Request, status int, body []byte, opts Options) {
	etag := opts.ETag
	if etag == "" {
		etag = ETagForBody(body)
	}
	swr := opts.StaleWhileRevalidate
	if swr == 0 {
		swr = 2 * opts.MaxAge
	}

	header := w.Header()
	header.Set("ETag", etag)
	header.Set("Cache-Control", ControlHeader(opts.MaxAge, swr, !opts.Public))
	for k, v := range opts.ExtraHeaders {
		header.Set(k, v)
	}

	if IsFresh(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	header.Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		rp.logger.Warnw("failed to write response body", "error", err)
	}
}
