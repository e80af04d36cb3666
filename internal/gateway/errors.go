package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
)

// ConfigurationError signals missing client wiring or credentials. It is
// never retried.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// AuthError signals an invalid or expired credential; the caller should
// re-authenticate.
type AuthError struct {
	Status int
	cause  error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (status %d), please re-authenticate", e.Status)
}

func (e *AuthError) Unwrap() error { return e.cause }

// AuthScopeError signals a credential missing a mandatory permission scope.
type AuthScopeError struct {
	Missing string
}

func (e *AuthScopeError) Error() string {
	return fmt.Sprintf("token is missing the required %q scope, please re-authorize with it granted", e.Missing)
}

// RateLimitError signals an exhausted upstream call budget. The call may be
// retried after ResetAt.
type RateLimitError struct {
	ResetAt time.Time
	cause   error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("GitHub rate limit exceeded, retry after %s", e.ResetAt.Format(time.RFC3339))
}

func (e *RateLimitError) Unwrap() error { return e.cause }

// NotFoundError signals a repository that does not exist or is not visible
// to the credential.
type NotFoundError struct {
	Repository string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("repository %q not found or not accessible", e.Repository)
}

// UpstreamError is the catch-all for other non-2xx upstream responses.
type UpstreamError struct {
	Status int
	cause  error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("GitHub API request failed (status %d)", e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.cause }

// IsAuth reports whether err is an authentication or scope failure. The
// guard uses this to decide which probe failures must propagate.
func IsAuth(err error) bool {
	var ae *AuthError
	var se *AuthScopeError
	return errors.As(err, &ae) || errors.As(err, &se)
}

// mapError translates go-github client errors into the gateway taxonomy.
// repo carries the owner/name pair for 404 classification and may be empty.
func mapError(err error, repo string) error {
	var rle *github.RateLimitError
	if errors.As(err, &rle) {
		return &RateLimitError{ResetAt: rle.Rate.Reset.Time, cause: err}
	}
	var able *github.AbuseRateLimitError
	if errors.As(err, &able) {
		reset := time.Now()
		if able.RetryAfter != nil {
			reset = reset.Add(*able.RetryAfter)
		}
		return &RateLimitError{ResetAt: reset, cause: err}
	}
	var ger *github.ErrorResponse
	if errors.As(err, &ger) && ger.Response != nil {
		switch ger.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthError{Status: ger.Response.StatusCode, cause: err}
		case http.StatusNotFound:
			return &NotFoundError{Repository: repo}
		default:
			return &UpstreamError{Status: ger.Response.StatusCode, cause: err}
		}
	}
	return &UpstreamError{cause: err}
}
