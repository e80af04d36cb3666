// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/devpulse/devpulse/internal/gateway"
)

const (
	// lowBudgetWatermark is the remaining-call threshold under which bulk
	// aggregation is likely to exhaust the quota mid-flight.
	lowBudgetWatermark = 100

	requiredScope = "repo"
	optionalScope = "read:org"
)

// Guard inspects a credential's call budget and permission scopes before
// bulk work begins. Budget problems only warn; a missing mandatory scope
// aborts downstream work.
type Guard struct {
	client gateway.Client
	logger *zap.SugaredLogger
}

// NewGuard creates a new Guard instance.
func NewGuard(client gateway.Client, logger *zap.SugaredLogger) *Guard {
	return &Guard{client: client, logger: logger}
}

// CheckBudget warns when the remaining core quota falls under the low-water
// mark. The probe is best-effort: a failed probe is logged and swallowed so
// a flaky rate-limit endpoint never blocks aggregation.
func (g *Guard) CheckBudget(ctx context.Context) {
	budget, err := g.client.RateLimit(ctx)
	if err != nil {
		g.logger.Warnw("rate limit probe failed, continuing without budget check", "error", err)
		return
	}
	if budget.Remaining < lowBudgetWatermark {
		g.logger.Warnw("GitHub call budget is nearly exhausted",
			"remaining", budget.Remaining,
			"limit", budget.Limit,
			"resets_at", budget.ResetAt,
		)
		return
	}
	g.logger.Debugw("GitHub call budget ok", "remaining", budget.Remaining, "limit", budget.Limit)
}

// CheckScopes verifies the credential carries the mandatory "repo" scope and
// warns when the optional "read:org" scope is absent. Probe failures are
// swallowed unless they are themselves auth failures, which are propagated
// so the caller can request re-authentication. Installation credentials
// carry no OAuth scopes, so the check is skipped for them.
func (g *Guard) CheckScopes(ctx context.Context) error {
	if g.client.HasInstallation() {
		g.logger.Debug("installation credential, skipping OAuth scope check")
		return nil
	}

	scopes, err := g.client.TokenScopes(ctx)
	if err != nil {
		if gateway.IsAuth(err) {
			return err
		}
		g.logger.Warnw("scope probe failed, continuing without scope check", "error", err)
		return nil
	}

	if !slices.Contains(scopes, requiredScope) {
		return &gateway.AuthScopeError{Missing: requiredScope}
	}
	if !slices.Contains(scopes, optionalScope) {
		g.logger.Warnw("token lacks the optional scope, organization repositories may be invisible",
			"scope", optionalScope)
	}
	return nil
}
