package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/devpulse/devpulse/internal/gateway"
)

func observedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core).Sugar(), logs
}

func TestGuard_CheckBudget(t *testing.T) {
	testCases := []struct {
		name       string
		budget     gateway.RateBudget
		probeErr   error
		expectWarn bool
	}{
		{
			name:       "plenty of budget left",
			budget:     gateway.RateBudget{Limit: 5000, Remaining: 4200, ResetAt: time.Now().Add(time.Hour)},
			expectWarn: false,
		},
		{
			name:       "budget under the low-water mark",
			budget:     gateway.RateBudget{Limit: 5000, Remaining: 42, ResetAt: time.Now().Add(time.Hour)},
			expectWarn: true,
		},
		{
			name:       "probe failure is swallowed with a warning",
			probeErr:   errors.New("dial tcp: connection refused"),
			expectWarn: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := new(mockClient)
			client.On("RateLimit", mock.Anything).Return(tc.budget, tc.probeErr)
			logger, logs := observedLogger()

			guard := NewGuard(client, logger)
			guard.CheckBudget(context.Background())

			warns := logs.FilterLevelExact(zapcore.WarnLevel).Len()
			if tc.expectWarn {
				assert.NotZero(t, warns, "expected a warning to be logged")
			} else {
				assert.Zero(t, warns, "expected no warning")
			}
		})
	}
}

func TestGuard_CheckScopes(t *testing.T) {
	testCases := []struct {
		name        string
		scopes      []string
		probeErr    error
		expectWarn  bool
		assertError func(t *testing.T, err error)
	}{
		{
			name:   "both scopes granted",
			scopes: []string{"repo", "read:org"},
		},
		{
			name:       "missing optional scope only warns",
			scopes:     []string{"repo"},
			expectWarn: true,
		},
		{
			name:   "missing mandatory scope aborts",
			scopes: []string{"read:org", "gist"},
			assertError: func(t *testing.T, err error) {
				var scopeErr *gateway.AuthScopeError
				require.ErrorAs(t, err, &scopeErr)
				assert.Equal(t, "repo", scopeErr.Missing)
			},
		},
		{
			name:       "non-auth probe failure is swallowed",
			probeErr:   errors.New("upstream 503"),
			expectWarn: true,
		},
		{
			name:     "auth probe failure propagates",
			probeErr: &gateway.AuthError{Status: 401},
			assertError: func(t *testing.T, err error) {
				var authErr *gateway.AuthError
				require.ErrorAs(t, err, &authErr)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := new(mockClient)
			client.On("HasInstallation").Return(false)
			if tc.probeErr != nil {
				client.On("TokenScopes", mock.Anything).Return(nil, tc.probeErr)
			} else {
				client.On("TokenScopes", mock.Anything).Return(tc.scopes, nil)
			}
			logger, logs := observedLogger()

			guard := NewGuard(client, logger)
			err := guard.CheckScopes(context.Background())

			if tc.assertError != nil {
				tc.assertError(t, err)
			} else {
				require.NoError(t, err)
			}
			warns := logs.FilterLevelExact(zapcore.WarnLevel).Len()
			if tc.expectWarn {
				assert.NotZero(t, warns)
			} else {
				assert.Zero(t, warns)
			}
		})
	}
}

func TestGuard_CheckScopes_InstallationSkipped(t *testing.T) {
	client := new(mockClient)
	client.On("HasInstallation").Return(true)

	guard := NewGuard(client, zap.NewNop().Sugar())
	require.NoError(t, guard.CheckScopes(context.Background()))

	client.AssertNotCalled(t, "TokenScopes", mock.Anything)
}
