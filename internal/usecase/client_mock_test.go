package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/devpulse/devpulse/internal/domain"
	"github.com/devpulse/devpulse/internal/gateway"
)

// mockClient is a mock implementation of the gateway.Client interface. It
// lets the tests simulate the GitHub gateway without real API calls.
type mockClient struct {
	mock.Mock
}

func (m *mockClient) ListRepositoriesForUser(ctx context.Context) ([]domain.Repository, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Repository), args.Error(1)
}

func (m *mockClient) ListRepositoriesForInstallation(ctx context.Context) ([]domain.Repository, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Repository), args.Error(1)
}

func (m *mockClient) ListCommits(ctx context.Context, owner, repo string, window domain.DateWindow, author string) ([]domain.Commit, error) {
	args := m.Called(ctx, owner, repo, window, author)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Commit), args.Error(1)
}

func (m *mockClient) RateLimit(ctx context.Context) (gateway.RateBudget, error) {
	args := m.Called(ctx)
	return args.Get(0).(gateway.RateBudget), args.Error(1)
}

func (m *mockClient) TokenScopes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockClient) HasInstallation() bool {
	return m.Called().Bool(0)
}
