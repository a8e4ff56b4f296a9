package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockIdentityProvider is a mock implementation of IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, email, password string) (Identity, error) {
	args := m.Called(ctx, email, password)
	if identity := args.Get(0); identity != nil {
		return identity.(Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByEmail(ctx context.Context, email string) (Identity, error) {
	args := m.Called(ctx, email)
	if identity := args.Get(0); identity != nil {
		return identity.(Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUsers is a mock implementation of the Users repository
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if user := args.Get(0); user != nil {
		return user.(*User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) GetByID(ctx context.Context, id string) (*User, error) {
	args := m.Called(ctx, id)
	if user := args.Get(0); user != nil {
		return user.(*User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) Create(ctx context.Context, record *User) (*User, error) {
	args := m.Called(ctx, record)
	if user := args.Get(0); user != nil {
		return user.(*User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) CreateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	args := m.Called(ctx, tx, record)
	if user := args.Get(0); user != nil {
		return user.(*User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) UpdateName(ctx context.Context, id uuid.UUID, name string) (*User, error) {
	args := m.Called(ctx, id, name)
	if user := args.Get(0); user != nil {
		return user.(*User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUsers) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// testIdentity is a simple Identity for tests
type testIdentity struct {
	id    string
	email string
	name  string
}

func (t testIdentity) ID() string    { return t.id }
func (t testIdentity) Email() string { return t.email }
func (t testIdentity) Name() string  { return t.name }

// mockConfig is a minimal Config for tests
type mockConfig struct {
	signingKey string
	ttl        time.Duration
	issuer     string
	audience   []string
}

func (m mockConfig) GetSigningKey() string             { return m.signingKey }
func (m mockConfig) GetTokenExpiration() time.Duration { return m.ttl }
func (m mockConfig) GetIssuer() string                 { return m.issuer }
func (m mockConfig) GetAudience() []string             { return m.audience }
func (m mockConfig) GetContextKey() string             { return "user" }
func (m mockConfig) GetAuthScheme() string             { return "Bearer" }
func (m mockConfig) GetTokenLookup() string            { return "header:Authorization" }

func defaultTestConfig() mockConfig {
	return mockConfig{
		signingKey: "test-signing-key",
		ttl:        time.Hour,
	}
}
