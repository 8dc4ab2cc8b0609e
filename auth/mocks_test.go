package auth_test

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/mock"

	"github.com/fleetops/driverhub/auth"
)

type testIdentity struct {
	id          string
	username    string
	displayName string
	role        string
}

func (t testIdentity) ID() string          { return t.id }
func (t testIdentity) Username() string    { return t.username }
func (t testIdentity) DisplayName() string { return t.displayName }
func (t testIdentity) Role() string        { return t.role }

type testConfig struct {
	secret     string
	method     string
	expiration int
}

func (c testConfig) GetSigningKey() string { return c.secret }
func (c testConfig) GetSigningMethod() string {
	if c.method == "" {
		return "HS256"
	}
	return c.method
}
func (c testConfig) GetContextKey() string { return "user" }
func (c testConfig) GetTokenExpiration() int {
	if c.expiration == 0 {
		return 30
	}
	return c.expiration
}
func (c testConfig) GetTokenLookup() string { return "header:Authorization" }
func (c testConfig) GetIssuer() string      { return "driverhub" }

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (auth.Identity, error) {
	args := m.Called(ctx, identifier, password)

	var identity auth.Identity
	if v := args.Get(0); v != nil {
		identity = v.(auth.Identity)
	}

	return identity, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (auth.Identity, error) {
	args := m.Called(ctx, identifier)

	var identity auth.Identity
	if v := args.Get(0); v != nil {
		identity = v.(auth.Identity)
	}

	return identity, args.Error(1)
}

type MockAccountTracker struct {
	mock.Mock
}

func (m *MockAccountTracker) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*auth.Account, error) {
	args := m.Called(ctx, identifier)

	var account *auth.Account
	if v := args.Get(0); v != nil {
		account = v.(*auth.Account)
	}

	return account, args.Error(1)
}

func (m *MockAccountTracker) TrackAttemptedLogin(ctx context.Context, account *auth.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountTracker) TrackSuccessfulLogin(ctx context.Context, account *auth.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, identifier, password string) (string, error) {
	args := m.Called(ctx, identifier, password)
	return args.String(0), args.Error(1)
}

var (
	_ auth.IdentityProvider = (*MockIdentityProvider)(nil)
	_ auth.AccountTracker   = (*MockAccountTracker)(nil)
	_ auth.Authenticator    = (*MockAuthenticator)(nil)
	_ auth.Config           = testConfig{}
)

func recordNotFound(identifier string) error {
	return repository.NewRecordNotFound().
		WithMetadata(map[string]any{
			"identifier": identifier,
		})
}
