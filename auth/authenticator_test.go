package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/fleetops/driverhub/auth"
)

func TestNewAuthenticatorRequiresSecret(t *testing.T) {
	provider := new(MockIdentityProvider)

	auther, err := auth.NewAuthenticator(provider, testConfig{})
	assert.Nil(t, auther)
	assert.ErrorIs(t, err, auth.ErrSigningKeyMissing)
}

func TestNewAuthenticatorRejectsUnsupportedMethod(t *testing.T) {
	provider := new(MockIdentityProvider)

	auther, err := auth.NewAuthenticator(provider, testConfig{
		secret: string(testSigningKey),
		method: "RS256",
	})
	assert.Nil(t, auther)
	assert.ErrorIs(t, err, auth.ErrUnsupportedSigningMethod)
}

func TestLoginIssuesToken(t *testing.T) {
	ctx := context.Background()
	provider := new(MockIdentityProvider)

	identity := testIdentity{
		id:          "9a164b55-0b9e-4a22-8e3c-5a7d0a4f6f01",
		username:    "dispatcher.one",
		displayName: "Dispatcher One",
		role:        "dispatcher",
	}

	provider.On("VerifyIdentity", ctx, "dispatcher.one", "s3cret").
		Return(identity, nil)

	auther, err := auth.NewAuthenticator(provider, testConfig{secret: string(testSigningKey)})
	assert.NoError(t, err)

	token, err := auther.Login(ctx, "dispatcher.one", "s3cret")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := auther.TokenService().Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, identity.id, claims.Subject())
	assert.Equal(t, "dispatcher", claims.Role())

	provider.AssertExpectations(t)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	provider := new(MockIdentityProvider)

	provider.On("VerifyIdentity", ctx, "dispatcher.one", "wrong").
		Return(nil, auth.ErrMismatchedHashAndPassword)

	auther, err := auth.NewAuthenticator(provider, testConfig{secret: string(testSigningKey)})
	assert.NoError(t, err)

	token, err := auther.Login(ctx, "dispatcher.one", "wrong")
	assert.Empty(t, token)
	assert.True(t, auth.IsInvalidCredentialsError(err))

	provider.AssertExpectations(t)
}

func TestLoginNilIdentity(t *testing.T) {
	ctx := context.Background()
	provider := new(MockIdentityProvider)

	provider.On("VerifyIdentity", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil)

	auther, err := auth.NewAuthenticator(provider, testConfig{secret: string(testSigningKey)})
	assert.NoError(t, err)

	token, err := auther.Login(ctx, "ghost", "whatever")
	assert.Empty(t, token)
	assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
}

func TestIdentityFromClaims(t *testing.T) {
	ctx := context.Background()
	provider := new(MockIdentityProvider)

	identity := testIdentity{id: "42", username: "dispatcher.one"}

	provider.On("VerifyIdentity", ctx, "dispatcher.one", "s3cret").
		Return(identity, nil)
	provider.On("FindIdentityByIdentifier", ctx, "42").
		Return(identity, nil)

	auther, err := auth.NewAuthenticator(provider, testConfig{secret: string(testSigningKey)})
	assert.NoError(t, err)

	token, err := auther.Login(ctx, "dispatcher.one", "s3cret")
	assert.NoError(t, err)

	claims, err := auther.TokenService().Validate(token)
	assert.NoError(t, err)

	resolved, err := auther.IdentityFromClaims(ctx, claims)
	assert.NoError(t, err)
	assert.Equal(t, "dispatcher.one", resolved.Username())

	provider.AssertExpectations(t)
}
