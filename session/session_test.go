package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "dev-secret-key"

func testNow() time.Time {
	return time.Unix(int64(1594336370), 0)
}

func signToken(t *testing.T, claims *Claims, method jwt.SigningMethod, secret string) string {
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err, "unable to sign the test token")
	return token
}

func testClaims(expires time.Time) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "Xh2kd9QpL0",
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UserID: "Xh2kd9QpL0",
		Email:  "sarahr@cyverse.org",
	}
}

func TestStaticSource(t *testing.T) {
	assert := assert.New(t)

	identity, err := (&StaticSource{UserID: "sarahr", Email: "sarahr@cyverse.org"}).Current(context.Background())
	assert.NoError(err)
	assert.Equal(&Identity{UserID: "sarahr", Email: "sarahr@cyverse.org"}, identity)

	identity, err = (&StaticSource{}).Current(context.Background())
	assert.Nil(identity)
	assert.Equal(ErrNoIdentity, err)
}

func TestTokenSourceVerified(t *testing.T) {
	assert := assert.New(t)

	token := signToken(t, testClaims(testNow().Add(time.Hour)), jwt.SigningMethodHS256, testSecret)
	source := &TokenSource{Token: token, Secret: testSecret, Now: testNow}

	identity, err := source.Current(context.Background())
	assert.NoError(err)
	assert.Equal("Xh2kd9QpL0", identity.UserID)
	assert.Equal("sarahr@cyverse.org", identity.Email)
}

func TestTokenSourceWrongSecret(t *testing.T) {
	token := signToken(t, testClaims(testNow().Add(time.Hour)), jwt.SigningMethodHS256, "some other secret")
	source := &TokenSource{Token: token, Secret: testSecret, Now: testNow}

	identity, err := source.Current(context.Background())
	assert.Nil(t, identity)
	assert.True(t, errors.Is(err, ErrNoIdentity))
}

func TestTokenSourceExpired(t *testing.T) {
	token := signToken(t, testClaims(testNow().Add(-time.Minute)), jwt.SigningMethodHS256, testSecret)

	for _, secret := range []string{testSecret, ""} {
		source := &TokenSource{Token: token, Secret: secret, Now: testNow}
		identity, err := source.Current(context.Background())
		assert.Nil(t, identity, "expired token accepted with secret %q", secret)
		assert.True(t, errors.Is(err, ErrNoIdentity))
	}
}

func TestTokenSourceUnverified(t *testing.T) {
	assert := assert.New(t)

	claims := testClaims(testNow().Add(time.Hour))
	claims.UserID = ""
	token := signToken(t, claims, jwt.SigningMethodHS256, "unknown secret")
	source := &TokenSource{Token: token, Now: testNow}

	identity, err := source.Current(context.Background())
	assert.NoError(err)
	assert.Equal("Xh2kd9QpL0", identity.UserID, "the subject was not used as the user ID")
}

func TestTokenSourceMissingToken(t *testing.T) {
	identity, err := (&TokenSource{}).Current(context.Background())
	assert.Nil(t, identity)
	assert.Equal(t, ErrNoIdentity, err)
}

func TestTokenSourceMalformedToken(t *testing.T) {
	identity, err := (&TokenSource{Token: "not.a.token"}).Current(context.Background())
	assert.Nil(t, identity)
	assert.True(t, errors.Is(err, ErrNoIdentity))
}
