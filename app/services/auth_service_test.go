package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newAuth(t *testing.T) *AuthService {
	t.Helper()
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	return NewAuthService("admin", hash, "signing-key", time.Hour, zap.NewNop())
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret!")))

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLoginAndVerify(t *testing.T) {
	svc := newAuth(t)
	require.True(t, svc.Enabled())

	session, err := svc.Login("admin", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "admin", session.User)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, time.Minute)

	user, err := svc.Verify(session.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", user)
}

func TestLoginRejected(t *testing.T) {
	svc := newAuth(t)

	tests := []struct {
		name     string
		user     string
		password string
	}{
		{name: "wrong password", user: "admin", password: "nope"},
		{name: "wrong user", user: "root", password: "s3cret!"},
		{name: "empty", user: "", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(tt.user, tt.password)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestVerifyRejects(t *testing.T) {
	svc := newAuth(t)

	t.Run("expired", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		session, err := svc.Login("admin", "s3cret!")
		require.NoError(t, err)
		svc.now = utcNow

		_, err = svc.Verify(session.Token)
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, "토큰이 만료되었습니다.", err.Error())
	})

	t.Run("other key", func(t *testing.T) {
		other := NewAuthService("admin", string(svc.passwordHash), "different-key", time.Hour, zap.NewNop())
		session, err := other.Login("admin", "s3cret!")
		require.NoError(t, err)

		_, err = svc.Verify(session.Token)
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.Equal(t, "유효하지 않은 토큰입니다.", err.Error())
	})

	t.Run("other issuer", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Issuer:    "someone-else",
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("signing-key"))
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Verify("not.a.token")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestAuthDisabled(t *testing.T) {
	svc := NewAuthService("admin", "", "", time.Hour, zap.NewNop())
	assert.False(t, svc.Enabled())

	_, err := svc.Login("admin", "x")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = svc.Verify("x")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
