package auth

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
)

func TestOTPGenerator(t *testing.T) {
	fixed := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("six digit default", func(t *testing.T) {
		g := NewOTPGenerator(OTPConfig{Digits: 7})
		g.now = func() time.Time { return fixed }

		code, expiry, err := g.Generate("jdoe@uni.edu")
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
		assert.Equal(t, fixed.Add(10*time.Minute), expiry)
		assert.Equal(t, 10*time.Minute, g.TTL())
	})

	t.Run("eight digits and custom ttl", func(t *testing.T) {
		g := NewOTPGenerator(OTPConfig{Digits: 8, TTL: 5 * time.Minute})
		g.now = func() time.Time { return fixed }

		code, expiry, err := g.Generate("jdoe@uni.edu")
		require.NoError(t, err)
		assert.Len(t, code, 8)
		assert.Equal(t, fixed.Add(5*time.Minute), expiry)
	})
}

func TestOTPMatches(t *testing.T) {
	assert.True(t, OTPMatches("123456", "123456"))
	assert.False(t, OTPMatches("123456", "654321"))
	assert.False(t, OTPMatches("123456", "12345"))
	assert.False(t, OTPMatches("", ""))
}

func TestPasswords(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)
	assert.True(t, CheckPassword(hash, "secret123"))
	assert.False(t, CheckPassword(hash, "secret124"))

	assert.NoError(t, ValidatePasswordStrength("abcdefg1"))
	for _, weak := range []string{"short1", "allletters", "12345678"} {
		err := ValidatePasswordStrength(weak)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidPassword), weak)
	}
}

func TestJWTService(t *testing.T) {
	svc := NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "noobsquad",
	})
	user := &models.User{ID: 9, Username: "jdoe", Email: "jdoe@uni.edu"}

	pair, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)
	assert.Equal(t, 3600, pair.ExpiresIn)
	assert.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.ValidateAndExtractClaims(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(9), claims.UserID)
	assert.Equal(t, "jdoe@uni.edu", claims.Email)

	_, err = svc.ValidateAndExtractClaims("")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour, RefreshTokenExp: time.Hour})
	_, err = other.ValidateAndExtractClaims(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)

	expired := NewJWTService(JWTConfig{SecretKey: "test-secret", AccessTokenExp: -time.Minute, RefreshTokenExp: time.Hour})
	stale, err := expired.GenerateTokenPair(user)
	require.NoError(t, err)
	_, err = svc.ValidateAndExtractClaims(stale.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	tok, err = ExtractBearerToken(`"abc.def.ghi"`)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	_, err = ExtractBearerToken("Basic dXNlcjpwYXNz")
	assert.ErrorIs(t, err, apperrors.ErrInvalidFormat)
	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, apperrors.ErrInvalidFormat)
}

func TestNewGoogleProviderDisabled(t *testing.T) {
	assert.Nil(t, NewGoogleProvider(GoogleConfig{}))
}
