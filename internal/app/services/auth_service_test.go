package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/auth"
)

func newTestAuthService(users *memUsers, mailer *capturingMailer) AuthService {
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret-key",
		AccessTokenExp:  15 * time.Minute,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})
	otp := auth.NewOTPGenerator(auth.OTPConfig{TTL: 10 * time.Minute})
	return NewAuthService(users, newMemTokens(), jwtService, otp, mailer, nil, nil, zerolog.Nop())
}

func TestAuthService_LoginRequiresVerifiedEmail(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	mailer := &capturingMailer{}
	svc := newTestAuthService(users, mailer)

	signup, err := svc.Signup(ctx, &dto.SignupRequest{Username: "alice", Email: "alice@uni.edu", Password: "secret123"})
	require.NoError(t, err)
	assert.NotZero(t, signup.UserID)

	_, err = svc.Login(ctx, &dto.LoginRequest{Identifier: "alice", Password: "secret123"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrEmailNotVerified)

	code := mailer.codes["alice@uni.edu"]
	require.NotEmpty(t, code, "signup should email a code")

	verified, err := svc.VerifyOTP(ctx, &dto.VerifyOTPRequest{Email: "alice@uni.edu", OTP: code})
	require.NoError(t, err)
	assert.NotEmpty(t, verified.Token.AccessToken)

	resp, err := svc.Login(ctx, &dto.LoginRequest{Identifier: "alice@uni.edu", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.NotEmpty(t, resp.Token.RefreshToken)
}

func TestAuthService_VerifyOTPRejectsWrongCode(t *testing.T) {
	ctx := context.Background()
	users := newMemUsers()
	mailer := &capturingMailer{}
	svc := newTestAuthService(users, mailer)

	_, err := svc.Signup(ctx, &dto.SignupRequest{Username: "bob", Email: "bob@uni.edu", Password: "secret123"})
	require.NoError(t, err)

	wrong := "000000"
	if mailer.codes["bob@uni.edu"] == wrong {
		wrong = "111111"
	}
	_, err = svc.VerifyOTP(ctx, &dto.VerifyOTPRequest{Email: "bob@uni.edu", OTP: wrong})
	assert.ErrorIs(t, err, apperrors.ErrOTPInvalid)

	_, err = svc.VerifyOTP(ctx, &dto.VerifyOTPRequest{Email: "bob@uni.edu", OTP: mailer.codes["bob@uni.edu"]})
	require.NoError(t, err)

	_, err = svc.VerifyOTP(ctx, &dto.VerifyOTPRequest{Email: "bob@uni.edu", OTP: mailer.codes["bob@uni.edu"]})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyVerified)
}

func TestAuthService_SignupConflicts(t *testing.T) {
	ctx := context.Background()
	svc := newTestAuthService(newMemUsers(), &capturingMailer{})

	_, err := svc.Signup(ctx, &dto.SignupRequest{Username: "carol", Email: "carol@uni.edu", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, &dto.SignupRequest{Username: "carol2", Email: "carol@uni.edu", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	_, err = svc.Signup(ctx, &dto.SignupRequest{Username: "carol", Email: "other@uni.edu", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrUsernameAlreadyExists)

	_, err = svc.Signup(ctx, &dto.SignupRequest{Username: "dave", Email: "dave@uni.edu", Password: "lettersonly"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	mailer := &capturingMailer{}
	svc := newTestAuthService(newMemUsers(), mailer)

	_, err := svc.Signup(ctx, &dto.SignupRequest{Username: "erin", Email: "erin@uni.edu", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.LoginRequest{Identifier: "erin", Password: "nope12345"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Identifier: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestGoogleUsername(t *testing.T) {
	assert.Equal(t, "jane.doe", googleUsername("jane.doe@gmail.com"))
	assert.Equal(t, "ab_", googleUsername("a+b@gmail.com"))
	assert.Len(t, googleUsername("averyveryveryverylongaddress@gmail.com"), 22)
}
