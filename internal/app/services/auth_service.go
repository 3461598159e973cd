package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/repositories"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/auth"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/email"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/search"
)

// AuthService handles registration, verification and token issuance
type AuthService interface {
	Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*dto.AuthResponse, error)
	ResendOTP(ctx context.Context, emailAddr string) error
	ForgotPassword(ctx context.Context, emailAddr string) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error

	GoogleEnabled() bool
	GoogleAuthURL(state string) string
	GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error)
}

// GoogleOAuth is the external identity provider used for Google sign-in
type GoogleOAuth interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GoogleUser, error)
}

type authServiceImpl struct {
	userRepo    repositories.IUserRepository
	tokenRepo   repositories.ITokenRepository
	jwtService  *auth.JWTService
	otp         *auth.OTPGenerator
	mailer      email.EmailService
	google      GoogleOAuth
	searchIndex SearchIndex
	now         func() time.Time
	logger      zerolog.Logger
}

// NewAuthService creates a new AuthService. google and searchIndex may be nil.
func NewAuthService(
	userRepo repositories.IUserRepository,
	tokenRepo repositories.ITokenRepository,
	jwtService *auth.JWTService,
	otp *auth.OTPGenerator,
	mailer email.EmailService,
	google GoogleOAuth,
	searchIndex SearchIndex,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		jwtService:  jwtService,
		otp:         otp,
		mailer:      mailer,
		google:      google,
		searchIndex: searchIndex,
		now:         time.Now,
		logger:      logger,
	}
}

// Signup creates an unverified account and emails a verification code
func (s *authServiceImpl) Signup(ctx context.Context, req *dto.SignupRequest) (*dto.SignupResponse, error) {
	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	code, expiry, err := s.otp.Generate(req.Email)
	if err != nil {
		return nil, err
	}
	purpose := models.OTPPurposeVerify

	user := &models.User{
		Username:   strings.TrimSpace(req.Username),
		Email:      strings.TrimSpace(req.Email),
		Password:   hashed,
		IsVerified: false,
		OTP:        &code,
		OTPExpiry:  &expiry,
		OTPPurpose: &purpose,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.sendOTP(ctx, user, code, email.PurposeVerification)
	s.indexUser(ctx, user)

	s.logger.Info().Int64("userID", user.ID).Str("username", user.Username).Msg("User signed up")
	return &dto.SignupResponse{
		UserID:  user.ID,
		Email:   user.Email,
		Message: "Verification code sent to your email",
	}, nil
}

// Login authenticates by username or email. Unverified accounts are refused.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}
	if !user.IsVerified {
		return nil, apperrors.Wrap(apperrors.ErrEmailNotVerified, "Please verify your email before logging in")
	}

	return s.authResponse(ctx, user)
}

// checkOTP validates a stored code against a submitted one
func (s *authServiceImpl) checkOTP(user *models.User, submitted string, purpose models.OTPPurpose) error {
	if user.OTP == nil || user.OTPPurpose == nil || *user.OTPPurpose != purpose {
		return apperrors.Wrap(apperrors.ErrOTPInvalid, "Invalid OTP")
	}
	if user.OTPExpiry == nil || s.now().After(*user.OTPExpiry) {
		return apperrors.Wrap(apperrors.ErrOTPExpired, "OTP has expired")
	}
	if !auth.OTPMatches(*user.OTP, submitted) {
		return apperrors.Wrap(apperrors.ErrOTPInvalid, "Invalid OTP")
	}
	return nil
}

// VerifyOTP marks the email verified and signs the user in
func (s *authServiceImpl) VerifyOTP(ctx context.Context, req *dto.VerifyOTPRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, apperrors.Wrap(apperrors.ErrEmailAlreadyVerified, "Email already verified")
	}
	if err := s.checkOTP(user, req.OTP, models.OTPPurposeVerify); err != nil {
		return nil, err
	}

	if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
		return nil, err
	}
	user.IsVerified = true
	user.OTP, user.OTPExpiry, user.OTPPurpose = nil, nil, nil

	s.logger.Info().Int64("userID", user.ID).Msg("Email verified")
	return s.authResponse(ctx, user)
}

// ResendOTP issues a fresh verification code
func (s *authServiceImpl) ResendOTP(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return apperrors.Wrap(apperrors.ErrEmailAlreadyVerified, "Email already verified")
	}
	return s.issueOTP(ctx, user, models.OTPPurposeVerify, email.PurposeVerification)
}

// ForgotPassword emails a password reset code
func (s *authServiceImpl) ForgotPassword(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}
	return s.issueOTP(ctx, user, models.OTPPurposeReset, email.PurposePasswordReset)
}

func (s *authServiceImpl) issueOTP(ctx context.Context, user *models.User, purpose models.OTPPurpose, mailPurpose email.Purpose) error {
	code, expiry, err := s.otp.Generate(user.Email)
	if err != nil {
		return err
	}
	if err := s.userRepo.SetOTP(ctx, user.ID, code, expiry, purpose); err != nil {
		return err
	}
	s.sendOTP(ctx, user, code, mailPurpose)
	return nil
}

// sendOTP logs delivery failures; the code stays valid and can be resent
func (s *authServiceImpl) sendOTP(ctx context.Context, user *models.User, code string, purpose email.Purpose) {
	if err := s.mailer.SendOTP(ctx, user.Email, user.Username, code, purpose, s.otp.TTL()); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Str("purpose", string(purpose)).Msg("Failed to send OTP email")
	}
}

// ResetPassword sets a new password and revokes every refresh token
func (s *authServiceImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if err := s.checkOTP(user, req.OTP, models.OTPPurposeReset); err != nil {
		return err
	}
	if err := auth.ValidatePasswordStrength(req.NewPassword); err != nil {
		return err
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return err
	}
	if err := s.tokenRepo.RevokeAllUserTokens(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to revoke tokens after password reset")
	}

	s.logger.Info().Int64("userID", user.ID).Msg("Password reset")
	return nil
}

// RefreshToken rotates a refresh token
func (s *authServiceImpl) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	userID, err := s.tokenRepo.GetUserIDByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenExpired) {
			_ = s.tokenRepo.RevokeToken(ctx, refreshToken)
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	// Revoke before issuing so a refresh token is never reusable
	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}
	return s.generateTokenResponse(ctx, user)
}

// Logout revokes a refresh token
func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	return s.tokenRepo.RevokeToken(ctx, refreshToken)
}

func (s *authServiceImpl) GoogleEnabled() bool {
	return s.google != nil
}

func (s *authServiceImpl) GoogleAuthURL(state string) string {
	return s.google.AuthCodeURL(state)
}

// GoogleCallback finds or creates a verified account for the Google identity
func (s *authServiceImpl) GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	if s.google == nil {
		return nil, apperrors.NewResourceNotFoundError("Google sign-in is not configured")
	}

	gUser, err := s.google.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, gUser.Email)
	switch {
	case err == nil:
		if !user.IsVerified {
			if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
				return nil, err
			}
			user.IsVerified = true
		}
	case errors.Is(err, apperrors.ErrUserNotFound):
		if user, err = s.createGoogleUser(ctx, gUser); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return s.authResponse(ctx, user)
}

var usernameStrip = regexp.MustCompile(`[^A-Za-z0-9._\-]`)

// googleUsername derives a valid username from an email local part
func googleUsername(emailAddr string) string {
	local := emailAddr
	if i := strings.IndexByte(local, '@'); i >= 0 {
		local = local[:i]
	}
	local = usernameStrip.ReplaceAllString(local, "")
	if len(local) > 22 {
		local = local[:22]
	}
	for len(local) < 3 {
		local += "_"
	}
	return local
}

func (s *authServiceImpl) createGoogleUser(ctx context.Context, gUser *auth.GoogleUser) (*models.User, error) {
	hashed, err := auth.HashPassword(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	base := googleUsername(gUser.Email)
	user := &models.User{
		Username:     base,
		Email:        gUser.Email,
		Password:     hashed,
		IsVerified:   true,
		AuthProvider: "google",
	}
	if gUser.Picture != "" {
		user.ProfilePicture = &gUser.Picture
	}

	for attempt := 0; ; attempt++ {
		err = s.userRepo.Create(ctx, user)
		if !errors.Is(err, apperrors.ErrUsernameAlreadyExists) || attempt >= 3 {
			break
		}
		user.Username = base + "_" + uuid.NewString()[:6]
	}
	if err != nil {
		return nil, err
	}

	s.indexUser(ctx, user)
	s.logger.Info().Int64("userID", user.ID).Msg("User created from Google sign-in")
	return user, nil
}

func (s *authServiceImpl) indexUser(ctx context.Context, user *models.User) {
	if s.searchIndex == nil {
		return
	}
	doc := search.UserDocument{ID: user.ID, Username: user.Username, Email: user.Email}
	if err := s.searchIndex.IndexUser(ctx, doc); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to index user")
	}
}

func (s *authServiceImpl) authResponse(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	tokens, err := s.generateTokenResponse(ctx, user)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: *tokens, User: dto.NewUserResponse(user, true)}, nil
}

// generateTokenResponse creates and stores a token pair
func (s *authServiceImpl) generateTokenResponse(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	if err := s.tokenRepo.CreateToken(ctx, pair.RefreshToken, user.ID, s.jwtService.GetRefreshTokenExpiry()); err != nil {
		return nil, fmt.Errorf("token saving error: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		TokenType:             "Bearer",
		ExpiresIn:             int64(pair.ExpiresIn),
		RefreshTokenExpiresIn: int64(pair.RefreshExpiresIn),
	}, nil
}
