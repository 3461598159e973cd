package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/dberrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/logger"
)

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	Exists(ctx context.Context, id int64) (bool, error)

	// Verification and credentials
	SetOTP(ctx context.Context, userID int64, code string, expiry time.Time, purpose models.OTPPurpose) error
	MarkVerified(ctx context.Context, userID int64) error
	UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error

	// Profile
	UpdateProfile(ctx context.Context, userID int64, university, department string, interests []string) (*models.User, error)
	UpdateProfilePicture(ctx context.Context, userID int64, url string) error

	// Lookup
	GetSummaries(ctx context.Context, ids []int64) ([]models.UserSummary, error)
	Search(ctx context.Context, keyword string, limit int) ([]models.UserSummary, error)
	ListAll(ctx context.Context, limit, offset int) ([]*models.User, error)
}

const (
	constraintUsersEmail    = "users_email_key"
	constraintUsersUsername = "users_username_key"
)

var userColumns = []string{
	"id", "username", "email", "hashed_password", "is_active", "is_verified",
	"otp", "otp_expiry", "otp_purpose", "profile_picture", "university_name",
	"department", "fields_of_interest", "profile_completed", "auth_provider",
	"created_at", "updated_at",
}

// UserRepository handles user database operations
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.Password, &u.IsActive, &u.IsVerified,
		&u.OTP, &u.OTPExpiry, &u.OTPPurpose, &u.ProfilePicture, &u.UniversityName,
		&u.Department, &u.FieldsOfInterest, &u.ProfileCompleted, &u.AuthProvider,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := psql.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	u, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if dberrors.IsNoRows(err) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user row")
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return u, nil
}

// Create inserts a new user and fills its generated fields
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.FieldsOfInterest == nil {
		user.FieldsOfInterest = []string{}
	}
	if user.AuthProvider == "" {
		user.AuthProvider = "local"
	}

	sql, args, err := psql.Insert("users").
		Columns("username", "email", "hashed_password", "is_active", "is_verified",
			"otp", "otp_expiry", "otp_purpose", "profile_picture", "fields_of_interest", "auth_provider").
		Values(user.Username, strings.ToLower(user.Email), user.Password, true, user.IsVerified,
			user.OTP, user.OTPExpiry, user.OTPPurpose, user.ProfilePicture, user.FieldsOfInterest, user.AuthProvider).
		Suffix("RETURNING id, is_active, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return fmt.Errorf("failed to build create user query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, constraintUsersEmail):
			return apperrors.ErrEmailAlreadyExists
		case dberrors.IsDuplicateConstraintError(err, constraintUsersUsername):
			return apperrors.ErrUsernameAlreadyExists
		}
		logger.Error().Err(err).Str("username", user.Username).Msg("Error executing create user query")
		return fmt.Errorf("error creating user: %w", err)
	}
	user.Email = strings.ToLower(user.Email)
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
}

// GetByIdentifier retrieves a user by username or email
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	return r.getOne(ctx, squirrel.Or{
		squirrel.Eq{"username": identifier},
		squirrel.Eq{"email": strings.ToLower(identifier)},
	})
}

// Exists reports whether a user with id exists
func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking user: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) update(ctx context.Context, userID int64, values map[string]interface{}) error {
	values["updated_at"] = time.Now()
	sql, args, err := psql.Update("users").SetMap(values).Where(squirrel.Eq{"id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing update user query")
		return fmt.Errorf("error updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// SetOTP stores a freshly issued code
func (r *UserRepository) SetOTP(ctx context.Context, userID int64, code string, expiry time.Time, purpose models.OTPPurpose) error {
	return r.update(ctx, userID, map[string]interface{}{
		"otp":         code,
		"otp_expiry":  expiry,
		"otp_purpose": purpose,
	})
}

// MarkVerified flags the email as verified and clears the code
func (r *UserRepository) MarkVerified(ctx context.Context, userID int64) error {
	return r.update(ctx, userID, map[string]interface{}{
		"is_verified": true,
		"otp":         nil,
		"otp_expiry":  nil,
		"otp_purpose": nil,
	})
}

// UpdatePassword replaces the password hash and clears any outstanding code
func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error {
	return r.update(ctx, userID, map[string]interface{}{
		"hashed_password": hashedPassword,
		"otp":             nil,
		"otp_expiry":      nil,
		"otp_purpose":     nil,
	})
}

// UpdateProfile stores the academic profile; it is complete when all three parts are present
func (r *UserRepository) UpdateProfile(ctx context.Context, userID int64, university, department string, interests []string) (*models.User, error) {
	completed := university != "" && department != "" && len(interests) > 0
	if err := r.update(ctx, userID, map[string]interface{}{
		"university_name":    university,
		"department":         department,
		"fields_of_interest": interests,
		"profile_completed":  completed,
	}); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, userID)
}

// UpdateProfilePicture stores the picture URL
func (r *UserRepository) UpdateProfilePicture(ctx context.Context, userID int64, url string) error {
	return r.update(ctx, userID, map[string]interface{}{"profile_picture": url})
}

func scanSummaries(rows pgx.Rows) ([]models.UserSummary, error) {
	defer rows.Close()
	out := []models.UserSummary{}
	for rows.Next() {
		var s models.UserSummary
		if err := rows.Scan(&s.ID, &s.Username, &s.ProfilePicture); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetSummaries loads the compact form of the given users
func (r *UserRepository) GetSummaries(ctx context.Context, ids []int64) ([]models.UserSummary, error) {
	if len(ids) == 0 {
		return []models.UserSummary{}, nil
	}
	sql, args, err := psql.Select("id", "username", "profile_picture").
		From("users").
		Where(squirrel.Eq{"id": ids}).
		OrderBy("username").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user summaries query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error loading user summaries: %w", err)
	}
	return scanSummaries(rows)
}

// Search matches users by username or email
func (r *UserRepository) Search(ctx context.Context, keyword string, limit int) ([]models.UserSummary, error) {
	pattern := "%" + keyword + "%"
	sql, args, err := psql.Select("id", "username", "profile_picture").
		From("users").
		Where(squirrel.Or{
			squirrel.ILike{"username": pattern},
			squirrel.ILike{"email": pattern},
		}).
		OrderBy("username").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user search query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error searching users: %w", err)
	}
	return scanSummaries(rows)
}

// ListAll pages through every user ordered by id
func (r *UserRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.User, error) {
	sql, args, err := psql.Select(userColumns...).From("users").
		OrderBy("id").Limit(uint64(limit)).Offset(uint64(offset)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list users query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
