package services

import (
	"context"
	"mime/multipart"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/repositories"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/filestorage"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/sanitize"
)

// UserService defines the interface for profile operations
type UserService interface {
	GetProfile(ctx context.Context, userID, viewerID int64) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	UpdateProfilePicture(ctx context.Context, userID int64, fileHeader *multipart.FileHeader) (*dto.ProfilePictureResponse, error)
}

type userServiceImpl struct {
	userRepo    repositories.IUserRepository
	fileStorage filestorage.FileStorage
	relayer     Relayer
	presence    PresenceStore
	logger      zerolog.Logger
}

// NewUserService creates a new UserService. presence may be nil.
func NewUserService(
	userRepo repositories.IUserRepository,
	fileStorage filestorage.FileStorage,
	relayer Relayer,
	presence PresenceStore,
	logger zerolog.Logger,
) UserService {
	if relayer == nil {
		relayer = nopRelayer{}
	}
	return &userServiceImpl{
		userRepo:    userRepo,
		fileStorage: fileStorage,
		relayer:     relayer,
		presence:    presence,
		logger:      logger,
	}
}

// isOnline consults the local registry first and the shared store after
func (s *userServiceImpl) isOnline(ctx context.Context, userID int64) bool {
	if s.relayer.IsOnline(userID) {
		return true
	}
	if s.presence == nil {
		return false
	}
	online, err := s.presence.IsOnline(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("userID", userID).Msg("Presence lookup failed")
		return false
	}
	return online
}

// GetProfile returns a user's profile; the email is only shown to its owner
func (s *userServiceImpl) GetProfile(ctx context.Context, userID, viewerID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user, userID == viewerID)
	resp.IsOnline = s.isOnline(ctx, userID)
	return &resp, nil
}

// UpdateProfile stores university, department and interests
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	interests := make([]string, 0, len(req.FieldsOfInterest))
	for _, f := range req.FieldsOfInterest {
		if clean := sanitize.Text(f); clean != "" {
			interests = append(interests, clean)
		}
	}

	user, err := s.userRepo.UpdateProfile(ctx, userID,
		sanitize.Text(req.UniversityName), sanitize.Text(req.Department), interests)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("userID", userID).Bool("completed", user.ProfileCompleted).Msg("Profile updated")
	resp := dto.NewUserResponse(user, true)
	resp.IsOnline = s.isOnline(ctx, userID)
	return &resp, nil
}

// UpdateProfilePicture stores a new picture and removes the previous one
func (s *userServiceImpl) UpdateProfilePicture(ctx context.Context, userID int64, fileHeader *multipart.FileHeader) (*dto.ProfilePictureResponse, error) {
	if _, err := filestorage.CheckExtension(fileHeader.Filename, filestorage.ImageExtensions); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stored, err := s.fileStorage.Save(ctx, filestorage.CategoryProfilePicture, fileHeader)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateProfilePicture(ctx, userID, stored.URL); err != nil {
		_ = s.fileStorage.Delete(ctx, stored.Key)
		return nil, err
	}

	if old := user.ProfilePicture; old != nil && strings.HasPrefix(*old, s.fileStorage.URL("")) {
		if err := s.fileStorage.Delete(ctx, *old); err != nil {
			s.logger.Warn().Err(err).Int64("userID", userID).Msg("Failed to delete previous profile picture")
		}
	}
	return &dto.ProfilePictureResponse{ProfilePicture: stored.URL}, nil
}
