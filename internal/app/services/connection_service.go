package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/auth"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/repositories"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/helpers"
)

// ConnectionService manages friend requests
type ConnectionService interface {
	SendRequest(ctx context.Context, requesterID, targetID int64) (*models.Connection, error)
	Accept(ctx context.Context, connectionID, userID int64) (*models.Connection, error)
	Reject(ctx context.Context, connectionID, userID int64) (*models.Connection, error)
	ListFriends(ctx context.Context, userID int64) ([]models.UserSummary, error)
	ListIncoming(ctx context.Context, userID int64) ([]models.Connection, error)
	ListAvailableUsers(ctx context.Context, userID int64, page helpers.Page) ([]models.UserSummary, error)
}

type connectionServiceImpl struct {
	connectionRepo repositories.IConnectionRepository
	userRepo       repositories.IUserRepository
	authz          *auth.AuthorizationService
	notifications  NotificationService
	logger         zerolog.Logger
}

// NewConnectionService creates a new ConnectionService
func NewConnectionService(
	connectionRepo repositories.IConnectionRepository,
	userRepo repositories.IUserRepository,
	authz *auth.AuthorizationService,
	notifications NotificationService,
	logger zerolog.Logger,
) ConnectionService {
	return &connectionServiceImpl{
		connectionRepo: connectionRepo,
		userRepo:       userRepo,
		authz:          authz,
		notifications:  notifications,
		logger:         logger,
	}
}

// SendRequest creates a pending request. Only one pending or accepted edge
// may exist per pair, whichever side sent it.
func (s *connectionServiceImpl) SendRequest(ctx context.Context, requesterID, targetID int64) (*models.Connection, error) {
	if requesterID == targetID {
		return nil, apperrors.NewBadRequestError("You cannot connect with yourself")
	}

	exists, err := s.userRepo.Exists(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.ErrUserNotFound
	}

	existing, err := s.connectionRepo.FindActiveBetween(ctx, requesterID, targetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrConnectionExists
	}

	conn, err := s.connectionRepo.Create(ctx, requesterID, targetID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("requesterID", requesterID).Int64("recipientID", targetID).Msg("Connection request sent")
	s.notifications.Notify(ctx, targetID, requesterID, models.NotificationConnectionRequest, nil)
	return conn, nil
}

// Accept moves a pending request to accepted; only its recipient may do so
func (s *connectionServiceImpl) Accept(ctx context.Context, connectionID, userID int64) (*models.Connection, error) {
	conn, err := s.answer(ctx, connectionID, userID, models.ConnectionAccepted)
	if err != nil {
		return nil, err
	}
	s.notifications.Notify(ctx, conn.RequesterID, userID, models.NotificationConnectionAccepted, nil)
	return conn, nil
}

// Reject moves a pending request to rejected; the pair may connect again later
func (s *connectionServiceImpl) Reject(ctx context.Context, connectionID, userID int64) (*models.Connection, error) {
	return s.answer(ctx, connectionID, userID, models.ConnectionRejected)
}

func (s *connectionServiceImpl) answer(ctx context.Context, connectionID, userID int64, status models.ConnectionStatus) (*models.Connection, error) {
	conn, err := s.authz.ValidateConnectionRecipient(ctx, connectionID, userID)
	if err != nil {
		return nil, err
	}
	if conn.Status != models.ConnectionPending {
		return nil, apperrors.ErrConnectionNotPending
	}

	updated, err := s.connectionRepo.UpdateStatus(ctx, connectionID, status)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("connectionID", connectionID).Str("status", string(status)).Msg("Connection request answered")
	return updated, nil
}

func (s *connectionServiceImpl) ListFriends(ctx context.Context, userID int64) ([]models.UserSummary, error) {
	return s.connectionRepo.ListFriends(ctx, userID)
}

func (s *connectionServiceImpl) ListIncoming(ctx context.Context, userID int64) ([]models.Connection, error) {
	return s.connectionRepo.ListIncoming(ctx, userID)
}

func (s *connectionServiceImpl) ListAvailableUsers(ctx context.Context, userID int64, page helpers.Page) ([]models.UserSummary, error) {
	return s.connectionRepo.ListAvailableUsers(ctx, userID, page.Limit, page.Offset)
}
