package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/repositories"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/logger"
)

// AuthorizationService answers ownership questions for content and requests
type AuthorizationService struct {
	postRepo       repositories.IPostRepository
	commentRepo    repositories.ICommentRepository
	connectionRepo repositories.IConnectionRepository
	researchRepo   repositories.IResearchRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(
	postRepo repositories.IPostRepository,
	commentRepo repositories.ICommentRepository,
	connectionRepo repositories.IConnectionRepository,
	researchRepo repositories.IResearchRepository,
) *AuthorizationService {
	return &AuthorizationService{
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		connectionRepo: connectionRepo,
		researchRepo:   researchRepo,
	}
}

// OwnedPost returns the post when userID owns it. Posts of other users are
// reported as not found so that their existence is not revealed to editors.
func (s *AuthorizationService) OwnedPost(ctx context.Context, postID, userID int64) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrPostNotFound) {
			logger.Error().Err(err).Int64("postID", postID).Msg("Error getting post in OwnedPost")
		}
		return nil, err
	}
	if post.UserID != userID {
		return nil, apperrors.ErrPostNotFound
	}
	return post, nil
}

// CanDeleteComment allows the comment author and the owner of the post
func (s *AuthorizationService) CanDeleteComment(ctx context.Context, commentID, userID int64) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID == userID {
		return comment, nil
	}

	post, err := s.postRepo.GetByID(ctx, comment.PostID)
	if err != nil {
		return nil, fmt.Errorf("failed to load post of comment: %w", err)
	}
	if post.UserID != userID {
		return nil, apperrors.NewForbiddenError("You can only delete your own comments or comments on your posts")
	}
	return comment, nil
}

// ValidateConnectionRecipient returns the connection when userID may answer it
func (s *AuthorizationService) ValidateConnectionRecipient(ctx context.Context, connectionID, userID int64) (*models.Connection, error) {
	conn, err := s.connectionRepo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if conn.RecipientID != userID {
		return nil, apperrors.NewForbiddenError("Only the recipient can answer this connection request")
	}
	return conn, nil
}

// ValidateResearchCreator returns the topic when userID created it
func (s *AuthorizationService) ValidateResearchCreator(ctx context.Context, researchID, userID int64) (*models.ResearchCollaboration, error) {
	research, err := s.researchRepo.GetCollaboration(ctx, researchID)
	if err != nil {
		return nil, err
	}
	if research.CreatorID != userID {
		return nil, apperrors.NewForbiddenError("Only the research creator can manage its requests")
	}
	return research, nil
}
