package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/auth"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/repositories"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/sanitize"
)

// ReactionService covers likes, comments, shares and event RSVPs
type ReactionService interface {
	TogglePostLike(ctx context.Context, userID, postID int64) (*dto.LikeResponse, error)
	ToggleCommentLike(ctx context.Context, userID, commentID int64) (*dto.LikeResponse, error)

	AddComment(ctx context.Context, userID, postID int64, req *dto.CreateCommentRequest) (*models.Comment, error)
	ListComments(ctx context.Context, viewerID, postID int64) ([]dto.CommentResponse, error)
	DeleteComment(ctx context.Context, userID, commentID int64) error

	Share(ctx context.Context, userID, postID int64) (*dto.ShareResponse, error)
	GetShared(ctx context.Context, viewerID int64, token string) (*dto.PostResponse, error)

	RSVP(ctx context.Context, userID, postID int64, status models.RSVPStatus) (*models.EventAttendee, error)
	CancelRSVP(ctx context.Context, userID, postID int64) error
	MyRSVP(ctx context.Context, userID, postID int64) (*models.EventAttendee, error)
	Attendees(ctx context.Context, postID int64, status *models.RSVPStatus) ([]models.EventAttendee, error)
	RSVPCounts(ctx context.Context, postID int64) (*dto.RSVPCountsResponse, error)
}

type reactionServiceImpl struct {
	postRepo      repositories.IPostRepository
	likeRepo      repositories.ILikeRepository
	commentRepo   repositories.ICommentRepository
	shareRepo     repositories.IShareRepository
	rsvpRepo      repositories.IRSVPRepository
	posts         PostService
	authz         *auth.AuthorizationService
	notifications NotificationService
	shareBaseURL  string
	logger        zerolog.Logger
}

// NewReactionService creates a new ReactionService. shareBaseURL prefixes share links.
func NewReactionService(
	postRepo repositories.IPostRepository,
	likeRepo repositories.ILikeRepository,
	commentRepo repositories.ICommentRepository,
	shareRepo repositories.IShareRepository,
	rsvpRepo repositories.IRSVPRepository,
	posts PostService,
	authz *auth.AuthorizationService,
	notifications NotificationService,
	shareBaseURL string,
	logger zerolog.Logger,
) ReactionService {
	return &reactionServiceImpl{
		postRepo:      postRepo,
		likeRepo:      likeRepo,
		commentRepo:   commentRepo,
		shareRepo:     shareRepo,
		rsvpRepo:      rsvpRepo,
		posts:         posts,
		authz:         authz,
		notifications: notifications,
		shareBaseURL:  strings.TrimRight(shareBaseURL, "/"),
		logger:        logger,
	}
}

// TogglePostLike likes or unlikes a post; a new like notifies the owner
func (s *reactionServiceImpl) TogglePostLike(ctx context.Context, userID, postID int64) (*dto.LikeResponse, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked, count, err := s.likeRepo.TogglePostLike(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if liked {
		s.notifications.Notify(ctx, post.UserID, userID, models.NotificationLike, &post.ID)
	}
	return &dto.LikeResponse{Liked: liked, LikeCount: count}, nil
}

// ToggleCommentLike likes or unlikes a comment; a new like notifies its author
func (s *reactionServiceImpl) ToggleCommentLike(ctx context.Context, userID, commentID int64) (*dto.LikeResponse, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}

	liked, count, err := s.likeRepo.ToggleCommentLike(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}
	if liked {
		s.notifications.Notify(ctx, comment.UserID, userID, models.NotificationLike, &comment.PostID)
	}
	return &dto.LikeResponse{Liked: liked, LikeCount: count}, nil
}

// AddComment adds a root comment or a reply. Replies to replies are refused.
func (s *reactionServiceImpl) AddComment(ctx context.Context, userID, postID int64, req *dto.CreateCommentRequest) (*models.Comment, error) {
	content := sanitize.Text(req.Content)
	if content == "" {
		return nil, apperrors.NewBadRequestError("Comment cannot be empty")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	var parent *models.Comment
	if req.ParentID != nil {
		if parent, err = s.commentRepo.GetByID(ctx, *req.ParentID); err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, apperrors.NewBadRequestError("Parent comment does not belong to this post")
		}
		if parent.IsReply() {
			return nil, apperrors.Wrap(apperrors.ErrMaxCommentDepth, "Max depth reached")
		}
	}

	comment := &models.Comment{PostID: postID, UserID: userID, ParentID: req.ParentID, Content: content}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if parent != nil {
		s.notifications.Notify(ctx, parent.UserID, userID, models.NotificationReply, &post.ID)
	} else {
		s.notifications.Notify(ctx, post.UserID, userID, models.NotificationComment, &post.ID)
	}

	// reload to pick up the author block
	if saved, err := s.commentRepo.GetByID(ctx, comment.ID); err == nil {
		return saved, nil
	}
	return comment, nil
}

// ListComments returns root comments in order with their replies nested
func (s *reactionServiceImpl) ListComments(ctx context.Context, viewerID, postID int64) ([]dto.CommentResponse, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	liked, err := s.likeRepo.CommentsLikedByUser(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}

	roots := []dto.CommentResponse{}
	index := make(map[int64]int)
	for _, c := range comments {
		if c.IsReply() {
			continue
		}
		index[c.ID] = len(roots)
		roots = append(roots, dto.CommentResponse{
			Comment: *c, TotalLikes: c.LikeCount, UserLiked: liked[c.ID], Replies: []dto.CommentResponse{},
		})
	}
	for _, c := range comments {
		if !c.IsReply() {
			continue
		}
		i, ok := index[*c.ParentID]
		if !ok {
			continue
		}
		roots[i].Replies = append(roots[i].Replies, dto.CommentResponse{
			Comment: *c, TotalLikes: c.LikeCount, UserLiked: liked[c.ID], Replies: []dto.CommentResponse{},
		})
	}
	return roots, nil
}

// DeleteComment lets the author or the post owner remove a comment
func (s *reactionServiceImpl) DeleteComment(ctx context.Context, userID, commentID int64) error {
	if _, err := s.authz.CanDeleteComment(ctx, commentID, userID); err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, commentID)
}

// Share issues a share token for the post
func (s *reactionServiceImpl) Share(ctx context.Context, userID, postID int64) (*dto.ShareResponse, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	share := &models.Share{UserID: userID, PostID: postID, ShareToken: uuid.NewString()}
	if err := s.shareRepo.Create(ctx, share); err != nil {
		return nil, err
	}
	s.notifications.Notify(ctx, post.UserID, userID, models.NotificationShare, &post.ID)

	return &dto.ShareResponse{
		ShareToken: share.ShareToken,
		ShareLink:  s.shareBaseURL + "/share/" + share.ShareToken,
	}, nil
}

// GetShared resolves a share token to its post
func (s *reactionServiceImpl) GetShared(ctx context.Context, viewerID int64, token string) (*dto.PostResponse, error) {
	share, err := s.shareRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.posts.Get(ctx, viewerID, share.PostID)
}

// eventOf loads an event post and returns its event id
func (s *reactionServiceImpl) eventOf(ctx context.Context, postID int64) (int64, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return 0, err
	}
	if post.PostType != models.PostTypeEvent || post.Event == nil {
		return 0, apperrors.Wrap(apperrors.ErrNotAnEvent, "This post is not an event")
	}
	return post.Event.ID, nil
}

func (s *reactionServiceImpl) RSVP(ctx context.Context, userID, postID int64, status models.RSVPStatus) (*models.EventAttendee, error) {
	if !status.Valid() {
		return nil, apperrors.NewBadRequestError("Status must be going or interested")
	}
	eventID, err := s.eventOf(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.rsvpRepo.Upsert(ctx, eventID, userID, status)
}

func (s *reactionServiceImpl) CancelRSVP(ctx context.Context, userID, postID int64) error {
	eventID, err := s.eventOf(ctx, postID)
	if err != nil {
		return err
	}
	return s.rsvpRepo.Delete(ctx, eventID, userID)
}

func (s *reactionServiceImpl) MyRSVP(ctx context.Context, userID, postID int64) (*models.EventAttendee, error) {
	eventID, err := s.eventOf(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.rsvpRepo.Get(ctx, eventID, userID)
}

func (s *reactionServiceImpl) Attendees(ctx context.Context, postID int64, status *models.RSVPStatus) ([]models.EventAttendee, error) {
	if status != nil && !status.Valid() {
		return nil, apperrors.NewBadRequestError("Status must be going or interested")
	}
	eventID, err := s.eventOf(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.rsvpRepo.List(ctx, eventID, status)
}

func (s *reactionServiceImpl) RSVPCounts(ctx context.Context, postID int64) (*dto.RSVPCountsResponse, error) {
	eventID, err := s.eventOf(ctx, postID)
	if err != nil {
		return nil, err
	}
	going, interested, err := s.rsvpRepo.Counts(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &dto.RSVPCountsResponse{Going: going, Interested: interested}, nil
}
