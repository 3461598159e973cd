package services

import (
	"context"
	"mime/multipart"

	"github.com/rs/zerolog"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/auth"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/repositories"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/filestorage"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/helpers"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/metrics"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/moderation"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/sanitize"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/search"
)

// PostService defines the interface for feed operations
type PostService interface {
	CreateText(ctx context.Context, userID int64, content string) (*dto.PostResponse, error)
	CreateMedia(ctx context.Context, userID int64, content string, file *multipart.FileHeader) (*dto.PostResponse, error)
	CreateDocument(ctx context.Context, userID int64, content string, file *multipart.FileHeader) (*dto.PostResponse, error)
	CreateEvent(ctx context.Context, userID int64, form *dto.EventPostForm, image *multipart.FileHeader) (*dto.PostResponse, error)

	List(ctx context.Context, viewerID int64, filter repositories.PostFilter) (*dto.PostListResponse, error)
	Get(ctx context.Context, viewerID, postID int64) (*dto.PostResponse, error)
	ListEvents(ctx context.Context, viewerID int64, page helpers.Page) ([]dto.PostResponse, error)

	UpdateText(ctx context.Context, userID, postID int64, content string) (*dto.PostResponse, error)
	UpdateMedia(ctx context.Context, userID, postID int64, content *string, file *multipart.FileHeader) (*dto.PostResponse, error)
	UpdateDocument(ctx context.Context, userID, postID int64, content *string, file *multipart.FileHeader) (*dto.PostResponse, error)
	UpdateEvent(ctx context.Context, userID, postID int64, form *dto.UpdateEventForm, image *multipart.FileHeader) (*dto.PostResponse, error)
	Delete(ctx context.Context, userID, postID int64) error

	// Decorate attaches viewer-specific flags to posts loaded elsewhere
	Decorate(ctx context.Context, viewerID int64, posts []*models.Post) ([]dto.PostResponse, error)
}

type postServiceImpl struct {
	postRepo       repositories.IPostRepository
	connectionRepo repositories.IConnectionRepository
	authz          *auth.AuthorizationService
	notifications  NotificationService
	fileStorage    filestorage.FileStorage
	moderator      moderation.Checker
	searchIndex    SearchIndex
	metrics        *metrics.Metrics
	logger         zerolog.Logger
}

// NewPostService creates a new PostService. searchIndex may be nil.
func NewPostService(
	postRepo repositories.IPostRepository,
	connectionRepo repositories.IConnectionRepository,
	authz *auth.AuthorizationService,
	notifications NotificationService,
	fileStorage filestorage.FileStorage,
	moderator moderation.Checker,
	searchIndex SearchIndex,
	logger zerolog.Logger,
) PostService {
	if moderator == nil {
		moderator = moderation.Noop{}
	}
	return &postServiceImpl{
		postRepo:       postRepo,
		connectionRepo: connectionRepo,
		authz:          authz,
		notifications:  notifications,
		fileStorage:    fileStorage,
		moderator:      moderator,
		searchIndex:    searchIndex,
		metrics:        metrics.Get(),
		logger:         logger,
	}
}

// moderate rejects flagged text. An unreachable classifier does not block posting.
func (s *postServiceImpl) moderate(ctx context.Context, text string) error {
	flagged, err := s.moderator.IsFlagged(ctx, text)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Moderation check failed, accepting content")
		return nil
	}
	if flagged {
		s.metrics.ModerationRejections.Inc()
		return apperrors.Wrap(apperrors.ErrContentRejected, "Post content was flagged as inappropriate")
	}
	return nil
}

func (s *postServiceImpl) CreateText(ctx context.Context, userID int64, content string) (*dto.PostResponse, error) {
	clean := sanitize.Text(content)
	if clean == "" {
		return nil, apperrors.NewBadRequestError("Post content cannot be empty")
	}
	if err := s.moderate(ctx, clean); err != nil {
		return nil, err
	}
	return s.create(ctx, &models.Post{
		UserID:   userID,
		PostType: models.PostTypeText,
		Content:  &clean,
		Hashtags: helpers.ExtractHashtags(clean),
	})
}

// saveUpload checks the extension and stores the file
func (s *postServiceImpl) saveUpload(ctx context.Context, file *multipart.FileHeader, category string, allowed []string) (*filestorage.StoredFile, error) {
	if file == nil {
		return nil, apperrors.NewBadRequestError("A file is required")
	}
	if _, err := filestorage.CheckExtension(file.Filename, allowed); err != nil {
		return nil, err
	}
	return s.fileStorage.Save(ctx, category, file)
}

func (s *postServiceImpl) CreateMedia(ctx context.Context, userID int64, content string, file *multipart.FileHeader) (*dto.PostResponse, error) {
	stored, err := s.saveUpload(ctx, file, filestorage.CategoryMedia, filestorage.MediaExtensions)
	if err != nil {
		return nil, err
	}
	post := &models.Post{
		UserID:   userID,
		PostType: models.PostTypeMedia,
		Content:  sanitize.OptionalText(&content),
		Media:    &models.PostMedia{MediaURL: stored.URL, MediaType: stored.Ext},
	}
	resp, err := s.create(ctx, post)
	if err != nil {
		_ = s.fileStorage.Delete(ctx, stored.Key)
	}
	return resp, err
}

func (s *postServiceImpl) CreateDocument(ctx context.Context, userID int64, content string, file *multipart.FileHeader) (*dto.PostResponse, error) {
	stored, err := s.saveUpload(ctx, file, filestorage.CategoryDocument, filestorage.DocumentExtensions)
	if err != nil {
		return nil, err
	}
	post := &models.Post{
		UserID:   userID,
		PostType: models.PostTypeDocument,
		Content:  sanitize.OptionalText(&content),
		Document: &models.PostDocument{DocumentURL: stored.URL, DocumentType: stored.Ext},
	}
	resp, err := s.create(ctx, post)
	if err != nil {
		_ = s.fileStorage.Delete(ctx, stored.Key)
	}
	return resp, err
}

func eventTime(date, clock, zone string) (*models.Event, error) {
	at, err := helpers.LocalToUTC(date, clock, zone)
	if err != nil {
		return nil, apperrors.NewBadRequestError("Invalid event date, time or timezone")
	}
	return &models.Event{EventDatetime: at}, nil
}

func (s *postServiceImpl) CreateEvent(ctx context.Context, userID int64, form *dto.EventPostForm, image *multipart.FileHeader) (*dto.PostResponse, error) {
	event, err := eventTime(form.EventDate, form.EventTime, form.UserTimezone)
	if err != nil {
		return nil, err
	}
	event.Title = sanitize.Text(form.Title)
	if event.Title == "" {
		return nil, apperrors.NewBadRequestError("Event title cannot be empty")
	}
	event.Description = sanitize.OptionalText(&form.Description)
	event.Location = sanitize.OptionalText(&form.Location)

	var stored *filestorage.StoredFile
	if image != nil {
		if stored, err = s.saveUpload(ctx, image, filestorage.CategoryEventImage, filestorage.ImageExtensions); err != nil {
			return nil, err
		}
		event.ImageURL = &stored.URL
	}

	post := &models.Post{
		UserID:   userID,
		PostType: models.PostTypeEvent,
		Content:  sanitize.OptionalText(&form.Content),
		Event:    event,
	}
	resp, err := s.create(ctx, post)
	if err != nil && stored != nil {
		_ = s.fileStorage.Delete(ctx, stored.Key)
	}
	return resp, err
}

// create persists the post, then notifies friends and indexes it.
// Neither follow-up can undo the post.
func (s *postServiceImpl) create(ctx context.Context, post *models.Post) (*dto.PostResponse, error) {
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	saved, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int64("postID", saved.ID).Int64("userID", saved.UserID).Str("type", string(saved.PostType)).Msg("Post created")

	friends, err := s.connectionRepo.ListFriendIDs(ctx, saved.UserID)
	if err != nil {
		s.logger.Error().Err(err).Int64("postID", saved.ID).Msg("Failed to load friends for post fan-out")
	} else {
		s.notifications.NotifyMany(ctx, friends, saved.UserID, models.NotificationNewPost, &saved.ID)
	}
	s.index(ctx, saved)

	return &dto.PostResponse{Post: *saved}, nil
}

func (s *postServiceImpl) index(ctx context.Context, post *models.Post) {
	if s.searchIndex == nil {
		return
	}
	doc := search.PostDocument{
		ID:        post.ID,
		UserID:    post.UserID,
		PostType:  string(post.PostType),
		Content:   helpers.Deref(post.Content),
		CreatedAt: post.CreatedAt,
	}
	if post.Author != nil {
		doc.Username = post.Author.Username
	}
	if err := s.searchIndex.IndexPost(ctx, doc); err != nil {
		s.logger.Warn().Err(err).Int64("postID", post.ID).Msg("Failed to index post")
	}
}

func (s *postServiceImpl) Decorate(ctx context.Context, viewerID int64, posts []*models.Post) ([]dto.PostResponse, error) {
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	liked, err := s.postRepo.LikedByUser(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}
	counts, err := s.postRepo.CommentCounts(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.PostResponse, len(posts))
	for i, p := range posts {
		out[i] = dto.PostResponse{Post: *p, UserLiked: liked[p.ID], CommentCount: counts[p.ID]}
	}
	return out, nil
}

func (s *postServiceImpl) List(ctx context.Context, viewerID int64, filter repositories.PostFilter) (*dto.PostListResponse, error) {
	limit := filter.Limit
	filter.Limit = limit + 1

	posts, err := s.postRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}

	items, err := s.Decorate(ctx, viewerID, posts)
	if err != nil {
		return nil, err
	}
	return &dto.PostListResponse{
		Posts:      items,
		Pagination: dto.PaginationInfo{Limit: limit, Offset: filter.Offset, HasMore: hasMore},
	}, nil
}

func (s *postServiceImpl) Get(ctx context.Context, viewerID, postID int64) (*dto.PostResponse, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	items, err := s.Decorate(ctx, viewerID, []*models.Post{post})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *postServiceImpl) ListEvents(ctx context.Context, viewerID int64, page helpers.Page) ([]dto.PostResponse, error) {
	posts, err := s.postRepo.ListEvents(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return s.Decorate(ctx, viewerID, posts)
}

// ownedOfType loads a post the caller owns and checks its kind
func (s *postServiceImpl) ownedOfType(ctx context.Context, userID, postID int64, typ models.PostType) (*models.Post, error) {
	post, err := s.authz.OwnedPost(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if post.PostType != typ {
		return nil, apperrors.NewBadRequestError("Post is not a " + string(typ) + " post")
	}
	return post, nil
}

// update saves post and removes a replaced file once the row points elsewhere
func (s *postServiceImpl) update(ctx context.Context, viewerID int64, post *models.Post, replaced string) (*dto.PostResponse, error) {
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	if replaced != "" {
		if err := s.fileStorage.Delete(ctx, replaced); err != nil {
			s.logger.Warn().Err(err).Int64("postID", post.ID).Msg("Failed to delete replaced file")
		}
	}
	s.index(ctx, post)
	return s.Get(ctx, viewerID, post.ID)
}

func (s *postServiceImpl) UpdateText(ctx context.Context, userID, postID int64, content string) (*dto.PostResponse, error) {
	post, err := s.ownedOfType(ctx, userID, postID, models.PostTypeText)
	if err != nil {
		return nil, err
	}
	clean := sanitize.Text(content)
	if clean == "" {
		return nil, apperrors.NewBadRequestError("Post content cannot be empty")
	}
	if err := s.moderate(ctx, clean); err != nil {
		return nil, err
	}
	post.Content = &clean
	return s.update(ctx, userID, post, "")
}

func (s *postServiceImpl) UpdateMedia(ctx context.Context, userID, postID int64, content *string, file *multipart.FileHeader) (*dto.PostResponse, error) {
	post, err := s.ownedOfType(ctx, userID, postID, models.PostTypeMedia)
	if err != nil {
		return nil, err
	}
	if content != nil {
		post.Content = sanitize.OptionalText(content)
	}

	var replaced string
	if file != nil {
		stored, err := s.saveUpload(ctx, file, filestorage.CategoryMedia, filestorage.MediaExtensions)
		if err != nil {
			return nil, err
		}
		replaced = post.Media.MediaURL
		post.Media.MediaURL, post.Media.MediaType = stored.URL, stored.Ext
	}
	return s.update(ctx, userID, post, replaced)
}

func (s *postServiceImpl) UpdateDocument(ctx context.Context, userID, postID int64, content *string, file *multipart.FileHeader) (*dto.PostResponse, error) {
	post, err := s.ownedOfType(ctx, userID, postID, models.PostTypeDocument)
	if err != nil {
		return nil, err
	}
	if content != nil {
		post.Content = sanitize.OptionalText(content)
	}

	var replaced string
	if file != nil {
		stored, err := s.saveUpload(ctx, file, filestorage.CategoryDocument, filestorage.DocumentExtensions)
		if err != nil {
			return nil, err
		}
		replaced = post.Document.DocumentURL
		post.Document.DocumentURL, post.Document.DocumentType = stored.URL, stored.Ext
	}
	return s.update(ctx, userID, post, replaced)
}

func (s *postServiceImpl) UpdateEvent(ctx context.Context, userID, postID int64, form *dto.UpdateEventForm, image *multipart.FileHeader) (*dto.PostResponse, error) {
	post, err := s.ownedOfType(ctx, userID, postID, models.PostTypeEvent)
	if err != nil {
		return nil, err
	}
	event := post.Event

	if form.Content != nil {
		post.Content = sanitize.OptionalText(form.Content)
	}
	if form.Title != nil {
		title := sanitize.Text(*form.Title)
		if title == "" {
			return nil, apperrors.NewBadRequestError("Event title cannot be empty")
		}
		event.Title = title
	}
	if form.Description != nil {
		event.Description = sanitize.OptionalText(form.Description)
	}
	if form.Location != nil {
		event.Location = sanitize.OptionalText(form.Location)
	}
	if form.EventDate != "" || form.EventTime != "" {
		if form.EventDate == "" || form.EventTime == "" {
			return nil, apperrors.NewBadRequestError("event_date and event_time must be provided together")
		}
		at, err := eventTime(form.EventDate, form.EventTime, form.UserTimezone)
		if err != nil {
			return nil, err
		}
		event.EventDatetime = at.EventDatetime
	}

	var replaced string
	if image != nil {
		stored, err := s.saveUpload(ctx, image, filestorage.CategoryEventImage, filestorage.ImageExtensions)
		if err != nil {
			return nil, err
		}
		replaced = helpers.Deref(event.ImageURL)
		event.ImageURL = &stored.URL
	}
	return s.update(ctx, userID, post, replaced)
}

// Delete removes an owned post, its stored files and its index entry
func (s *postServiceImpl) Delete(ctx context.Context, userID, postID int64) error {
	post, err := s.authz.OwnedPost(ctx, postID, userID)
	if err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	var files []string
	switch {
	case post.Media != nil:
		files = append(files, post.Media.MediaURL)
	case post.Document != nil:
		files = append(files, post.Document.DocumentURL)
	case post.Event != nil && post.Event.ImageURL != nil:
		files = append(files, *post.Event.ImageURL)
	}
	for _, f := range files {
		if err := s.fileStorage.Delete(ctx, f); err != nil {
			s.logger.Warn().Err(err).Int64("postID", postID).Msg("Failed to delete post file")
		}
	}

	if s.searchIndex != nil {
		if err := s.searchIndex.DeletePost(ctx, postID); err != nil {
			s.logger.Warn().Err(err).Int64("postID", postID).Msg("Failed to remove post from index")
		}
	}
	s.logger.Info().Int64("postID", postID).Int64("userID", userID).Msg("Post deleted")
	return nil
}
