package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/repositories"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/helpers"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/metrics"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/search"
)

const (
	searchResultLimit = 20
	reindexBatchSize  = 200
)

// SearchService finds posts and users by keyword
type SearchService interface {
	Search(ctx context.Context, viewerID int64, keyword string) (*dto.SearchResponse, error)
	// Reindex pushes every post and user into the search index
	Reindex(ctx context.Context) (posts int, users int, err error)
}

type searchServiceImpl struct {
	postRepo    repositories.IPostRepository
	userRepo    repositories.IUserRepository
	posts       PostService
	searchIndex SearchIndex
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewSearchService creates a new SearchService. Without a searchIndex all
// queries go to Postgres.
func NewSearchService(
	postRepo repositories.IPostRepository,
	userRepo repositories.IUserRepository,
	posts PostService,
	searchIndex SearchIndex,
	logger zerolog.Logger,
) SearchService {
	return &searchServiceImpl{
		postRepo:    postRepo,
		userRepo:    userRepo,
		posts:       posts,
		searchIndex: searchIndex,
		metrics:     metrics.Get(),
		logger:      logger,
	}
}

func (s *searchServiceImpl) Search(ctx context.Context, viewerID int64, keyword string) (*dto.SearchResponse, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperrors.NewBadRequestError("keyword is required")
	}

	var (
		posts []*models.Post
		users []models.UserSummary
		err   error
	)
	if s.searchIndex != nil {
		posts, users, err = s.searchIndexed(ctx, keyword)
		if err != nil {
			s.logger.Warn().Err(err).Str("keyword", keyword).Msg("Search index query failed, falling back to database")
		}
	}
	if s.searchIndex == nil || err != nil {
		s.metrics.SearchQueriesTotal.WithLabelValues("postgres").Inc()
		if posts, err = s.postRepo.Search(ctx, keyword, searchResultLimit); err != nil {
			return nil, err
		}
		if users, err = s.userRepo.Search(ctx, keyword, searchResultLimit); err != nil {
			return nil, err
		}
	}

	decorated, err := s.posts.Decorate(ctx, viewerID, posts)
	if err != nil {
		return nil, err
	}
	return &dto.SearchResponse{Posts: decorated, Users: users}, nil
}

// searchIndexed resolves index hits against the database, keeping hit order
func (s *searchServiceImpl) searchIndexed(ctx context.Context, keyword string) ([]*models.Post, []models.UserSummary, error) {
	s.metrics.SearchQueriesTotal.WithLabelValues("elasticsearch").Inc()

	postIDs, err := s.searchIndex.SearchPosts(ctx, keyword, searchResultLimit)
	if err != nil {
		return nil, nil, err
	}
	userIDs, err := s.searchIndex.SearchUsers(ctx, keyword, searchResultLimit)
	if err != nil {
		return nil, nil, err
	}

	posts, err := s.postRepo.GetByIDs(ctx, postIDs)
	if err != nil {
		return nil, nil, err
	}
	summaries, err := s.userRepo.GetSummaries(ctx, userIDs)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[int64]models.UserSummary, len(summaries))
	for _, u := range summaries {
		byID[u.ID] = u
	}
	users := make([]models.UserSummary, 0, len(summaries))
	for _, id := range userIDs {
		if u, ok := byID[id]; ok {
			users = append(users, u)
		}
	}
	return posts, users, nil
}

func (s *searchServiceImpl) Reindex(ctx context.Context) (int, int, error) {
	if s.searchIndex == nil {
		return 0, 0, apperrors.Wrap(apperrors.ErrServiceUnavailable, "Search index is not enabled")
	}

	posts := 0
	for offset := 0; ; offset += reindexBatchSize {
		batch, err := s.postRepo.List(ctx, repositories.PostFilter{Limit: reindexBatchSize, Offset: offset})
		if err != nil {
			return posts, 0, err
		}
		for _, p := range batch {
			if p.PostType == models.PostTypeEvent {
				continue
			}
			doc := search.PostDocument{
				ID:        p.ID,
				UserID:    p.UserID,
				PostType:  string(p.PostType),
				Content:   helpers.Deref(p.Content),
				CreatedAt: p.CreatedAt,
			}
			if p.Author != nil {
				doc.Username = p.Author.Username
			}
			if err := s.searchIndex.IndexPost(ctx, doc); err != nil {
				return posts, 0, err
			}
			posts++
		}
		if len(batch) < reindexBatchSize {
			break
		}
	}

	users := 0
	for offset := 0; ; offset += reindexBatchSize {
		batch, err := s.userRepo.ListAll(ctx, reindexBatchSize, offset)
		if err != nil {
			return posts, users, err
		}
		for _, u := range batch {
			if err := s.searchIndex.IndexUser(ctx, search.UserDocument{ID: u.ID, Username: u.Username, Email: u.Email}); err != nil {
				return posts, users, err
			}
			users++
		}
		if len(batch) < reindexBatchSize {
			break
		}
	}

	s.logger.Info().Int("posts", posts).Int("users", users).Msg("Search index rebuilt")
	return posts, users, nil
}
