package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/repositories"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/helpers"
)

// UniversityService builds university group pages
type UniversityService interface {
	GetPage(ctx context.Context, university string) (*dto.UniversityPageResponse, error)
}

type universityServiceImpl struct {
	universityRepo repositories.IUniversityRepository
	logger         zerolog.Logger
}

// NewUniversityService creates a new UniversityService
func NewUniversityService(universityRepo repositories.IUniversityRepository, logger zerolog.Logger) UniversityService {
	return &universityServiceImpl{
		universityRepo: universityRepo,
		logger:         logger,
	}
}

// GetPage returns ErrUniversityNotFound when nobody lists the university
func (s *universityServiceImpl) GetPage(ctx context.Context, university string) (*dto.UniversityPageResponse, error) {
	university = strings.TrimSpace(university)
	if university == "" {
		return nil, apperrors.NewBadRequestError("University name is required")
	}

	members, err := s.universityRepo.ListMembers(ctx, university)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, apperrors.ErrUniversityNotFound
	}

	departments := make(map[string][]dto.UniversityMemberResponse)
	userIDs := make([]int64, 0, len(members))
	for _, m := range members {
		dept := helpers.Deref(m.Department)
		departments[dept] = append(departments[dept], dto.UniversityMemberResponse{
			Username: m.Username,
			Email:    m.Email,
		})
		userIDs = append(userIDs, m.ID)
	}

	tag := helpers.UniversityTag(university)
	postIDs, err := s.universityRepo.PostIDsByTag(ctx, userIDs, tag)
	if err != nil {
		return nil, err
	}

	usage := 0
	hashtag, err := s.universityRepo.GetHashtag(ctx, tag)
	if err != nil {
		s.logger.Warn().Err(err).Str("hashtag", tag).Msg("Failed to load hashtag usage")
	} else if hashtag != nil {
		usage = hashtag.UsageCount
	}

	return &dto.UniversityPageResponse{
		University:   university,
		TotalMembers: len(members),
		Departments:  departments,
		PostIDs:      postIDs,
		Hashtag:      tag,
		HashtagUsage: usage,
	}, nil
}
