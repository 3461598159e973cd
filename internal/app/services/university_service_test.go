package services

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/repositories"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/helpers"
)

type memUniversityUser struct {
	member     models.UniversityMember
	university string
}

type memUniversities struct {
	repositories.IUniversityRepository
	users    []memUniversityUser
	posts    []*models.Post // newest first
	hashtags map[string]int
	tagArg   string
}

func (m *memUniversities) ListMembers(_ context.Context, university string) ([]models.UniversityMember, error) {
	out := []models.UniversityMember{}
	for _, u := range m.users {
		if strings.EqualFold(u.university, university) {
			out = append(out, u.member)
		}
	}
	return out, nil
}

func (m *memUniversities) PostIDsByTag(_ context.Context, userIDs []int64, tag string) ([]int64, error) {
	m.tagArg = tag
	members := map[int64]bool{}
	for _, id := range userIDs {
		members[id] = true
	}
	ids := []int64{}
	for _, p := range m.posts {
		if members[p.UserID] && strings.Contains(strings.ToLower(helpers.Deref(p.Content)), "#"+tag) {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

func (m *memUniversities) GetHashtag(_ context.Context, name string) (*models.Hashtag, error) {
	n, ok := m.hashtags[name]
	if !ok {
		return nil, nil
	}
	return &models.Hashtag{Name: name, UsageCount: n}, nil
}

func newUniversityFixture() *memUniversities {
	cs, math := "Computer Science", "Mathematics"
	return &memUniversities{
		users: []memUniversityUser{
			{models.UniversityMember{ID: 1, Username: "user1", Email: "user1@example.com", Department: &cs}, "TestUniversity"},
			{models.UniversityMember{ID: 2, Username: "user2", Email: "user2@example.com", Department: &math}, "TestUniversity"},
			{models.UniversityMember{ID: 3, Username: "outsider", Email: "o@example.com", Department: &cs}, "Elsewhere"},
		},
		posts: []*models.Post{
			{ID: 4, UserID: 3, Content: helpers.Ptr("visiting #testuniversity")},
			{ID: 3, UserID: 2, Content: helpers.Ptr("no tag")},
			{ID: 1, UserID: 1, Content: helpers.Ptr("Great day at #TestUniversity!")},
		},
		hashtags: map[string]int{"testuniversity": 1},
	}
}

func TestUniversityService_GetPage(t *testing.T) {
	repo := newUniversityFixture()
	svc := NewUniversityService(repo, zerolog.Nop())

	page, err := svc.GetPage(context.Background(), "testuniversity")
	require.NoError(t, err)

	assert.Equal(t, "testuniversity", page.University)
	assert.Equal(t, 2, page.TotalMembers)
	assert.Equal(t, map[string][]dto.UniversityMemberResponse{
		"Computer Science": {{Username: "user1", Email: "user1@example.com"}},
		"Mathematics":      {{Username: "user2", Email: "user2@example.com"}},
	}, page.Departments)
	// the outsider's tagged post is not listed
	assert.Equal(t, []int64{1}, page.PostIDs)
	assert.Equal(t, "testuniversity", repo.tagArg)
	assert.Equal(t, 1, page.HashtagUsage)
}

func TestUniversityService_UnknownUniversity(t *testing.T) {
	svc := NewUniversityService(newUniversityFixture(), zerolog.Nop())

	_, err := svc.GetPage(context.Background(), "NonExistentUniversity")
	assert.ErrorIs(t, err, apperrors.ErrUniversityNotFound)

	_, err = svc.GetPage(context.Background(), "  ")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestUniversityService_TagDropsSpaces(t *testing.T) {
	repo := newUniversityFixture()
	repo.users = append(repo.users, memUniversityUser{
		models.UniversityMember{ID: 9, Username: "nsu", Email: "nsu@example.com"}, "North South University",
	})
	svc := NewUniversityService(repo, zerolog.Nop())

	page, err := svc.GetPage(context.Background(), "North South University")
	require.NoError(t, err)
	assert.Equal(t, "northsouthuniversity", repo.tagArg)
	assert.Equal(t, 0, page.HashtagUsage)
	assert.Equal(t, []dto.UniversityMemberResponse{{Username: "nsu", Email: "nsu@example.com"}}, page.Departments[""])
	assert.Empty(t, page.PostIDs)
}
