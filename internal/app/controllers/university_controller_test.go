package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
)

type stubUniversityService struct {
	pages map[string]*dto.UniversityPageResponse
	asked string
}

func (s *stubUniversityService) GetPage(_ context.Context, university string) (*dto.UniversityPageResponse, error) {
	s.asked = university
	page, ok := s.pages[university]
	if !ok {
		return nil, apperrors.ErrUniversityNotFound
	}
	return page, nil
}

func newUniversityRouter(svc *stubUniversityService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/universities/:name", NewUniversityController(svc).GetPage)
	return r
}

func TestUniversityController_GetPage(t *testing.T) {
	svc := &stubUniversityService{pages: map[string]*dto.UniversityPageResponse{
		"TestUniversity": {
			University:   "TestUniversity",
			TotalMembers: 2,
			Departments: map[string][]dto.UniversityMemberResponse{
				"Computer Science": {{Username: "user1", Email: "user1@example.com"}},
				"Mathematics":      {{Username: "user2", Email: "user2@example.com"}},
			},
			PostIDs: []int64{1},
			Hashtag: "testuniversity",
		},
	}}
	r := newUniversityRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/universities/TestUniversity", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			University   string                         `json:"university"`
			TotalMembers int                            `json:"total_members"`
			Departments  map[string][]map[string]string `json:"departments"`
			PostIDs      []int64                        `json:"post_ids"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "TestUniversity", body.Data.University)
	assert.Equal(t, 2, body.Data.TotalMembers)
	assert.Equal(t, map[string][]map[string]string{
		"Computer Science": {{"username": "user1", "email": "user1@example.com"}},
		"Mathematics":      {{"username": "user2", "email": "user2@example.com"}},
	}, body.Data.Departments)
	assert.Equal(t, []int64{1}, body.Data.PostIDs)
}

func TestUniversityController_NotFound(t *testing.T) {
	svc := &stubUniversityService{}
	r := newUniversityRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/universities/North%20South", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "North South", svc.asked)
	assert.Contains(t, w.Body.String(), "University not found")
}
