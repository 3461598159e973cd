package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestResolveError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{"unverified", apperrors.Wrap(apperrors.ErrEmailNotVerified, "Please verify your email"), http.StatusForbidden, dto.ErrorCodeEmailNotVerified, "Please verify your email"},
		{"forbidden", apperrors.NewForbiddenError("Only the recipient can answer"), http.StatusForbidden, dto.ErrorCodeForbidden, "Only the recipient can answer"},
		{"post missing", apperrors.ErrPostNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Post not found"},
		{"university missing", apperrors.ErrUniversityNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "University not found"},
		{"wrapped with fmt", fmt.Errorf("loading: %w", apperrors.ErrCommentNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Comment not found"},
		{"generic not found", apperrors.NewResourceNotFoundError("Shared post not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Shared post not found"},
		{"duplicate email", apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
		{"depth", apperrors.Wrap(apperrors.ErrMaxCommentDepth, "Max depth reached"), http.StatusBadRequest, dto.ErrorCodeBadRequest, "Max depth reached"},
		{"connection exists", apperrors.ErrConnectionExists, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Connection already exists"},
		{"otp", apperrors.ErrOTPExpired, http.StatusBadRequest, dto.ErrorCodeInvalidOTP, "OTP has expired"},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
		{"expired token", apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
		{"unavailable", apperrors.ErrServiceUnavailable, http.StatusServiceUnavailable, dto.ErrorCodeExternalServiceError, "Service unavailable"},
		{"unknown", errors.New("pq: connection refused"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := ResolveError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, detail.Code)
			assert.Equal(t, tt.message, detail.Message)
		})
	}
}

func TestHandleAPIError_HidesInternalDetails(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)

	HandleAPIError(c, errors.New("relation \"posts\" does not exist"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "Internal server error", body.Error.Message)
	assert.NotContains(t, w.Body.String(), "relation")
}
