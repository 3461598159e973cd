package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/metrics"
)

// errorMapping ties a sentinel to its HTTP status, code and default message
type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Order matters: the first matching sentinel wins.
var errorMappings = []errorMapping{
	// 401
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrInvalidFormat, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token format"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"},

	// 403
	{apperrors.ErrEmailNotVerified, http.StatusForbidden, dto.ErrorCodeEmailNotVerified, "Email not verified"},
	{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeForbidden, "Account is disabled"},
	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},

	// 404
	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrPostNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Post not found"},
	{apperrors.ErrCommentNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Comment not found"},
	{apperrors.ErrNotificationNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Notification not found"},
	{apperrors.ErrResearchNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Research work not found"},
	{apperrors.ErrPaperNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Paper not found"},
	{apperrors.ErrUniversityNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "University not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},

	// 409
	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
	{apperrors.ErrUsernameAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Username already exists"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},

	// 400
	{apperrors.ErrEmailAlreadyVerified, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Email already verified"},
	{apperrors.ErrOTPExpired, http.StatusBadRequest, dto.ErrorCodeInvalidOTP, "OTP has expired"},
	{apperrors.ErrOTPInvalid, http.StatusBadRequest, dto.ErrorCodeInvalidOTP, "Invalid OTP"},
	{apperrors.ErrInvalidPassword, http.StatusBadRequest, dto.ErrorCodeInvalidPassword, "Invalid password"},
	{apperrors.ErrInvalidEmail, http.StatusBadRequest, dto.ErrorCodeInvalidEmail, "Invalid email"},
	{apperrors.ErrConnectionExists, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Connection already exists"},
	{apperrors.ErrConnectionNotPending, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Connection request is not pending"},
	{apperrors.ErrMaxCommentDepth, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Max depth reached"},
	{apperrors.ErrNotAnEvent, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Post is not an event"},
	{apperrors.ErrUnsupportedFileType, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Unsupported file type"},
	{apperrors.ErrContentRejected, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Content rejected by moderation"},
	{apperrors.ErrAlreadyCollaborator, http.StatusBadRequest, dto.ErrorCodeBadRequest, "You are already a collaborator"},
	{apperrors.ErrRequestNotPending, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Collaboration request is not pending"},
	{apperrors.ErrInvalidMessageKind, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Invalid message type"},
	{apperrors.ErrInvalidMessageContent, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Invalid message content"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Bad request"},

	// 503
	{apperrors.ErrServiceUnavailable, http.StatusServiceUnavailable, dto.ErrorCodeExternalServiceError, "Service unavailable"},
}

// ResolveError returns the status and error detail for err. Unknown errors
// map to 500 with a generic message.
func ResolveError(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		message := m.message
		if custom, ok := apperrors.MessageOf(err); ok {
			message = custom
		}
		return m.status, dto.NewErrorDetail(m.code, message)
	}
	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
}

// HandleAPIError writes the standard error response for err
func HandleAPIError(c *gin.Context, err error) {
	status, detail := ResolveError(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("Unhandled error")
	}
	metrics.Get().ErrorsTotal.WithLabelValues(string(detail.Code)).Inc()
	_ = c.Error(err)
	c.JSON(status, dto.NewErrorResponse(detail))
}

// HandleBindError answers a request whose body or query failed validation
func HandleBindError(c *gin.Context, err error) {
	metrics.Get().ErrorsTotal.WithLabelValues(string(dto.ErrorCodeValidationFailed)).Inc()
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.HandleValidationError(err)))
}
