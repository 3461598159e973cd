package websocket

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
)

// TokenValidator resolves a bearer token to a user id
type TokenValidator func(token string) (int64, error)

// Handler upgrades HTTP requests to websocket sessions
type Handler struct {
	hub          *Hub
	validate     TokenValidator
	frames       FrameHandler
	requireToken bool
	logger       zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, validate TokenValidator, frames FrameHandler, requireToken bool, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:          hub,
		validate:     validate,
		frames:       frames,
		requireToken: requireToken,
		logger:       logger,
	}
}

// HandleConnection godoc
// @Summary Open the direct-message websocket
// @Description Upgrades the connection and registers it as the live session for the user. A token query parameter (or bearer header) is checked when present or when tokens are required.
// @Tags chat, websocket
// @Param userId path int true "User ID"
// @Param token query string false "Access token"
// @Success 101 {string} string "Switching Protocols"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /ws/{userId} [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid user ID")))
		return
	}

	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}

	if h.requireToken || token != "" {
		if token == "" || h.validate == nil {
			c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
			return
		}
		tokenUserID, err := h.validate(token)
		if err != nil {
			h.logger.Debug().Err(err).Int64("userID", userID).Msg("Rejected websocket token")
			c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid or expired token")))
			return
		}
		if tokenUserID != userID {
			c.JSON(http.StatusForbidden, dto.NewErrorResponse(dto.NewErrorDetail(dto.ErrorCodeForbidden, "Token does not belong to this user")))
			return
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Int64("userID", userID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := newClient(h.hub, conn, userID, h.frames, h.logger)
	h.hub.Register(client)

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
