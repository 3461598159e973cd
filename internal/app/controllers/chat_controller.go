package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/services"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/middleware"
)

// ChatController handles the HTTP side of direct messaging
type ChatController struct {
	chatService services.ChatService
}

// NewChatController creates a new ChatController
func NewChatController(chatService services.ChatService) *ChatController {
	return &ChatController{
		chatService: chatService,
	}
}

// Conversations godoc
// @Summary List conversations
// @Description One entry per counterpart with the last message and unread count, newest first
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.ConversationOut}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /chat/conversations [get]
func (c *ChatController) Conversations(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	conversations, err := c.chatService.Conversations(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: conversations,
	})
}

// History godoc
// @Summary Get chat history with a user
// @Description Oldest first. Incoming unread messages are marked read.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param friendId path int true "Counterpart user ID"
// @Param limit query int false "Maximum number of messages (default: 50)" default(50)
// @Param before query string false "Only messages before this timestamp (RFC3339 format)"
// @Success 200 {object} dto.APIResponse{data=[]dto.MessageOut}
// @Failure 400 {object} dto.ErrorResponse "Invalid friend ID or timestamp"
// @Router /chat/history/{friendId} [get]
func (c *ChatController) History(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	friendID, ok := pathID(ctx, "friendId", "friend ID")
	if !ok {
		return
	}

	limit := services.DefaultHistoryLimit
	if raw := ctx.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	var before *time.Time
	if raw := ctx.Query("before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(ctx, "before must be an RFC3339 timestamp")
			return
		}
		before = &t
	}

	messages, err := c.chatService.History(ctx.Request.Context(), userID, friendID, limit, before)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: messages,
	})
}

// Upload godoc
// @Summary Upload a chat attachment
// @Tags chat
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Attachment (.jpg .jpeg .png .gif .pdf .docx)"
// @Success 200 {object} dto.APIResponse{data=dto.ChatUploadResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing or unsupported file"
// @Router /chat/upload [post]
func (c *ChatController) Upload(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		badRequest(ctx, "File is required")
		return
	}

	resp, err := c.chatService.Upload(ctx.Request.Context(), userID, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: resp,
	})
}
