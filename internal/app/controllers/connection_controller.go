package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/services"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/middleware"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/helpers"
)

// ConnectionController handles the connection graph
type ConnectionController struct {
	connectionService services.ConnectionService
}

// NewConnectionController creates a new ConnectionController
func NewConnectionController(connectionService services.ConnectionService) *ConnectionController {
	return &ConnectionController{
		connectionService: connectionService,
	}
}

// SendRequest godoc
// @Summary Send a connection request
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Target user ID"
// @Success 201 {object} dto.APIResponse{data=models.Connection}
// @Failure 400 {object} dto.ErrorResponse "Self request or connection already exists"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /connections/{userId} [post]
func (c *ConnectionController) SendRequest(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	targetID, ok := pathID(ctx, "userId", "user ID")
	if !ok {
		return
	}

	conn, err := c.connectionService.SendRequest(ctx.Request.Context(), userID, targetID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: conn,
	})
}

// Accept godoc
// @Summary Accept a connection request
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID"
// @Success 200 {object} dto.APIResponse{data=models.Connection}
// @Failure 400 {object} dto.ErrorResponse "Request is not pending"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the recipient"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /connections/requests/{id}/accept [post]
func (c *ConnectionController) Accept(ctx *gin.Context) {
	c.answer(ctx, c.connectionService.Accept)
}

// Reject godoc
// @Summary Reject a connection request
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID"
// @Success 200 {object} dto.APIResponse{data=models.Connection}
// @Failure 400 {object} dto.ErrorResponse "Request is not pending"
// @Failure 403 {object} dto.ErrorResponse "Caller is not the recipient"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /connections/requests/{id}/reject [post]
func (c *ConnectionController) Reject(ctx *gin.Context) {
	c.answer(ctx, c.connectionService.Reject)
}

func (c *ConnectionController) answer(ctx *gin.Context, fn func(ctx context.Context, connectionID, userID int64) (*models.Connection, error)) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	connectionID, ok := pathID(ctx, "id", "connection ID")
	if !ok {
		return
	}

	conn, err := fn(ctx.Request.Context(), connectionID, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: conn,
	})
}

// ListFriends godoc
// @Summary List accepted connections
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.FriendListResponse}
// @Router /connections [get]
func (c *ConnectionController) ListFriends(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	friends, err := c.connectionService.ListFriends(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.FriendListResponse{Friends: friends},
	})
}

// ListIncoming godoc
// @Summary List incoming pending requests
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.Connection}
// @Router /connections/requests [get]
func (c *ConnectionController) ListIncoming(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	requests, err := c.connectionService.ListIncoming(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: requests,
	})
}

// ListAvailableUsers godoc
// @Summary List users the caller can connect with
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.APIResponse{data=dto.AvailableUsersResponse}
// @Router /connections/available-users [get]
func (c *ConnectionController) ListAvailableUsers(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	users, err := c.connectionService.ListAvailableUsers(ctx.Request.Context(), userID, helpers.ParseLimitOffset(ctx, 20))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.AvailableUsersResponse{Users: users},
	})
}
