package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/services"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/middleware"
)

// ReactionController handles likes, comments, shares and RSVPs
type ReactionController struct {
	reactionService services.ReactionService
}

// NewReactionController creates a new ReactionController
func NewReactionController(reactionService services.ReactionService) *ReactionController {
	return &ReactionController{
		reactionService: reactionService,
	}
}

// LikePost godoc
// @Summary Toggle a like on a post
// @Tags reactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.LikeResponse}
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/like [post]
func (c *ReactionController) LikePost(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "id", "post ID")
	if !ok {
		return
	}

	resp, err := c.reactionService.TogglePostLike(ctx.Request.Context(), userID, postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: resp,
	})
}

// LikeComment godoc
// @Summary Toggle a like on a comment
// @Tags reactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} dto.APIResponse{data=dto.LikeResponse}
// @Failure 404 {object} dto.ErrorResponse "Comment not found"
// @Router /comments/{id}/like [post]
func (c *ReactionController) LikeComment(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	commentID, ok := pathID(ctx, "id", "comment ID")
	if !ok {
		return
	}

	resp, err := c.reactionService.ToggleCommentLike(ctx.Request.Context(), userID, commentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: resp,
	})
}

// AddComment godoc
// @Summary Comment on a post or reply to a comment
// @Description Replies may only target top-level comments
// @Tags reactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=models.Comment}
// @Failure 400 {object} dto.ErrorResponse "Max depth reached or parent on another post"
// @Failure 404 {object} dto.ErrorResponse "Post or parent comment not found"
// @Router /posts/{id}/comments [post]
func (c *ReactionController) AddComment(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "id", "post ID")
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	comment, err := c.reactionService.AddComment(ctx.Request.Context(), userID, postID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: comment,
	})
}

// ListComments godoc
// @Summary List comments of a post
// @Description Top-level comments with their replies nested
// @Tags reactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.CommentResponse}
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/comments [get]
func (c *ReactionController) ListComments(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "id", "post ID")
	if !ok {
		return
	}

	comments, err := c.reactionService.ListComments(ctx.Request.Context(), userID, postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: comments,
	})
}

// DeleteComment godoc
// @Summary Delete a comment
// @Description Allowed to the comment author and the post owner; replies are removed too
// @Tags reactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 403 {object} dto.ErrorResponse "Not allowed"
// @Failure 404 {object} dto.ErrorResponse "Comment not found"
// @Router /comments/{id} [delete]
func (c *ReactionController) DeleteComment(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	commentID, ok := pathID(ctx, "id", "comment ID")
	if !ok {
		return
	}

	if err := c.reactionService.DeleteComment(ctx.Request.Context(), userID, commentID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.SuccessResponse{Message: "Comment deleted"},
	})
}

// Share godoc
// @Summary Share a post
// @Tags reactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 201 {object} dto.APIResponse{data=dto.ShareResponse}
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/share [post]
func (c *ReactionController) Share(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "id", "post ID")
	if !ok {
		return
	}

	resp, err := c.reactionService.Share(ctx.Request.Context(), userID, postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: resp,
	})
}

// GetShared godoc
// @Summary Open a shared post
// @Tags reactions
// @Produce json
// @Security BearerAuth
// @Param token path string true "Share token"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 404 {object} dto.ErrorResponse "Shared post not found"
// @Router /share/{token} [get]
func (c *ReactionController) GetShared(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	post, err := c.reactionService.GetShared(ctx.Request.Context(), userID, ctx.Param("token"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: post,
	})
}

// RSVP godoc
// @Summary Answer an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event post ID"
// @Param request body dto.RSVPRequest true "Answer"
// @Success 200 {object} dto.APIResponse{data=models.EventAttendee}
// @Failure 400 {object} dto.ErrorResponse "Post is not an event"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/rsvp [post]
func (c *ReactionController) RSVP(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "id", "post ID")
	if !ok {
		return
	}

	var req dto.RSVPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	attendee, err := c.reactionService.RSVP(ctx.Request.Context(), userID, postID, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: attendee,
	})
}

// CancelRSVP godoc
// @Summary Withdraw an event answer
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event post ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.ErrorResponse "No answer recorded"
// @Router /posts/{id}/rsvp [delete]
func (c *ReactionController) CancelRSVP(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "id", "post ID")
	if !ok {
		return
	}

	if err := c.reactionService.CancelRSVP(ctx.Request.Context(), userID, postID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.SuccessResponse{Message: "RSVP removed"},
	})
}

// MyRSVP godoc
// @Summary Get the caller's answer to an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event post ID"
// @Success 200 {object} dto.APIResponse{data=models.EventAttendee}
// @Failure 404 {object} dto.ErrorResponse "No answer recorded"
// @Router /posts/{id}/rsvp/me [get]
func (c *ReactionController) MyRSVP(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "id", "post ID")
	if !ok {
		return
	}

	attendee, err := c.reactionService.MyRSVP(ctx.Request.Context(), userID, postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: attendee,
	})
}

// Attendees godoc
// @Summary List event attendees
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event post ID"
// @Param status query string false "going or interested"
// @Success 200 {object} dto.APIResponse{data=[]models.EventAttendee}
// @Failure 400 {object} dto.ErrorResponse "Invalid status or not an event"
// @Router /posts/{id}/attendees [get]
func (c *ReactionController) Attendees(ctx *gin.Context) {
	postID, ok := pathID(ctx, "id", "post ID")
	if !ok {
		return
	}

	var status *models.RSVPStatus
	if raw := ctx.Query("status"); raw != "" {
		s := models.RSVPStatus(raw)
		if !s.Valid() {
			badRequest(ctx, "Status must be going or interested")
			return
		}
		status = &s
	}

	attendees, err := c.reactionService.Attendees(ctx.Request.Context(), postID, status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: attendees,
	})
}

// RSVPCounts godoc
// @Summary Count event answers
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event post ID"
// @Success 200 {object} dto.APIResponse{data=dto.RSVPCountsResponse}
// @Router /posts/{id}/rsvp/counts [get]
func (c *ReactionController) RSVPCounts(ctx *gin.Context) {
	postID, ok := pathID(ctx, "id", "post ID")
	if !ok {
		return
	}

	counts, err := c.reactionService.RSVPCounts(ctx.Request.Context(), postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: counts,
	})
}
