package controllers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/repositories"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/services"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/middleware"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/helpers"
)

// PostController handles feed and post operations
type PostController struct {
	postService services.PostService
	logger      zerolog.Logger
}

// NewPostController creates a new PostController
func NewPostController(postService services.PostService, logger zerolog.Logger) *PostController {
	return &PostController{
		postService: postService,
		logger:      logger,
	}
}

// optionalFile returns nil when the multipart field is absent
func optionalFile(ctx *gin.Context, field string) *multipart.FileHeader {
	file, err := ctx.FormFile(field)
	if err != nil {
		return nil
	}
	return file
}

// lastSeenPost reads the feed cursor; last_seen_post is accepted for older clients
func lastSeenPost(ctx *gin.Context) *int64 {
	if v := helpers.ParseOptionalInt64Query(ctx, "last_seen"); v != nil {
		return v
	}
	return helpers.ParseOptionalInt64Query(ctx, "last_seen_post")
}

// optionalForm returns nil when the form field was not sent at all
func optionalForm(ctx *gin.Context, field string) *string {
	if v, ok := ctx.GetPostForm(field); ok {
		return &v
	}
	return nil
}

// CreateText godoc
// @Summary Create a text post
// @Description Content is sanitized and, when enabled, checked by the moderation service
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateTextPostRequest true "Post content"
// @Success 201 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation failed or content rejected"
// @Router /posts/text [post]
func (c *PostController) CreateText(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreateTextPostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	post, err := c.postService.CreateText(ctx.Request.Context(), userID, req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: post,
	})
}

// CreateMedia godoc
// @Summary Create a media post
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param content formData string false "Caption"
// @Param media formData file true "Image or video (.jpg .jpeg .jfif .png .gif .webp .mp4 .mov)"
// @Success 201 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing or unsupported file"
// @Router /posts/media [post]
func (c *PostController) CreateMedia(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	file, err := ctx.FormFile("media")
	if err != nil {
		badRequest(ctx, "Media file is required")
		return
	}

	post, err := c.postService.CreateMedia(ctx.Request.Context(), userID, ctx.PostForm("content"), file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: post,
	})
}

// CreateDocument godoc
// @Summary Create a document post
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param content formData string false "Caption"
// @Param document formData file true "Document (.pdf .docx .txt)"
// @Success 201 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing or unsupported file"
// @Router /posts/document [post]
func (c *PostController) CreateDocument(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	file, err := ctx.FormFile("document")
	if err != nil {
		badRequest(ctx, "Document file is required")
		return
	}

	post, err := c.postService.CreateDocument(ctx.Request.Context(), userID, ctx.PostForm("content"), file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: post,
	})
}

// CreateEvent godoc
// @Summary Create an event post
// @Description Local date and time are converted to UTC using user_timezone
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param content formData string false "Caption"
// @Param title formData string true "Event title"
// @Param description formData string false "Description"
// @Param event_date formData string true "Date (YYYY-MM-DD)"
// @Param event_time formData string true "Time (HH:MM)"
// @Param user_timezone formData string false "IANA time zone" default(UTC)
// @Param location formData string false "Location"
// @Param event_image formData file false "Cover image"
// @Success 201 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid date, time or time zone"
// @Router /posts/event [post]
func (c *PostController) CreateEvent(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var form dto.EventPostForm
	if err := ctx.ShouldBind(&form); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	post, err := c.postService.CreateEvent(ctx.Request.Context(), userID, &form, optionalFile(ctx, "event_image"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: post,
	})
}

// List godoc
// @Summary List the feed
// @Description Newest first. last_seen_post returns only posts newer than that id.
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Param last_seen query int false "Only posts newer than this id"
// @Param last_seen_post query int false "Alias of last_seen"
// @Param user_id query int false "Only posts of this user"
// @Success 200 {object} dto.APIResponse{data=dto.PostListResponse}
// @Router /posts [get]
func (c *PostController) List(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	page := helpers.ParseLimitOffset(ctx, helpers.DefaultLimit)
	filter := repositories.PostFilter{
		Limit:          page.Limit,
		Offset:         page.Offset,
		LastSeenPostID: lastSeenPost(ctx),
		UserID:         helpers.ParseOptionalInt64Query(ctx, "user_id"),
	}

	resp, err := c.postService.List(ctx.Request.Context(), userID, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: resp,
	})
}

// Get godoc
// @Summary Get a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id} [get]
func (c *PostController) Get(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "id", "post ID")
	if !ok {
		return
	}

	post, err := c.postService.Get(ctx.Request.Context(), userID, postID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: post,
	})
}

// ListEvents godoc
// @Summary List event posts
// @Description Upcoming events first
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.APIResponse{data=[]dto.PostResponse}
// @Router /posts/events [get]
func (c *PostController) ListEvents(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	events, err := c.postService.ListEvents(ctx.Request.Context(), userID, helpers.ParseLimitOffset(ctx, helpers.DefaultLimit))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: events,
	})
}

// UpdateText godoc
// @Summary Update a text post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body dto.CreateTextPostRequest true "New content"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/text [put]
func (c *PostController) UpdateText(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "id", "post ID")
	if !ok {
		return
	}

	var req dto.CreateTextPostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	post, err := c.postService.UpdateText(ctx.Request.Context(), userID, postID, req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: post,
	})
}

// UpdateMedia godoc
// @Summary Update a media post
// @Description Replacing the file deletes the previous one
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param content formData string false "Caption"
// @Param media formData file false "Replacement file"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/media [put]
func (c *PostController) UpdateMedia(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "id", "post ID")
	if !ok {
		return
	}

	post, err := c.postService.UpdateMedia(ctx.Request.Context(), userID, postID, optionalForm(ctx, "content"), optionalFile(ctx, "media"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: post,
	})
}

// UpdateDocument godoc
// @Summary Update a document post
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param content formData string false "Caption"
// @Param document formData file false "Replacement file"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/document [put]
func (c *PostController) UpdateDocument(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "id", "post ID")
	if !ok {
		return
	}

	post, err := c.postService.UpdateDocument(ctx.Request.Context(), userID, postID, optionalForm(ctx, "content"), optionalFile(ctx, "document"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: post,
	})
}

// UpdateEvent godoc
// @Summary Update an event post
// @Description Date, time and zone must be sent together to move the event
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param content formData string false "Caption"
// @Param title formData string false "Event title"
// @Param description formData string false "Description"
// @Param event_date formData string false "Date (YYYY-MM-DD)"
// @Param event_time formData string false "Time (HH:MM)"
// @Param user_timezone formData string false "IANA time zone"
// @Param location formData string false "Location"
// @Param event_image formData file false "Replacement cover image"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid date, time or time zone"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/event [put]
func (c *PostController) UpdateEvent(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "id", "post ID")
	if !ok {
		return
	}

	form := dto.UpdateEventForm{
		Content:      optionalForm(ctx, "content"),
		Title:        optionalForm(ctx, "title"),
		Description:  optionalForm(ctx, "description"),
		EventDate:    ctx.PostForm("event_date"),
		EventTime:    ctx.PostForm("event_time"),
		UserTimezone: ctx.PostForm("user_timezone"),
		Location:     optionalForm(ctx, "location"),
	}

	post, err := c.postService.UpdateEvent(ctx.Request.Context(), userID, postID, &form, optionalFile(ctx, "event_image"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: post,
	})
}

// Delete godoc
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse}
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id} [delete]
func (c *PostController) Delete(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	postID, ok := pathID(ctx, "id", "post ID")
	if !ok {
		return
	}

	if err := c.postService.Delete(ctx.Request.Context(), userID, postID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("postID", postID).Int64("userID", userID).Msg("Post deleted")
	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: dto.SuccessResponse{Message: "Post deleted"},
	})
}
