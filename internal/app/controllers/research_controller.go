package controllers

import (
	"context"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/services"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/middleware"
)

// ResearchController handles papers and collaboration topics
type ResearchController struct {
	researchService services.ResearchService
	logger          zerolog.Logger
}

// NewResearchController creates a new ResearchController
func NewResearchController(researchService services.ResearchService, logger zerolog.Logger) *ResearchController {
	return &ResearchController{
		researchService: researchService,
		logger:          logger,
	}
}

// UploadPaper godoc
// @Summary Upload a research paper
// @Tags research
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param author formData string true "Author"
// @Param research_field formData string true "Research field"
// @Param file formData file true "Paper (.pdf .doc .docx)"
// @Success 201 {object} dto.APIResponse{data=models.ResearchPaper}
// @Failure 400 {object} dto.ErrorResponse "Missing fields or unsupported file"
// @Router /research/papers [post]
func (c *ResearchController) UploadPaper(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var form dto.UploadPaperForm
	if err := ctx.ShouldBind(&form); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		badRequest(ctx, "File is required")
		return
	}

	paper, err := c.researchService.UploadPaper(ctx.Request.Context(), userID, &form, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: paper,
	})
}

// SearchPapers godoc
// @Summary Search papers
// @Description Case-insensitive match on title, author or original filename
// @Tags research
// @Produce json
// @Security BearerAuth
// @Param keyword query string true "Keyword"
// @Success 200 {object} dto.APIResponse{data=[]models.ResearchPaper}
// @Failure 400 {object} dto.ErrorResponse "Keyword missing"
// @Failure 404 {object} dto.ErrorResponse "No papers found"
// @Router /research/papers/search [get]
func (c *ResearchController) SearchPapers(ctx *gin.Context) {
	papers, err := c.researchService.SearchPapers(ctx.Request.Context(), ctx.Query("keyword"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: papers,
	})
}

// DownloadPaper godoc
// @Summary Download a paper
// @Description Streams the stored file under its original filename
// @Tags research
// @Produce octet-stream
// @Security BearerAuth
// @Param id path int true "Paper ID"
// @Success 200 {file} binary
// @Failure 404 {object} dto.ErrorResponse "Paper not found"
// @Router /research/papers/{id}/download [get]
func (c *ResearchController) DownloadPaper(ctx *gin.Context) {
	paperID, ok := pathID(ctx, "id", "paper ID")
	if !ok {
		return
	}

	paper, body, err := c.researchService.OpenPaper(ctx.Request.Context(), paperID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer body.Close()

	contentType := mime.TypeByExtension(filepath.Ext(paper.OriginalFilename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": paper.OriginalFilename})

	ctx.DataFromReader(http.StatusOK, -1, contentType, body, map[string]string{
		"Content-Disposition": disposition,
	})
}

// RecommendedPapers godoc
// @Summary Recommended papers
// @Description Up to 10 papers matching the caller's fields of interest, padded with the newest
// @Tags research
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ResearchPaper}
// @Router /research/papers/recommended [get]
func (c *ResearchController) RecommendedPapers(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	papers, err := c.researchService.RecommendedPapers(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: papers,
	})
}

// PapersByUser godoc
// @Summary Papers uploaded by a user
// @Tags research
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} dto.APIResponse{data=[]models.ResearchPaper}
// @Router /research/papers/user/{userId} [get]
func (c *ResearchController) PapersByUser(ctx *gin.Context) {
	userID, ok := pathID(ctx, "userId", "user ID")
	if !ok {
		return
	}

	papers, err := c.researchService.PapersByUser(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: papers,
	})
}

// CreateCollaboration godoc
// @Summary Post a research topic
// @Tags research
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCollaborationRequest true "Topic"
// @Success 201 {object} dto.APIResponse{data=models.ResearchCollaboration}
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Router /research/collaborations [post]
func (c *ResearchController) CreateCollaboration(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreateCollaborationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	collab, err := c.researchService.CreateCollaboration(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: collab,
	})
}

// MyCollaborations godoc
// @Summary Topics created by the caller
// @Tags research
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.ResearchCollaboration}
// @Router /research/collaborations/mine [get]
func (c *ResearchController) MyCollaborations(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	collabs, err := c.researchService.MyCollaborations(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: collabs,
	})
}

// OtherCollaborations godoc
// @Summary Topics created by other users
// @Tags research
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.CollaborationResponse}
// @Router /research/collaborations/others [get]
func (c *ResearchController) OtherCollaborations(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	collabs, err := c.researchService.OtherCollaborations(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: collabs,
	})
}

// GetCollaboration godoc
// @Summary Get a research topic
// @Tags research
// @Produce json
// @Security BearerAuth
// @Param id path int true "Research ID"
// @Success 200 {object} dto.APIResponse{data=dto.CollaborationResponse}
// @Failure 404 {object} dto.ErrorResponse "Research work not found"
// @Router /research/collaborations/{id} [get]
func (c *ResearchController) GetCollaboration(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	researchID, ok := pathID(ctx, "id", "research ID")
	if !ok {
		return
	}

	collab, err := c.researchService.GetCollaboration(ctx.Request.Context(), userID, researchID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: collab,
	})
}

// RequestCollaboration godoc
// @Summary Ask to join a research topic
// @Tags research
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Research ID"
// @Param request body dto.RequestCollaborationBody false "Message"
// @Success 201 {object} dto.APIResponse{data=models.CollaborationRequest}
// @Failure 400 {object} dto.ErrorResponse "Own research, already requested or already a collaborator"
// @Failure 404 {object} dto.ErrorResponse "Research work not found"
// @Router /research/collaborations/{id}/requests [post]
func (c *ResearchController) RequestCollaboration(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	researchID, ok := pathID(ctx, "id", "research ID")
	if !ok {
		return
	}

	var body dto.RequestCollaborationBody
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&body); err != nil {
			middleware.HandleBindError(ctx, err)
			return
		}
	}

	req, err := c.researchService.RequestCollaboration(ctx.Request.Context(), userID, researchID, body.Message)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data: req,
	})
}

// PendingRequests godoc
// @Summary Pending requests on the caller's topics
// @Tags research
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.CollaborationRequestResponse}
// @Router /research/collaboration-requests [get]
func (c *ResearchController) PendingRequests(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	requests, err := c.researchService.PendingRequests(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: requests,
	})
}

// AcceptRequest godoc
// @Summary Accept a collaboration request
// @Tags research
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} dto.APIResponse{data=models.CollaborationRequest}
// @Failure 400 {object} dto.ErrorResponse "Not pending or already a collaborator"
// @Failure 403 {object} dto.ErrorResponse "Not the topic creator"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /research/collaboration-requests/{id}/accept [post]
func (c *ResearchController) AcceptRequest(ctx *gin.Context) {
	c.answer(ctx, c.researchService.AcceptRequest)
}

// RejectRequest godoc
// @Summary Reject a collaboration request
// @Tags research
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} dto.APIResponse{data=models.CollaborationRequest}
// @Failure 400 {object} dto.ErrorResponse "Not pending"
// @Failure 403 {object} dto.ErrorResponse "Not the topic creator"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Router /research/collaboration-requests/{id}/reject [post]
func (c *ResearchController) RejectRequest(ctx *gin.Context) {
	c.answer(ctx, c.researchService.RejectRequest)
}

func (c *ResearchController) answer(ctx *gin.Context, fn func(ctx context.Context, userID, requestID int64) (*models.CollaborationRequest, error)) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	requestID, ok := pathID(ctx, "id", "request ID")
	if !ok {
		return
	}

	req, err := fn(ctx.Request.Context(), userID, requestID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.logger.Info().Int64("requestID", requestID).Str("status", string(req.Status)).Msg("Collaboration request answered")
	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: req,
	})
}
