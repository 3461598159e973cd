package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/services"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/middleware"
)

// UniversityController serves university group pages
type UniversityController struct {
	universityService services.UniversityService
}

// NewUniversityController creates a new UniversityController
func NewUniversityController(universityService services.UniversityService) *UniversityController {
	return &UniversityController{
		universityService: universityService,
	}
}

// GetPage godoc
// @Summary Get a university group page
// @Description Members grouped by department and member posts tagged #<university>
// @Tags universities
// @Produce json
// @Security BearerAuth
// @Param name path string true "University name"
// @Success 200 {object} dto.APIResponse{data=dto.UniversityPageResponse}
// @Failure 404 {object} dto.ErrorResponse "University not found"
// @Router /universities/{name} [get]
func (c *UniversityController) GetPage(ctx *gin.Context) {
	resp, err := c.universityService.GetPage(ctx.Request.Context(), ctx.Param("name"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data: resp,
	})
}
