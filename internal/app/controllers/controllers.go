// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/app/models/dto"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/middleware"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/apperrors"
	"github.com/Learnathon-By-Geeky-Solutions/noobsquad-sub000/internal/pkg/helpers"
)

// currentUserID returns the authenticated caller or writes a 401
func currentUserID(ctx *gin.Context) (int64, bool) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.NewUnauthorizedError("Authentication required"))
		return 0, false
	}
	return userID, true
}

// pathID reads a positive id path parameter or writes a 400
func pathID(ctx *gin.Context, name, label string) (int64, bool) {
	id, ok := helpers.ParseIDParam(ctx, name)
	if !ok {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid "+label)))
		return 0, false
	}
	return id, true
}

func badRequest(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
		dto.NewErrorDetail(dto.ErrorCodeBadRequest, message)))
}
