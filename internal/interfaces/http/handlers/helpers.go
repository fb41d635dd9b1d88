package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	domainerrors "onec-traders.backend/internal/domain/errors"
	"onec-traders.backend/internal/interfaces/http/middleware"
	"onec-traders.backend/internal/interfaces/http/response"
	"onec-traders.backend/pkg/utils"
)

// currentUser returns the authenticated user id, writing 401 when missing
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return uuid.Nil, false
	}
	return userID, true
}

// idParam parses a uuid path parameter, writing 400 when malformed
func idParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid "+label+" ID"))
		return uuid.Nil, false
	}
	return id, true
}

func paginationFromQuery(c *gin.Context) utils.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	return utils.GetPaginationParams(page, limit)
}
