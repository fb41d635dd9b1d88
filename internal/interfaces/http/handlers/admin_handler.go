package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"onec-traders.backend/internal/domain/entities"
	domainerrors "onec-traders.backend/internal/domain/errors"
	"onec-traders.backend/internal/interfaces/http/response"
)

type accrualService interface {
	RunDailyAccrual(ctx context.Context, asOf time.Time) (*entities.AccrualRunResult, error)
}

// RunAccrualRequest optionally pins the calendar day to sweep
type RunAccrualRequest struct {
	Date string `json:"date"`
}

// AdminHandler handles operator endpoints
type AdminHandler struct {
	accrual  accrualService
	location *time.Location
	now      func() time.Time
}

// NewAdminHandler creates a new admin handler. location sets the default day.
func NewAdminHandler(accrual accrualService, location *time.Location) *AdminHandler {
	if location == nil {
		location = time.UTC
	}
	return &AdminHandler{accrual: accrual, location: location, now: time.Now}
}

// RunAccrual runs the daily sweep for today or the given date
// POST /api/v1/admin/accrual/run
func (h *AdminHandler) RunAccrual(c *gin.Context) {
	var input RunAccrualRequest
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	asOf := h.now().In(h.location)
	if input.Date != "" {
		d, err := time.ParseInLocation(time.DateOnly, input.Date, h.location)
		if err != nil {
			response.Error(c, domainerrors.BadRequest("date must be YYYY-MM-DD"))
			return
		}
		asOf = d
	}

	result, err := h.accrual.RunDailyAccrual(c.Request.Context(), asOf)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": result})
}
