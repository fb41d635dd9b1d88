package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"onec-traders.backend/internal/domain/entities"
	"onec-traders.backend/internal/interfaces/http/response"
)

// PlanHandler serves the plan catalog
type PlanHandler struct{}

// NewPlanHandler creates a new plan handler
func NewPlanHandler() *PlanHandler {
	return &PlanHandler{}
}

// ListPlans lists every investment plan
// GET /api/v1/plans
func (h *PlanHandler) ListPlans(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"plans": entities.ListPlans()})
}

// GetPlan returns one plan
// GET /api/v1/plans/:type
func (h *PlanHandler) GetPlan(c *gin.Context) {
	plan, err := entities.GetPlan(entities.PlanType(c.Param("type")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"plan": plan})
}
