package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/services"
)

// DashboardHandler serves the admin overview
type DashboardHandler struct {
	dashboardService *services.DashboardService
	logger           *logrus.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService, logger *logrus.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, logger: logger}
}

// Stats handles GET /api/v1/dashboard/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.dashboardService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", stats)
}

// Analytics handles GET /api/v1/dashboard/analytics?period=week|month|year
func (h *DashboardHandler) Analytics(c *gin.Context) {
	analytics, err := h.dashboardService.Analytics(c.Query("period"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", analytics)
}
