package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/services"
)

// PricingHandler serves the price sheet
type PricingHandler struct {
	pricingService *services.PricingService
	logger         *logrus.Logger
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(pricingService *services.PricingService, logger *logrus.Logger) *PricingHandler {
	return &PricingHandler{pricingService: pricingService, logger: logger}
}

// Current handles GET /api/v1/pricing/current
func (h *PricingHandler) Current(c *gin.Context) {
	cfg, err := h.pricingService.Current(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", cfg)
}

// Update handles PUT /api/v1/pricing/update
func (h *PricingHandler) Update(c *gin.Context) {
	var req services.PriceConfigUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	cfg, err := h.pricingService.Update(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Pricing updated successfully", cfg)
}

// History handles GET /api/v1/pricing/history
func (h *PricingHandler) History(c *gin.Context) {
	history, err := h.pricingService.History()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", history)
}
