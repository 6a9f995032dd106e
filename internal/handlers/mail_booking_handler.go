package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/models"
	"github.com/tsangpocruise/booking-backend/internal/services"
	"github.com/tsangpocruise/booking-backend/pkg/validator"
)

// MailBookingHandler handles emailed enquiries and their admin follow-up
type MailBookingHandler struct {
	mailBookingService *services.MailBookingService
	logger             *logrus.Logger
}

// NewMailBookingHandler creates a new mail booking handler
func NewMailBookingHandler(mailBookingService *services.MailBookingService, logger *logrus.Logger) *MailBookingHandler {
	return &MailBookingHandler{mailBookingService: mailBookingService, logger: logger}
}

// Submit handles POST /api/v1/mail-bookings/submit
func (h *MailBookingHandler) Submit(c *gin.Context) {
	var req services.SubmitEnquiryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		failBindingWith(c, err, "Invalid request body",
			tagMessage{"required", "Please fill all required fields"},
			tagMessage{validator.TagFormType, "Invalid form type"},
			tagMessage{"min", "Guests must be at least 1"},
			tagMessage{validator.TagPhone, "Invalid phone number"},
			tagMessage{"email", "Invalid email address"},
		)
		return
	}

	result, err := h.mailBookingService.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusCreated, "Booking enquiry submitted successfully", result)
}

// CalculatePrice handles POST /api/v1/mail-bookings/calculate-price
func (h *MailBookingHandler) CalculatePrice(c *gin.Context) {
	var req services.CalculatePriceInput
	if err := c.ShouldBindJSON(&req); err != nil {
		failBindingWith(c, err, "Form type and guests are required",
			tagMessage{validator.TagFormType, "Invalid form type"},
			tagMessage{"min", "Guests must be at least 1"},
		)
		return
	}

	price, err := h.mailBookingService.CalculatePrice(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", price)
}

// CheckDate handles GET /api/v1/mail-bookings/check-date/:date
func (h *MailBookingHandler) CheckDate(c *gin.Context) {
	availability, err := h.mailBookingService.CheckDate(c.Param("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", availability)
}

// List handles GET /api/v1/mail-bookings/admin/bookings
func (h *MailBookingHandler) List(c *gin.Context) {
	filter := models.MailBookingFilter{
		FormType: c.Query("formType"),
		Status:   c.Query("status"),
		Page:     queryInt(c, "page"),
		Limit:    queryInt(c, "limit"),
	}

	if raw := c.Query("fromDate"); raw != "" {
		from, err := h.mailBookingService.ParseDate(raw)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		filter.FromDate = &from
	}
	if raw := c.Query("toDate"); raw != "" {
		to, err := h.mailBookingService.ParseDate(raw)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		filter.ToDate = &to
	}

	page, err := h.mailBookingService.List(filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", page)
}

// Get handles GET /api/v1/mail-bookings/admin/bookings/:id
func (h *MailBookingHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	booking, err := h.mailBookingService.Get(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", booking)
}

// UpdateStatus handles PUT /api/v1/mail-bookings/admin/bookings/:id/status
func (h *MailBookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateStatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	booking, err := h.mailBookingService.UpdateStatus(actorFrom(c), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Booking status updated", booking)
}

// Stats handles GET /api/v1/mail-bookings/admin/stats
func (h *MailBookingHandler) Stats(c *gin.Context) {
	stats, err := h.mailBookingService.Stats()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", stats)
}
