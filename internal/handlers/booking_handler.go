package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/middleware"
	"github.com/tsangpocruise/booking-backend/internal/services"
)

// BookingHandler handles paid cruise bookings
type BookingHandler struct {
	bookingService *services.BookingService
	logger         *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{bookingService: bookingService, logger: logger}
}

// Create handles POST /api/v1/bookings/create
func (h *BookingHandler) Create(c *gin.Context) {
	user := middleware.MustGetUser(c)

	var req services.CreateBookingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	result, err := h.bookingService.Create(c.Request.Context(), user.ID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusCreated, "Booking created, complete the payment to confirm", result)
}

// VerifyPayment handles POST /api/v1/bookings/verify-payment
func (h *BookingHandler) VerifyPayment(c *gin.Context) {
	user := middleware.MustGetUser(c)

	var req services.VerifyPaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	booking, err := h.bookingService.VerifyPayment(user.ID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, "Payment verified successfully", booking)
}

// MyBookings handles GET /api/v1/bookings/my-bookings
func (h *BookingHandler) MyBookings(c *gin.Context) {
	user := middleware.MustGetUser(c)

	bookings, err := h.bookingService.MyBookings(user.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", bookings)
}

// All handles GET /api/v1/bookings/all
func (h *BookingHandler) All(c *gin.Context) {
	bookings, err := h.bookingService.AllBookings()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", bookings)
}

// Receipt handles GET /api/v1/bookings/:id/receipt
func (h *BookingHandler) Receipt(c *gin.Context) {
	user := middleware.MustGetUser(c)
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	pdf, err := h.bookingService.Receipt(user, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt-%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
