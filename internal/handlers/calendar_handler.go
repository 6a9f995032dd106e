package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/models"
	"github.com/tsangpocruise/booking-backend/internal/services"
)

// CalendarHandler serves availability and its admin controls
type CalendarHandler struct {
	calendarService *services.CalendarService
	logger          *logrus.Logger
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(calendarService *services.CalendarService, logger *logrus.Logger) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService, logger: logger}
}

// DateRequest names a single day
type DateRequest struct {
	Date   string `json:"date" binding:"required"`
	Reason string `json:"reason"`
}

// ReplaceAvailableRequest is the full opened-day list
type ReplaceAvailableRequest struct {
	Dates []string `json:"dates"`
}

// ReplaceBlockedRequest is the full closed-day list
type ReplaceBlockedRequest struct {
	Dates []DateRequest `json:"dates" binding:"dive"`
}

// AvailableDates handles GET /api/v1/calendar/available-dates
func (h *CalendarHandler) AvailableDates(c *gin.Context) {
	view, err := h.calendarService.View()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", view)
}

// CheckAvailability handles GET /api/v1/calendar/check-availability/:date
func (h *CalendarHandler) CheckAvailability(c *gin.Context) {
	date, err := h.calendarService.ParseDate(c.Param("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "", h.calendarService.CheckDate(date))
}

// UpdateSettings handles PUT /api/v1/calendar/update-settings
func (h *CalendarHandler) UpdateSettings(c *gin.Context) {
	var req services.CalendarSettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	settings, err := h.calendarService.UpdateSettings(actorFrom(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Calendar settings updated", settings)
}

// AddAvailable handles POST /api/v1/calendar/available-dates
func (h *CalendarHandler) AddAvailable(c *gin.Context) {
	var req DateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	date, err := h.calendarService.ParseDate(req.Date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	entry, err := h.calendarService.AddAvailable(actorFrom(c), date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "Date added", entry)
}

// RemoveAvailable handles DELETE /api/v1/calendar/available-dates/:id
func (h *CalendarHandler) RemoveAvailable(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.calendarService.RemoveAvailable(actorFrom(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Date removed", nil)
}

// ReplaceAvailable handles PUT /api/v1/calendar/available-dates
func (h *CalendarHandler) ReplaceAvailable(c *gin.Context) {
	var req ReplaceAvailableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	dates := make([]time.Time, 0, len(req.Dates))
	for _, raw := range req.Dates {
		d, err := h.calendarService.ParseDate(raw)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		dates = append(dates, d)
	}

	if err := h.calendarService.ReplaceAvailable(actorFrom(c), dates); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Available dates updated", gin.H{"count": len(dates)})
}

// AddBlocked handles POST /api/v1/calendar/blocked-dates
func (h *CalendarHandler) AddBlocked(c *gin.Context) {
	var req DateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}
	date, err := h.calendarService.ParseDate(req.Date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	entry, err := h.calendarService.AddBlocked(actorFrom(c), date, req.Reason)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "Date blocked", entry)
}

// RemoveBlocked handles DELETE /api/v1/calendar/blocked-dates/:id
func (h *CalendarHandler) RemoveBlocked(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.calendarService.RemoveBlocked(actorFrom(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Date unblocked", nil)
}

// ReplaceBlocked handles PUT /api/v1/calendar/blocked-dates
func (h *CalendarHandler) ReplaceBlocked(c *gin.Context) {
	var req ReplaceBlockedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBinding(c, err)
		return
	}

	dates := make([]models.BlockedDate, 0, len(req.Dates))
	for _, entry := range req.Dates {
		d, err := h.calendarService.ParseDate(entry.Date)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		dates = append(dates, models.BlockedDate{Date: d, Reason: entry.Reason})
	}

	if err := h.calendarService.ReplaceBlocked(actorFrom(c), dates); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Blocked dates updated", gin.H{"count": len(dates)})
}
