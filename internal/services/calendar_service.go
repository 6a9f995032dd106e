package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/database"
	"github.com/tsangpocruise/booking-backend/internal/models"
)

// CalendarStore persists calendar settings, dates and daily counters
type CalendarStore interface {
	GetSettings() (*models.CalendarSettings, error)
	UpdateSettings(s models.CalendarSettings, expectedVersion int, updatedBy uuid.NullUUID) (*models.CalendarSettings, error)
	ListAvailable() ([]models.AvailableDate, error)
	AddAvailable(date time.Time) (*models.AvailableDate, error)
	RemoveAvailable(id uuid.UUID) (bool, error)
	ReplaceAvailable(dates []time.Time) error
	ListBlocked() ([]models.BlockedDate, error)
	AddBlocked(date time.Time, reason string, blockedBy uuid.NullUUID) (*models.BlockedDate, error)
	RemoveBlocked(id uuid.UUID) (bool, error)
	ReplaceBlocked(dates []models.BlockedDate, blockedBy uuid.NullUUID) error
	GetDailyCount(date time.Time) (int, error)
	ListDailyCounts(from time.Time) ([]models.DailyBookingCount, error)
}

// Availability reasons
const (
	ReasonPast        = "Date is in the past"
	ReasonNotListed   = "Date not in available dates"
	ReasonBlocked     = "Date is blocked"
	ReasonAvailable   = "Date is available"
	ReasonCheckFailed = "Error checking date, proceeding with booking"
)

// CalendarService evaluates and manages bookable dates
type CalendarService struct {
	store  CalendarStore
	loc    *time.Location
	audit  *AuditService
	logger *logrus.Logger
	now    func() time.Time
}

// NewCalendarService creates a new calendar service. Days are decided in loc.
func NewCalendarService(store CalendarStore, loc *time.Location, audit *AuditService, logger *logrus.Logger) *CalendarService {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarService{store: store, loc: loc, audit: audit, logger: logger, now: time.Now}
}

// Location returns the business timezone
func (s *CalendarService) Location() *time.Location {
	return s.loc
}

// Today returns the current business day at midnight
func (s *CalendarService) Today() time.Time {
	return models.StartOfDay(s.now().In(s.loc))
}

// ParseDate parses a wire date as a business day
func (s *CalendarService) ParseDate(value string) (time.Time, error) {
	d, err := models.ParseDate(value, s.loc)
	if err != nil {
		return time.Time{}, invalid("Invalid date format, expected YYYY-MM-DD")
	}
	return d, nil
}

// civil drops the zone, keeping the calendar fields as written
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EvaluateDate applies the booking window and date lists to one day
func EvaluateDate(today time.Time, snap models.CalendarSnapshot, date time.Time) models.Availability {
	day := civil(date)
	start := civil(today)
	settings := snap.Settings

	if day.Before(start) {
		return models.Availability{Reason: ReasonPast}
	}

	minDate := start.AddDate(0, 0, settings.MinAdvanceDays)
	if day.Before(minDate) && !settings.AllowSameDay {
		return models.Availability{Reason: fmt.Sprintf("Booking must be made at least %d day(s) in advance", settings.MinAdvanceDays)}
	}

	maxDate := start.AddDate(0, 0, settings.MaxAdvanceDays)
	if day.After(maxDate) {
		return models.Availability{Reason: fmt.Sprintf("Booking cannot be made more than %d days in advance", settings.MaxAdvanceDays)}
	}

	if len(snap.Available) > 0 {
		listed := false
		for _, a := range snap.Available {
			if civil(a.Date).Equal(day) {
				listed = true
				break
			}
		}
		if !listed {
			return models.Availability{Reason: ReasonNotListed}
		}
	}

	for _, b := range snap.Blocked {
		if civil(b.Date).Equal(day) {
			reason := b.Reason
			if reason == "" {
				reason = ReasonBlocked
			}
			return models.Availability{Reason: reason}
		}
	}

	return models.Availability{Available: true, Reason: ReasonAvailable}
}

// Settings returns the stored settings or the defaults
func (s *CalendarService) Settings() (*models.CalendarSettings, error) {
	settings, err := s.store.GetSettings()
	if err != nil {
		return nil, err
	}
	if settings == nil {
		defaults := models.DefaultCalendarSettings()
		return &defaults, nil
	}
	return settings, nil
}

// Snapshot loads everything EvaluateDate needs
func (s *CalendarService) Snapshot() (*models.CalendarSnapshot, error) {
	settings, err := s.Settings()
	if err != nil {
		return nil, err
	}
	available, err := s.store.ListAvailable()
	if err != nil {
		return nil, err
	}
	blocked, err := s.store.ListBlocked()
	if err != nil {
		return nil, err
	}
	return &models.CalendarSnapshot{Settings: *settings, Available: available, Blocked: blocked}, nil
}

// CheckDate evaluates date. Store failures fail open.
func (s *CalendarService) CheckDate(date time.Time) models.Availability {
	snap, err := s.Snapshot()
	if err != nil {
		s.logger.WithError(err).WithField("date", date.Format(models.DateLayout)).Warn("Calendar lookup failed, allowing date")
		return models.Availability{Available: true, Reason: ReasonCheckFailed}
	}
	return EvaluateDate(s.Today(), *snap, date)
}

// IsFullyBooked reports whether confirmed bookings on date reached the daily limit
func (s *CalendarService) IsFullyBooked(date time.Time) (bool, error) {
	settings, err := s.Settings()
	if err != nil {
		return false, err
	}
	count, err := s.store.GetDailyCount(date)
	if err != nil {
		return false, err
	}
	return count >= settings.MaxBookingsPerDay, nil
}

// View builds the public calendar
func (s *CalendarService) View() (*models.CalendarView, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	counts, err := s.store.ListDailyCounts(s.Today())
	if err != nil {
		return nil, err
	}

	booked := make(map[string]bool)
	bookedDates := []string{}
	for _, c := range counts {
		if c.Count >= snap.Settings.MaxBookingsPerDay {
			key := c.Date.Format(models.DateLayout)
			booked[key] = true
			bookedDates = append(bookedDates, key)
		}
	}

	blocked := make(map[string]bool, len(snap.Blocked))
	for _, b := range snap.Blocked {
		blocked[b.Date.Format(models.DateLayout)] = true
	}

	availableDates := []string{}
	for _, a := range snap.Available {
		key := a.Date.Format(models.DateLayout)
		if !blocked[key] && !booked[key] {
			availableDates = append(availableDates, key)
		}
	}

	blockedDates := snap.Blocked
	if blockedDates == nil {
		blockedDates = []models.BlockedDate{}
	}
	entries := snap.Available
	if entries == nil {
		entries = []models.AvailableDate{}
	}

	return &models.CalendarView{
		AvailableDates: availableDates,
		BlockedDates:   blockedDates,
		BookedDates:    bookedDates,
		Settings:       snap.Settings,
		Entries:        entries,
		DailyBookings:  counts,
	}, nil
}

// CalendarSettingsUpdate is a partial settings update
type CalendarSettingsUpdate struct {
	MinAdvanceDays    *int  `json:"minAdvanceDays"`
	MaxAdvanceDays    *int  `json:"maxAdvanceDays"`
	AllowSameDay      *bool `json:"allowSameDay"`
	MaxBookingsPerDay *int  `json:"maxBookingsPerDay"`
	Version           int   `json:"version"`
}

// UpdateSettings merges req onto the current settings
func (s *CalendarService) UpdateSettings(actor Actor, req CalendarSettingsUpdate) (*models.CalendarSettings, error) {
	current, err := s.Settings()
	if err != nil {
		return nil, err
	}
	if req.Version != 0 && req.Version != current.Version {
		return nil, ErrVersionConflict
	}

	merged := *current
	if req.MinAdvanceDays != nil {
		merged.MinAdvanceDays = *req.MinAdvanceDays
	}
	if req.MaxAdvanceDays != nil {
		merged.MaxAdvanceDays = *req.MaxAdvanceDays
	}
	if req.AllowSameDay != nil {
		merged.AllowSameDay = *req.AllowSameDay
	}
	if req.MaxBookingsPerDay != nil {
		merged.MaxBookingsPerDay = *req.MaxBookingsPerDay
	}

	if merged.MinAdvanceDays < 0 {
		return nil, invalid("minAdvanceDays cannot be negative")
	}
	if merged.MaxAdvanceDays < merged.MinAdvanceDays {
		return nil, invalid("maxAdvanceDays must not be less than minAdvanceDays")
	}
	if merged.MaxBookingsPerDay < 1 {
		return nil, invalid("maxBookingsPerDay must be at least 1")
	}

	updated, err := s.store.UpdateSettings(merged, req.Version, actorID(actor))
	if errors.Is(err, database.ErrVersionConflict) {
		return nil, ErrVersionConflict
	}
	if err != nil {
		return nil, err
	}

	s.audit.Record(actor, AuditEvent{
		Action:     models.AuditCalendarSettings,
		EntityType: "calendar_settings",
		Details:    map[string]interface{}{"version": updated.Version},
	})
	return updated, nil
}

// AddAvailable opens a day. Adding an existing day returns the existing entry.
func (s *CalendarService) AddAvailable(actor Actor, date time.Time) (*models.AvailableDate, error) {
	entry, err := s.store.AddAvailable(date)
	if err != nil {
		return nil, err
	}
	s.audit.Record(actor, AuditEvent{
		Action:     models.AuditAvailableDateAdd,
		EntityType: "calendar_available_date",
		EntityID:   entry.ID.String(),
		Details:    map[string]interface{}{"date": date.Format(models.DateLayout)},
	})
	return entry, nil
}

// RemoveAvailable deletes an opened day by id
func (s *CalendarService) RemoveAvailable(actor Actor, id uuid.UUID) error {
	removed, err := s.store.RemoveAvailable(id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	s.audit.Record(actor, AuditEvent{
		Action:     models.AuditAvailableDateRemove,
		EntityType: "calendar_available_date",
		EntityID:   id.String(),
	})
	return nil
}

// ReplaceAvailable swaps the whole opened-day list
func (s *CalendarService) ReplaceAvailable(actor Actor, dates []time.Time) error {
	if err := s.store.ReplaceAvailable(dates); err != nil {
		return err
	}
	s.audit.Record(actor, AuditEvent{
		Action:     models.AuditAvailableDateReplace,
		EntityType: "calendar_available_date",
		Details:    map[string]interface{}{"count": len(dates)},
	})
	return nil
}

// AddBlocked closes a day. Blocking an already blocked day updates its reason.
func (s *CalendarService) AddBlocked(actor Actor, date time.Time, reason string) (*models.BlockedDate, error) {
	if reason == "" {
		reason = ReasonBlocked
	}
	entry, err := s.store.AddBlocked(date, reason, actorID(actor))
	if err != nil {
		return nil, err
	}
	s.audit.Record(actor, AuditEvent{
		Action:     models.AuditBlockedDateAdd,
		EntityType: "calendar_blocked_date",
		EntityID:   entry.ID.String(),
		Details:    map[string]interface{}{"date": date.Format(models.DateLayout), "reason": reason},
	})
	return entry, nil
}

// RemoveBlocked reopens a closed day by id
func (s *CalendarService) RemoveBlocked(actor Actor, id uuid.UUID) error {
	removed, err := s.store.RemoveBlocked(id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	s.audit.Record(actor, AuditEvent{
		Action:     models.AuditBlockedDateRemove,
		EntityType: "calendar_blocked_date",
		EntityID:   id.String(),
	})
	return nil
}

// ReplaceBlocked swaps the whole closed-day list
func (s *CalendarService) ReplaceBlocked(actor Actor, dates []models.BlockedDate) error {
	for i := range dates {
		if dates[i].Reason == "" {
			dates[i].Reason = ReasonBlocked
		}
	}
	if err := s.store.ReplaceBlocked(dates, actorID(actor)); err != nil {
		return err
	}
	s.audit.Record(actor, AuditEvent{
		Action:     models.AuditBlockedDateReplace,
		EntityType: "calendar_blocked_date",
		Details:    map[string]interface{}{"count": len(dates)},
	})
	return nil
}

func actorID(actor Actor) uuid.NullUUID {
	return uuid.NullUUID{UUID: actor.UserID, Valid: actor.UserID != uuid.Nil}
}
