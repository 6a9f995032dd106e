package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for calendar days
const DateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD or an RFC3339 timestamp and returns the calendar day
// in loc at midnight
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(DateLayout, value, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return StartOfDay(t.In(loc)), nil
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay compares two instants as calendar days
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// CalendarSettings holds the single booking-window configuration row
type CalendarSettings struct {
	MinAdvanceDays    int           `json:"minAdvanceDays" db:"min_advance_days"`
	MaxAdvanceDays    int           `json:"maxAdvanceDays" db:"max_advance_days"`
	AllowSameDay      bool          `json:"allowSameDay" db:"allow_same_day"`
	MaxBookingsPerDay int           `json:"maxBookingsPerDay" db:"max_bookings_per_day"`
	Version           int           `json:"version" db:"version"`
	UpdatedBy         uuid.NullUUID `json:"updatedBy" db:"updated_by"`
	UpdatedAt         time.Time     `json:"updatedAt" db:"updated_at"`
}

// DefaultCalendarSettings returns the canonical defaults
func DefaultCalendarSettings() CalendarSettings {
	return CalendarSettings{
		MinAdvanceDays:    1,
		MaxAdvanceDays:    365,
		AllowSameDay:      false,
		MaxBookingsPerDay: 10,
		Version:           1,
	}
}

// AvailableDate is an explicitly opened calendar day
type AvailableDate struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Date      time.Time `json:"date" db:"date"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// BlockedDate is a closed calendar day with a reason
type BlockedDate struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	Date      time.Time     `json:"date" db:"date"`
	Reason    string        `json:"reason" db:"reason"`
	BlockedBy uuid.NullUUID `json:"blockedBy" db:"blocked_by"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
}

// DailyBookingCount is the number of confirmed bookings on a day
type DailyBookingCount struct {
	Date  time.Time `json:"date" db:"date"`
	Count int       `json:"count" db:"count"`
}

// CalendarSnapshot is everything needed to evaluate a date
type CalendarSnapshot struct {
	Settings  CalendarSettings
	Available []AvailableDate
	Blocked   []BlockedDate
}

// Availability is the verdict for one date
type Availability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason"`
}

// CalendarView is the public calendar payload
type CalendarView struct {
	AvailableDates []string            `json:"availableDates"`
	BlockedDates   []BlockedDate       `json:"blockedDates"`
	BookedDates    []string            `json:"bookedDates"`
	Settings       CalendarSettings    `json:"settings"`
	Entries        []AvailableDate     `json:"entries"`
	DailyBookings  []DailyBookingCount `json:"dailyBookings"`
}
