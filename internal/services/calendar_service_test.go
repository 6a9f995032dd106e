package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsangpocruise/booking-backend/internal/database"
	"github.com/tsangpocruise/booking-backend/internal/models"
)

type fakeCalendarStore struct {
	settings  *models.CalendarSettings
	available []models.AvailableDate
	blocked   []models.BlockedDate
	counts    map[string]int
	err       error
}

func newFakeCalendarStore() *fakeCalendarStore {
	return &fakeCalendarStore{counts: make(map[string]int)}
}

func (f *fakeCalendarStore) GetSettings() (*models.CalendarSettings, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.settings == nil {
		return nil, nil
	}
	s := *f.settings
	return &s, nil
}

func (f *fakeCalendarStore) UpdateSettings(s models.CalendarSettings, expectedVersion int, _ uuid.NullUUID) (*models.CalendarSettings, error) {
	current := models.DefaultCalendarSettings()
	if f.settings != nil {
		current = *f.settings
	}
	if expectedVersion != 0 && expectedVersion != current.Version {
		return nil, database.ErrVersionConflict
	}
	s.Version = current.Version + 1
	f.settings = &s
	return &s, nil
}

func (f *fakeCalendarStore) ListAvailable() ([]models.AvailableDate, error) {
	return f.available, f.err
}

func (f *fakeCalendarStore) AddAvailable(date time.Time) (*models.AvailableDate, error) {
	for _, a := range f.available {
		if models.SameDay(a.Date, date) {
			return &a, nil
		}
	}
	entry := models.AvailableDate{ID: uuid.New(), Date: date}
	f.available = append(f.available, entry)
	return &entry, nil
}

func (f *fakeCalendarStore) RemoveAvailable(id uuid.UUID) (bool, error) {
	for i, a := range f.available {
		if a.ID == id {
			f.available = append(f.available[:i], f.available[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCalendarStore) ReplaceAvailable(dates []time.Time) error {
	f.available = nil
	for _, d := range dates {
		f.available = append(f.available, models.AvailableDate{ID: uuid.New(), Date: d})
	}
	return nil
}

func (f *fakeCalendarStore) ListBlocked() ([]models.BlockedDate, error) {
	return f.blocked, f.err
}

func (f *fakeCalendarStore) AddBlocked(date time.Time, reason string, by uuid.NullUUID) (*models.BlockedDate, error) {
	entry := models.BlockedDate{ID: uuid.New(), Date: date, Reason: reason, BlockedBy: by}
	f.blocked = append(f.blocked, entry)
	return &entry, nil
}

func (f *fakeCalendarStore) RemoveBlocked(id uuid.UUID) (bool, error) {
	for i, b := range f.blocked {
		if b.ID == id {
			f.blocked = append(f.blocked[:i], f.blocked[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCalendarStore) ReplaceBlocked(dates []models.BlockedDate, _ uuid.NullUUID) error {
	f.blocked = dates
	return nil
}

func (f *fakeCalendarStore) GetDailyCount(date time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[date.Format(models.DateLayout)], nil
}

func (f *fakeCalendarStore) ListDailyCounts(from time.Time) ([]models.DailyBookingCount, error) {
	var out []models.DailyBookingCount
	for key, n := range f.counts {
		d, _ := time.Parse(models.DateLayout, key)
		if !d.Before(civil(from)) {
			out = append(out, models.DailyBookingCount{Date: d, Count: n})
		}
	}
	return out, nil
}

var testToday = time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return testToday.AddDate(0, 0, offset)
}

func TestEvaluateDate(t *testing.T) {
	defaults := models.DefaultCalendarSettings()
	sameDay := defaults
	sameDay.AllowSameDay = true
	wideWindow := defaults
	wideWindow.MinAdvanceDays = 3

	tests := []struct {
		name      string
		snap      models.CalendarSnapshot
		date      time.Time
		available bool
		reason    string
	}{
		{"Past", models.CalendarSnapshot{Settings: defaults}, day(-1), false, ReasonPast},
		{"Today without same day", models.CalendarSnapshot{Settings: defaults}, day(0), false, "Booking must be made at least 1 day(s) in advance"},
		{"Today with same day", models.CalendarSnapshot{Settings: sameDay}, day(0), true, ReasonAvailable},
		{"Exactly min advance", models.CalendarSnapshot{Settings: wideWindow}, day(3), true, ReasonAvailable},
		{"One day before min advance", models.CalendarSnapshot{Settings: wideWindow}, day(2), false, "Booking must be made at least 3 day(s) in advance"},
		{"Exactly max advance", models.CalendarSnapshot{Settings: defaults}, day(365), true, ReasonAvailable},
		{"Beyond max advance", models.CalendarSnapshot{Settings: defaults}, day(366), false, "Booking cannot be made more than 365 days in advance"},
		{
			"Not in available list",
			models.CalendarSnapshot{Settings: defaults, Available: []models.AvailableDate{{Date: day(5)}}},
			day(6), false, ReasonNotListed,
		},
		{
			"In available list",
			models.CalendarSnapshot{Settings: defaults, Available: []models.AvailableDate{{Date: day(5)}}},
			day(5), true, ReasonAvailable,
		},
		{
			"Blocked with reason",
			models.CalendarSnapshot{Settings: defaults, Blocked: []models.BlockedDate{{Date: day(4), Reason: "Maintenance"}}},
			day(4), false, "Maintenance",
		},
		{
			"Blocked without reason",
			models.CalendarSnapshot{Settings: defaults, Blocked: []models.BlockedDate{{Date: day(4)}}},
			day(4), false, ReasonBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateDate(testToday, tt.snap, tt.date)
			assert.Equal(t, tt.available, got.Available)
			assert.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestEvaluateDate_ComparesCalendarDays(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	// 23:30 IST on the 15th is still the 15th in the business zone
	now := time.Date(2026, 10, 15, 23, 30, 0, 0, kolkata)
	today := models.StartOfDay(now)

	// Stored DATE columns come back as UTC midnight
	blocked := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	snap := models.CalendarSnapshot{
		Settings: models.DefaultCalendarSettings(),
		Blocked:  []models.BlockedDate{{Date: blocked, Reason: "Festival"}},
	}

	requested, err := models.ParseDate("2026-10-16", kolkata)
	require.NoError(t, err)
	assert.Equal(t, "Festival", EvaluateDate(today, snap, requested).Reason)
}

func newTestCalendarService(store *fakeCalendarStore, audit *fakeAuditStore) *CalendarService {
	var auditSvc *AuditService
	if audit != nil {
		auditSvc = NewAuditService(audit, quietLogger(), true)
	}
	svc := NewCalendarService(store, time.UTC, auditSvc, quietLogger())
	svc.now = func() time.Time { return testToday.Add(10 * time.Hour) }
	return svc
}

func TestCheckDate_DefaultsWhenNoSettings(t *testing.T) {
	svc := newTestCalendarService(newFakeCalendarStore(), nil)

	assert.True(t, svc.CheckDate(day(1)).Available)
	assert.False(t, svc.CheckDate(day(0)).Available)
}

func TestCheckDate_FailsOpen(t *testing.T) {
	store := newFakeCalendarStore()
	store.err = errors.New("db down")
	svc := newTestCalendarService(store, nil)

	got := svc.CheckDate(day(-10))
	assert.True(t, got.Available)
	assert.Equal(t, ReasonCheckFailed, got.Reason)
}

func TestIsFullyBooked(t *testing.T) {
	store := newFakeCalendarStore()
	store.settings = &models.CalendarSettings{MaxBookingsPerDay: 2, MaxAdvanceDays: 365, Version: 1}
	store.counts[day(3).Format(models.DateLayout)] = 2
	store.counts[day(4).Format(models.DateLayout)] = 1
	svc := newTestCalendarService(store, nil)

	full, err := svc.IsFullyBooked(day(3))
	require.NoError(t, err)
	assert.True(t, full)

	full, err = svc.IsFullyBooked(day(4))
	require.NoError(t, err)
	assert.False(t, full)
}

func TestView(t *testing.T) {
	store := newFakeCalendarStore()
	store.settings = &models.CalendarSettings{MaxBookingsPerDay: 2, MaxAdvanceDays: 365, Version: 1}
	store.available = []models.AvailableDate{{Date: day(2)}, {Date: day(3)}, {Date: day(4)}}
	store.blocked = []models.BlockedDate{{Date: day(3), Reason: "Storm"}}
	store.counts[day(4).Format(models.DateLayout)] = 2
	svc := newTestCalendarService(store, nil)

	view, err := svc.View()
	require.NoError(t, err)
	assert.Equal(t, []string{day(2).Format(models.DateLayout)}, view.AvailableDates)
	assert.Equal(t, []string{day(4).Format(models.DateLayout)}, view.BookedDates)
	assert.Len(t, view.BlockedDates, 1)
}

func TestUpdateSettings(t *testing.T) {
	t.Run("Partial update", func(t *testing.T) {
		store := newFakeCalendarStore()
		audit := &fakeAuditStore{}
		svc := newTestCalendarService(store, audit)

		perDay := 20
		updated, err := svc.UpdateSettings(Actor{UserID: uuid.New()}, CalendarSettingsUpdate{MaxBookingsPerDay: &perDay, Version: 1})
		require.NoError(t, err)
		assert.Equal(t, 20, updated.MaxBookingsPerDay)
		assert.Equal(t, 365, updated.MaxAdvanceDays)
		assert.Equal(t, 2, updated.Version)
		assert.Equal(t, []string{models.AuditCalendarSettings}, audit.actions())
	})

	t.Run("Stale version", func(t *testing.T) {
		store := newFakeCalendarStore()
		store.settings = &models.CalendarSettings{MaxBookingsPerDay: 10, MaxAdvanceDays: 365, Version: 5}
		svc := newTestCalendarService(store, nil)

		_, err := svc.UpdateSettings(Actor{}, CalendarSettingsUpdate{Version: 4})
		assert.ErrorIs(t, err, ErrVersionConflict)
	})

	t.Run("Invalid window", func(t *testing.T) {
		svc := newTestCalendarService(newFakeCalendarStore(), nil)
		minDays := 30
		maxDays := 10
		_, err := svc.UpdateSettings(Actor{}, CalendarSettingsUpdate{MinAdvanceDays: &minDays, MaxAdvanceDays: &maxDays})
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})
}

func TestAvailableAndBlockedDates(t *testing.T) {
	store := newFakeCalendarStore()
	audit := &fakeAuditStore{}
	svc := newTestCalendarService(store, audit)

	first, err := svc.AddAvailable(Actor{}, day(5))
	require.NoError(t, err)
	again, err := svc.AddAvailable(Actor{}, day(5))
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, store.available, 1)

	require.NoError(t, svc.RemoveAvailable(Actor{}, first.ID))
	assert.ErrorIs(t, svc.RemoveAvailable(Actor{}, first.ID), ErrNotFound)

	blocked, err := svc.AddBlocked(Actor{}, day(6), "")
	require.NoError(t, err)
	assert.Equal(t, ReasonBlocked, blocked.Reason)
	assert.ErrorIs(t, svc.RemoveBlocked(Actor{}, uuid.New()), ErrNotFound)

	require.NoError(t, svc.ReplaceBlocked(Actor{}, []models.BlockedDate{{Date: day(7)}}))
	assert.Equal(t, ReasonBlocked, store.blocked[0].Reason)

	assert.Equal(t, []string{
		models.AuditAvailableDateAdd,
		models.AuditAvailableDateAdd,
		models.AuditAvailableDateRemove,
		models.AuditBlockedDateAdd,
		models.AuditBlockedDateReplace,
	}, audit.actions())
}
