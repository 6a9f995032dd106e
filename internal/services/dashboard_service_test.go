package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsangpocruise/booking-backend/internal/models"
)

type fakeDashboardStore struct {
	counts     models.DashboardCounts
	monthFrom  time.Time
	monthTo    time.Time
	since      time.Time
	countsDate time.Time
}

func (f *fakeDashboardStore) Counts(today time.Time) (*models.DashboardCounts, error) {
	f.countsDate = today
	c := f.counts
	return &c, nil
}

func (f *fakeDashboardStore) RecentActivity(limit int) ([]models.RecentActivity, error) {
	return make([]models.RecentActivity, 0, limit), nil
}

func (f *fakeDashboardStore) MonthlyCounts(from, to time.Time) ([]models.DayCount, error) {
	f.monthFrom, f.monthTo = from, to
	return []models.DayCount{{Day: 3, Count: 2}}, nil
}

func (f *fakeDashboardStore) BookingsByType(since time.Time) ([]models.TypeRevenue, error) {
	f.since = since
	return []models.TypeRevenue{}, nil
}

func (f *fakeDashboardStore) MailBookingsByType(time.Time) ([]models.FormTypeStat, error) {
	return []models.FormTypeStat{}, nil
}

func (f *fakeDashboardStore) DailyTrend(time.Time) ([]models.DailyTrend, error) {
	return []models.DailyTrend{}, nil
}

type fixedCapacity struct {
	n   int
	err error
}

func (c fixedCapacity) MaxGuests(context.Context) (int, error) {
	return c.n, c.err
}

func TestDashboardStats(t *testing.T) {
	store := &fakeDashboardStore{counts: models.DashboardCounts{
		Bookings:           4,
		MailBookings:       6,
		PrivateBookings:    1,
		PrivateEnquiries:   2,
		GroupBookings:      1,
		GroupEnquiries:     3,
		GalleryImages:      7,
		PublishedStories:   5,
		TodayBookings:      2,
		TodayBookingGuests: 90,
		TodayEnquiries:     1,
		TodayEnquiryGuests: 20,
	}}
	clock := newTestCalendarService(newFakeCalendarStore(), nil)

	stats, err := NewDashboardService(store, fixedCapacity{n: 100}, clock, quietLogger()).Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, stats.TotalBookings)
	assert.Equal(t, 3, stats.PrivateCruises)
	assert.Equal(t, 4, stats.GroupCruises)
	assert.Equal(t, 5, stats.Stories)
	assert.Equal(t, models.TodayStats{Bookings: 3, Guests: 110, AvailableSeats: 0}, stats.TodayStats)
	assert.Equal(t, testToday, store.countsDate)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), store.monthFrom)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), store.monthTo)
}

func TestDashboardStats_DefaultCapacity(t *testing.T) {
	store := &fakeDashboardStore{counts: models.DashboardCounts{TodayBookingGuests: 10}}
	clock := newTestCalendarService(newFakeCalendarStore(), nil)

	stats, err := NewDashboardService(store, fixedCapacity{err: errors.New("db down")}, clock, quietLogger()).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultDashboardCapacity, stats.TotalCapacity)
	assert.Equal(t, models.DefaultDashboardCapacity-10, stats.TodayStats.AvailableSeats)
}

func TestDashboardAnalytics(t *testing.T) {
	tests := []struct {
		period string
		want   time.Time
	}{
		{"week", testToday.AddDate(0, 0, -7)},
		{"", testToday.AddDate(0, -1, 0)},
		{"month", testToday.AddDate(0, -1, 0)},
		{"year", testToday.AddDate(-1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run("period "+tt.period, func(t *testing.T) {
			store := &fakeDashboardStore{}
			svc := NewDashboardService(store, fixedCapacity{n: 150}, newTestCalendarService(newFakeCalendarStore(), nil), quietLogger())

			result, err := svc.Analytics(tt.period)
			require.NoError(t, err)
			assert.Equal(t, tt.want, store.since)
			assert.NotEmpty(t, result.Period)
		})
	}

	svc := NewDashboardService(&fakeDashboardStore{}, fixedCapacity{}, newTestCalendarService(newFakeCalendarStore(), nil), quietLogger())
	_, err := svc.Analytics("decade")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}
