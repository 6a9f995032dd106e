package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/models"
)

const recentActivityLimit = 5

// DashboardStore reads admin aggregates
type DashboardStore interface {
	Counts(today time.Time) (*models.DashboardCounts, error)
	RecentActivity(limit int) ([]models.RecentActivity, error)
	MonthlyCounts(from, to time.Time) ([]models.DayCount, error)
	BookingsByType(since time.Time) ([]models.TypeRevenue, error)
	MailBookingsByType(since time.Time) ([]models.FormTypeStat, error)
	DailyTrend(since time.Time) ([]models.DailyTrend, error)
}

// CapacitySource yields the daily guest capacity
type CapacitySource interface {
	MaxGuests(ctx context.Context) (int, error)
}

// BusinessClock yields the current business day
type BusinessClock interface {
	Today() time.Time
	Location() *time.Location
}

// DashboardService builds the admin overview
type DashboardService struct {
	store    DashboardStore
	capacity CapacitySource
	clock    BusinessClock
	logger   *logrus.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(store DashboardStore, capacity CapacitySource, clock BusinessClock, logger *logrus.Logger) *DashboardService {
	return &DashboardService{store: store, capacity: capacity, clock: clock, logger: logger}
}

// Stats returns the headline numbers, today's capacity and recent activity
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	today := s.clock.Today()

	counts, err := s.store.Counts(today)
	if err != nil {
		return nil, err
	}

	capacity, err := s.capacity.MaxGuests(ctx)
	if err != nil || capacity <= 0 {
		s.logger.WithError(err).Warn("Capacity unavailable, using default")
		capacity = models.DefaultDashboardCapacity
	}

	activity, err := s.store.RecentActivity(recentActivityLimit)
	if err != nil {
		return nil, err
	}

	loc := s.clock.Location()
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
	monthly, err := s.store.MonthlyCounts(monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}

	guests := counts.TodayBookingGuests + counts.TodayEnquiryGuests
	return &models.DashboardStats{
		TotalBookings:  counts.Bookings + counts.MailBookings,
		PrivateCruises: counts.PrivateBookings + counts.PrivateEnquiries,
		GroupCruises:   counts.GroupBookings + counts.GroupEnquiries,
		GalleryImages:  counts.GalleryImages,
		Stories:        counts.PublishedStories,
		TotalCapacity:  capacity,
		TodayStats: models.TodayStats{
			Bookings:       counts.TodayBookings + counts.TodayEnquiries,
			Guests:         guests,
			AvailableSeats: max(0, capacity-guests),
		},
		RecentActivity: activity,
		MonthlyData:    monthly,
	}, nil
}

// PeriodStart returns the start of a trailing analytics window ending today
func PeriodStart(today time.Time, period string) (time.Time, bool) {
	switch period {
	case models.PeriodWeek:
		return today.AddDate(0, 0, -7), true
	case models.PeriodMonth, "":
		return today.AddDate(0, -1, 0), true
	case models.PeriodYear:
		return today.AddDate(-1, 0, 0), true
	}
	return time.Time{}, false
}

// Analytics groups bookings and enquiries over a trailing period
func (s *DashboardService) Analytics(period string) (*models.Analytics, error) {
	since, ok := PeriodStart(s.clock.Today(), period)
	if !ok {
		return nil, invalid("Period must be week, month or year")
	}
	if period == "" {
		period = models.PeriodMonth
	}

	byType, err := s.store.BookingsByType(since)
	if err != nil {
		return nil, err
	}
	mailByType, err := s.store.MailBookingsByType(since)
	if err != nil {
		return nil, err
	}
	trend, err := s.store.DailyTrend(since)
	if err != nil {
		return nil, err
	}

	return &models.Analytics{
		Period:             period,
		Since:              since,
		BookingsByType:     byType,
		MailBookingsByType: mailByType,
		DailyTrend:         trend,
	}, nil
}
