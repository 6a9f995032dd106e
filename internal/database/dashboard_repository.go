package database

import (
	"fmt"
	"time"

	"github.com/tsangpocruise/booking-backend/internal/models"
)

// DashboardRepository reads cross-table aggregates for the admin overview.
// Per-day buckets are cut in the business timezone, not the session one.
type DashboardRepository struct {
	db       DB
	timezone string
}

// NewDashboardRepository creates a new dashboard repository bucketing days in loc
func NewDashboardRepository(db DB, loc *time.Location) *DashboardRepository {
	timezone := "UTC"
	if loc != nil && loc != time.Local {
		timezone = loc.String()
	}
	return &DashboardRepository{db: db, timezone: timezone}
}

// Counts returns the headline totals; today is the business calendar day
func (r *DashboardRepository) Counts(today time.Time) (*models.DashboardCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM bookings) AS bookings,
			(SELECT COUNT(*) FROM mail_bookings) AS mail_bookings,
			(SELECT COUNT(*) FROM bookings WHERE booking_type = 'PRIVATE') AS private_bookings,
			(SELECT COUNT(*) FROM mail_bookings
			  WHERE form_type IN ('tsangpo-imperial-private', 'private-charter', 'private-cruise-booking')) AS private_enquiries,
			(SELECT COUNT(*) FROM bookings WHERE booking_type = 'GROUP') AS group_bookings,
			(SELECT COUNT(*) FROM mail_bookings WHERE form_type = 'public-charter-long') AS group_enquiries,
			(SELECT COUNT(*) FROM gallery_images) AS gallery_images,
			(SELECT COUNT(*) FROM stories WHERE is_published = TRUE) AS published_stories,
			(SELECT COUNT(*) FROM bookings
			  WHERE date = $1 AND booking_status = 'CONFIRMED') AS today_bookings,
			(SELECT COALESCE(SUM(guests), 0) FROM bookings
			  WHERE date = $1 AND booking_status = 'CONFIRMED') AS today_booking_guests,
			(SELECT COUNT(*) FROM mail_bookings
			  WHERE date = $1 AND status = 'confirmed') AS today_enquiries,
			(SELECT COALESCE(SUM(guests), 0) FROM mail_bookings
			  WHERE date = $1 AND status = 'confirmed') AS today_enquiry_guests
	`

	var c models.DashboardCounts
	if err := r.db.Get(&c, query, dateArg(today)); err != nil {
		return nil, fmt.Errorf("failed to get dashboard counts: %w", err)
	}
	return &c, nil
}

// RecentActivity merges the newest bookings and enquiries
func (r *DashboardRepository) RecentActivity(limit int) ([]models.RecentActivity, error) {
	query := `
		SELECT type, id, name, date, status, created_at FROM (
			SELECT 'booking' AS type, b.id, u.full_name AS name, b.date, b.booking_status AS status, b.created_at
			FROM bookings b
			JOIN users u ON u.id = b.user_id
			UNION ALL
			SELECT 'enquiry' AS type, m.id, m.name, m.date, m.status, m.created_at
			FROM mail_bookings m
		) activity
		ORDER BY created_at DESC
		LIMIT $1
	`

	activity := []models.RecentActivity{}
	if err := r.db.Select(&activity, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent activity: %w", err)
	}
	return activity, nil
}

// MonthlyCounts returns bookings created per day of month in [from, to)
func (r *DashboardRepository) MonthlyCounts(from, to time.Time) ([]models.DayCount, error) {
	query := `
		SELECT EXTRACT(DAY FROM created_at AT TIME ZONE $3)::int AS day, COUNT(*) AS count
		FROM bookings
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY day
		ORDER BY day
	`

	days := []models.DayCount{}
	if err := r.db.Select(&days, query, from, to, r.timezone); err != nil {
		return nil, fmt.Errorf("failed to get monthly counts: %w", err)
	}
	return days, nil
}

// BookingsByType groups bookings created since the given instant
func (r *DashboardRepository) BookingsByType(since time.Time) ([]models.TypeRevenue, error) {
	query := `
		SELECT booking_type AS type,
		       COUNT(*) AS count,
		       COALESCE(SUM((pricing_breakdown->>'totalAmount')::numeric), 0) AS total_revenue
		FROM bookings
		WHERE created_at >= $1
		GROUP BY booking_type
		ORDER BY count DESC
	`

	rows := []models.TypeRevenue{}
	if err := r.db.Select(&rows, query, since); err != nil {
		return nil, fmt.Errorf("failed to get bookings by type: %w", err)
	}
	return rows, nil
}

// MailBookingsByType groups enquiries created since the given instant
func (r *DashboardRepository) MailBookingsByType(since time.Time) ([]models.FormTypeStat, error) {
	query := `
		SELECT form_type,
		       COUNT(*) AS count,
		       COALESCE(SUM((price_calculation->>'totalPrice')::numeric), 0) AS total_revenue
		FROM mail_bookings
		WHERE created_at >= $1
		GROUP BY form_type
		ORDER BY count DESC
	`

	rows := []models.FormTypeStat{}
	if err := r.db.Select(&rows, query, since); err != nil {
		return nil, fmt.Errorf("failed to get mail bookings by type: %w", err)
	}
	return rows, nil
}

// DailyTrend returns bookings created per day since the given instant
func (r *DashboardRepository) DailyTrend(since time.Time) ([]models.DailyTrend, error) {
	query := `
		SELECT TO_CHAR(created_at AT TIME ZONE $2, 'YYYY-MM-DD') AS date,
		       COUNT(*) AS count,
		       COALESCE(SUM((pricing_breakdown->>'totalAmount')::numeric), 0) AS revenue
		FROM bookings
		WHERE created_at >= $1
		GROUP BY date
		ORDER BY date
	`

	rows := []models.DailyTrend{}
	if err := r.db.Select(&rows, query, since, r.timezone); err != nil {
		return nil, fmt.Errorf("failed to get daily trend: %w", err)
	}
	return rows, nil
}
