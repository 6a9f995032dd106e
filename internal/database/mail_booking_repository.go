package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tsangpocruise/booking-backend/internal/models"
)

const mailBookingColumns = `
	id, form_type, date, name, phone, email, guests, message,
	cruise_type, slot, destination, nights, check_in, cabins, cruise,
	price_calculation, status, admin_notes, created_at, updated_at
`

// MailBookingRepository persists mail-in enquiries
type MailBookingRepository struct {
	db DB
}

// NewMailBookingRepository creates a new mail booking repository
func NewMailBookingRepository(db DB) *MailBookingRepository {
	return &MailBookingRepository{db: db}
}

// Create inserts an enquiry
func (r *MailBookingRepository) Create(m *models.MailBooking) error {
	query := `
		INSERT INTO mail_bookings (
			id, form_type, date, name, phone, email, guests, message,
			cruise_type, slot, destination, nights, check_in, cabins, cruise,
			price_calculation, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.db.Exec(
		query,
		m.ID,
		m.FormType,
		dateArg(m.Date),
		m.Name,
		m.Phone,
		m.Email,
		m.Guests,
		m.Message,
		m.CruiseType,
		m.Slot,
		m.Destination,
		m.Nights,
		m.CheckIn,
		m.Cabins,
		m.Cruise,
		m.PriceCalculation,
		m.Status,
		m.CreatedAt,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create mail booking: %w", err)
	}

	return nil
}

// GetByID retrieves an enquiry, or nil when it does not exist
func (r *MailBookingRepository) GetByID(id uuid.UUID) (*models.MailBooking, error) {
	var m models.MailBooking

	err := r.db.Get(&m, `SELECT `+mailBookingColumns+` FROM mail_bookings WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get mail booking: %w", err)
	}

	return &m, nil
}

func mailBookingWhere(f models.MailBookingFilter) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if f.FormType != "" {
		add("form_type = $%d", f.FormType)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.FromDate != nil {
		add("date >= $%d", dateArg(*f.FromDate))
	}
	if f.ToDate != nil {
		add("date <= $%d", dateArg(*f.ToDate))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// List returns one page of enquiries matching f, newest first, and the total match count
func (r *MailBookingRepository) List(f models.MailBookingFilter) ([]models.MailBooking, int, error) {
	where, args := mailBookingWhere(f)

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*) FROM mail_bookings`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count mail bookings: %w", err)
	}

	offset := (f.Page - 1) * f.Limit
	query := fmt.Sprintf(
		`SELECT %s FROM mail_bookings%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		mailBookingColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, f.Limit, offset)

	bookings := []models.MailBooking{}
	if err := r.db.Select(&bookings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list mail bookings: %w", err)
	}

	return bookings, total, nil
}

// UpdateStatus sets the status and, when notes is non-nil, the admin notes.
// It returns nil when the enquiry does not exist.
func (r *MailBookingRepository) UpdateStatus(id uuid.UUID, status models.MailBookingStatus, notes *string) (*models.MailBooking, error) {
	query := `
		UPDATE mail_bookings
		SET status = $2,
		    admin_notes = CASE WHEN $3::boolean THEN $4 ELSE admin_notes END,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + mailBookingColumns

	var noteValue string
	if notes != nil {
		noteValue = *notes
	}

	var m models.MailBooking
	err := r.db.Get(&m, query, id, status, notes != nil, noteValue)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update mail booking status: %w", err)
	}

	return &m, nil
}

// Stats aggregates enquiries for the admin summary
func (r *MailBookingRepository) Stats() (*models.MailBookingStats, error) {
	stats := &models.MailBookingStats{}

	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'confirmed'),
		       COALESCE(SUM((price_calculation->>'totalPrice')::numeric), 0)
		FROM mail_bookings
	`).Scan(&stats.TotalBookings, &stats.PendingBookings, &stats.ConfirmedBookings, &stats.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("failed to get mail booking totals: %w", err)
	}

	stats.BookingsByType = []models.FormTypeStat{}
	if err := r.db.Select(&stats.BookingsByType, `
		SELECT form_type,
		       COUNT(*) AS count,
		       COALESCE(SUM((price_calculation->>'totalPrice')::numeric), 0) AS total_revenue
		FROM mail_bookings
		GROUP BY form_type
		ORDER BY count DESC
	`); err != nil {
		return nil, fmt.Errorf("failed to get mail bookings by type: %w", err)
	}

	stats.RecentBookings = []models.MailBooking{}
	if err := r.db.Select(&stats.RecentBookings,
		`SELECT `+mailBookingColumns+` FROM mail_bookings ORDER BY created_at DESC LIMIT 5`,
	); err != nil {
		return nil, fmt.Errorf("failed to get recent mail bookings: %w", err)
	}

	return stats, nil
}
