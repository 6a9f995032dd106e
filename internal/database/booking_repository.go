package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tsangpocruise/booking-backend/internal/models"
)

const bookingColumns = `
	b.id, b.user_id, b.booking_type, b.date,
	b.slot_label, b.slot_time, b.adult_price, b.child_price,
	b.adults, b.children, b.guests, b.addons, b.pricing_breakdown, b.special_request,
	b.gateway_order_id, b.gateway_payment_id, b.gateway_signature,
	b.payment_status, b.booking_status, b.created_at, b.updated_at
`

const bookingUserColumns = `, u.full_name, u.email, u.contact_number`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func bookingDest(b *models.Booking) []interface{} {
	return []interface{}{
		&b.ID, &b.UserID, &b.BookingType, &b.Date,
		&b.Slot.Label, &b.Slot.Time, &b.Slot.AdultPrice, &b.Slot.ChildPrice,
		&b.Adults, &b.Children, &b.Guests, &b.Addons, &b.PricingBreakdown, &b.SpecialRequest,
		&b.GatewayOrderID, &b.GatewayPaymentID, &b.GatewaySignature,
		&b.PaymentStatus, &b.BookingStatus, &b.CreatedAt, &b.UpdatedAt,
	}
}

func scanBooking(s rowScanner) (*models.Booking, error) {
	var b models.Booking
	if err := s.Scan(bookingDest(&b)...); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBookingWithUser(s rowScanner) (*models.BookingWithUser, error) {
	var b models.BookingWithUser
	dest := append(bookingDest(&b.Booking), &b.User.FullName, &b.User.Email, &b.User.ContactNumber)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	b.User.ID = b.UserID
	return &b, nil
}

// BookingRepository persists payment-gated bookings
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a pending booking
func (r *BookingRepository) Create(b *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, user_id, booking_type, date,
			slot_label, slot_time, adult_price, child_price,
			adults, children, guests, addons, pricing_breakdown, special_request,
			gateway_order_id, payment_status, booking_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	_, err := r.db.Exec(
		query,
		b.ID,
		b.UserID,
		b.BookingType,
		dateArg(b.Date),
		b.Slot.Label,
		b.Slot.Time,
		b.Slot.AdultPrice,
		b.Slot.ChildPrice,
		b.Adults,
		b.Children,
		b.Guests,
		b.Addons,
		b.PricingBreakdown,
		b.SpecialRequest,
		b.GatewayOrderID,
		b.PaymentStatus,
		b.BookingStatus,
		b.CreatedAt,
		b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking, or nil when it does not exist
func (r *BookingRepository) GetByID(id uuid.UUID) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1`

	b, err := scanBooking(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return b, nil
}

// MarkFailed moves a still-pending booking to FAILED/CANCELLED and reports whether it changed
func (r *BookingRepository) MarkFailed(id uuid.UUID, paymentID, signature string) (bool, error) {
	query := `
		UPDATE bookings
		SET payment_status = 'FAILED',
		    booking_status = 'CANCELLED',
		    gateway_payment_id = $2,
		    gateway_signature = $3,
		    updated_at = NOW()
		WHERE id = $1 AND payment_status = 'PENDING'
	`

	result, err := r.db.Exec(query, id, paymentID, signature)
	if err != nil {
		return false, fmt.Errorf("failed to mark booking failed: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// Confirm moves a pending booking to SUCCESS/CONFIRMED and bumps the daily
// counter in the same transaction. It reports false when the booking was
// no longer pending, in which case nothing is written.
func (r *BookingRepository) Confirm(id uuid.UUID, paymentID, signature string, date time.Time) (bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE bookings
		SET payment_status = 'SUCCESS',
		    booking_status = 'CONFIRMED',
		    gateway_payment_id = $2,
		    gateway_signature = $3,
		    updated_at = NOW()
		WHERE id = $1 AND payment_status = 'PENDING'
	`, id, paymentID, signature)
	if err != nil {
		return false, fmt.Errorf("failed to confirm booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	_, err = tx.Exec(`
		INSERT INTO daily_booking_counts (date, count)
		VALUES ($1, 1)
		ON CONFLICT (date) DO UPDATE SET count = daily_booking_counts.count + 1
	`, dateArg(date))
	if err != nil {
		return false, fmt.Errorf("failed to increment daily booking count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit booking confirmation: %w", err)
	}

	return true, nil
}

// ListByUser returns a user's bookings, newest first
func (r *BookingRepository) ListByUser(userID uuid.UUID) ([]models.BookingWithUser, error) {
	query := `
		SELECT ` + bookingColumns + bookingUserColumns + `
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
	`
	return r.list(query, userID)
}

// ListAll returns every booking, newest first
func (r *BookingRepository) ListAll() ([]models.BookingWithUser, error) {
	query := `
		SELECT ` + bookingColumns + bookingUserColumns + `
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		ORDER BY b.created_at DESC
	`
	return r.list(query)
}

func (r *BookingRepository) list(query string, args ...interface{}) ([]models.BookingWithUser, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.BookingWithUser{}
	for rows.Next() {
		b, err := scanBookingWithUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}

	return bookings, nil
}
