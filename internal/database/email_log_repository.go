package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tsangpocruise/booking-backend/internal/models"
)

// EmailLogRepository records notification delivery attempts
type EmailLogRepository struct {
	db DB
}

// NewEmailLogRepository creates a new email log repository
func NewEmailLogRepository(db DB) *EmailLogRepository {
	return &EmailLogRepository{db: db}
}

// Create inserts a log entry
func (r *EmailLogRepository) Create(l *models.EmailLog) error {
	query := `
		INSERT INTO email_logs (id, to_address, subject, booking_id, form_type, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(query, l.ID, l.To, l.Subject, l.BookingID, l.FormType, l.Status, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create email log: %w", err)
	}
	return nil
}

// MarkSent records a successful delivery
func (r *EmailLogRepository) MarkSent(id uuid.UUID) error {
	_, err := r.db.Exec(
		`UPDATE email_logs SET status = 'sent', sent_at = NOW(), error = NULL WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark email sent: %w", err)
	}
	return nil
}

// MarkFailed records a failed delivery with its cause
func (r *EmailLogRepository) MarkFailed(id uuid.UUID, cause string) error {
	_, err := r.db.Exec(
		`UPDATE email_logs SET status = 'failed', error = $2 WHERE id = $1`,
		id, cause,
	)
	if err != nil {
		return fmt.Errorf("failed to mark email failed: %w", err)
	}
	return nil
}
