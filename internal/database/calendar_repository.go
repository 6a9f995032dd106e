package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tsangpocruise/booking-backend/internal/models"
)

const calendarSettingsColumns = `
	min_advance_days, max_advance_days, allow_same_day, max_bookings_per_day,
	version, updated_by, updated_at
`

// CalendarRepository persists booking window settings, date sets and daily counters
type CalendarRepository struct {
	db DB
}

// NewCalendarRepository creates a new calendar repository
func NewCalendarRepository(db DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

func dateArg(t time.Time) string {
	return t.Format(models.DateLayout)
}

// GetSettings returns the settings row, or nil when none exists
func (r *CalendarRepository) GetSettings() (*models.CalendarSettings, error) {
	var s models.CalendarSettings

	query := `SELECT ` + calendarSettingsColumns + ` FROM calendar_settings WHERE id = 1`

	err := r.db.Get(&s, query)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get calendar settings: %w", err)
	}

	return &s, nil
}

// EnsureSettings inserts s unless a settings row exists, then returns the stored row
func (r *CalendarRepository) EnsureSettings(s models.CalendarSettings) (*models.CalendarSettings, error) {
	query := `
		INSERT INTO calendar_settings (
			id, min_advance_days, max_advance_days, allow_same_day, max_bookings_per_day, version, updated_at
		) VALUES (1, $1, $2, $3, $4, 1, NOW())
		ON CONFLICT (id) DO NOTHING
	`

	if _, err := r.db.Exec(query, s.MinAdvanceDays, s.MaxAdvanceDays, s.AllowSameDay, s.MaxBookingsPerDay); err != nil {
		return nil, fmt.Errorf("failed to create calendar settings: %w", err)
	}

	stored, err := r.GetSettings()
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("calendar settings missing after insert")
	}
	return stored, nil
}

// UpdateSettings writes s, guarded by expectedVersion when it is positive
func (r *CalendarRepository) UpdateSettings(s models.CalendarSettings, expectedVersion int, updatedBy uuid.NullUUID) (*models.CalendarSettings, error) {
	query := `
		UPDATE calendar_settings
		SET min_advance_days = $1,
		    max_advance_days = $2,
		    allow_same_day = $3,
		    max_bookings_per_day = $4,
		    updated_by = $5,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = 1 AND ($6 = 0 OR version = $6)
		RETURNING ` + calendarSettingsColumns

	var updated models.CalendarSettings
	err := r.db.Get(&updated, query, s.MinAdvanceDays, s.MaxAdvanceDays, s.AllowSameDay, s.MaxBookingsPerDay, updatedBy, expectedVersion)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrVersionConflict
		}
		return nil, fmt.Errorf("failed to update calendar settings: %w", err)
	}

	return &updated, nil
}

// ListAvailable returns the explicitly opened dates in ascending order
func (r *CalendarRepository) ListAvailable() ([]models.AvailableDate, error) {
	query := `SELECT id, date, created_at FROM calendar_available_dates ORDER BY date ASC`

	dates := []models.AvailableDate{}
	if err := r.db.Select(&dates, query); err != nil {
		return nil, fmt.Errorf("failed to list available dates: %w", err)
	}
	return dates, nil
}

// AddAvailable opens a date; adding an existing date returns the existing row
func (r *CalendarRepository) AddAvailable(date time.Time) (*models.AvailableDate, error) {
	query := `
		INSERT INTO calendar_available_dates (id, date, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (date) DO UPDATE SET date = EXCLUDED.date
		RETURNING id, date, created_at
	`

	var d models.AvailableDate
	if err := r.db.Get(&d, query, uuid.New(), dateArg(date)); err != nil {
		return nil, fmt.Errorf("failed to add available date: %w", err)
	}
	return &d, nil
}

// RemoveAvailable deletes an opened date by id and reports whether it existed
func (r *CalendarRepository) RemoveAvailable(id uuid.UUID) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM calendar_available_dates WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to remove available date: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// ReplaceAvailable swaps the whole opened set in one transaction
func (r *CalendarRepository) ReplaceAvailable(dates []time.Time) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM calendar_available_dates`); err != nil {
		return fmt.Errorf("failed to clear available dates: %w", err)
	}

	for _, d := range dates {
		_, err := tx.Exec(
			`INSERT INTO calendar_available_dates (id, date, created_at) VALUES ($1, $2, NOW()) ON CONFLICT (date) DO NOTHING`,
			uuid.New(), dateArg(d),
		)
		if err != nil {
			return fmt.Errorf("failed to insert available date: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit available dates: %w", err)
	}
	return nil
}

// ListBlocked returns the closed dates in ascending order
func (r *CalendarRepository) ListBlocked() ([]models.BlockedDate, error) {
	query := `SELECT id, date, reason, blocked_by, created_at FROM calendar_blocked_dates ORDER BY date ASC`

	dates := []models.BlockedDate{}
	if err := r.db.Select(&dates, query); err != nil {
		return nil, fmt.Errorf("failed to list blocked dates: %w", err)
	}
	return dates, nil
}

// AddBlocked closes a date; blocking it again refreshes the reason
func (r *CalendarRepository) AddBlocked(date time.Time, reason string, blockedBy uuid.NullUUID) (*models.BlockedDate, error) {
	query := `
		INSERT INTO calendar_blocked_dates (id, date, reason, blocked_by, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (date) DO UPDATE SET reason = EXCLUDED.reason
		RETURNING id, date, reason, blocked_by, created_at
	`

	var d models.BlockedDate
	if err := r.db.Get(&d, query, uuid.New(), dateArg(date), reason, blockedBy); err != nil {
		return nil, fmt.Errorf("failed to add blocked date: %w", err)
	}
	return &d, nil
}

// RemoveBlocked deletes a closed date by id and reports whether it existed
func (r *CalendarRepository) RemoveBlocked(id uuid.UUID) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM calendar_blocked_dates WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to remove blocked date: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// ReplaceBlocked swaps the whole closed set in one transaction
func (r *CalendarRepository) ReplaceBlocked(dates []models.BlockedDate, blockedBy uuid.NullUUID) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM calendar_blocked_dates`); err != nil {
		return fmt.Errorf("failed to clear blocked dates: %w", err)
	}

	for _, d := range dates {
		_, err := tx.Exec(
			`INSERT INTO calendar_blocked_dates (id, date, reason, blocked_by, created_at)
			 VALUES ($1, $2, $3, $4, NOW())
			 ON CONFLICT (date) DO UPDATE SET reason = EXCLUDED.reason`,
			uuid.New(), dateArg(d.Date), d.Reason, blockedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to insert blocked date: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit blocked dates: %w", err)
	}
	return nil
}

// GetDailyCount returns the confirmed bookings counted for a day
func (r *CalendarRepository) GetDailyCount(date time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT count FROM daily_booking_counts WHERE date = $1`, dateArg(date)).Scan(&count)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get daily booking count: %w", err)
	}
	return count, nil
}

// ListDailyCounts returns counters for days on or after from
func (r *CalendarRepository) ListDailyCounts(from time.Time) ([]models.DailyBookingCount, error) {
	query := `SELECT date, count FROM daily_booking_counts WHERE date >= $1 ORDER BY date ASC`

	counts := []models.DailyBookingCount{}
	if err := r.db.Select(&counts, query, dateArg(from)); err != nil {
		return nil, fmt.Errorf("failed to list daily booking counts: %w", err)
	}
	return counts, nil
}
