package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/tsangpocruise/booking-backend/internal/models"
)

// ErrVersionConflict is returned when a versioned row changed underneath an update
var ErrVersionConflict = errors.New("version conflict")

const priceConfigColumns = `
	base_price, included_guests, extra_guest_price, max_guests,
	short_cruise_slots, addons, form_specific_pricing,
	version, updated_by, updated_at
`

// PriceConfigRepository persists the single price sheet row and its history
type PriceConfigRepository struct {
	db DB
}

// NewPriceConfigRepository creates a new price config repository
func NewPriceConfigRepository(db DB) *PriceConfigRepository {
	return &PriceConfigRepository{db: db}
}

// Get returns the current price sheet, or nil when none exists
func (r *PriceConfigRepository) Get() (*models.PriceConfig, error) {
	var cfg models.PriceConfig

	query := `SELECT ` + priceConfigColumns + ` FROM price_config WHERE id = 1`

	err := r.db.Get(&cfg, query)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get price config: %w", err)
	}

	return &cfg, nil
}

// CreateIfMissing inserts cfg as the current sheet unless one exists, then returns the stored row
func (r *PriceConfigRepository) CreateIfMissing(cfg models.PriceConfig) (*models.PriceConfig, error) {
	query := `
		INSERT INTO price_config (
			id, base_price, included_guests, extra_guest_price, max_guests,
			short_cruise_slots, addons, form_specific_pricing, version, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7, 1, NOW())
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.db.Exec(
		query,
		cfg.BasePrice,
		cfg.IncludedGuests,
		cfg.ExtraGuestPrice,
		cfg.MaxGuests,
		cfg.ShortCruiseSlots,
		cfg.Addons,
		cfg.FormSpecificPricing,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create price config: %w", err)
	}

	stored, err := r.Get()
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("price config missing after insert")
	}
	return stored, nil
}

// Update writes cfg over the current sheet and appends a history snapshot.
// When expectedVersion is positive the write only applies to that version.
func (r *PriceConfigRepository) Update(cfg models.PriceConfig, expectedVersion int, changedBy uuid.NullUUID) (*models.PriceConfig, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE price_config
		SET base_price = $1,
		    included_guests = $2,
		    extra_guest_price = $3,
		    max_guests = $4,
		    short_cruise_slots = $5,
		    addons = $6,
		    form_specific_pricing = $7,
		    updated_by = $8,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = 1 AND ($9 = 0 OR version = $9)
		RETURNING ` + priceConfigColumns

	var updated models.PriceConfig
	err = tx.Get(
		&updated,
		query,
		cfg.BasePrice,
		cfg.IncludedGuests,
		cfg.ExtraGuestPrice,
		cfg.MaxGuests,
		cfg.ShortCruiseSlots,
		cfg.Addons,
		cfg.FormSpecificPricing,
		changedBy,
		expectedVersion,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrVersionConflict
		}
		return nil, fmt.Errorf("failed to update price config: %w", err)
	}

	historyQuery := `
		INSERT INTO price_config_history (id, version, config, changed_by, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	snapshot := models.JSONB[models.PriceConfig]{V: updated}
	if _, err := tx.Exec(historyQuery, uuid.New(), updated.Version, snapshot, changedBy); err != nil {
		return nil, fmt.Errorf("failed to write price config history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit price config update: %w", err)
	}

	return &updated, nil
}

// History lists snapshots, newest first
func (r *PriceConfigRepository) History(limit int) ([]models.PriceConfigSnapshot, error) {
	query := `
		SELECT id, version, config, changed_by, created_at
		FROM price_config_history
		ORDER BY created_at DESC
		LIMIT $1
	`

	history := []models.PriceConfigSnapshot{}
	if err := r.db.Select(&history, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list price config history: %w", err)
	}

	return history, nil
}
