package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/database"
	"github.com/tsangpocruise/booking-backend/internal/models"
)

// PriceConfigStore persists the price sheet
type PriceConfigStore interface {
	Get() (*models.PriceConfig, error)
	CreateIfMissing(cfg models.PriceConfig) (*models.PriceConfig, error)
	Update(cfg models.PriceConfig, expectedVersion int, changedBy uuid.NullUUID) (*models.PriceConfig, error)
	History(limit int) ([]models.PriceConfigSnapshot, error)
}

// PriceHistoryLimit caps the history listing
const PriceHistoryLimit = 50

// PricingService reads, updates and applies the price sheet
type PricingService struct {
	store    PriceConfigStore
	cache    Cache
	cacheTTL time.Duration
	audit    *AuditService
	logger   *logrus.Logger
}

// NewPricingService creates a new pricing service
func NewPricingService(store PriceConfigStore, cache Cache, cacheTTL time.Duration, audit *AuditService, logger *logrus.Logger) *PricingService {
	if cache == nil {
		cache = NoopCache{}
	}
	return &PricingService{store: store, cache: cache, cacheTTL: cacheTTL, audit: audit, logger: logger}
}

// Current returns the price sheet, seeding the defaults when none exists
func (s *PricingService) Current(ctx context.Context) (*models.PriceConfig, error) {
	var cached models.PriceConfig
	if ok, err := s.cache.Get(ctx, PriceConfigCacheKey, &cached); err != nil {
		s.logger.WithError(err).Warn("Price config cache read failed")
	} else if ok {
		return &cached, nil
	}

	cfg, err := s.load()
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, PriceConfigCacheKey, cfg, s.cacheTTL); err != nil {
		s.logger.WithError(err).Warn("Price config cache write failed")
	}
	return cfg, nil
}

func (s *PricingService) load() (*models.PriceConfig, error) {
	cfg, err := s.store.Get()
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		return cfg, nil
	}

	s.logger.Info("No price config found, seeding defaults")
	return s.store.CreateIfMissing(models.DefaultPriceConfig())
}

// PriceConfigUpdate is a partial price sheet update. Nil fields are left unchanged.
type PriceConfigUpdate struct {
	BasePrice           *float64                    `json:"basePrice"`
	IncludedGuests      *int                        `json:"includedGuests"`
	ExtraGuestPrice     *float64                    `json:"extraGuestPrice"`
	MaxGuests           *int                        `json:"maxGuests"`
	ShortCruiseSlots    *[]SlotInput                `json:"shortCruiseSlots"`
	Addons              map[string]json.RawMessage  `json:"addons"`
	FormSpecificPricing *models.FormSpecificPricing `json:"formSpecificPricing"`
	Version             int                         `json:"version"`
}

// SlotInput is a slot as submitted by an admin. Enabled defaults to true.
type SlotInput struct {
	Label      string  `json:"label"`
	Time       string  `json:"time"`
	AdultPrice float64 `json:"adultPrice"`
	ChildPrice float64 `json:"childPrice"`
	Enabled    *bool   `json:"enabled"`
}

type addonInput struct {
	Label   string  `json:"label"`
	Price   float64 `json:"price"`
	Enabled *bool   `json:"enabled"`
}

// Update merges req onto the current sheet and stores it
func (s *PricingService) Update(ctx context.Context, actor Actor, req PriceConfigUpdate) (*models.PriceConfig, error) {
	current, err := s.load()
	if err != nil {
		return nil, err
	}
	if req.Version != 0 && req.Version != current.Version {
		return nil, ErrVersionConflict
	}

	merged, err := mergePriceConfig(*current, req)
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Update(merged, req.Version, actorID(actor))
	if errors.Is(err, database.ErrVersionConflict) {
		return nil, ErrVersionConflict
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, PriceConfigCacheKey); err != nil {
		s.logger.WithError(err).Warn("Price config cache invalidation failed")
	}

	s.audit.Record(actor, AuditEvent{
		Action:     models.AuditPriceUpdate,
		EntityType: "price_config",
		Details:    map[string]interface{}{"version": updated.Version},
	})

	s.logger.WithFields(logrus.Fields{
		"version":    updated.Version,
		"updated_by": actor.UserID,
	}).Info("Price config updated")

	return updated, nil
}

// History lists previous sheets, newest first
func (s *PricingService) History() ([]models.PriceConfigSnapshot, error) {
	return s.store.History(PriceHistoryLimit)
}

func mergePriceConfig(cfg models.PriceConfig, req PriceConfigUpdate) (models.PriceConfig, error) {
	if req.BasePrice != nil {
		cfg.BasePrice = *req.BasePrice
	}
	if req.IncludedGuests != nil {
		cfg.IncludedGuests = *req.IncludedGuests
	}
	if req.ExtraGuestPrice != nil {
		cfg.ExtraGuestPrice = *req.ExtraGuestPrice
	}
	if req.MaxGuests != nil {
		cfg.MaxGuests = *req.MaxGuests
	}
	if req.ShortCruiseSlots != nil {
		slots := make([]models.CruiseSlot, 0, len(*req.ShortCruiseSlots))
		for _, in := range *req.ShortCruiseSlots {
			slots = append(slots, models.CruiseSlot{
				Label:      in.Label,
				Time:       in.Time,
				AdultPrice: in.AdultPrice,
				ChildPrice: in.ChildPrice,
				Enabled:    in.Enabled == nil || *in.Enabled,
			})
		}
		cfg.ShortCruiseSlots.V = slots
	}
	if req.Addons != nil {
		addons, err := NormalizeAddons(req.Addons)
		if err != nil {
			return cfg, err
		}
		cfg.Addons.V = addons
	}
	if req.FormSpecificPricing != nil {
		cfg.FormSpecificPricing.V = *req.FormSpecificPricing
	}

	cfg.ShortCruiseSlots.V = EnsureYogaSlot(cfg.ShortCruiseSlots.V)

	if err := ValidatePriceConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// EnsureYogaSlot prepends the free yoga slot when it is missing
func EnsureYogaSlot(slots []models.CruiseSlot) []models.CruiseSlot {
	for _, s := range slots {
		if s.Label == models.YogaSlotLabel {
			return slots
		}
	}
	yoga := models.DefaultPriceConfig().ShortCruiseSlots.V[0]
	return append([]models.CruiseSlot{yoga}, slots...)
}

// NormalizeAddons accepts either a bare price or an addon object per key
func NormalizeAddons(raw map[string]json.RawMessage) (map[string]models.Addon, error) {
	addons := make(map[string]models.Addon, len(raw))
	for key, value := range raw {
		label := models.DefaultAddonLabels[key]
		if label == "" {
			label = key
		}

		var price float64
		if err := json.Unmarshal(value, &price); err == nil {
			addons[key] = models.Addon{Label: label, Price: price, Enabled: true}
			continue
		}

		var in addonInput
		if err := json.Unmarshal(value, &in); err != nil {
			return nil, invalid("Invalid value for addon %q", key)
		}
		if in.Label != "" {
			label = in.Label
		}
		addons[key] = models.Addon{Label: label, Price: in.Price, Enabled: in.Enabled == nil || *in.Enabled}
	}
	return addons, nil
}

// ValidatePriceConfig rejects sheets that cannot price a booking
func ValidatePriceConfig(cfg models.PriceConfig) error {
	if cfg.BasePrice < 0 || cfg.ExtraGuestPrice < 0 {
		return invalid("Prices cannot be negative")
	}
	if cfg.IncludedGuests < 1 {
		return invalid("includedGuests must be at least 1")
	}
	if cfg.MaxGuests < 1 {
		return invalid("maxGuests must be at least 1")
	}
	for _, slot := range cfg.ShortCruiseSlots.V {
		if slot.Label == "" {
			return invalid("Slot label is required")
		}
		if slot.AdultPrice < 0 || slot.ChildPrice < 0 {
			return invalid("Slot prices cannot be negative")
		}
	}
	for key, addon := range cfg.Addons.V {
		if addon.Price < 0 {
			return invalid("Price for addon %q cannot be negative", key)
		}
	}
	for _, formType := range models.FormTypes {
		fp, _ := cfg.FormSpecificPricing.V.ForForm(formType)
		if fp.BasePrice < 0 || fp.ShortCruisePrice < 0 || fp.PerCabinPrice < 0 {
			return invalid("Prices for %s cannot be negative", formType)
		}
	}
	return nil
}

// EnquiryInput carries the form fields that influence an enquiry price
type EnquiryInput struct {
	Guests     int    `json:"guests"`
	CruiseType string `json:"cruiseType"`
	Slot       string `json:"slot"`
	Cabins     int    `json:"cabins"`
}

// CalculateEnquiryPrice prices an enquiry form against cfg
func CalculateEnquiryPrice(cfg models.PriceConfig, formType string, in EnquiryInput) models.PriceCalculation {
	guests := in.Guests
	if guests < 1 {
		guests = 1
	}
	includedGuests := cfg.IncludedGuests
	if includedGuests < 1 {
		includedGuests = 1
	}

	base := cfg.BasePrice
	fp, known := cfg.FormSpecificPricing.V.ForForm(formType)
	if known && fp.BasePrice != 0 {
		base = fp.BasePrice
	}

	var breakdown models.PriceBreakdown
	breakdown.BaseAmount = base
	total := base

	switch formType {
	case models.FormPrivateCharter:
		if in.CruiseType == "short" && in.Slot != "" {
			if slot, ok := cfg.FindSlot(in.Slot); ok && slot.Enabled {
				breakdown.BaseAmount = slot.AdultPrice
				breakdown.SlotPrice = slot.AdultPrice
				total = slot.AdultPrice
			}
		}
	case models.FormOvernightCruise:
		if in.Cabins > 1 && fp.PerCabinPrice > 0 {
			breakdown.CabinPrice = float64(in.Cabins-1) * fp.PerCabinPrice
			total += breakdown.CabinPrice
		}
	}

	if known && guests > includedGuests {
		breakdown.ExtraGuests = guests - includedGuests
		breakdown.ExtraGuestsAmount = float64(breakdown.ExtraGuests) * cfg.ExtraGuestPrice
		total += breakdown.ExtraGuestsAmount
	}

	return models.PriceCalculation{
		BasePrice:       base,
		ExtraGuestPrice: cfg.ExtraGuestPrice,
		PerGuestPrice:   cfg.ExtraGuestPrice,
		TotalPrice:      math.Round(total),
		PriceBreakdown:  breakdown,
	}
}

// FallbackEnquiryPrice is quoted when the price sheet cannot be read
func FallbackEnquiryPrice(guests int) models.PriceCalculation {
	if guests < 1 {
		guests = 1
	}
	extra := guests - 1
	return models.PriceCalculation{
		BasePrice:       8000,
		ExtraGuestPrice: 300,
		PerGuestPrice:   300,
		TotalPrice:      8000 + float64(extra)*300,
		PriceBreakdown: models.PriceBreakdown{
			BaseAmount:        8000,
			ExtraGuests:       extra,
			ExtraGuestsAmount: float64(extra) * 300,
		},
	}
}

// QuoteEnquiry prices an enquiry against the current sheet
func (s *PricingService) QuoteEnquiry(ctx context.Context, formType string, in EnquiryInput) models.PriceCalculation {
	cfg, err := s.Current(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("form_type", formType).Warn("Price config unavailable, using fallback price")
		return FallbackEnquiryPrice(in.Guests)
	}
	return CalculateEnquiryPrice(*cfg, formType, in)
}

// MaxGuests returns the configured guest limit
func (s *PricingService) MaxGuests(ctx context.Context) (int, error) {
	cfg, err := s.Current(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load price config: %w", err)
	}
	return cfg.MaxGuests, nil
}
