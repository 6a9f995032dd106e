package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsangpocruise/booking-backend/internal/database"
	"github.com/tsangpocruise/booking-backend/internal/models"
)

type fakePriceStore struct {
	cfg       *models.PriceConfig
	getErr    error
	updates   int
	history   []models.PriceConfigSnapshot
	lastLimit int
}

func (f *fakePriceStore) Get() (*models.PriceConfig, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.cfg == nil {
		return nil, nil
	}
	c := *f.cfg
	return &c, nil
}

func (f *fakePriceStore) CreateIfMissing(cfg models.PriceConfig) (*models.PriceConfig, error) {
	if f.cfg == nil {
		f.cfg = &cfg
	}
	c := *f.cfg
	return &c, nil
}

func (f *fakePriceStore) Update(cfg models.PriceConfig, expectedVersion int, changedBy uuid.NullUUID) (*models.PriceConfig, error) {
	if expectedVersion != 0 && expectedVersion != f.cfg.Version {
		return nil, database.ErrVersionConflict
	}
	f.updates++
	cfg.Version = f.cfg.Version + 1
	cfg.UpdatedBy = changedBy
	f.cfg = &cfg
	c := cfg
	return &c, nil
}

func (f *fakePriceStore) History(limit int) ([]models.PriceConfigSnapshot, error) {
	f.lastLimit = limit
	return f.history, nil
}

// memCache is an in-memory Cache for tests
type memCache struct {
	data    map[string][]byte
	deletes int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (m *memCache) Get(_ context.Context, key string, target interface{}) (bool, error) {
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, target)
}

func (m *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	m.deletes++
	delete(m.data, key)
	return nil
}

func defaultConfig() *models.PriceConfig {
	cfg := models.DefaultPriceConfig()
	return &cfg
}

func TestCalculateEnquiryPrice(t *testing.T) {
	cfg := models.DefaultPriceConfig()

	tests := []struct {
		name           string
		formType       string
		input          EnquiryInput
		wantTotal      float64
		wantExtra      int
		wantBaseAmount float64
		wantSlot       float64
		wantCabin      float64
	}{
		{"Imperial private with three guests", models.FormTsangpoImperialPrivate, EnquiryInput{Guests: 3}, 12600, 2, 12000, 0, 0},
		{"Included guest only", models.FormPublicCharterLong, EnquiryInput{Guests: 1}, 15000, 0, 15000, 0, 0},
		{"Zero guests treated as one", models.FormPrivateCruiseBooking, EnquiryInput{Guests: 0}, 18000, 0, 18000, 0, 0},
		{"Private charter short slot", models.FormPrivateCharter, EnquiryInput{Guests: 2, CruiseType: "short", Slot: "Lunch Cruise"}, 1899, 1, 1599, 1599, 0},
		{"Private charter unknown slot", models.FormPrivateCharter, EnquiryInput{Guests: 1, CruiseType: "short", Slot: "Breakfast"}, 10000, 0, 10000, 0, 0},
		{"Private charter long ignores slot", models.FormPrivateCharter, EnquiryInput{Guests: 1, CruiseType: "long", Slot: "Lunch Cruise"}, 10000, 0, 10000, 0, 0},
		{"Overnight with cabins", models.FormOvernightCruise, EnquiryInput{Guests: 4, Cabins: 3}, 25000 + 10000 + 900, 3, 25000, 0, 10000},
		{"Overnight single cabin", models.FormOvernightCruise, EnquiryInput{Guests: 1, Cabins: 1}, 25000, 0, 25000, 0, 0},
		{"Unknown form uses global base", "yacht", EnquiryInput{Guests: 10}, 8000, 0, 8000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateEnquiryPrice(cfg, tt.formType, tt.input)
			assert.Equal(t, tt.wantTotal, got.TotalPrice)
			assert.Equal(t, tt.wantExtra, got.PriceBreakdown.ExtraGuests)
			assert.Equal(t, tt.wantBaseAmount, got.PriceBreakdown.BaseAmount)
			assert.Equal(t, tt.wantSlot, got.PriceBreakdown.SlotPrice)
			assert.Equal(t, tt.wantCabin, got.PriceBreakdown.CabinPrice)
			assert.Equal(t, got.ExtraGuestPrice, got.PerGuestPrice)
		})
	}
}

func TestCalculateEnquiryPrice_SurchargeProperty(t *testing.T) {
	cfg := models.DefaultPriceConfig()
	cfg.IncludedGuests = 4
	cfg.ExtraGuestPrice = 250

	for guests := 5; guests <= 40; guests += 7 {
		for _, formType := range []string{models.FormTsangpoImperialPrivate, models.FormPublicCharterLong, models.FormPrivateCruiseBooking} {
			got := CalculateEnquiryPrice(cfg, formType, EnquiryInput{Guests: guests})
			fp, _ := cfg.FormSpecificPricing.V.ForForm(formType)
			assert.Equal(t, fp.BasePrice+float64(guests-4)*250, got.TotalPrice)
		}
	}
}

func TestCalculateEnquiryPrice_ZeroFormBaseFallsBack(t *testing.T) {
	cfg := models.DefaultPriceConfig()
	cfg.FormSpecificPricing.V.PublicCharterLong.BasePrice = 0

	got := CalculateEnquiryPrice(cfg, models.FormPublicCharterLong, EnquiryInput{Guests: 1})
	assert.Equal(t, 8000.0, got.TotalPrice)
}

func TestCalculateEnquiryPrice_DisabledSlot(t *testing.T) {
	cfg := models.DefaultPriceConfig()
	cfg.ShortCruiseSlots.V[1].Enabled = false

	got := CalculateEnquiryPrice(cfg, models.FormPrivateCharter, EnquiryInput{Guests: 1, CruiseType: "short", Slot: "Lunch Cruise"})
	assert.Equal(t, 10000.0, got.TotalPrice)
	assert.Zero(t, got.PriceBreakdown.SlotPrice)
}

func TestFallbackEnquiryPrice(t *testing.T) {
	assert.Equal(t, 8600.0, FallbackEnquiryPrice(3).TotalPrice)
	assert.Equal(t, 8000.0, FallbackEnquiryPrice(0).TotalPrice)
}

func TestQuoteEnquiry_FallbackOnStoreError(t *testing.T) {
	svc := NewPricingService(&fakePriceStore{getErr: errors.New("db down")}, nil, time.Minute, nil, quietLogger())

	got := svc.QuoteEnquiry(context.Background(), models.FormTsangpoImperialPrivate, EnquiryInput{Guests: 3})
	assert.Equal(t, 8600.0, got.TotalPrice)
}

func TestCurrent_SeedsDefaultsAndCaches(t *testing.T) {
	store := &fakePriceStore{}
	cache := newMemCache()
	svc := NewPricingService(store, cache, time.Minute, nil, quietLogger())

	cfg, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8000.0, cfg.BasePrice)
	assert.Len(t, cfg.ShortCruiseSlots.V, 4)
	assert.Contains(t, cache.data, PriceConfigCacheKey)

	store.getErr = errors.New("should not be called")
	cached, err := svc.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cfg.BasePrice, cached.BasePrice)
}

func TestUpdate_MergesAndNormalizes(t *testing.T) {
	store := &fakePriceStore{cfg: defaultConfig()}
	cache := newMemCache()
	audit := &fakeAuditStore{}
	svc := NewPricingService(store, cache, time.Minute, NewAuditService(audit, quietLogger(), true), quietLogger())

	base := 9000.0
	slots := []SlotInput{{Label: "Lunch Cruise", Time: "12:30 PM", AdultPrice: 1700, ChildPrice: 1100}}
	updated, err := svc.Update(context.Background(), Actor{UserID: uuid.New()}, PriceConfigUpdate{
		BasePrice:        &base,
		ShortCruiseSlots: &slots,
		Addons: map[string]json.RawMessage{
			"bonfire":  json.RawMessage(`2500`),
			"fishing":  json.RawMessage(`1200`),
			"campsite": json.RawMessage(`{"label":"Riverside Camp","price":4200,"enabled":false}`),
		},
		Version: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, 9000.0, updated.BasePrice)
	assert.Equal(t, 300.0, updated.ExtraGuestPrice)
	assert.Equal(t, 2, updated.Version)

	require.Len(t, updated.ShortCruiseSlots.V, 2)
	assert.Equal(t, models.YogaSlotLabel, updated.ShortCruiseSlots.V[0].Label)
	assert.True(t, updated.ShortCruiseSlots.V[1].Enabled)

	assert.Equal(t, models.Addon{Label: "Bonfire", Price: 2500, Enabled: true}, updated.Addons.V["bonfire"])
	assert.Equal(t, models.Addon{Label: "fishing", Price: 1200, Enabled: true}, updated.Addons.V["fishing"])
	assert.Equal(t, models.Addon{Label: "Riverside Camp", Price: 4200, Enabled: false}, updated.Addons.V["campsite"])

	assert.Equal(t, 1, cache.deletes)
	assert.Equal(t, []string{models.AuditPriceUpdate}, audit.actions())
}

func TestUpdate_VersionConflict(t *testing.T) {
	store := &fakePriceStore{cfg: defaultConfig()}
	store.cfg.Version = 4
	svc := NewPricingService(store, nil, time.Minute, nil, quietLogger())

	_, err := svc.Update(context.Background(), Actor{}, PriceConfigUpdate{Version: 3})
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Zero(t, store.updates)
}

func TestUpdate_Rejects(t *testing.T) {
	negative := -1.0
	zero := 0
	emptyLabel := []SlotInput{{Label: ""}}

	tests := []struct {
		name string
		req  PriceConfigUpdate
	}{
		{"Negative base", PriceConfigUpdate{BasePrice: &negative}},
		{"Included guests below one", PriceConfigUpdate{IncludedGuests: &zero}},
		{"Max guests below one", PriceConfigUpdate{MaxGuests: &zero}},
		{"Empty slot label", PriceConfigUpdate{ShortCruiseSlots: &emptyLabel}},
		{"Negative addon", PriceConfigUpdate{Addons: map[string]json.RawMessage{"bonfire": json.RawMessage(`-5`)}}},
		{"Malformed addon", PriceConfigUpdate{Addons: map[string]json.RawMessage{"bonfire": json.RawMessage(`"cheap"`)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakePriceStore{cfg: defaultConfig()}
			svc := NewPricingService(store, nil, time.Minute, nil, quietLogger())

			_, err := svc.Update(context.Background(), Actor{}, tt.req)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, CodeInvalidRequest, ve.Code)
			assert.Zero(t, store.updates)
		})
	}
}

func TestHistoryLimit(t *testing.T) {
	store := &fakePriceStore{}
	svc := NewPricingService(store, nil, time.Minute, nil, quietLogger())

	_, err := svc.History()
	require.NoError(t, err)
	assert.Equal(t, PriceHistoryLimit, store.lastLimit)
}
