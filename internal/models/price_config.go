package models

import (
	"time"

	"github.com/google/uuid"
)

// Enquiry form types accepted by the mail-in booking flow
const (
	FormTsangpoImperialPrivate = "tsangpo-imperial-private"
	FormPublicCharterLong      = "public-charter-long"
	FormPrivateCharter         = "private-charter"
	FormOvernightCruise        = "overnight-cruise"
	FormPrivateCruiseBooking   = "private-cruise-booking"
)

// FormTypes lists every valid enquiry form type
var FormTypes = []string{
	FormTsangpoImperialPrivate,
	FormPublicCharterLong,
	FormPrivateCharter,
	FormOvernightCruise,
	FormPrivateCruiseBooking,
}

// FormNames maps form types to human-readable titles used in notifications
var FormNames = map[string]string{
	FormTsangpoImperialPrivate: "Tsangpo Imperial Private Booking",
	FormPublicCharterLong:      "Public Charter Long Cruise Enquiry",
	FormPrivateCharter:         "Private Charter Enquiry",
	FormOvernightCruise:        "Overnight Cruise Enquiry",
	FormPrivateCruiseBooking:   "Private Cruise Booking Form",
}

// IsValidFormType reports whether formType is one of FormTypes
func IsValidFormType(formType string) bool {
	_, ok := FormNames[formType]
	return ok
}

// YogaSlotLabel is the slot that must always be present in the sheet
const YogaSlotLabel = "Yoga & Meditation Cruise"

// CruiseSlot is a named, time-boxed cruise offering
type CruiseSlot struct {
	Label      string  `json:"label"`
	Time       string  `json:"time"`
	AdultPrice float64 `json:"adultPrice"`
	ChildPrice float64 `json:"childPrice"`
	Enabled    bool    `json:"enabled"`
}

// Addon is an optional priced extra
type Addon struct {
	Label   string  `json:"label"`
	Price   float64 `json:"price"`
	Enabled bool    `json:"enabled"`
}

// DefaultAddonLabels holds display labels for the known addon keys
var DefaultAddonLabels = map[string]string{
	"campsite":   "Campsite",
	"bonfire":    "Bonfire",
	"conference": "Conference Hall",
	"rooms":      "Guest Rooms",
}

// FormPrice is the per-form override block
type FormPrice struct {
	BasePrice        float64 `json:"basePrice"`
	ShortCruisePrice float64 `json:"shortCruisePrice,omitempty"`
	PerCabinPrice    float64 `json:"perCabinPrice,omitempty"`
}

// FormSpecificPricing holds base price overrides per enquiry form
type FormSpecificPricing struct {
	TsangpoImperialPrivate FormPrice `json:"tsangpoImperialPrivate"`
	PublicCharterLong      FormPrice `json:"publicCharterLong"`
	PrivateCharter         FormPrice `json:"privateCharter"`
	OvernightCruise        FormPrice `json:"overnightCruise"`
	PrivateCruiseBooking   FormPrice `json:"privateCruiseBooking"`
}

// ForForm returns the override block for a form type
func (p FormSpecificPricing) ForForm(formType string) (FormPrice, bool) {
	switch formType {
	case FormTsangpoImperialPrivate:
		return p.TsangpoImperialPrivate, true
	case FormPublicCharterLong:
		return p.PublicCharterLong, true
	case FormPrivateCharter:
		return p.PrivateCharter, true
	case FormOvernightCruise:
		return p.OvernightCruise, true
	case FormPrivateCruiseBooking:
		return p.PrivateCruiseBooking, true
	}
	return FormPrice{}, false
}

// PriceConfig is the single current price sheet
type PriceConfig struct {
	BasePrice           float64                    `json:"basePrice" db:"base_price"`
	IncludedGuests      int                        `json:"includedGuests" db:"included_guests"`
	ExtraGuestPrice     float64                    `json:"extraGuestPrice" db:"extra_guest_price"`
	MaxGuests           int                        `json:"maxGuests" db:"max_guests"`
	ShortCruiseSlots    JSONB[[]CruiseSlot]        `json:"shortCruiseSlots" db:"short_cruise_slots"`
	Addons              JSONB[map[string]Addon]    `json:"addons" db:"addons"`
	FormSpecificPricing JSONB[FormSpecificPricing] `json:"formSpecificPricing" db:"form_specific_pricing"`
	Version             int                        `json:"version" db:"version"`
	UpdatedBy           uuid.NullUUID              `json:"updatedBy" db:"updated_by"`
	UpdatedAt           time.Time                  `json:"updatedAt" db:"updated_at"`
}

// FindSlot returns the slot with the given label
func (p *PriceConfig) FindSlot(label string) (CruiseSlot, bool) {
	for _, s := range p.ShortCruiseSlots.V {
		if s.Label == label {
			return s, true
		}
	}
	return CruiseSlot{}, false
}

// PriceConfigSnapshot is a history entry written on every update
type PriceConfigSnapshot struct {
	ID        uuid.UUID          `json:"id" db:"id"`
	Version   int                `json:"version" db:"version"`
	Config    JSONB[PriceConfig] `json:"config" db:"config"`
	ChangedBy uuid.NullUUID      `json:"changedBy" db:"changed_by"`
	CreatedAt time.Time          `json:"createdAt" db:"created_at"`
}

// DefaultPriceConfig returns the canonical default price sheet
func DefaultPriceConfig() PriceConfig {
	return PriceConfig{
		BasePrice:       8000,
		IncludedGuests:  1,
		ExtraGuestPrice: 300,
		MaxGuests:       150,
		ShortCruiseSlots: JSONB[[]CruiseSlot]{V: []CruiseSlot{
			{Label: YogaSlotLabel, Time: "09:00 AM – 11:00 AM", AdultPrice: 0, ChildPrice: 0, Enabled: true},
			{Label: "Lunch Cruise", Time: "12:30 PM – 02:30 PM", AdultPrice: 1599, ChildPrice: 1099, Enabled: true},
			{Label: "Sunset Serenity Cruise", Time: "03:30 PM – 05:00 PM", AdultPrice: 999, ChildPrice: 599, Enabled: true},
			{Label: "Moonlight Cruise (Dinner Cruise)", Time: "07:00 PM – 09:00 PM", AdultPrice: 1999, ChildPrice: 1199, Enabled: true},
		}},
		Addons: JSONB[map[string]Addon]{V: map[string]Addon{
			"campsite":   {Label: "Campsite", Price: 4000, Enabled: true},
			"bonfire":    {Label: "Bonfire", Price: 2000, Enabled: true},
			"conference": {Label: "Conference Hall", Price: 5000, Enabled: true},
			"rooms":      {Label: "Guest Rooms", Price: 8000, Enabled: true},
		}},
		FormSpecificPricing: JSONB[FormSpecificPricing]{V: FormSpecificPricing{
			TsangpoImperialPrivate: FormPrice{BasePrice: 12000},
			PublicCharterLong:      FormPrice{BasePrice: 15000},
			PrivateCharter:         FormPrice{BasePrice: 10000, ShortCruisePrice: 6000},
			OvernightCruise:        FormPrice{BasePrice: 25000, PerCabinPrice: 5000},
			PrivateCruiseBooking:   FormPrice{BasePrice: 18000},
		}},
		Version: 1,
	}
}

// PriceBreakdown itemizes an enquiry price
type PriceBreakdown struct {
	BaseAmount        float64 `json:"baseAmount"`
	ExtraGuests       int     `json:"extraGuests"`
	ExtraGuestsAmount float64 `json:"extraGuestsAmount"`
	SlotPrice         float64 `json:"slotPrice"`
	CabinPrice        float64 `json:"cabinPrice"`
}

// PriceCalculation is the result of pricing an enquiry
type PriceCalculation struct {
	BasePrice       float64        `json:"basePrice"`
	ExtraGuestPrice float64        `json:"extraGuestPrice"`
	PerGuestPrice   float64        `json:"perGuestPrice"`
	TotalPrice      float64        `json:"totalPrice"`
	PriceBreakdown  PriceBreakdown `json:"priceBreakdown"`
}
