package models

import (
	"time"

	"github.com/google/uuid"
)

// BookingType identifies the cruise product of a paid booking
type BookingType string

const (
	BookingTypeShortCruise BookingType = "SHORT_CRUISE"
	BookingTypeLongCruise  BookingType = "LONG_CRUISE"
	BookingTypePrivate     BookingType = "PRIVATE"
	BookingTypeGroup       BookingType = "GROUP"
)

// IsValid reports whether t is a known booking type
func (t BookingType) IsValid() bool {
	switch t {
	case BookingTypeShortCruise, BookingTypeLongCruise, BookingTypePrivate, BookingTypeGroup:
		return true
	}
	return false
}

// BookingTypes lists every valid booking type for request validation
var BookingTypes = []string{
	string(BookingTypeShortCruise),
	string(BookingTypeLongCruise),
	string(BookingTypePrivate),
	string(BookingTypeGroup),
}

// PaymentStatus tracks the gateway side of a booking
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// BookingStatus tracks the operational side of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// BookingAddon is a priced addon captured at booking time
type BookingAddon struct {
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Price float64 `json:"price"`
}

// BookingPricing is the price snapshot stored with a booking
type BookingPricing struct {
	Adults      int     `json:"adults"`
	Children    int     `json:"children"`
	AdultPrice  float64 `json:"adultPrice"`
	ChildPrice  float64 `json:"childPrice"`
	SlotPrice   float64 `json:"slotPrice"`
	AddonsTotal float64 `json:"addonsTotal"`
	TotalAmount float64 `json:"totalAmount"`
}

// BookingSlot is the slot snapshot stored with a booking
type BookingSlot struct {
	Label      string  `json:"label" db:"slot_label"`
	Time       string  `json:"time" db:"slot_time"`
	AdultPrice float64 `json:"adultPrice" db:"adult_price"`
	ChildPrice float64 `json:"childPrice" db:"child_price"`
}

// Booking is a payment-gated cruise reservation
type Booking struct {
	ID               uuid.UUID             `json:"id" db:"id"`
	UserID           uuid.UUID             `json:"userId" db:"user_id"`
	BookingType      BookingType           `json:"bookingType" db:"booking_type"`
	Date             time.Time             `json:"date" db:"date"`
	Slot             BookingSlot           `json:"slot" db:"-"`
	Adults           int                   `json:"adults" db:"adults"`
	Children         int                   `json:"children" db:"children"`
	Guests           int                   `json:"guests" db:"guests"`
	Addons           JSONB[[]BookingAddon] `json:"addons" db:"addons"`
	PricingBreakdown JSONB[BookingPricing] `json:"pricingBreakdown" db:"pricing_breakdown"`
	SpecialRequest   NullString            `json:"specialRequest" db:"special_request"`
	GatewayOrderID   string                `json:"razorpayOrderId" db:"gateway_order_id"`
	GatewayPaymentID NullString            `json:"razorpayPaymentId" db:"gateway_payment_id"`
	GatewaySignature NullString            `json:"-" db:"gateway_signature"`
	PaymentStatus    PaymentStatus         `json:"paymentStatus" db:"payment_status"`
	BookingStatus    BookingStatus         `json:"bookingStatus" db:"booking_status"`
	CreatedAt        time.Time             `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time             `json:"updatedAt" db:"updated_at"`
}

// BookingWithUser is a booking listing row with the owner joined in
type BookingWithUser struct {
	Booking
	User UserSummary `json:"user" db:"-"`
}

// CreateBookingResult is returned to the client to open checkout
type CreateBookingResult struct {
	BookingID uuid.UUID `json:"bookingId"`
	OrderID   string    `json:"orderId"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Key       string    `json:"key"`
}
