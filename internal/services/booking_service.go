package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/models"
	"github.com/tsangpocruise/booking-backend/pkg/payment"
	"github.com/tsangpocruise/booking-backend/pkg/receipt"
)

// BookingStore persists payment-gated bookings
type BookingStore interface {
	Create(b *models.Booking) error
	GetByID(id uuid.UUID) (*models.Booking, error)
	MarkFailed(id uuid.UUID, paymentID, signature string) (bool, error)
	Confirm(id uuid.UUID, paymentID, signature string, date time.Time) (bool, error)
	ListByUser(userID uuid.UUID) ([]models.BookingWithUser, error)
	ListAll() ([]models.BookingWithUser, error)
}

// PaymentGateway creates orders and checks checkout signatures
type PaymentGateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, req payment.OrderRequest) (*payment.Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// PriceSource yields the current price sheet
type PriceSource interface {
	Current(ctx context.Context) (*models.PriceConfig, error)
}

// DateGate parses booking dates, applies the calendar rules and reports daily capacity
type DateGate interface {
	ParseDate(value string) (time.Time, error)
	CheckDate(date time.Time) models.Availability
	IsFullyBooked(date time.Time) (bool, error)
}

// UserLookup loads account details
type UserLookup interface {
	GetUserByID(id uuid.UUID) (*models.User, error)
}

// BookingService runs the create, verify and receipt flows
type BookingService struct {
	bookings BookingStore
	prices   PriceSource
	dates    DateGate
	gateway  PaymentGateway
	users    UserLookup
	receipts *receipt.Generator
	currency string
	logger   *logrus.Logger
	now      func() time.Time
}

// NewBookingService creates a new booking service
func NewBookingService(bookings BookingStore, prices PriceSource, dates DateGate, gateway PaymentGateway, users UserLookup, receipts *receipt.Generator, currency string, logger *logrus.Logger) *BookingService {
	if currency == "" {
		currency = "INR"
	}
	return &BookingService{
		bookings: bookings,
		prices:   prices,
		dates:    dates,
		gateway:  gateway,
		users:    users,
		receipts: receipts,
		currency: currency,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateBookingInput is the checkout request
type CreateBookingInput struct {
	BookingType    string   `json:"bookingType" binding:"required,bookingtype"`
	Date           string   `json:"date" binding:"required"`
	Slot           string   `json:"slot" binding:"required"`
	Adults         int      `json:"adults"`
	Children       int      `json:"children"`
	Addons         []string `json:"addons"`
	SpecialRequest string   `json:"specialRequest"`
}

// Create prices a booking from the server-side sheet, opens a gateway
// order and stores the booking as pending.
func (s *BookingService) Create(ctx context.Context, userID uuid.UUID, in CreateBookingInput) (*models.CreateBookingResult, error) {
	bookingType := models.BookingType(in.BookingType)
	if !bookingType.IsValid() {
		return nil, invalid("Invalid booking type")
	}
	if in.Adults < 1 {
		return nil, invalid("At least one adult is required")
	}
	if in.Children < 0 {
		return nil, invalid("Children cannot be negative")
	}
	date, err := s.dates.ParseDate(in.Date)
	if err != nil {
		return nil, invalid("Invalid date")
	}
	if availability := s.dates.CheckDate(date); !availability.Available {
		return nil, &ValidationError{Code: CodeDateUnavailable, Message: availability.Reason}
	}

	full, err := s.dates.IsFullyBooked(date)
	if err != nil {
		return nil, err
	}
	if full {
		return nil, &ValidationError{Code: CodeDateFullyBooked, Message: "Selected date is fully booked"}
	}

	cfg, err := s.prices.Current(ctx)
	if err != nil {
		return nil, err
	}
	guests := in.Adults + in.Children
	if guests > cfg.MaxGuests {
		return nil, invalid("Maximum %d guests allowed", cfg.MaxGuests)
	}

	slot, ok := cfg.FindSlot(strings.TrimSpace(in.Slot))
	if !ok || !slot.Enabled {
		return nil, &ValidationError{Code: CodeInvalidSlot, Message: "Selected slot is not available"}
	}

	addons := PriceAddons(cfg.Addons.V, in.Addons)
	pricing := PriceBooking(slot, in.Adults, in.Children, addons)

	order, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
		Amount:   int64(math.Round(pricing.TotalAmount * 100)),
		Currency: s.currency,
		Receipt:  "receipt_" + strconv.FormatInt(s.now().UnixMilli(), 10),
		Notes: map[string]string{
			"userId":      userID.String(),
			"bookingType": string(bookingType),
			"date":        date.Format(models.DateLayout),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	now := s.now()
	booking := &models.Booking{
		ID:          uuid.New(),
		UserID:      userID,
		BookingType: bookingType,
		Date:        date,
		Slot: models.BookingSlot{
			Label:      slot.Label,
			Time:       slot.Time,
			AdultPrice: slot.AdultPrice,
			ChildPrice: slot.ChildPrice,
		},
		Adults:           in.Adults,
		Children:         in.Children,
		Guests:           guests,
		Addons:           models.JSONB[[]models.BookingAddon]{V: addons},
		PricingBreakdown: models.JSONB[models.BookingPricing]{V: pricing},
		SpecialRequest:   models.NewNullString(strings.TrimSpace(in.SpecialRequest)),
		GatewayOrderID:   order.ID,
		PaymentStatus:    models.PaymentStatusPending,
		BookingStatus:    models.BookingStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.bookings.Create(booking); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"order_id":   order.ID,
		"amount":     pricing.TotalAmount,
	}).Info("Booking created, awaiting payment")

	return &models.CreateBookingResult{
		BookingID: booking.ID,
		OrderID:   order.ID,
		Amount:    pricing.TotalAmount,
		Currency:  s.currency,
		Key:       s.gateway.KeyID(),
	}, nil
}

// PriceAddons resolves requested addon keys against the sheet. Unknown and
// disabled keys are skipped, and repeats count once.
func PriceAddons(available map[string]models.Addon, keys []string) []models.BookingAddon {
	seen := make(map[string]bool, len(keys))
	out := make([]models.BookingAddon, 0, len(keys))
	for _, key := range keys {
		addon, ok := available[key]
		if !ok || !addon.Enabled || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, models.BookingAddon{Name: key, Label: addon.Label, Price: addon.Price})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PriceBooking computes the breakdown stored with a booking
func PriceBooking(slot models.CruiseSlot, adults, children int, addons []models.BookingAddon) models.BookingPricing {
	slotPrice := float64(adults)*slot.AdultPrice + float64(children)*slot.ChildPrice
	var addonsTotal float64
	for _, a := range addons {
		addonsTotal += a.Price
	}
	return models.BookingPricing{
		Adults:      adults,
		Children:    children,
		AdultPrice:  slot.AdultPrice,
		ChildPrice:  slot.ChildPrice,
		SlotPrice:   slotPrice,
		AddonsTotal: addonsTotal,
		TotalAmount: slotPrice + addonsTotal,
	}
}

// VerifyPaymentInput is posted by the client after checkout
type VerifyPaymentInput struct {
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
	BookingID string `json:"bookingId" binding:"required"`
}

// VerifyPayment checks the checkout signature and confirms the booking.
// A mismatch cancels a still-pending booking. Repeating a successful
// verification returns the confirmed booking without counting it again.
func (s *BookingService) VerifyPayment(userID uuid.UUID, in VerifyPaymentInput) (*models.Booking, error) {
	id, err := uuid.Parse(in.BookingID)
	if err != nil {
		return nil, invalid("Invalid booking ID")
	}

	booking, err := s.bookings.GetByID(id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	if booking.UserID != userID {
		return nil, ErrForbidden
	}
	if booking.GatewayOrderID != in.OrderID {
		return nil, &ValidationError{Code: CodeOrderMismatch, Message: "Order ID does not match booking"}
	}

	log := s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"order_id":   in.OrderID,
		"payment_id": in.PaymentID,
	})

	if !s.gateway.VerifySignature(in.OrderID, in.PaymentID, in.Signature) {
		failed, err := s.bookings.MarkFailed(booking.ID, in.PaymentID, in.Signature)
		if err != nil {
			return nil, err
		}
		log.WithField("marked_failed", failed).Warn("Payment signature mismatch")
		return nil, ErrPaymentVerification
	}

	if booking.PaymentStatus == models.PaymentStatusSuccess {
		return booking, nil
	}

	confirmed, err := s.bookings.Confirm(booking.ID, in.PaymentID, in.Signature, booking.Date)
	if err != nil {
		return nil, err
	}

	booking, err = s.bookings.GetByID(id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	if booking.PaymentStatus != models.PaymentStatusSuccess {
		log.WithField("payment_status", booking.PaymentStatus).Warn("Booking left pending state before confirmation")
		return nil, ErrPaymentVerification
	}

	if confirmed {
		log.Info("Payment verified, booking confirmed")
	}
	return booking, nil
}

// MyBookings lists a user's bookings
func (s *BookingService) MyBookings(userID uuid.UUID) ([]models.BookingWithUser, error) {
	return s.bookings.ListByUser(userID)
}

// AllBookings lists every booking
func (s *BookingService) AllBookings() ([]models.BookingWithUser, error) {
	return s.bookings.ListAll()
}

// Receipt renders the PDF receipt of a confirmed booking for its owner or an admin
func (s *BookingService) Receipt(requester *models.User, id uuid.UUID) ([]byte, error) {
	booking, err := s.bookings.GetByID(id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	if booking.UserID != requester.ID && !requester.IsAdmin() {
		return nil, ErrForbidden
	}
	if booking.BookingStatus != models.BookingStatusConfirmed {
		return nil, ErrBookingNotConfirmed
	}

	owner := requester
	if booking.UserID != requester.ID {
		owner, err = s.users.GetUserByID(booking.UserID)
		if err != nil {
			return nil, err
		}
		if owner == nil {
			owner = &models.User{}
		}
	}

	return s.receipts.Render(receiptData(booking, owner, s.currency, s.now()))
}

func receiptData(b *models.Booking, owner *models.User, currency string, issuedAt time.Time) receipt.Data {
	p := b.PricingBreakdown.V
	lines := []receipt.Line{
		{Label: fmt.Sprintf("Adults x %d @ %.2f", p.Adults, p.AdultPrice), Amount: float64(p.Adults) * p.AdultPrice},
	}
	if p.Children > 0 {
		lines = append(lines, receipt.Line{
			Label:  fmt.Sprintf("Children x %d @ %.2f", p.Children, p.ChildPrice),
			Amount: float64(p.Children) * p.ChildPrice,
		})
	}
	for _, a := range b.Addons.V {
		lines = append(lines, receipt.Line{Label: a.Label, Amount: a.Price})
	}

	return receipt.Data{
		BookingID:     b.ID.String(),
		OrderID:       b.GatewayOrderID,
		PaymentID:     b.GatewayPaymentID.String,
		CustomerName:  owner.FullName,
		CustomerEmail: owner.Email,
		BookingType:   string(b.BookingType),
		Date:          b.Date,
		SlotLabel:     b.Slot.Label,
		SlotTime:      b.Slot.Time,
		Adults:        b.Adults,
		Children:      b.Children,
		Lines:         lines,
		Total:         p.TotalAmount,
		Currency:      currency,
		IssuedAt:      issuedAt,
	}
}
