package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tsangpocruise/booking-backend/internal/models"
	"github.com/tsangpocruise/booking-backend/pkg/mailer"
	"github.com/tsangpocruise/booking-backend/pkg/validator"
)

const (
	// DefaultPageLimit is the admin listing page size when none is given
	DefaultPageLimit = 20

	// MaxPageLimit caps the admin listing page size
	MaxPageLimit = 100
)

// MailBookingStore persists enquiries
type MailBookingStore interface {
	Create(m *models.MailBooking) error
	GetByID(id uuid.UUID) (*models.MailBooking, error)
	List(f models.MailBookingFilter) ([]models.MailBooking, int, error)
	UpdateStatus(id uuid.UUID, status models.MailBookingStatus, notes *string) (*models.MailBooking, error)
	Stats() (*models.MailBookingStats, error)
}

// EmailLogStore records notification attempts
type EmailLogStore interface {
	Create(l *models.EmailLog) error
	MarkSent(id uuid.UUID) error
	MarkFailed(id uuid.UUID, cause string) error
}

// DateChecker parses and evaluates requested dates
type DateChecker interface {
	ParseDate(value string) (time.Time, error)
	CheckDate(date time.Time) models.Availability
}

// EnquiryQuoter prices enquiry forms
type EnquiryQuoter interface {
	QuoteEnquiry(ctx context.Context, formType string, in EnquiryInput) models.PriceCalculation
}

// MailBookingService handles mail-in enquiries
type MailBookingService struct {
	store      MailBookingStore
	emailLogs  EmailLogStore
	dates      DateChecker
	prices     EnquiryQuoter
	mail       mailer.Sender
	phones     *validator.PhoneValidator
	ownerEmail string
	audit      *AuditService
	logger     *logrus.Logger
	now        func() time.Time
}

// NewMailBookingService creates a new mail booking service
func NewMailBookingService(store MailBookingStore, emailLogs EmailLogStore, dates DateChecker, prices EnquiryQuoter, sender mailer.Sender, ownerEmail string, audit *AuditService, logger *logrus.Logger) *MailBookingService {
	return &MailBookingService{
		store:      store,
		emailLogs:  emailLogs,
		dates:      dates,
		prices:     prices,
		mail:       sender,
		phones:     validator.NewPhoneValidator(),
		ownerEmail: ownerEmail,
		audit:      audit,
		logger:     logger,
		now:        time.Now,
	}
}

// SubmitEnquiryInput is a public enquiry form
type SubmitEnquiryInput struct {
	FormType    string `json:"formType" binding:"required,formtype"`
	Date        string `json:"date" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Phone       string `json:"phone" binding:"required,inphone"`
	Email       string `json:"email" binding:"required,email"`
	Guests      int    `json:"guests" binding:"required,min=1"`
	Message     string `json:"message"`
	CruiseType  string `json:"cruiseType"`
	Slot        string `json:"slot"`
	Destination string `json:"destination"`
	Nights      string `json:"nights"`
	CheckIn     string `json:"checkIn"`
	Cabins      int    `json:"cabins"`
	Cruise      string `json:"cruise"`
}

// SubmitResult is returned for an accepted enquiry
type SubmitResult struct {
	BookingID      uuid.UUID             `json:"bookingId"`
	Price          float64               `json:"price"`
	PriceBreakdown models.PriceBreakdown `json:"priceBreakdown"`
}

// Submit validates and stores an enquiry, then notifies the owner.
// Notification failures are recorded but never fail the submission.
func (s *MailBookingService) Submit(ctx context.Context, in SubmitEnquiryInput) (*SubmitResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.FormType == "" || in.Date == "" || in.Name == "" || in.Phone == "" || in.Email == "" || in.Guests == 0 {
		return nil, invalid("Please fill all required fields")
	}
	if !models.IsValidFormType(in.FormType) {
		return nil, invalid("Invalid form type")
	}
	if in.Guests < 1 {
		return nil, invalid("Guests must be at least 1")
	}
	phone, err := s.phones.Validate(in.Phone)
	if err != nil {
		return nil, invalid("Invalid phone number: %s", err.Error())
	}
	if !validator.IsEmail(in.Email) {
		return nil, invalid("Invalid email address")
	}

	date, err := s.dates.ParseDate(in.Date)
	if err != nil {
		return nil, invalid("Invalid date")
	}
	if availability := s.dates.CheckDate(date); !availability.Available {
		return nil, &ValidationError{Code: CodeDateUnavailable, Message: availability.Reason}
	}

	price := s.prices.QuoteEnquiry(ctx, in.FormType, EnquiryInput{
		Guests:     in.Guests,
		CruiseType: in.CruiseType,
		Slot:       in.Slot,
		Cabins:     in.Cabins,
	})

	now := s.now()
	booking := &models.MailBooking{
		ID:               uuid.New(),
		FormType:         in.FormType,
		Date:             date,
		Name:             in.Name,
		Phone:            phone,
		Email:            strings.ToLower(in.Email),
		Guests:           in.Guests,
		Message:          models.NewNullString(strings.TrimSpace(in.Message)),
		CruiseType:       models.NewNullString(in.CruiseType),
		Slot:             models.NewNullString(in.Slot),
		Destination:      models.NewNullString(in.Destination),
		Nights:           models.NewNullString(in.Nights),
		CheckIn:          models.NewNullString(in.CheckIn),
		Cruise:           models.NewNullString(in.Cruise),
		PriceCalculation: models.JSONB[models.PriceCalculation]{V: price},
		Status:           models.MailBookingPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if in.Cabins > 0 {
		cabins := in.Cabins
		booking.Cabins = &cabins
	}

	if err := s.store.Create(booking); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"form_type":  booking.FormType,
		"total":      price.TotalPrice,
	}).Info("Enquiry submitted")

	s.notifyOwner(ctx, booking)

	return &SubmitResult{
		BookingID:      booking.ID,
		Price:          price.TotalPrice,
		PriceBreakdown: price.PriceBreakdown,
	}, nil
}

func (s *MailBookingService) notifyOwner(ctx context.Context, b *models.MailBooking) {
	log := s.logger.WithField("booking_id", b.ID)
	if s.ownerEmail == "" {
		log.Warn("OWNER_EMAIL not set, skipping enquiry notification")
		return
	}

	msg, err := mailer.RenderEnquiry(s.ownerEmail, enquiryNotice(b))
	if err != nil {
		log.WithError(err).Error("Failed to render enquiry email")
		return
	}

	entry := &models.EmailLog{
		ID:        uuid.New(),
		To:        s.ownerEmail,
		Subject:   msg.Subject,
		BookingID: uuid.NullUUID{UUID: b.ID, Valid: true},
		FormType:  models.NewNullString(b.FormType),
		Status:    models.EmailStatusPending,
		CreatedAt: s.now(),
	}
	if err := s.emailLogs.Create(entry); err != nil {
		log.WithError(err).Warn("Failed to create email log")
		entry = nil
	}

	sendErr := s.mail.Send(ctx, msg)
	if sendErr != nil {
		log.WithError(sendErr).Error("Failed to send enquiry email")
	}
	if entry == nil {
		return
	}

	if sendErr != nil {
		err = s.emailLogs.MarkFailed(entry.ID, sendErr.Error())
	} else {
		err = s.emailLogs.MarkSent(entry.ID)
	}
	if err != nil {
		log.WithError(err).Warn("Failed to update email log")
	}
}

func enquiryNotice(b *models.MailBooking) mailer.EnquiryNotice {
	p := b.PriceCalculation.V
	n := mailer.EnquiryNotice{
		ID:                b.ID.String(),
		FormName:          models.FormNames[b.FormType],
		Name:              b.Name,
		Phone:             b.Phone,
		Email:             b.Email,
		Date:              b.Date,
		Guests:            b.Guests,
		CruiseType:        b.CruiseType.String,
		Slot:              b.Slot.String,
		Destination:       b.Destination.String,
		Cruise:            b.Cruise.String,
		Message:           b.Message.String,
		Status:            string(b.Status),
		SubmittedAt:       b.CreatedAt,
		BasePrice:         p.BasePrice,
		ExtraGuestPrice:   p.ExtraGuestPrice,
		ExtraGuests:       p.PriceBreakdown.ExtraGuests,
		ExtraGuestsAmount: p.PriceBreakdown.ExtraGuestsAmount,
		SlotPrice:         p.PriceBreakdown.SlotPrice,
		CabinPrice:        p.PriceBreakdown.CabinPrice,
		TotalPrice:        p.TotalPrice,
	}
	if n.FormName == "" {
		n.FormName = b.FormType
	}
	if b.Cabins != nil {
		n.Cabins = *b.Cabins
	}
	return n
}

// CalculatePriceInput is a public price preview
type CalculatePriceInput struct {
	FormType   string `json:"formType" binding:"required,formtype"`
	Guests     int    `json:"guests" binding:"required,min=1"`
	CruiseType string `json:"cruiseType"`
	Slot       string `json:"slot"`
	Cabins     int    `json:"cabins"`
}

// CalculatePrice previews an enquiry price
func (s *MailBookingService) CalculatePrice(ctx context.Context, in CalculatePriceInput) (models.PriceCalculation, error) {
	if in.FormType == "" || in.Guests == 0 {
		return models.PriceCalculation{}, invalid("Form type and guests are required")
	}
	if !models.IsValidFormType(in.FormType) {
		return models.PriceCalculation{}, invalid("Invalid form type")
	}
	if in.Guests < 1 {
		return models.PriceCalculation{}, invalid("Guests must be at least 1")
	}
	return s.prices.QuoteEnquiry(ctx, in.FormType, EnquiryInput{
		Guests:     in.Guests,
		CruiseType: in.CruiseType,
		Slot:       in.Slot,
		Cabins:     in.Cabins,
	}), nil
}

// CheckDate reports whether a date accepts enquiries
func (s *MailBookingService) CheckDate(value string) (models.Availability, error) {
	date, err := s.dates.ParseDate(value)
	if err != nil {
		return models.Availability{}, invalid("Invalid date")
	}
	return s.dates.CheckDate(date), nil
}

// ParseDate parses a listing filter date in the business timezone
func (s *MailBookingService) ParseDate(value string) (time.Time, error) {
	return s.dates.ParseDate(value)
}

// MailBookingPage is one page of the admin listing
type MailBookingPage struct {
	Bookings   []models.MailBooking `json:"bookings"`
	Pagination models.Pagination    `json:"pagination"`
}

// List returns a filtered page of enquiries, newest first
func (s *MailBookingService) List(f models.MailBookingFilter) (*MailBookingPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	if f.Status != "" && !models.MailBookingStatus(f.Status).IsValid() {
		return nil, invalid("Invalid status")
	}

	bookings, total, err := s.store.List(f)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []models.MailBooking{}
	}
	return &MailBookingPage{Bookings: bookings, Pagination: models.NewPagination(f.Page, f.Limit, total)}, nil
}

// Get returns one enquiry
func (s *MailBookingService) Get(id uuid.UUID) (*models.MailBooking, error) {
	booking, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	return booking, nil
}

// UpdateStatusInput is an admin follow-up change
type UpdateStatusInput struct {
	Status     string  `json:"status" binding:"required"`
	AdminNotes *string `json:"adminNotes"`
}

// UpdateStatus changes the follow-up state of an enquiry
func (s *MailBookingService) UpdateStatus(actor Actor, id uuid.UUID, in UpdateStatusInput) (*models.MailBooking, error) {
	status := models.MailBookingStatus(in.Status)
	if !status.IsValid() {
		return nil, invalid("Invalid status")
	}

	booking, err := s.store.UpdateStatus(id, status, in.AdminNotes)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrNotFound
	}

	s.audit.Record(actor, AuditEvent{
		Action:     models.AuditMailBookingStatus,
		EntityType: "mail_booking",
		EntityID:   id.String(),
		Details:    map[string]interface{}{"status": status},
	})
	return booking, nil
}

// Stats summarizes enquiries for admins
func (s *MailBookingService) Stats() (*models.MailBookingStats, error) {
	return s.store.Stats()
}
