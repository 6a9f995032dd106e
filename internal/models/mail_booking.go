package models

import (
	"time"

	"github.com/google/uuid"
)

// MailBookingStatus is the follow-up state of an enquiry
type MailBookingStatus string

const (
	MailBookingPending   MailBookingStatus = "pending"
	MailBookingContacted MailBookingStatus = "contacted"
	MailBookingConfirmed MailBookingStatus = "confirmed"
	MailBookingCancelled MailBookingStatus = "cancelled"
)

// IsValid reports whether s is a known enquiry status
func (s MailBookingStatus) IsValid() bool {
	switch s {
	case MailBookingPending, MailBookingContacted, MailBookingConfirmed, MailBookingCancelled:
		return true
	}
	return false
}

// MailBooking is a mail-in enquiry with a computed price
type MailBooking struct {
	ID               uuid.UUID               `json:"id" db:"id"`
	FormType         string                  `json:"formType" db:"form_type"`
	Date             time.Time               `json:"date" db:"date"`
	Name             string                  `json:"name" db:"name"`
	Phone            string                  `json:"phone" db:"phone"`
	Email            string                  `json:"email" db:"email"`
	Guests           int                     `json:"guests" db:"guests"`
	Message          NullString              `json:"message" db:"message"`
	CruiseType       NullString              `json:"cruiseType" db:"cruise_type"`
	Slot             NullString              `json:"slot" db:"slot"`
	Destination      NullString              `json:"destination" db:"destination"`
	Nights           NullString              `json:"nights" db:"nights"`
	CheckIn          NullString              `json:"checkIn" db:"check_in"`
	Cabins           *int                    `json:"cabins" db:"cabins"`
	Cruise           NullString              `json:"cruise" db:"cruise"`
	PriceCalculation JSONB[PriceCalculation] `json:"priceCalculation" db:"price_calculation"`
	Status           MailBookingStatus       `json:"status" db:"status"`
	AdminNotes       NullString              `json:"adminNotes" db:"admin_notes"`
	CreatedAt        time.Time               `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time               `json:"updatedAt" db:"updated_at"`
}

// MailBookingFilter narrows the admin listing
type MailBookingFilter struct {
	FormType string
	Status   string
	FromDate *time.Time
	ToDate   *time.Time
	Page     int
	Limit    int
}

// Pagination describes a page of results
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes the page count for total rows
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// FormTypeStat aggregates enquiries per form type
type FormTypeStat struct {
	FormType     string  `json:"formType" db:"form_type"`
	Count        int     `json:"count" db:"count"`
	TotalRevenue float64 `json:"totalRevenue" db:"total_revenue"`
}

// MailBookingStats is the admin summary of enquiries
type MailBookingStats struct {
	TotalBookings     int            `json:"totalBookings"`
	PendingBookings   int            `json:"pendingBookings"`
	ConfirmedBookings int            `json:"confirmedBookings"`
	TotalRevenue      float64        `json:"totalRevenue"`
	BookingsByType    []FormTypeStat `json:"bookingsByType"`
	RecentBookings    []MailBooking  `json:"recentBookings"`
}

// EmailStatus is the delivery outcome of a notification
type EmailStatus string

const (
	EmailStatusPending EmailStatus = "pending"
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
)

// EmailLog records an attempted notification email
type EmailLog struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	To        string        `json:"to" db:"to_address"`
	Subject   string        `json:"subject" db:"subject"`
	BookingID uuid.NullUUID `json:"bookingId" db:"booking_id"`
	FormType  NullString    `json:"formType" db:"form_type"`
	Status    EmailStatus   `json:"status" db:"status"`
	Error     NullString    `json:"error" db:"error"`
	SentAt    NullTime      `json:"sentAt" db:"sent_at"`
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`
}
