package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultDashboardCapacity is used when the price config cannot be read
const DefaultDashboardCapacity = 160

// Activity types in the dashboard feed
const (
	ActivityBooking = "booking"
	ActivityEnquiry = "enquiry"
)

// TodayStats is the capacity picture for the current day
type TodayStats struct {
	Bookings       int `json:"bookings"`
	Guests         int `json:"guests"`
	AvailableSeats int `json:"availableSeats"`
}

// RecentActivity is one row of the merged booking/enquiry feed
type RecentActivity struct {
	Type      string    `json:"type" db:"type"`
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Date      time.Time `json:"date" db:"date"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// DayCount is a per-day-of-month booking count
type DayCount struct {
	Day   int `json:"day" db:"day"`
	Count int `json:"count" db:"count"`
}

// DashboardCounts are the raw aggregates read from the store
type DashboardCounts struct {
	Bookings           int `db:"bookings"`
	MailBookings       int `db:"mail_bookings"`
	PrivateBookings    int `db:"private_bookings"`
	PrivateEnquiries   int `db:"private_enquiries"`
	GroupBookings      int `db:"group_bookings"`
	GroupEnquiries     int `db:"group_enquiries"`
	GalleryImages      int `db:"gallery_images"`
	PublishedStories   int `db:"published_stories"`
	TodayBookings      int `db:"today_bookings"`
	TodayBookingGuests int `db:"today_booking_guests"`
	TodayEnquiries     int `db:"today_enquiries"`
	TodayEnquiryGuests int `db:"today_enquiry_guests"`
}

// DashboardStats is the admin overview payload
type DashboardStats struct {
	TotalBookings  int              `json:"totalBookings"`
	PrivateCruises int              `json:"privateCruises"`
	GroupCruises   int              `json:"groupCruises"`
	GalleryImages  int              `json:"galleryImages"`
	Stories        int              `json:"stories"`
	TotalCapacity  int              `json:"totalCapacity"`
	TodayStats     TodayStats       `json:"todayStats"`
	RecentActivity []RecentActivity `json:"recentActivity"`
	MonthlyData    []DayCount       `json:"monthlyData"`
}

// Analytics periods
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// TypeRevenue is a count and revenue per booking type
type TypeRevenue struct {
	Type         string  `json:"type" db:"type"`
	Count        int     `json:"count" db:"count"`
	TotalRevenue float64 `json:"totalRevenue" db:"total_revenue"`
}

// DailyTrend is a count and revenue per day
type DailyTrend struct {
	Date    string  `json:"date" db:"date"`
	Count   int     `json:"count" db:"count"`
	Revenue float64 `json:"revenue" db:"revenue"`
}

// Analytics is the admin trend payload
type Analytics struct {
	Period             string         `json:"period"`
	Since              time.Time      `json:"since"`
	BookingsByType     []TypeRevenue  `json:"bookingsByType"`
	MailBookingsByType []FormTypeStat `json:"mailBookingsByType"`
	DailyTrend         []DailyTrend   `json:"dailyTrend"`
}
