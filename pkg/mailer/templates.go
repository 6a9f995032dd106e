package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"time"
)

// EnquiryNotice is the content of the owner notification for a new enquiry
type EnquiryNotice struct {
	ID          string
	FormName    string
	Name        string
	Phone       string
	Email       string
	Date        time.Time
	Guests      int
	CruiseType  string
	Slot        string
	Destination string
	Cabins      int
	Cruise      string
	Message     string
	Status      string
	SubmittedAt time.Time

	BasePrice         float64
	ExtraGuestPrice   float64
	ExtraGuests       int
	ExtraGuestsAmount float64
	SlotPrice         float64
	CabinPrice        float64
	TotalPrice        float64
}

// EnquirySubject is the owner notification subject line
func EnquirySubject(n EnquiryNotice) string {
	return fmt.Sprintf("New %s - %s - ₹%s", n.FormName, n.Name, rupees(n.TotalPrice))
}

// PasswordResetNotice is the content of the OTP email
type PasswordResetNotice struct {
	Name          string
	OTP           string
	ExpiryMinutes int
}

const passwordResetSubject = "Your password reset code"

var funcs = template.FuncMap{
	"rupees": rupees,
	"day":    func(t time.Time) string { return t.Format("02/01/2006") },
	"stamp":  func(t time.Time) string { return t.Format("02/01/2006, 03:04:05 PM") },
}

var enquiryTemplate = template.Must(template.New("enquiry").Funcs(funcs).Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #1e40af;">New Cruise Booking Enquiry</h2>
  <div style="background: #f3f4f6; padding: 20px; border-radius: 8px;">
    <h3 style="color: #374151;">{{.FormName}}</h3>
    <hr style="border: 1px solid #d1d5db;">

    <h4 style="color: #4b5563;">Customer Details</h4>
    <p><strong>Name:</strong> {{.Name}}</p>
    <p><strong>Phone:</strong> {{.Phone}}</p>
    <p><strong>Email:</strong> {{.Email}}</p>

    <h4 style="color: #4b5563; margin-top: 20px;">Price Details</h4>
    <div style="background: white; padding: 15px; border-radius: 4px;">
      <p><strong>Base Price:</strong> ₹{{rupees .BasePrice}}</p>
      <p><strong>Extra Guest Price:</strong> ₹{{rupees .ExtraGuestPrice}} per guest</p>
      <p><strong>Total Guests:</strong> {{.Guests}}</p>
      <p><strong>Extra Guests:</strong> {{.ExtraGuests}}</p>
      <p><strong>Extra Guests Amount:</strong> ₹{{rupees .ExtraGuestsAmount}}</p>
      {{if .SlotPrice}}<p><strong>Slot Price:</strong> ₹{{rupees .SlotPrice}}</p>{{end}}
      {{if .CabinPrice}}<p><strong>Extra Cabin Price:</strong> ₹{{rupees .CabinPrice}}</p>{{end}}
      <hr style="margin: 15px 0;">
      <p style="font-size: 18px; font-weight: bold; color: #059669;">Total Price: ₹{{rupees .TotalPrice}}</p>
    </div>

    <h4 style="color: #4b5563; margin-top: 20px;">Booking Details</h4>
    <p><strong>Date:</strong> {{day .Date}}</p>
    <p><strong>Guests:</strong> {{.Guests}}</p>
    {{if .CruiseType}}<p><strong>Cruise Type:</strong> {{.CruiseType}}</p>{{end}}
    {{if .Slot}}<p><strong>Slot:</strong> {{.Slot}}</p>{{end}}
    {{if .Destination}}<p><strong>Destination:</strong> {{.Destination}}</p>{{end}}
    {{if .Cabins}}<p><strong>Cabins:</strong> {{.Cabins}}</p>{{end}}
    {{if .Cruise}}<p><strong>Cruise:</strong> {{.Cruise}}</p>{{end}}

    {{if .Message}}
    <h4 style="color: #4b5563; margin-top: 20px;">Special Request</h4>
    <p style="background: white; padding: 10px; border-radius: 4px;">{{.Message}}</p>
    {{end}}

    <div style="margin-top: 30px; padding: 15px; background: #e0e7ff; border-radius: 4px;">
      <p><strong>Booking ID:</strong> {{.ID}}</p>
      <p><strong>Form Type:</strong> {{.FormName}}</p>
      <p><strong>Submitted:</strong> {{stamp .SubmittedAt}}</p>
      <p><strong>Status:</strong> {{.Status}}</p>
    </div>
  </div>
  <div style="margin-top: 20px; font-size: 12px; color: #6b7280;">
    <p>This email was sent automatically from your website booking form.</p>
    <p>Price calculated based on current configuration.</p>
  </div>
</div>`))

var passwordResetTemplate = template.Must(template.New("reset").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <p>Hello {{.Name}},</p>
  <p>We received a request to reset the password on your account.</p>
  <p>Your one-time code is: <strong style="font-size: 20px;">{{.OTP}}</strong></p>
  <p>The code expires in {{.ExpiryMinutes}} minutes. If you did not ask for it you can ignore this email.</p>
</div>`))

// RenderEnquiry builds the owner notification
func RenderEnquiry(to string, n EnquiryNotice) (Message, error) {
	var buf bytes.Buffer
	if err := enquiryTemplate.Execute(&buf, n); err != nil {
		return Message{}, fmt.Errorf("failed to render enquiry email: %w", err)
	}
	return Message{To: []string{to}, Subject: EnquirySubject(n), HTML: buf.String()}, nil
}

// RenderPasswordReset builds the OTP email
func RenderPasswordReset(to string, n PasswordResetNotice) (Message, error) {
	var buf bytes.Buffer
	if err := passwordResetTemplate.Execute(&buf, n); err != nil {
		return Message{}, fmt.Errorf("failed to render reset email: %w", err)
	}
	return Message{To: []string{to}, Subject: passwordResetSubject, HTML: buf.String()}, nil
}

// rupees drops the fraction for whole amounts
func rupees(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
