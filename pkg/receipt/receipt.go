package receipt

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// Line is a priced row on the receipt
type Line struct {
	Label  string
	Amount float64
}

// Data is what a receipt shows
type Data struct {
	BookingID     string
	OrderID       string
	PaymentID     string
	CustomerName  string
	CustomerEmail string
	BookingType   string
	Date          time.Time
	SlotLabel     string
	SlotTime      string
	Adults        int
	Children      int
	Lines         []Line
	Total         float64
	Currency      string
	IssuedAt      time.Time
}

// Generator renders signed PDF receipts
type Generator struct {
	secret []byte
}

// NewGenerator creates a generator signing QR payloads with secret
func NewGenerator(secret string) *Generator {
	return &Generator{secret: []byte(secret)}
}

// Payload returns "bookingId|orderId|signature" for the QR code
func (g *Generator) Payload(bookingID, orderID string) string {
	data := bookingID + "|" + orderID
	return data + "|" + g.sign(data)
}

// VerifyPayload checks a scanned QR payload
func (g *Generator) VerifyPayload(payload string) (bookingID, orderID string, ok bool) {
	parts := strings.Split(payload, "|")
	if len(parts) != 3 {
		return "", "", false
	}
	expected := g.sign(parts[0] + "|" + parts[1])
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (g *Generator) sign(data string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// Render produces the PDF bytes
func (g *Generator) Render(d Data) ([]byte, error) {
	qrPNG, err := qrcode.Encode(g.Payload(d.BookingID, d.OrderID), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Receipt "+d.BookingID, false)
	pdf.AddPage()
	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "Booking Receipt")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 11)
	rows := [][2]string{
		{"Booking ID", d.BookingID},
		{"Order ID", d.OrderID},
		{"Payment ID", d.PaymentID},
		{"Name", d.CustomerName},
		{"Email", d.CustomerEmail},
		{"Cruise", d.BookingType},
		{"Date", d.Date.Format("02 Jan 2006")},
		{"Slot", strings.TrimSpace(d.SlotLabel + " " + d.SlotTime)},
		{"Guests", fmt.Sprintf("%d adult(s), %d child(ren)", d.Adults, d.Children)},
	}
	for _, r := range rows {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(40, 8, r[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(100, 8, tr(r[1]), "", 1, "L", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(110, 9, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(40, 9, "Amount ("+d.Currency+")", "B", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, l := range d.Lines {
		pdf.CellFormat(110, 8, tr(l.Label), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, fmt.Sprintf("%.2f", l.Amount), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(110, 10, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(40, 10, fmt.Sprintf("%.2f", d.Total), "T", 1, "R", false, 0, "")

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 155, 30, 40, 40, false, opts, 0, "")

	pdf.SetY(-30)
	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(0, 6, "Issued "+d.IssuedAt.Format("02 Jan 2006 15:04 MST")+". Present the QR code at boarding.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate pdf: %w", err)
	}
	return buf.Bytes(), nil
}
