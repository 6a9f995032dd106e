package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsangpocruise/booking-backend/internal/models"
	"github.com/tsangpocruise/booking-backend/pkg/payment"
	"github.com/tsangpocruise/booking-backend/pkg/receipt"
)

type fakeBookingStore struct {
	bookings map[uuid.UUID]*models.Booking
	creates  int
	confirms int
	counts   map[string]int
}

func newFakeBookingStore(counts map[string]int) *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[uuid.UUID]*models.Booking), counts: counts}
}

func (f *fakeBookingStore) Create(b *models.Booking) error {
	f.creates++
	c := *b
	f.bookings[b.ID] = &c
	return nil
}

func (f *fakeBookingStore) GetByID(id uuid.UUID) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (f *fakeBookingStore) MarkFailed(id uuid.UUID, paymentID, signature string) (bool, error) {
	b := f.bookings[id]
	if b.PaymentStatus != models.PaymentStatusPending {
		return false, nil
	}
	b.PaymentStatus = models.PaymentStatusFailed
	b.BookingStatus = models.BookingStatusCancelled
	return true, nil
}

func (f *fakeBookingStore) Confirm(id uuid.UUID, paymentID, signature string, date time.Time) (bool, error) {
	b := f.bookings[id]
	if b.PaymentStatus != models.PaymentStatusPending {
		return false, nil
	}
	f.confirms++
	b.PaymentStatus = models.PaymentStatusSuccess
	b.BookingStatus = models.BookingStatusConfirmed
	b.GatewayPaymentID = models.NewNullString(paymentID)
	f.counts[date.Format(models.DateLayout)]++
	return true, nil
}

func (f *fakeBookingStore) ListByUser(userID uuid.UUID) ([]models.BookingWithUser, error) {
	var out []models.BookingWithUser
	for _, b := range f.bookings {
		if b.UserID == userID {
			out = append(out, models.BookingWithUser{Booking: *b})
		}
	}
	return out, nil
}

func (f *fakeBookingStore) ListAll() ([]models.BookingWithUser, error) {
	var out []models.BookingWithUser
	for _, b := range f.bookings {
		out = append(out, models.BookingWithUser{Booking: *b})
	}
	return out, nil
}

type staticPrices struct {
	cfg *models.PriceConfig
	err error
}

func (s staticPrices) Current(context.Context) (*models.PriceConfig, error) {
	return s.cfg, s.err
}

// fakeGateway signs like the real client but never leaves the process
type fakeGateway struct {
	*payment.Client
	orders []payment.OrderRequest
}

func (f *fakeGateway) CreateOrder(_ context.Context, req payment.OrderRequest) (*payment.Order, error) {
	f.orders = append(f.orders, req)
	return &payment.Order{ID: "order_test" + strings.Repeat("x", len(f.orders)), Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"}, nil
}

type bookingFixture struct {
	svc      *BookingService
	store    *fakeBookingStore
	calendar *fakeCalendarStore
	gateway  *fakeGateway
	users    *fakeUserStore
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	calendarStore := newFakeCalendarStore()
	calendar := newTestCalendarService(calendarStore, nil)
	store := newFakeBookingStore(calendarStore.counts)
	gateway := &fakeGateway{Client: payment.NewClient("rzp_test_key", "gateway-secret", "", quietLogger())}
	users := newFakeUserStore()

	svc := NewBookingService(store, staticPrices{cfg: defaultConfig()}, calendar, gateway, users, receipt.NewGenerator("receipt-secret"), "INR", quietLogger())
	svc.now = func() time.Time { return testToday.Add(10 * time.Hour) }

	return &bookingFixture{svc: svc, store: store, calendar: calendarStore, gateway: gateway, users: users}
}

func validBooking() CreateBookingInput {
	return CreateBookingInput{
		BookingType: string(models.BookingTypeShortCruise),
		Date:        day(5).Format(models.DateLayout),
		Slot:        "Lunch Cruise",
		Adults:      2,
		Children:    1,
		Addons:      []string{"bonfire", "unknown", "bonfire"},
	}
}

func TestCreateBooking(t *testing.T) {
	f := newBookingFixture(t)
	userID := uuid.New()

	result, err := f.svc.Create(context.Background(), userID, validBooking())
	require.NoError(t, err)

	// 2*1599 + 1*1099 + bonfire 2000
	assert.Equal(t, 6297.0, result.Amount)
	assert.Equal(t, "INR", result.Currency)
	assert.Equal(t, "rzp_test_key", result.Key)

	require.Len(t, f.gateway.orders, 1)
	order := f.gateway.orders[0]
	assert.Equal(t, int64(629700), order.Amount)
	assert.True(t, strings.HasPrefix(order.Receipt, "receipt_"))
	assert.Equal(t, userID.String(), order.Notes["userId"])
	assert.Equal(t, day(5).Format(models.DateLayout), order.Notes["date"])

	stored := f.store.bookings[result.BookingID]
	require.NotNil(t, stored)
	assert.Equal(t, 3, stored.Guests)
	assert.Equal(t, models.PaymentStatusPending, stored.PaymentStatus)
	assert.Equal(t, result.OrderID, stored.GatewayOrderID)
	assert.Equal(t, []models.BookingAddon{{Name: "bonfire", Label: "Bonfire", Price: 2000}}, stored.Addons.V)
	assert.Equal(t, 4897.0, stored.PricingBreakdown.V.SlotPrice)
}

func TestCreateBooking_FullyBooked(t *testing.T) {
	f := newBookingFixture(t)
	f.calendar.counts[day(5).Format(models.DateLayout)] = models.DefaultCalendarSettings().MaxBookingsPerDay

	_, err := f.svc.Create(context.Background(), uuid.New(), validBooking())

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, CodeDateFullyBooked, ve.Code)
	assert.Zero(t, f.store.creates)
	assert.Empty(t, f.gateway.orders)
}

func TestCreateBooking_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*CreateBookingInput)
		code   string
	}{
		{"Unknown type", func(in *CreateBookingInput) { in.BookingType = "YACHT" }, CodeInvalidRequest},
		{"No adults", func(in *CreateBookingInput) { in.Adults = 0 }, CodeInvalidRequest},
		{"Negative children", func(in *CreateBookingInput) { in.Children = -1 }, CodeInvalidRequest},
		{"Bad date", func(in *CreateBookingInput) { in.Date = "15/10/2026" }, CodeInvalidRequest},
		{"Too many guests", func(in *CreateBookingInput) { in.Adults = 151 }, CodeInvalidRequest},
		{"Unknown slot", func(in *CreateBookingInput) { in.Slot = "Midnight Cruise" }, CodeInvalidSlot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t)
			in := validBooking()
			tt.modify(&in)

			_, err := f.svc.Create(context.Background(), uuid.New(), in)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.code, ve.Code)
			assert.Zero(t, f.store.creates)
		})
	}
}

func TestCreateBooking_UnavailableDate(t *testing.T) {
	tests := []struct {
		name   string
		date   time.Time
		setup  func(*fakeCalendarStore)
		reason string
	}{
		{"Past date", day(-30), nil, ReasonPast},
		{"Same day without same-day bookings", day(0), nil, "Booking must be made at least 1 day(s) in advance"},
		{"Blocked date", day(5), func(c *fakeCalendarStore) {
			c.blocked = []models.BlockedDate{{ID: uuid.New(), Date: day(5), Reason: "Festival"}}
		}, "Festival"},
		{"Not in the available list", day(5), func(c *fakeCalendarStore) {
			c.available = []models.AvailableDate{{ID: uuid.New(), Date: day(6)}}
		}, ReasonNotListed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t)
			if tt.setup != nil {
				tt.setup(f.calendar)
			}
			in := validBooking()
			in.Date = tt.date.Format(models.DateLayout)

			_, err := f.svc.Create(context.Background(), uuid.New(), in)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, CodeDateUnavailable, ve.Code)
			assert.Equal(t, tt.reason, ve.Message)
			assert.Zero(t, f.store.creates)
			assert.Empty(t, f.gateway.orders)
		})
	}
}

func TestCreateBooking_DisabledSlot(t *testing.T) {
	f := newBookingFixture(t)
	cfg := defaultConfig()
	cfg.ShortCruiseSlots.V[1].Enabled = false
	f.svc.prices = staticPrices{cfg: cfg}

	_, err := f.svc.Create(context.Background(), uuid.New(), validBooking())
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, CodeInvalidSlot, ve.Code)
}

func createPending(t *testing.T, f *bookingFixture, userID uuid.UUID) *models.CreateBookingResult {
	t.Helper()
	result, err := f.svc.Create(context.Background(), userID, validBooking())
	require.NoError(t, err)
	return result
}

func TestVerifyPayment(t *testing.T) {
	t.Run("Matching signature confirms once", func(t *testing.T) {
		f := newBookingFixture(t)
		userID := uuid.New()
		created := createPending(t, f, userID)
		in := VerifyPaymentInput{
			OrderID:   created.OrderID,
			PaymentID: "pay_1",
			Signature: f.gateway.Signature(created.OrderID, "pay_1"),
			BookingID: created.BookingID.String(),
		}

		booking, err := f.svc.VerifyPayment(userID, in)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, booking.BookingStatus)
		assert.Equal(t, 1, f.calendar.counts[day(5).Format(models.DateLayout)])

		again, err := f.svc.VerifyPayment(userID, in)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusSuccess, again.PaymentStatus)
		assert.Equal(t, 1, f.store.confirms)
		assert.Equal(t, 1, f.calendar.counts[day(5).Format(models.DateLayout)])
	})

	t.Run("Signature mismatch cancels", func(t *testing.T) {
		f := newBookingFixture(t)
		userID := uuid.New()
		created := createPending(t, f, userID)

		_, err := f.svc.VerifyPayment(userID, VerifyPaymentInput{
			OrderID:   created.OrderID,
			PaymentID: "pay_1",
			Signature: "deadbeef",
			BookingID: created.BookingID.String(),
		})
		assert.ErrorIs(t, err, ErrPaymentVerification)

		stored := f.store.bookings[created.BookingID]
		assert.Equal(t, models.PaymentStatusFailed, stored.PaymentStatus)
		assert.Equal(t, models.BookingStatusCancelled, stored.BookingStatus)
		assert.Zero(t, f.store.confirms)
	})

	t.Run("Cancelled booking cannot be confirmed later", func(t *testing.T) {
		f := newBookingFixture(t)
		userID := uuid.New()
		created := createPending(t, f, userID)
		f.store.bookings[created.BookingID].PaymentStatus = models.PaymentStatusFailed

		_, err := f.svc.VerifyPayment(userID, VerifyPaymentInput{
			OrderID:   created.OrderID,
			PaymentID: "pay_2",
			Signature: f.gateway.Signature(created.OrderID, "pay_2"),
			BookingID: created.BookingID.String(),
		})
		assert.ErrorIs(t, err, ErrPaymentVerification)
		assert.Zero(t, f.store.confirms)
	})

	t.Run("Other user", func(t *testing.T) {
		f := newBookingFixture(t)
		created := createPending(t, f, uuid.New())

		_, err := f.svc.VerifyPayment(uuid.New(), VerifyPaymentInput{
			OrderID:   created.OrderID,
			BookingID: created.BookingID.String(),
		})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("Unknown booking", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.svc.VerifyPayment(uuid.New(), VerifyPaymentInput{BookingID: uuid.NewString()})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Order mismatch", func(t *testing.T) {
		f := newBookingFixture(t)
		userID := uuid.New()
		created := createPending(t, f, userID)

		_, err := f.svc.VerifyPayment(userID, VerifyPaymentInput{
			OrderID:   "order_other",
			PaymentID: "pay_1",
			Signature: f.gateway.Signature("order_other", "pay_1"),
			BookingID: created.BookingID.String(),
		})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, CodeOrderMismatch, ve.Code)
	})
}

func TestReceipt(t *testing.T) {
	f := newBookingFixture(t)
	owner, err := f.users.CreateUser("Asha Rao", "asha@example.com", "hash", "9876543210")
	require.NoError(t, err)
	created := createPending(t, f, owner.ID)

	_, err = f.svc.Receipt(owner, created.BookingID)
	assert.ErrorIs(t, err, ErrBookingNotConfirmed)

	_, err = f.svc.VerifyPayment(owner.ID, VerifyPaymentInput{
		OrderID:   created.OrderID,
		PaymentID: "pay_1",
		Signature: f.gateway.Signature(created.OrderID, "pay_1"),
		BookingID: created.BookingID.String(),
	})
	require.NoError(t, err)

	pdf, err := f.svc.Receipt(owner, created.BookingID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	_, err = f.svc.Receipt(admin, created.BookingID)
	assert.NoError(t, err)

	stranger := &models.User{ID: uuid.New(), Role: models.RoleUser}
	_, err = f.svc.Receipt(stranger, created.BookingID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.Receipt(owner, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateBooking_PriceSourceFailure(t *testing.T) {
	f := newBookingFixture(t)
	f.svc.prices = staticPrices{err: errors.New("db down")}

	_, err := f.svc.Create(context.Background(), uuid.New(), validBooking())
	assert.Error(t, err)
	assert.Zero(t, f.store.creates)
}
