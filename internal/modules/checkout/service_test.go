package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"stayhub/internal/database"
	"stayhub/internal/domain"
	"stayhub/internal/modules/payment"
)

// Mock collaborators

type MockPropertyReader struct {
	mock.Mock
}

func (m *MockPropertyReader) GetByID(ctx context.Context, id int64) (*domain.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}

type MockReservationStore struct {
	mock.Mock
}

func (m *MockReservationStore) CheckAvailability(ctx context.Context, propertyID int64, checkIn, checkOut time.Time) (bool, error) {
	args := m.Called(ctx, propertyID, checkIn, checkOut)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationStore) Create(ctx context.Context, res *domain.Reservation) error {
	args := m.Called(ctx, res)
	if res != nil && args.Error(0) == nil {
		res.ID = 777 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockReservationStore) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTransactionStore struct {
	mock.Mock
}

func (m *MockTransactionStore) Create(ctx context.Context, t *domain.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTransactionStore) GetByPaymentIntentID(ctx context.Context, intentID string) (*domain.Transaction, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionStore) MarkCompletedIdempotent(ctx context.Context, intentID string, reservationID int64, completedAt time.Time) (bool, error) {
	args := m.Called(ctx, intentID, reservationID, completedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionStore) MarkFailed(ctx context.Context, intentID, reason string) error {
	args := m.Called(ctx, intentID, reason)
	return args.Error(0)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*payment.Intent, error) {
	args := m.Called(ctx, amountMinor, currency, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockPaymentGateway) GetIntent(ctx context.Context, intentID string) (*payment.Intent, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) NotifyReservationConfirmed(ctx context.Context, userID, reservationID, propertyID int64) error {
	args := m.Called(ctx, userID, reservationID, propertyID)
	return args.Error(0)
}

func (m *MockNotificationSender) NotifyPaymentReceived(ctx context.Context, userID int64, reference string, amount float64, currency string) error {
	args := m.Called(ctx, userID, reference, amount, currency)
	return args.Error(0)
}

func newTestService(props *MockPropertyReader, resv *MockReservationStore, txns *MockTransactionStore, gw *MockPaymentGateway, notifs *MockNotificationSender) *Service {
	return NewService(props, resv, txns, gw, notifs, testRates, "USD", nil)
}

func testProperty() *domain.Property {
	return &domain.Property{
		ID:            42,
		HostID:        7,
		Title:         "Loft near the river",
		MaxGuests:     4,
		PricePerNight: 100,
		Currency:      "USD",
		IsActive:      true,
	}
}

func futureDate(daysAhead int) time.Time {
	return time.Now().Truncate(24 * time.Hour).AddDate(0, 0, daysAhead)
}

/* ---------- Calculate ---------- */

func TestCalculate_Success(t *testing.T) {
	props := new(MockPropertyReader)
	props.On("GetByID", mock.Anything, int64(42)).Return(testProperty(), nil)

	svc := newTestService(props, new(MockReservationStore), new(MockTransactionStore), new(MockPaymentGateway), nil)

	p, err := svc.Calculate(context.Background(), CalculateRequest{
		PropertyID: 42,
		CheckIn:    date(2026, 3, 1),
		CheckOut:   date(2026, 3, 5),
		Guests:     2,
	})

	assert.NoError(t, err)
	assert.Equal(t, 4, p.Nights)
	assert.Equal(t, 500.0, p.Total)
}

func TestCalculate_TooManyGuests(t *testing.T) {
	props := new(MockPropertyReader)
	props.On("GetByID", mock.Anything, int64(42)).Return(testProperty(), nil)

	svc := newTestService(props, new(MockReservationStore), new(MockTransactionStore), new(MockPaymentGateway), nil)

	_, err := svc.Calculate(context.Background(), CalculateRequest{
		PropertyID: 42,
		CheckIn:    date(2026, 3, 1),
		CheckOut:   date(2026, 3, 5),
		Guests:     9,
	})

	assert.ErrorIs(t, err, ErrTooManyGuests)
}

func TestCalculate_PropertyNotFound(t *testing.T) {
	props := new(MockPropertyReader)
	props.On("GetByID", mock.Anything, int64(42)).Return(nil, gorm.ErrRecordNotFound)

	svc := newTestService(props, new(MockReservationStore), new(MockTransactionStore), new(MockPaymentGateway), nil)

	_, err := svc.Calculate(context.Background(), CalculateRequest{
		PropertyID: 42,
		CheckIn:    date(2026, 3, 1),
		CheckOut:   date(2026, 3, 5),
		Guests:     2,
	})

	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

/* ---------- CreateIntent ---------- */

func TestCreateIntent_Success(t *testing.T) {
	props := new(MockPropertyReader)
	resv := new(MockReservationStore)
	txns := new(MockTransactionStore)
	gw := new(MockPaymentGateway)

	checkIn := futureDate(30)
	checkOut := futureDate(34)

	props.On("GetByID", mock.Anything, int64(42)).Return(testProperty(), nil)
	resv.On("CheckAvailability", mock.Anything, int64(42), checkIn, checkOut).Return(true, nil)
	gw.On("CreateIntent", mock.Anything, int64(50000), "USD", mock.Anything).Return(&payment.Intent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret_abcdef123456",
		Status:       payment.IntentStatusRequiresPayment,
		Amount:       50000,
		Currency:     "usd",
	}, nil)
	txns.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(props, resv, txns, gw, nil)

	out, err := svc.CreateIntent(context.Background(), 5, CreateIntentRequest{
		PropertyID: 42,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     2,
	})

	assert.NoError(t, err)
	assert.Equal(t, "pi_123", out.PaymentIntentID)
	assert.Equal(t, "pi_123_secret_abcdef123456", out.ClientSecret)
	assert.Equal(t, 500.0, out.Amount)
	assert.NotEmpty(t, out.TransactionID)

	// The metadata snapshot must identify the paying user.
	call := gw.Calls[0]
	metadata := call.Arguments.Get(3).(map[string]string)
	assert.Equal(t, "5", metadata["user_id"])
	assert.Equal(t, "42", metadata["property_id"])
	assert.Equal(t, "500.00", metadata["total"])

	txns.AssertExpectations(t)
}

func TestCreateIntent_InvalidPriceFailsBeforeGateway(t *testing.T) {
	props := new(MockPropertyReader)
	resv := new(MockReservationStore)
	gw := new(MockPaymentGateway)

	broken := testProperty()
	broken.PricePerNight = 0
	props.On("GetByID", mock.Anything, int64(42)).Return(broken, nil)

	svc := newTestService(props, resv, new(MockTransactionStore), gw, nil)

	_, err := svc.CreateIntent(context.Background(), 5, CreateIntentRequest{
		PropertyID: 42,
		CheckIn:    futureDate(30),
		CheckOut:   futureDate(34),
		Guests:     2,
	})

	assert.ErrorIs(t, err, ErrInvalidPrice)
	gw.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateIntent_Unavailable(t *testing.T) {
	props := new(MockPropertyReader)
	resv := new(MockReservationStore)
	gw := new(MockPaymentGateway)

	props.On("GetByID", mock.Anything, int64(42)).Return(testProperty(), nil)
	resv.On("CheckAvailability", mock.Anything, int64(42), mock.Anything, mock.Anything).Return(false, nil)

	svc := newTestService(props, resv, new(MockTransactionStore), gw, nil)

	_, err := svc.CreateIntent(context.Background(), 5, CreateIntentRequest{
		PropertyID: 42,
		CheckIn:    futureDate(30),
		CheckOut:   futureDate(34),
		Guests:     2,
	})

	assert.ErrorIs(t, err, ErrPropertyUnavailable)
	gw.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateIntent_InvalidDateRange(t *testing.T) {
	svc := newTestService(new(MockPropertyReader), new(MockReservationStore), new(MockTransactionStore), new(MockPaymentGateway), nil)

	_, err := svc.CreateIntent(context.Background(), 5, CreateIntentRequest{
		PropertyID: 42,
		CheckIn:    futureDate(34),
		CheckOut:   futureDate(30),
		Guests:     2,
	})

	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

/* ---------- Confirm ---------- */

func succeededIntent(userID string, checkIn, checkOut time.Time) *payment.Intent {
	return &payment.Intent{
		ID:     "pi_123",
		Status: payment.IntentStatusSucceeded,
		Metadata: map[string]string{
			"user_id":   userID,
			"check_in":  checkIn.UTC().Format(time.RFC3339),
			"check_out": checkOut.UTC().Format(time.RFC3339),
			"guests":    "2",
		},
	}
}

func TestConfirm_Success(t *testing.T) {
	props := new(MockPropertyReader)
	resv := new(MockReservationStore)
	txns := new(MockTransactionStore)
	gw := new(MockPaymentGateway)
	notifs := new(MockNotificationSender)

	checkIn := futureDate(30)
	checkOut := futureDate(34)

	gw.On("GetIntent", mock.Anything, "pi_123").Return(succeededIntent("5", checkIn, checkOut), nil)

	processing := &domain.Transaction{
		ID:              1,
		UserID:          5,
		PropertyID:      42,
		Amount:          500,
		Currency:        "USD",
		Status:          domain.TransactionProcessing,
		PaymentIntentID: "pi_123",
		Reference:       "TXN-abc",
	}
	completed := *processing
	completed.Status = domain.TransactionCompleted
	completed.ReservationID = 777

	txns.On("GetByPaymentIntentID", mock.Anything, "pi_123").Return(processing, nil).Once()
	resv.On("CheckAvailability", mock.Anything, int64(42), mock.Anything, mock.Anything).Return(true, nil)
	props.On("GetByID", mock.Anything, int64(42)).Return(testProperty(), nil)
	resv.On("Create", mock.Anything, mock.Anything).Return(nil)
	txns.On("MarkCompletedIdempotent", mock.Anything, "pi_123", int64(777), mock.Anything).Return(true, nil)
	notifs.On("NotifyPaymentReceived", mock.Anything, int64(5), "TXN-abc", 500.0, "USD").Return(nil)
	notifs.On("NotifyReservationConfirmed", mock.Anything, int64(5), int64(777), int64(42)).Return(nil)
	txns.On("GetByPaymentIntentID", mock.Anything, "pi_123").Return(&completed, nil).Once()

	svc := newTestService(props, resv, txns, gw, notifs)

	out, err := svc.Confirm(context.Background(), 5, ConfirmRequest{PaymentIntentID: "pi_123"})

	assert.NoError(t, err)
	assert.Equal(t, int64(777), out.Reservation.ID)
	assert.Equal(t, domain.ReservationConfirmed, out.Reservation.Status)
	assert.Equal(t, domain.PaymentPaid, out.Reservation.PaymentStatus)
	assert.Equal(t, domain.TransactionCompleted, out.Transaction.Status)
	txns.AssertExpectations(t)
	notifs.AssertExpectations(t)
}

func TestConfirm_IdempotentOnCompletedTransaction(t *testing.T) {
	resv := new(MockReservationStore)
	txns := new(MockTransactionStore)
	gw := new(MockPaymentGateway)

	checkIn := futureDate(30)
	checkOut := futureDate(34)
	gw.On("GetIntent", mock.Anything, "pi_123").Return(succeededIntent("5", checkIn, checkOut), nil)

	done := &domain.Transaction{
		ID:              1,
		UserID:          5,
		PropertyID:      42,
		ReservationID:   777,
		Status:          domain.TransactionCompleted,
		PaymentIntentID: "pi_123",
	}
	existing := &domain.Reservation{ID: 777, UserID: 5, PropertyID: 42, Status: domain.ReservationConfirmed}

	txns.On("GetByPaymentIntentID", mock.Anything, "pi_123").Return(done, nil)
	resv.On("GetByID", mock.Anything, int64(777)).Return(existing, nil)

	svc := newTestService(new(MockPropertyReader), resv, txns, gw, nil)

	first, err := svc.Confirm(context.Background(), 5, ConfirmRequest{PaymentIntentID: "pi_123"})
	assert.NoError(t, err)

	second, err := svc.Confirm(context.Background(), 5, ConfirmRequest{PaymentIntentID: "pi_123"})
	assert.NoError(t, err)

	assert.Equal(t, first.Reservation.ID, second.Reservation.ID)
	// No new reservation is ever written.
	resv.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConfirm_ForbiddenForOtherUsersIntent(t *testing.T) {
	txns := new(MockTransactionStore)
	gw := new(MockPaymentGateway)

	checkIn := futureDate(30)
	checkOut := futureDate(34)
	// Intent was paid by user 5; user 6 tries to claim it.
	gw.On("GetIntent", mock.Anything, "pi_123").Return(succeededIntent("5", checkIn, checkOut), nil)

	svc := newTestService(new(MockPropertyReader), new(MockReservationStore), txns, gw, nil)

	_, err := svc.Confirm(context.Background(), 6, ConfirmRequest{PaymentIntentID: "pi_123"})

	assert.ErrorIs(t, err, ErrForbidden)
	// Ownership is rejected before any transaction lookup.
	txns.AssertNotCalled(t, "GetByPaymentIntentID", mock.Anything, mock.Anything)
}

func TestConfirm_ForbiddenEvenWhenPaymentNotSucceeded(t *testing.T) {
	gw := new(MockPaymentGateway)
	gw.On("GetIntent", mock.Anything, "pi_123").Return(&payment.Intent{
		ID:       "pi_123",
		Status:   payment.IntentStatusRequiresPayment,
		Metadata: map[string]string{"user_id": "5"},
	}, nil)

	svc := newTestService(new(MockPropertyReader), new(MockReservationStore), new(MockTransactionStore), gw, nil)

	_, err := svc.Confirm(context.Background(), 6, ConfirmRequest{PaymentIntentID: "pi_123"})

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestConfirm_PaymentNotSucceeded(t *testing.T) {
	txns := new(MockTransactionStore)
	gw := new(MockPaymentGateway)

	gw.On("GetIntent", mock.Anything, "pi_123").Return(&payment.Intent{
		ID:       "pi_123",
		Status:   payment.IntentStatusProcessing,
		Metadata: map[string]string{"user_id": "5"},
	}, nil)
	txns.On("GetByPaymentIntentID", mock.Anything, "pi_123").Return(&domain.Transaction{
		Status:          domain.TransactionProcessing,
		PaymentIntentID: "pi_123",
	}, nil)

	svc := newTestService(new(MockPropertyReader), new(MockReservationStore), txns, gw, nil)

	_, err := svc.Confirm(context.Background(), 5, ConfirmRequest{PaymentIntentID: "pi_123"})

	var notSucceeded *PaymentNotSucceededError
	assert.ErrorAs(t, err, &notSucceeded)
	assert.Equal(t, payment.IntentStatusProcessing, notSucceeded.Status)
}

func TestConfirm_AvailabilityLostAfterPayment(t *testing.T) {
	props := new(MockPropertyReader)
	resv := new(MockReservationStore)
	txns := new(MockTransactionStore)
	gw := new(MockPaymentGateway)

	checkIn := futureDate(30)
	checkOut := futureDate(34)
	gw.On("GetIntent", mock.Anything, "pi_123").Return(succeededIntent("5", checkIn, checkOut), nil)
	txns.On("GetByPaymentIntentID", mock.Anything, "pi_123").Return(&domain.Transaction{
		UserID:          5,
		PropertyID:      42,
		Status:          domain.TransactionProcessing,
		PaymentIntentID: "pi_123",
		Reference:       "TXN-abc",
	}, nil)
	props.On("GetByID", mock.Anything, int64(42)).Return(testProperty(), nil)
	// Someone else booked the dates between payment and confirmation.
	resv.On("CheckAvailability", mock.Anything, int64(42), mock.Anything, mock.Anything).Return(false, nil)

	svc := newTestService(props, resv, txns, gw, nil)

	_, err := svc.Confirm(context.Background(), 5, ConfirmRequest{PaymentIntentID: "pi_123"})

	assert.ErrorIs(t, err, ErrAvailabilityLost)
	// No automatic refund: the transaction stays as-is for manual handling.
	txns.AssertNotCalled(t, "MarkFailed", mock.Anything, mock.Anything, mock.Anything)
	resv.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConfirm_TooManyGuestsRejected(t *testing.T) {
	props := new(MockPropertyReader)
	resv := new(MockReservationStore)
	txns := new(MockTransactionStore)
	gw := new(MockPaymentGateway)

	checkIn := futureDate(30)
	checkOut := futureDate(34)
	gw.On("GetIntent", mock.Anything, "pi_123").Return(succeededIntent("5", checkIn, checkOut), nil)
	txns.On("GetByPaymentIntentID", mock.Anything, "pi_123").Return(&domain.Transaction{
		UserID:          5,
		PropertyID:      42,
		Status:          domain.TransactionProcessing,
		PaymentIntentID: "pi_123",
	}, nil)
	props.On("GetByID", mock.Anything, int64(42)).Return(testProperty(), nil)

	svc := newTestService(props, resv, txns, gw, nil)

	// The body overrides the 2-guest snapshot with 50; capacity is 4.
	fifty := 50
	_, err := svc.Confirm(context.Background(), 5, ConfirmRequest{
		PaymentIntentID: "pi_123",
		CheckIn:         &checkIn,
		CheckOut:        &checkOut,
		Guests:          &fifty,
	})

	assert.ErrorIs(t, err, ErrTooManyGuests)
	resv.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConfirm_ConcurrentLoserDeletesDuplicate(t *testing.T) {
	props := new(MockPropertyReader)
	resv := new(MockReservationStore)
	txns := new(MockTransactionStore)
	gw := new(MockPaymentGateway)

	checkIn := futureDate(30)
	checkOut := futureDate(34)
	gw.On("GetIntent", mock.Anything, "pi_123").Return(succeededIntent("5", checkIn, checkOut), nil)

	processing := &domain.Transaction{
		ID:              1,
		UserID:          5,
		PropertyID:      42,
		Status:          domain.TransactionProcessing,
		PaymentIntentID: "pi_123",
	}
	winner := *processing
	winner.Status = domain.TransactionCompleted
	winner.ReservationID = 555

	txns.On("GetByPaymentIntentID", mock.Anything, "pi_123").Return(processing, nil).Once()
	props.On("GetByID", mock.Anything, int64(42)).Return(testProperty(), nil)
	resv.On("CheckAvailability", mock.Anything, int64(42), mock.Anything, mock.Anything).Return(true, nil)
	resv.On("Create", mock.Anything, mock.Anything).Return(nil)
	// Another confirm completed the transaction first.
	txns.On("MarkCompletedIdempotent", mock.Anything, "pi_123", int64(777), mock.Anything).Return(false, nil)
	resv.On("Delete", mock.Anything, int64(777)).Return(nil)
	txns.On("GetByPaymentIntentID", mock.Anything, "pi_123").Return(&winner, nil).Once()
	resv.On("GetByID", mock.Anything, int64(555)).Return(&domain.Reservation{
		ID: 555, UserID: 5, PropertyID: 42, Status: domain.ReservationConfirmed,
	}, nil)

	svc := newTestService(props, resv, txns, gw, nil)

	out, err := svc.Confirm(context.Background(), 5, ConfirmRequest{PaymentIntentID: "pi_123"})

	assert.NoError(t, err)
	// The winner's reservation is returned and the loser's row is gone.
	assert.Equal(t, int64(555), out.Reservation.ID)
	resv.AssertCalled(t, "Delete", mock.Anything, int64(777))
}

func TestConfirm_OverlapConstraintMapsToAvailabilityLost(t *testing.T) {
	props := new(MockPropertyReader)
	resv := new(MockReservationStore)
	txns := new(MockTransactionStore)
	gw := new(MockPaymentGateway)

	checkIn := futureDate(30)
	checkOut := futureDate(34)
	gw.On("GetIntent", mock.Anything, "pi_123").Return(succeededIntent("5", checkIn, checkOut), nil)
	txns.On("GetByPaymentIntentID", mock.Anything, "pi_123").Return(&domain.Transaction{
		UserID:          5,
		PropertyID:      42,
		Status:          domain.TransactionProcessing,
		PaymentIntentID: "pi_123",
	}, nil)
	props.On("GetByID", mock.Anything, int64(42)).Return(testProperty(), nil)
	resv.On("CheckAvailability", mock.Anything, int64(42), mock.Anything, mock.Anything).Return(true, nil)
	// The database constraint wins the race the availability check missed.
	resv.On("Create", mock.Anything, mock.Anything).Return(&pgconn.PgError{
		Code:           "23P01",
		ConstraintName: database.ReservationOverlapConstraint,
	})

	svc := newTestService(props, resv, txns, gw, nil)

	_, err := svc.Confirm(context.Background(), 5, ConfirmRequest{PaymentIntentID: "pi_123"})

	assert.ErrorIs(t, err, ErrAvailabilityLost)
	txns.AssertNotCalled(t, "MarkCompletedIdempotent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirm_TransactionNotFound(t *testing.T) {
	txns := new(MockTransactionStore)
	gw := new(MockPaymentGateway)

	checkIn := futureDate(30)
	checkOut := futureDate(34)
	gw.On("GetIntent", mock.Anything, "pi_123").Return(succeededIntent("5", checkIn, checkOut), nil)
	txns.On("GetByPaymentIntentID", mock.Anything, "pi_123").Return(nil, gorm.ErrRecordNotFound)

	svc := newTestService(new(MockPropertyReader), new(MockReservationStore), txns, gw, nil)

	_, err := svc.Confirm(context.Background(), 5, ConfirmRequest{PaymentIntentID: "pi_123"})

	assert.ErrorIs(t, err, ErrTransactionNotFound)
}
