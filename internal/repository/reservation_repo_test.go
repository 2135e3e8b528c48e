package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"stayhub/internal/database"
	"stayhub/internal/domain"
)

func openTestDB(t *testing.T) *ReservationRepository {
	t.Helper()
	db, err := database.Connect("file::memory:?cache=shared")
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&reservationModel{}))
	return NewReservationRepository(db)
}

func day(d int) time.Time {
	return time.Date(2026, 7, d, 0, 0, 0, 0, time.UTC)
}

func seedReservation(t *testing.T, repo *ReservationRepository, propertyID int64, checkIn, checkOut time.Time, status domain.ReservationStatus) {
	t.Helper()
	err := repo.Create(context.Background(), &domain.Reservation{
		UserID:        1,
		PropertyID:    propertyID,
		HostID:        2,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Guests:        2,
		TotalPrice:    300,
		Currency:      "USD",
		Status:        status,
		PaymentStatus: domain.PaymentPaid,
	})
	require.NoError(t, err)
}

func TestCheckAvailability_OverlapSemantics(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	// Existing confirmed stay: July 10 to July 14.
	seedReservation(t, repo, 42, day(10), day(14), domain.ReservationConfirmed)

	cases := []struct {
		name      string
		checkIn   time.Time
		checkOut  time.Time
		available bool
	}{
		{"identical range", day(10), day(14), false},
		{"fully inside", day(11), day(13), false},
		{"overlaps start", day(8), day(11), false},
		{"overlaps end", day(13), day(16), false},
		{"surrounds", day(8), day(16), false},
		{"ends on check-in day", day(7), day(10), true},
		{"starts on check-out day", day(14), day(17), true},
		{"well before", day(1), day(5), true},
		{"well after", day(20), day(25), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.CheckAvailability(ctx, 42, tc.checkIn, tc.checkOut)
			assert.NoError(t, err)
			assert.Equal(t, tc.available, got)
		})
	}
}

func TestCheckAvailability_CancelledReservationsDoNotBlock(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	seedReservation(t, repo, 43, day(10), day(14), domain.ReservationCancelled)

	got, err := repo.CheckAvailability(ctx, 43, day(10), day(14))
	assert.NoError(t, err)
	assert.True(t, got)
}

func TestCheckAvailability_PendingReservationsBlock(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	seedReservation(t, repo, 44, day(10), day(14), domain.ReservationPending)

	got, err := repo.CheckAvailability(ctx, 44, day(12), day(16))
	assert.NoError(t, err)
	assert.False(t, got)
}

func TestCheckAvailability_OtherPropertyDoesNotBlock(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	seedReservation(t, repo, 45, day(10), day(14), domain.ReservationConfirmed)

	got, err := repo.CheckAvailability(ctx, 46, day(10), day(14))
	assert.NoError(t, err)
	assert.True(t, got)
}

func TestDelete_RemovesRowAndFreesDates(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	res := &domain.Reservation{
		UserID:        1,
		PropertyID:    48,
		HostID:        2,
		CheckIn:       day(10),
		CheckOut:      day(14),
		Guests:        2,
		TotalPrice:    300,
		Currency:      "USD",
		Status:        domain.ReservationConfirmed,
		PaymentStatus: domain.PaymentPaid,
	}
	require.NoError(t, repo.Create(ctx, res))
	require.NoError(t, repo.Delete(ctx, res.ID))

	_, err := repo.GetByID(ctx, res.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	available, err := repo.CheckAvailability(ctx, 48, day(10), day(14))
	assert.NoError(t, err)
	assert.True(t, available)
}

func TestCancel_SetsStatusAndTimestamp(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	res := &domain.Reservation{
		UserID:        1,
		PropertyID:    47,
		HostID:        2,
		CheckIn:       day(10),
		CheckOut:      day(14),
		Guests:        2,
		TotalPrice:    300,
		Currency:      "USD",
		Status:        domain.ReservationConfirmed,
		PaymentStatus: domain.PaymentPaid,
	}
	require.NoError(t, repo.Create(ctx, res))

	cancelledAt := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Cancel(ctx, res.ID, cancelledAt))

	got, err := repo.GetByID(ctx, res.ID)
	assert.NoError(t, err)
	assert.Equal(t, domain.ReservationCancelled, got.Status)
	assert.NotNil(t, got.CancelledAt)

	// Cancelled stays free the dates.
	available, err := repo.CheckAvailability(ctx, 47, day(10), day(14))
	assert.NoError(t, err)
	assert.True(t, available)
}
