package repository

import (
	"context"
	"time"

	"stayhub/internal/domain"

	"gorm.io/gorm"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

type reservationModel struct {
	ID            int64      `gorm:"column:id;primaryKey"`
	UserID        int64      `gorm:"column:user_id"`
	PropertyID    int64      `gorm:"column:property_id"`
	HostID        int64      `gorm:"column:host_id"`
	CheckIn       time.Time  `gorm:"column:check_in"`
	CheckOut      time.Time  `gorm:"column:check_out"`
	Guests        int        `gorm:"column:guests"`
	TotalPrice    float64    `gorm:"column:total_price"`
	Currency      string     `gorm:"column:currency"`
	Status        string     `gorm:"column:status"`
	PaymentStatus string     `gorm:"column:payment_status"`
	GuestNotes    *string    `gorm:"column:guest_notes"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
	CancelledAt   *time.Time `gorm:"column:cancelled_at"`
}

func (reservationModel) TableName() string { return "reservations" }

func toDomainReservation(m reservationModel) *domain.Reservation {
	var notes string
	if m.GuestNotes != nil {
		notes = *m.GuestNotes
	}

	return &domain.Reservation{
		ID:            m.ID,
		UserID:        m.UserID,
		PropertyID:    m.PropertyID,
		HostID:        m.HostID,
		CheckIn:       m.CheckIn,
		CheckOut:      m.CheckOut,
		Guests:        m.Guests,
		TotalPrice:    m.TotalPrice,
		Currency:      m.Currency,
		Status:        domain.ReservationStatus(m.Status),
		PaymentStatus: domain.PaymentStatus(m.PaymentStatus),
		GuestNotes:    notes,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		CancelledAt:   m.CancelledAt,
	}
}

func toReservationModel(res *domain.Reservation) reservationModel {
	var notes *string
	if res.GuestNotes != "" {
		v := res.GuestNotes
		notes = &v
	}

	return reservationModel{
		ID:            res.ID,
		UserID:        res.UserID,
		PropertyID:    res.PropertyID,
		HostID:        res.HostID,
		CheckIn:       res.CheckIn,
		CheckOut:      res.CheckOut,
		Guests:        res.Guests,
		TotalPrice:    res.TotalPrice,
		Currency:      res.Currency,
		Status:        string(res.Status),
		PaymentStatus: string(res.PaymentStatus),
		GuestNotes:    notes,
		CreatedAt:     res.CreatedAt,
		UpdatedAt:     res.UpdatedAt,
		CancelledAt:   res.CancelledAt,
	}
}

func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	m := toReservationModel(res)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*res = *toDomainReservation(m)
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	var m reservationModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainReservation(m), nil
}

// CheckAvailability reports whether [checkIn, checkOut) is free for the
// property. Intervals are half-open, so a stay ending on a given day does
// not conflict with one starting that day.
func (r *ReservationRepository) CheckAvailability(ctx context.Context, propertyID int64, checkIn, checkOut time.Time) (bool, error) {
	var cnt int64
	q := `
SELECT COUNT(1)
FROM reservations
WHERE property_id = ?
  AND status IN ('pending', 'confirmed')
  AND check_in < ?
  AND ? < check_out
`
	tx := r.db.WithContext(ctx).Raw(q, propertyID, checkOut, checkIn).Scan(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt == 0, nil
}

func (r *ReservationRepository) GetByUserID(ctx context.Context, userID int64, limit, offset int) ([]domain.Reservation, error) {
	var rows []reservationModel
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("check_in DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReservation(m))
	}
	return out, nil
}

func (r *ReservationRepository) GetByPropertyID(ctx context.Context, propertyID int64) ([]domain.Reservation, error) {
	var rows []reservationModel
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("check_in ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Reservation, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReservation(m))
	}
	return out, nil
}

func (r *ReservationRepository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error {
	return r.db.WithContext(ctx).Model(&reservationModel{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
}

func (r *ReservationRepository) UpdatePaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	return r.db.WithContext(ctx).Model(&reservationModel{}).
		Where("id = ?", id).
		Update("payment_status", string(status)).Error
}

func (r *ReservationRepository) Cancel(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&reservationModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       string(domain.ReservationCancelled),
			"cancelled_at": at,
		}).Error
}

// Delete removes a reservation row outright. Only the checkout uses it, to
// discard the duplicate created by the loser of a concurrent confirmation;
// user-facing cancellation goes through Cancel and keeps the row.
func (r *ReservationRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&reservationModel{}, id).Error
}

// HasCompletedStay reports whether the user has a confirmed reservation for
// the property whose check-out is already in the past. Used to gate reviews.
func (r *ReservationRepository) HasCompletedStay(ctx context.Context, userID, propertyID int64, now time.Time) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&reservationModel{}).
		Where("user_id = ? AND property_id = ? AND status = ? AND check_out <= ?",
			userID, propertyID, string(domain.ReservationConfirmed), now).
		Count(&cnt).Error
	return cnt > 0, err
}
