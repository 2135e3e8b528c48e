package repository

import (
	"context"
	"errors"
	"time"

	"stayhub/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) GetByPaymentIntentID(ctx context.Context, intentID string) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := r.db.WithContext(ctx).Where("payment_intent_id = ?", intentID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) GetByReference(ctx context.Context, reference string) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) GetByReservationID(ctx context.Context, reservationID int64) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := r.db.WithContext(ctx).Where("reservation_id = ?", reservationID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) GetByUserID(ctx context.Context, userID int64, limit, offset int) ([]domain.Transaction, error) {
	var out []domain.Transaction
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	err := q.Find(&out).Error
	return out, err
}

func (r *TransactionRepository) MarkFailed(ctx context.Context, intentID, reason string) error {
	return r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("payment_intent_id = ?", intentID).
		Updates(map[string]interface{}{
			"status":         domain.TransactionFailed,
			"failure_reason": reason,
		}).Error
}

func (r *TransactionRepository) MarkRefunded(ctx context.Context, intentID string) error {
	return r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("payment_intent_id = ?", intentID).
		Update("status", domain.TransactionRefunded).Error
}

// MarkCompletedIdempotent flips the transaction for a payment intent to
// completed and links the reservation, exactly once. Returns false when a
// previous confirmation already completed it, in which case the stored
// reservation link is authoritative.
func (r *TransactionRepository) MarkCompletedIdempotent(ctx context.Context, intentID string, reservationID int64, completedAt time.Time) (bool, error) {
	var changed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t domain.Transaction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("payment_intent_id = ?", intentID).First(&t).Error; err != nil {
			return err
		}
		if t.Status == domain.TransactionCompleted {
			changed = false
			return nil
		}
		res := tx.Model(&domain.Transaction{}).
			Where("payment_intent_id = ?", intentID).
			Updates(map[string]interface{}{
				"status":         domain.TransactionCompleted,
				"reservation_id": reservationID,
				"completed_at":   completedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.New("transaction row not updated")
		}
		changed = true
		return nil
	})
	return changed, err
}

// ListStaleProcessing returns transactions stuck in processing since before
// the cutoff. The reconciler resolves them against the gateway.
func (r *TransactionRepository) ListStaleProcessing(ctx context.Context, cutoff time.Time, limit int) ([]domain.Transaction, error) {
	var out []domain.Transaction
	q := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", domain.TransactionProcessing, cutoff).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
