package domain

import "time"

type TransactionStatus string

const (
	TransactionPending    TransactionStatus = "pending"
	TransactionProcessing TransactionStatus = "processing"
	TransactionCompleted  TransactionStatus = "completed"
	TransactionFailed     TransactionStatus = "failed"
	TransactionRefunded   TransactionStatus = "refunded"
)

// Transaction records one payment attempt against the external gateway.
// ReservationID stays 0 until the reservation exists; the link is filled
// in when the checkout confirms.
type Transaction struct {
	ID              int64             `gorm:"primaryKey" json:"id"`
	UserID          int64             `gorm:"index;not null" json:"user_id"`
	PropertyID      int64             `gorm:"index;not null" json:"property_id"`
	ReservationID   int64             `gorm:"index" json:"reservation_id"`
	Amount          float64           `gorm:"not null" json:"amount"`
	Currency        string            `gorm:"type:varchar(3);not null" json:"currency"`
	Status          TransactionStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	PaymentMethod   string            `gorm:"type:varchar(32)" json:"payment_method"`
	PaymentIntentID string            `gorm:"type:varchar(64);uniqueIndex" json:"payment_intent_id"`
	Reference       string            `gorm:"type:varchar(64);uniqueIndex;not null" json:"reference"`
	FailureReason   string            `gorm:"type:text" json:"failure_reason,omitempty"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func (Transaction) TableName() string { return "transactions" }
