package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"stayhub/internal/domain"
	"stayhub/internal/modules/payment"
	"stayhub/internal/pkg/metrics"
)

const sweepBatchSize = 50

type TransactionStore interface {
	ListStaleProcessing(ctx context.Context, cutoff time.Time, limit int) ([]domain.Transaction, error)
	MarkCompletedIdempotent(ctx context.Context, intentID string, reservationID int64, completedAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, intentID, reason string) error
}

type IntentReader interface {
	GetIntent(ctx context.Context, intentID string) (*payment.Intent, error)
}

// Reconciler sweeps transactions stuck in processing and resolves them
// against the gateway. A transaction goes stale when the client created an
// intent but never called confirm, or crashed mid-confirmation.
type Reconciler struct {
	transactions TransactionStore
	gateway      IntentReader
	interval     time.Duration
	staleAfter   time.Duration
	logger       *zap.Logger
}

func NewReconciler(
	transactions TransactionStore,
	gateway IntentReader,
	interval, staleAfter time.Duration,
	logger *zap.Logger,
) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		transactions: transactions,
		gateway:      gateway,
		interval:     interval,
		staleAfter:   staleAfter,
		logger:       logger,
	}
}

// Run blocks until ctx is cancelled, sweeping at the configured interval.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("transaction reconciler started",
		zap.Duration("interval", r.interval),
		zap.Duration("stale_after", r.staleAfter))

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("transaction reconciler stopped")
			return
		case <-ticker.C:
			if err := r.Sweep(ctx); err != nil {
				r.logger.Error("reconcile sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep resolves one batch of stale transactions.
func (r *Reconciler) Sweep(ctx context.Context) error {
	cutoff := time.Now().Add(-r.staleAfter)
	stale, err := r.transactions.ListStaleProcessing(ctx, cutoff, sweepBatchSize)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	r.logger.Info("reconciling stale transactions", zap.Int("count", len(stale)))

	for i := range stale {
		if err := r.reconcileOne(ctx, &stale[i]); err != nil {
			r.logger.Error("reconcile failed",
				zap.String("payment_intent_id", stale[i].PaymentIntentID),
				zap.Error(err))
		}
	}
	return nil
}

func (r *Reconciler) reconcileOne(ctx context.Context, txn *domain.Transaction) error {
	intent, err := r.gateway.GetIntent(ctx, txn.PaymentIntentID)
	if err != nil {
		if errors.Is(err, payment.ErrIntentNotFound) {
			metrics.TransactionsReconciledTotal.WithLabelValues("missing").Inc()
			return r.transactions.MarkFailed(ctx, txn.PaymentIntentID, "intent not found at gateway")
		}
		return err
	}

	switch intent.Status {
	case payment.IntentStatusSucceeded:
		// Money moved but no confirmation ever landed. Close the
		// transaction so it stops resurfacing; ops follows up on the
		// orphaned charge.
		changed, err := r.transactions.MarkCompletedIdempotent(ctx, txn.PaymentIntentID, txn.ReservationID, time.Now().UTC())
		if err != nil {
			return err
		}
		if changed && txn.ReservationID == 0 {
			r.logger.Warn("payment succeeded but checkout was never confirmed; manual review required",
				zap.String("payment_intent_id", txn.PaymentIntentID),
				zap.String("reference", txn.Reference),
				zap.Int64("user_id", txn.UserID),
				zap.Float64("amount", txn.Amount),
				zap.String("currency", txn.Currency))
		}
		metrics.TransactionsReconciledTotal.WithLabelValues("completed").Inc()
		return nil

	case payment.IntentStatusCanceled:
		metrics.TransactionsReconciledTotal.WithLabelValues("canceled").Inc()
		return r.transactions.MarkFailed(ctx, txn.PaymentIntentID, "intent canceled at gateway")

	case payment.IntentStatusRequiresPayment:
		// Customer abandoned the checkout before paying.
		metrics.TransactionsReconciledTotal.WithLabelValues("abandoned").Inc()
		return r.transactions.MarkFailed(ctx, txn.PaymentIntentID, "checkout abandoned")

	default:
		// Still processing on the gateway side; next sweep will retry.
		metrics.TransactionsReconciledTotal.WithLabelValues("pending").Inc()
		return nil
	}
}
