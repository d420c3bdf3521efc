package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"property-registry.backend/internal/domain/entities"
	"property-registry.backend/internal/infrastructure/metrics"
	"property-registry.backend/pkg/logger"
)

// JournalStore is the part of the journal repository the reconciler drives
type JournalStore interface {
	ListUnsettled(ctx context.Context, before time.Time, limit int) ([]*entities.TxJournalEntry, error)
	MarkConfirmed(ctx context.Context, id uuid.UUID, blockNumber uint64) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
}

// ReceiptSource looks up mined transactions
type ReceiptSource interface {
	Receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// JournalReconcilerJob settles journal entries whose confirmation wait ended
// without an answer, e.g. a timeout or a restart between submit and confirm.
type JournalReconcilerJob struct {
	repo     JournalStore
	receipts ReceiptSource
	metrics  *metrics.Metrics
	interval time.Duration
	after    time.Duration
	drop     time.Duration
	batch    int
	now      func() time.Time
	stop     chan struct{}
}

// NewJournalReconcilerJob checks every interval for entries submitted more than
// after ago, at most batch per pass. An entry still without a receipt once it
// is older than drop is marked failed as dropped.
func NewJournalReconcilerJob(repo JournalStore, receipts ReceiptSource, m *metrics.Metrics, interval, after, drop time.Duration, batch int) *JournalReconcilerJob {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if drop <= 0 {
		drop = time.Hour
	}
	if batch <= 0 {
		batch = 50
	}
	return &JournalReconcilerJob{
		repo:     repo,
		receipts: receipts,
		metrics:  m,
		interval: interval,
		after:    after,
		drop:     drop,
		batch:    batch,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

func (j *JournalReconcilerJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting journal reconciler job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Journal reconciler job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Journal reconciler job stopped")
			return
		case <-ticker.C:
			j.reconcile(ctx)
		}
	}
}

func (j *JournalReconcilerJob) Stop() {
	close(j.stop)
}

func (j *JournalReconcilerJob) reconcile(ctx context.Context) {
	entries, err := j.repo.ListUnsettled(ctx, j.now().Add(-j.after), j.batch)
	if err != nil {
		logger.Error(ctx, "Failed to list unsettled transactions", zap.Error(err))
		return
	}
	if len(entries) == 0 {
		return
	}

	settled := 0
	for _, entry := range entries {
		if j.settle(ctx, entry) {
			settled++
		}
	}
	logger.Info(ctx, "Reconciled transaction journal",
		zap.Int("checked", len(entries)),
		zap.Int("settled", settled),
	)
}

func (j *JournalReconcilerJob) settle(ctx context.Context, entry *entities.TxJournalEntry) bool {
	if !entry.TxHash.Valid {
		return false
	}
	receipt, err := j.receipts.Receipt(ctx, common.HexToHash(entry.TxHash.String))
	if err != nil {
		if !errors.Is(err, ethereum.NotFound) {
			logger.Warn(ctx, "Receipt lookup failed",
				zap.String("journal_id", entry.ID.String()),
				zap.String("tx_hash", entry.TxHash.String),
				zap.Error(err),
			)
			return false
		}
		if j.now().Sub(entry.CreatedAt) < j.drop {
			return false
		}
		// never mined; the node no longer knows the transaction
		err = j.repo.MarkFailed(ctx, entry.ID, "dropped")
		j.metrics.TxOutcome(string(entry.Action), string(entities.TxStateFailed))
	} else if receipt.Status == types.ReceiptStatusFailed {
		err = j.repo.MarkFailed(ctx, entry.ID, "transaction reverted")
		j.metrics.TxOutcome(string(entry.Action), string(entities.TxStateFailed))
	} else {
		err = j.repo.MarkConfirmed(ctx, entry.ID, receipt.BlockNumber.Uint64())
		j.metrics.TxOutcome(string(entry.Action), string(entities.TxStateConfirmed))
	}
	if err != nil {
		logger.Error(ctx, "Failed to settle journal entry",
			zap.String("journal_id", entry.ID.String()),
			zap.Error(err),
		)
		return false
	}
	return true
}
