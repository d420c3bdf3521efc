package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"property-registry.backend/internal/domain/entities"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/internal/domain/repositories"
	"property-registry.backend/internal/infrastructure/blockchain"
	"property-registry.backend/internal/infrastructure/metrics"
	"property-registry.backend/internal/infrastructure/registry"
	"property-registry.backend/pkg/logger"
)

const defaultInFlightTTL = 5 * time.Minute

// TxRequest describes one mutating registry call
type TxRequest struct {
	Action  entities.TxAction
	Target  string
	Account common.Address
	Args    []string
	Note    string
}

func (r TxRequest) lockKey() string {
	return fmt.Sprintf("inflight:%s:%s", r.Action, r.Target)
}

// SubmitFn performs the write, reporting each submitted transaction through onSubmit
type SubmitFn func(ctx context.Context, onSubmit registry.SubmitFunc) (*types.Receipt, error)

// TxRunner drives the submit/confirm lifecycle of a write: one in-flight call
// per action and target, journaled from submission to settlement.
type TxRunner struct {
	journal     repositories.TxJournalRepository
	locker      Locker
	metrics     *metrics.Metrics
	inFlightTTL time.Duration
}

// NewTxRunner holds the in-flight key for at most inFlightTTL, which should
// outlast the confirmation timeout.
func NewTxRunner(journal repositories.TxJournalRepository, locker Locker, m *metrics.Metrics, inFlightTTL time.Duration) *TxRunner {
	if inFlightTTL <= 0 {
		inFlightTTL = defaultInFlightTTL
	}
	return &TxRunner{journal: journal, locker: locker, metrics: m, inFlightTTL: inFlightTTL}
}

// Run executes submit under the in-flight lock. When a transaction was
// submitted but its fate is unknown the entry stays SUBMITTED for the
// reconciler to settle.
func (r *TxRunner) Run(ctx context.Context, req TxRequest, submit SubmitFn) (*entities.TxResult, error) {
	release, ok, err := r.locker.TryLock(ctx, req.lockKey(), r.inFlightTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire in-flight lock: %w", err)
	}
	if !ok {
		return nil, domainerrors.ErrInFlight
	}
	defer release()

	entry := &entities.TxJournalEntry{
		Action:  req.Action,
		Target:  req.Target,
		Account: req.Account.Hex(),
		Args:    req.Args,
		Note:    req.Note,
		State:   entities.TxStateSubmitting,
	}
	if err := r.journal.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to journal %s: %w", req.Action, err)
	}

	action := string(req.Action)
	submitted := false
	onSubmit := func(surface string, tx *types.Transaction) {
		submitted = true
		r.metrics.TxOutcome(action, string(entities.TxStateSubmitted))
		if err := r.journal.MarkSubmitted(ctx, entry.ID, tx.Hash().Hex(), surface); err != nil {
			logger.Warn(ctx, "Failed to journal submitted transaction",
				zap.String("journal_id", entry.ID.String()),
				zap.String("tx_hash", tx.Hash().Hex()),
				zap.Error(err),
			)
		}
	}

	receipt, err := submit(ctx, onSubmit)
	settleCtx := context.WithoutCancel(ctx)
	if err != nil {
		if submitted && !errors.Is(err, blockchain.ErrTxReverted) {
			r.metrics.TxOutcome(action, "unknown")
			logger.Warn(ctx, "Transaction outcome unknown, leaving it to the reconciler",
				zap.String("journal_id", entry.ID.String()),
				zap.Error(err),
			)
			return nil, err
		}
		r.metrics.TxOutcome(action, string(entities.TxStateFailed))
		if markErr := r.journal.MarkFailed(settleCtx, entry.ID, err.Error()); markErr != nil {
			logger.Error(ctx, "Failed to journal failed transaction",
				zap.String("journal_id", entry.ID.String()),
				zap.Error(markErr),
			)
		}
		return nil, err
	}

	var block uint64
	if receipt.BlockNumber != nil {
		block = receipt.BlockNumber.Uint64()
	}
	r.metrics.TxOutcome(action, string(entities.TxStateConfirmed))
	if err := r.journal.MarkConfirmed(settleCtx, entry.ID, block); err != nil {
		logger.Error(ctx, "Failed to journal confirmed transaction",
			zap.String("journal_id", entry.ID.String()),
			zap.Error(err),
		)
	}

	return &entities.TxResult{
		JournalID:   entry.ID,
		TxHash:      receipt.TxHash.Hex(),
		BlockNumber: block,
	}, nil
}
