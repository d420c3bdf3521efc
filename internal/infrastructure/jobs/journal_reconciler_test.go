package jobs

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"property-registry.backend/internal/domain/entities"
)

type journalStoreStub struct {
	entries   []*entities.TxJournalEntry
	listErr   error
	markErr   error
	before    time.Time
	confirmed map[uuid.UUID]uint64
	failed    map[uuid.UUID]string
}

func newJournalStoreStub(entries ...*entities.TxJournalEntry) *journalStoreStub {
	return &journalStoreStub{
		entries:   entries,
		confirmed: map[uuid.UUID]uint64{},
		failed:    map[uuid.UUID]string{},
	}
}

func (s *journalStoreStub) ListUnsettled(_ context.Context, before time.Time, _ int) ([]*entities.TxJournalEntry, error) {
	s.before = before
	return s.entries, s.listErr
}

func (s *journalStoreStub) MarkConfirmed(_ context.Context, id uuid.UUID, block uint64) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.confirmed[id] = block
	return nil
}

func (s *journalStoreStub) MarkFailed(_ context.Context, id uuid.UUID, reason string) error {
	if s.markErr != nil {
		return s.markErr
	}
	s.failed[id] = reason
	return nil
}

type receiptStub map[common.Hash]*types.Receipt

func (r receiptStub) Receipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	if hash == common.HexToHash("0xdead") {
		return nil, errors.New("rpc down")
	}
	receipt, ok := r[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return receipt, nil
}

func submitted(hash string) *entities.TxJournalEntry {
	e := &entities.TxJournalEntry{ID: uuid.New(), Action: entities.TxActionApprove, State: entities.TxStateSubmitted}
	if hash != "" {
		e.TxHash = null.StringFrom(hash)
	}
	return e
}

func TestJournalReconciler_SettlesMinedEntries(t *testing.T) {
	mined := submitted("0x01")
	reverted := submitted("0x02")
	pending := submitted("0x03")
	broken := submitted("0xdead")
	noHash := submitted("")

	repo := newJournalStoreStub(mined, reverted, pending, broken, noHash)
	receipts := receiptStub{
		common.HexToHash("0x01"): {Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(12)},
		common.HexToHash("0x02"): {Status: types.ReceiptStatusFailed, BlockNumber: big.NewInt(13)},
	}

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pending.CreatedAt = now.Add(-10 * time.Minute)
	job := NewJournalReconcilerJob(repo, receipts, nil, time.Millisecond, 5*time.Minute, time.Hour, 10)
	job.now = func() time.Time { return now }

	job.reconcile(context.Background())

	require.Equal(t, now.Add(-5*time.Minute), repo.before)
	require.Equal(t, map[uuid.UUID]uint64{mined.ID: 12}, repo.confirmed)
	require.Equal(t, map[uuid.UUID]string{reverted.ID: "transaction reverted"}, repo.failed)
}

func TestJournalReconciler_DropsStaleUnminedEntries(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stale := submitted("0x04")
	stale.CreatedAt = now.Add(-2 * time.Hour)
	fresh := submitted("0x05")
	fresh.CreatedAt = now.Add(-30 * time.Minute)
	unreachable := submitted("0xdead")
	unreachable.CreatedAt = now.Add(-2 * time.Hour)

	repo := newJournalStoreStub(stale, fresh, unreachable)
	job := NewJournalReconcilerJob(repo, receiptStub{}, nil, time.Millisecond, 5*time.Minute, time.Hour, 10)
	job.now = func() time.Time { return now }

	job.reconcile(context.Background())

	require.Equal(t, map[uuid.UUID]string{stale.ID: "dropped"}, repo.failed)
	require.Empty(t, repo.confirmed)
}

func TestJournalReconciler_ListError(t *testing.T) {
	repo := newJournalStoreStub()
	repo.listErr = errors.New("db down")
	job := NewJournalReconcilerJob(repo, receiptStub{}, nil, time.Millisecond, time.Minute, time.Hour, 10)

	job.reconcile(context.Background())
	require.Empty(t, repo.confirmed)
}

func TestJournalReconciler_MarkError(t *testing.T) {
	entry := submitted("0x01")
	repo := newJournalStoreStub(entry)
	repo.markErr = errors.New("update failed")
	receipts := receiptStub{common.HexToHash("0x01"): {Status: types.ReceiptStatusSuccessful, BlockNumber: big.NewInt(1)}}
	job := NewJournalReconcilerJob(repo, receipts, nil, time.Millisecond, time.Minute, time.Hour, 10)

	require.False(t, job.settle(context.Background(), entry))
}

func TestJournalReconciler_Defaults(t *testing.T) {
	job := NewJournalReconcilerJob(newJournalStoreStub(), receiptStub{}, nil, 0, 0, 0, 0)
	require.Equal(t, 30*time.Second, job.interval)
	require.Equal(t, time.Hour, job.drop)
	require.Equal(t, 50, job.batch)
}

func TestJournalReconciler_StopsByContext(t *testing.T) {
	job := NewJournalReconcilerJob(newJournalStoreStub(), receiptStub{}, nil, time.Millisecond, time.Minute, time.Hour, 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop after context cancel")
	}
}

func TestJournalReconciler_StopsByStop(t *testing.T) {
	job := NewJournalReconcilerJob(newJournalStoreStub(), receiptStub{}, nil, time.Millisecond, time.Minute, time.Hour, 10)

	done := make(chan struct{})
	go func() {
		job.Start(context.Background())
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	job.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop after Stop")
	}
}
