package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"property-registry.backend/internal/domain/entities"
)

// TxJournalRepository persists the submit/confirm history of registry writes
type TxJournalRepository interface {
	Create(ctx context.Context, entry *entities.TxJournalEntry) error
	MarkSubmitted(ctx context.Context, id uuid.UUID, txHash, surface string) error
	MarkConfirmed(ctx context.Context, id uuid.UUID, blockNumber uint64) error
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.TxJournalEntry, error)
	List(ctx context.Context, limit, offset int) ([]*entities.TxJournalEntry, int64, error)
	// ListUnsettled returns SUBMITTED entries created before the cutoff, oldest first
	ListUnsettled(ctx context.Context, before time.Time, limit int) ([]*entities.TxJournalEntry, error)
}
