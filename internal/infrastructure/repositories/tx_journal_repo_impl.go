package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"property-registry.backend/internal/domain/entities"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/internal/infrastructure/models"
	"property-registry.backend/pkg/utils"
)

// TxJournalRepositoryImpl implements TxJournalRepository
type TxJournalRepositoryImpl struct {
	db *gorm.DB
}

func NewTxJournalRepository(db *gorm.DB) *TxJournalRepositoryImpl {
	return &TxJournalRepositoryImpl{db: db}
}

func (r *TxJournalRepositoryImpl) Create(ctx context.Context, entry *entities.TxJournalEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = utils.NewTimeOrderedID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.State == "" {
		entry.State = entities.TxStateSubmitting
	}

	m := &models.TxJournal{
		ID:        entry.ID,
		Action:    string(entry.Action),
		Target:    entry.Target,
		Account:   entry.Account,
		Args:      entry.Args,
		Note:      entry.Note,
		TxHash:    entry.TxHash.Ptr(),
		Surface:   entry.Surface.Ptr(),
		State:     string(entry.State),
		Error:     entry.Error.Ptr(),
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.CreatedAt,
	}
	if m.Args == nil {
		m.Args = []string{}
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *TxJournalRepositoryImpl) MarkSubmitted(ctx context.Context, id uuid.UUID, txHash, surface string) error {
	return r.update(ctx, id, map[string]interface{}{
		"state":   string(entities.TxStateSubmitted),
		"tx_hash": txHash,
		"surface": surface,
	})
}

func (r *TxJournalRepositoryImpl) MarkConfirmed(ctx context.Context, id uuid.UUID, blockNumber uint64) error {
	return r.update(ctx, id, map[string]interface{}{
		"state":        string(entities.TxStateConfirmed),
		"block_number": int64(blockNumber),
		"confirmed_at": time.Now(),
		"error":        nil,
	})
}

func (r *TxJournalRepositoryImpl) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.update(ctx, id, map[string]interface{}{
		"state": string(entities.TxStateFailed),
		"error": reason,
	})
}

func (r *TxJournalRepositoryImpl) update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&models.TxJournal{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *TxJournalRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*entities.TxJournalEntry, error) {
	var m models.TxJournal
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *TxJournalRepositoryImpl) List(ctx context.Context, limit, offset int) ([]*entities.TxJournalEntry, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.TxJournal{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.TxJournal
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	entries := make([]*entities.TxJournalEntry, 0, len(ms))
	for i := range ms {
		entries = append(entries, r.toEntity(&ms[i]))
	}
	return entries, total, nil
}

func (r *TxJournalRepositoryImpl) ListUnsettled(ctx context.Context, before time.Time, limit int) ([]*entities.TxJournalEntry, error) {
	var ms []models.TxJournal
	if err := r.db.WithContext(ctx).
		Where("state = ? AND created_at < ?", string(entities.TxStateSubmitted), before).
		Order("created_at ASC").
		Limit(limit).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	entries := make([]*entities.TxJournalEntry, 0, len(ms))
	for i := range ms {
		entries = append(entries, r.toEntity(&ms[i]))
	}
	return entries, nil
}

func (r *TxJournalRepositoryImpl) toEntity(m *models.TxJournal) *entities.TxJournalEntry {
	entry := &entities.TxJournalEntry{
		ID:          m.ID,
		Action:      entities.TxAction(m.Action),
		Target:      m.Target,
		Account:     m.Account,
		Args:        []string(m.Args),
		Note:        m.Note,
		TxHash:      null.StringFromPtr(m.TxHash),
		Surface:     null.StringFromPtr(m.Surface),
		State:       entities.TxState(m.State),
		Error:       null.StringFromPtr(m.Error),
		CreatedAt:   m.CreatedAt,
		ConfirmedAt: null.TimeFromPtr(m.ConfirmedAt),
	}
	if m.BlockNumber != nil {
		entry.BlockNumber = null.Uint64From(uint64(*m.BlockNumber))
	}
	return entry
}
