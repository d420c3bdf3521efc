package usecases

import (
	"context"

	"github.com/google/uuid"
	"property-registry.backend/internal/domain/entities"
	"property-registry.backend/internal/domain/repositories"
	"property-registry.backend/pkg/utils"
)

// TxJournalPage is a page of journal entries, newest first
type TxJournalPage struct {
	Items []*entities.TxJournalEntry `json:"items"`
	Meta  utils.PageMeta       `json:"meta"`
}

type TxJournalUsecase struct {
	repo repositories.TxJournalRepository
}

const defaultJournalLimit = 20

func NewTxJournalUsecase(repo repositories.TxJournalRepository) *TxJournalUsecase {
	return &TxJournalUsecase{repo: repo}
}

func (u *TxJournalUsecase) List(ctx context.Context, pagination utils.PageRequest) (*TxJournalPage, error) {
	p := pagination.WithDefaultLimit(defaultJournalLimit)
	items, total, err := u.repo.List(ctx, p.Limit, p.Offset())
	if err != nil {
		return nil, err
	}
	return &TxJournalPage{
		Items: items,
		Meta:  utils.NewPageMeta(total, p),
	}, nil
}

func (u *TxJournalUsecase) Get(ctx context.Context, id uuid.UUID) (*entities.TxJournalEntry, error) {
	return u.repo.GetByID(ctx, id)
}
