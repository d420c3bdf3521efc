package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"property-registry.backend/internal/domain/entities"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/internal/interfaces/http/response"
	"property-registry.backend/internal/usecases"
	"property-registry.backend/pkg/utils"
)

type txJournalService interface {
	List(ctx context.Context, pagination utils.PageRequest) (*usecases.TxJournalPage, error)
	Get(ctx context.Context, id uuid.UUID) (*entities.TxJournalEntry, error)
}

type TxJournalHandler struct {
	service txJournalService
}

func NewTxJournalHandler(service *usecases.TxJournalUsecase) *TxJournalHandler {
	return &TxJournalHandler{service: service}
}

// ListTransactions returns journaled mutations, newest first.
// GET /api/v1/transactions?page=&limit=
func (h *TxJournalHandler) ListTransactions(c *gin.Context) {
	page, err := h.service.List(c.Request.Context(), pagination(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, page)
}

// GetTransaction GET /api/v1/transactions/:id
func (h *TxJournalHandler) GetTransaction(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		response.Error(c, domainerrors.BadRequest("Invalid transaction ID"))
		return
	}
	entry, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"transaction": entry})
}
