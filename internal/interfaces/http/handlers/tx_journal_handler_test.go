package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"property-registry.backend/internal/domain/entities"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/internal/usecases"
	"property-registry.backend/pkg/utils"
)

func txJournalRouter(svc *txJournalServiceMock) *gin.Engine {
	h := &TxJournalHandler{service: svc}
	r := newTestRouter()
	r.GET("/transactions", h.ListTransactions)
	r.GET("/transactions/:id", h.GetTransaction)
	return r
}

func TestTxJournalHandler_ListTransactions(t *testing.T) {
	svc := &txJournalServiceMock{}
	entry := &entities.TxJournalEntry{ID: uuid.New(), Action: entities.TxActionApprove, State: entities.TxStateConfirmed}
	svc.On("List", mock.Anything, utils.PageRequest{Page: 3, Limit: 10}).Return(&usecases.TxJournalPage{
		Items: []*entities.TxJournalEntry{entry},
		Meta:  utils.NewPageMeta(21, utils.PageRequest{Page: 3, Limit: 10}),
	}, nil)

	rec := doJSON(txJournalRouter(svc), http.MethodGet, "/transactions?page=3&limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"state":"CONFIRMED"`)
	assert.Contains(t, rec.Body.String(), `"totalPages":3`)
}

func TestTxJournalHandler_GetTransaction(t *testing.T) {
	svc := &txJournalServiceMock{}
	id := uuid.New()
	missing := uuid.New()
	svc.On("Get", mock.Anything, id).Return(&entities.TxJournalEntry{ID: id, State: entities.TxStateSubmitted}, nil)
	svc.On("Get", mock.Anything, missing).Return(nil, domainerrors.ErrNotFound)
	r := txJournalRouter(svc)

	rec := doJSON(r, http.MethodGet, "/transactions/"+id.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), id.String())

	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/transactions/"+missing.String(), nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(r, http.MethodGet, "/transactions/not-a-uuid", nil).Code)
}
