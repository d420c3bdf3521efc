package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"property-registry.backend/internal/domain/entities"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/internal/interfaces/http/response"
	"property-registry.backend/internal/usecases"
)

type walletService interface {
	State(ctx context.Context) *entities.WalletState
	Connect(ctx context.Context) (*entities.WalletState, error)
	Switch(ctx context.Context, address string) (*entities.WalletState, error)
	Disconnect(ctx context.Context) (*entities.WalletState, error)
	Balance(ctx context.Context) (*usecases.AccountBalance, error)
}

// SwitchAccountInput selects another authorized account
type SwitchAccountInput struct {
	Account string `json:"account" binding:"required"`
}

// WalletHandler handles the wallet session endpoints
type WalletHandler struct {
	walletUsecase walletService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletUsecase *usecases.WalletUsecase) *WalletHandler {
	return &WalletHandler{walletUsecase: walletUsecase}
}

// State reports the wallet session
// GET /api/v1/wallet
func (h *WalletHandler) State(c *gin.Context) {
	response.Success(c, http.StatusOK, h.walletUsecase.State(c.Request.Context()))
}

// Connect requests authorization from the wallet
// POST /api/v1/wallet/connect
func (h *WalletHandler) Connect(c *gin.Context) {
	state, err := h.walletUsecase.Connect(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// Switch makes another authorized account active
// POST /api/v1/wallet/switch
func (h *WalletHandler) Switch(c *gin.Context) {
	var input SwitchAccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	state, err := h.walletUsecase.Switch(c.Request.Context(), input.Account)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// Disconnect revokes wallet authorization
// POST /api/v1/wallet/disconnect
func (h *WalletHandler) Disconnect(c *gin.Context) {
	state, err := h.walletUsecase.Disconnect(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// Balance reads the native balance of the active account
// GET /api/v1/wallet/balance
func (h *WalletHandler) Balance(c *gin.Context) {
	balance, err := h.walletUsecase.Balance(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, balance)
}
