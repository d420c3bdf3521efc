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

type superAdminService interface {
	RegisterUser(ctx context.Context, address string) (*entities.TxResult, error)
	AddAdmin(ctx context.Context, address string) (*entities.TxResult, error)
	RemoveAdmin(ctx context.Context, address string) (*entities.TxResult, error)
	ChangeSuperAdmin(ctx context.Context, address string) (*entities.TxResult, error)
}

// AccountInput names the account a super-admin call acts on
type AccountInput struct {
	Address string `json:"address" binding:"required"`
}

type SuperAdminHandler struct {
	superAdminUsecase superAdminService
}

func NewSuperAdminHandler(superAdminUsecase *usecases.SuperAdminUsecase) *SuperAdminHandler {
	return &SuperAdminHandler{superAdminUsecase: superAdminUsecase}
}

// RegisterUser POST /api/v1/super-admin/users
func (h *SuperAdminHandler) RegisterUser(c *gin.Context) {
	h.manage(c, "User registered", h.superAdminUsecase.RegisterUser)
}

// AddAdmin POST /api/v1/super-admin/admins
func (h *SuperAdminHandler) AddAdmin(c *gin.Context) {
	h.manage(c, "Admin added", h.superAdminUsecase.AddAdmin)
}

// RemoveAdmin POST /api/v1/super-admin/admins/remove
func (h *SuperAdminHandler) RemoveAdmin(c *gin.Context) {
	h.manage(c, "Admin removed", h.superAdminUsecase.RemoveAdmin)
}

// ChangeSuperAdmin POST /api/v1/super-admin/transfer
func (h *SuperAdminHandler) ChangeSuperAdmin(c *gin.Context) {
	h.manage(c, "Super admin changed", h.superAdminUsecase.ChangeSuperAdmin)
}

func (h *SuperAdminHandler) manage(c *gin.Context, message string, call func(context.Context, string) (*entities.TxResult, error)) {
	var input AccountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	result, err := call(c.Request.Context(), input.Address)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": message, "transaction": result})
}
