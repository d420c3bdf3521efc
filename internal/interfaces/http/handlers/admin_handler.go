package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"property-registry.backend/internal/domain/entities"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/internal/interfaces/http/response"
	"property-registry.backend/internal/usecases"
	"property-registry.backend/pkg/utils"
)

type adminService interface {
	Roles(ctx context.Context) (entities.Roles, error)
	Pending(ctx context.Context, query string, pagination utils.PageRequest) (*entities.PropertyPage, error)
	Approve(ctx context.Context, id uint64) (*entities.TxResult, error)
	Reject(ctx context.Context, id uint64, reason string) (*entities.TxResult, error)
	Earnings(ctx context.Context) (*entities.Earnings, error)
	Withdraw(ctx context.Context) (*entities.TxResult, error)
}

// RejectInput is the optional body of a rejection
type RejectInput struct {
	Reason string `json:"reason"`
}

// AdminHandler handles the validation panel and earnings endpoints
type AdminHandler struct {
	adminUsecase adminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminUsecase *usecases.AdminUsecase) *AdminHandler {
	return &AdminHandler{adminUsecase: adminUsecase}
}

// Roles reports the privileges of the connected account
// GET /api/v1/admin/roles
func (h *AdminHandler) Roles(c *gin.Context) {
	roles, err := h.adminUsecase.Roles(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"roles": roles})
}

// ListPending lists properties awaiting validation
// GET /api/v1/admin/properties/pending
func (h *AdminHandler) ListPending(c *gin.Context) {
	page, err := h.adminUsecase.Pending(c.Request.Context(), c.Query("q"), pagination(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, page)
}

// ApproveProperty validates a pending property
// POST /api/v1/admin/properties/:id/approve
func (h *AdminHandler) ApproveProperty(c *gin.Context) {
	id, err := propertyID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.adminUsecase.Approve(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Property approved", "transaction": result})
}

// RejectProperty turns down a pending property
// POST /api/v1/admin/properties/:id/reject
func (h *AdminHandler) RejectProperty(c *gin.Context) {
	id, err := propertyID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var input RejectInput
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			response.Error(c, domainerrors.BadRequest(err.Error()))
			return
		}
	}
	result, err := h.adminUsecase.Reject(c.Request.Context(), id, input.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Property rejected", "transaction": result})
}

// Earnings reports the admin fee balance
// GET /api/v1/admin/earnings
func (h *AdminHandler) Earnings(c *gin.Context) {
	earnings, err := h.adminUsecase.Earnings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, earnings)
}

// Withdraw pulls the admin fee balance
// POST /api/v1/admin/earnings/withdraw
func (h *AdminHandler) Withdraw(c *gin.Context) {
	result, err := h.adminUsecase.Withdraw(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Earnings withdrawn", "transaction": result})
}
