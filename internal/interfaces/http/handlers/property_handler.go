package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"property-registry.backend/internal/domain/entities"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/internal/interfaces/http/response"
	"property-registry.backend/internal/usecases"
	"property-registry.backend/pkg/utils"
)

type propertyService interface {
	Marketplace(ctx context.Context, query string, pagination utils.PageRequest) (*entities.PropertyPage, error)
	List(ctx context.Context, bucket usecases.Bucket, query string, pagination utils.PageRequest) (*entities.PropertyPage, error)
	Get(ctx context.Context, id uint64) (*entities.PropertyView, error)
	Dashboard(ctx context.Context) (*entities.Dashboard, error)
	Register(ctx context.Context, input *entities.RegisterPropertyInput) (*entities.TxResult, error)
	Buy(ctx context.Context, id uint64) (*entities.TxResult, error)
	BuyLink(ctx context.Context, id uint64) (*entities.BuyLink, error)
}

const qrSize = 256

var encodeQR = qrcode.Encode

// PropertyHandler serves the marketplace, property list and dashboard views
type PropertyHandler struct {
	propertyUsecase propertyService
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(propertyUsecase *usecases.PropertyUsecase) *PropertyHandler {
	return &PropertyHandler{propertyUsecase: propertyUsecase}
}

// Marketplace lists approved listings that are still for sale
// GET /api/v1/marketplace?q=&page=&limit=
func (h *PropertyHandler) Marketplace(c *gin.Context) {
	page, err := h.propertyUsecase.Marketplace(c.Request.Context(), c.Query("q"), pagination(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, page)
}

// ListProperties lists properties in a bucket
// GET /api/v1/properties?filter=all|validated|pending|rejected|sold|mine|others&q=&page=&limit=
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	bucket, err := usecases.ParseBucket(c.Query("filter"))
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.propertyUsecase.List(c.Request.Context(), bucket, c.Query("q"), pagination(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, page)
}

// GetProperty reads one property fresh from the contract
// GET /api/v1/properties/:id
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id, err := propertyID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	property, err := h.propertyUsecase.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"property": property})
}

// Dashboard summarizes the connected account
// GET /api/v1/dashboard
func (h *PropertyHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.propertyUsecase.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, dashboard)
}

// RegisterProperty lists a new property for validation
// POST /api/v1/properties
func (h *PropertyHandler) RegisterProperty(c *gin.Context) {
	var input entities.RegisterPropertyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	result, err := h.propertyUsecase.Register(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"message":     "Property submitted for validation",
		"transaction": result,
	})
}

// BuyProperty purchases a listing at its asking price
// POST /api/v1/properties/:id/buy
func (h *PropertyHandler) BuyProperty(c *gin.Context) {
	id, err := propertyID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.propertyUsecase.Buy(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message":     "Property purchased",
		"transaction": result,
	})
}

// BuyLink renders the payment URI of a listing as a QR code PNG, or returns
// it as JSON when format=json
// GET /api/v1/properties/:id/qr
func (h *PropertyHandler) BuyLink(c *gin.Context) {
	id, err := propertyID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	link, err := h.propertyUsecase.BuyLink(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if c.Query("format") == "json" {
		response.Success(c, http.StatusOK, link)
		return
	}

	png, err := encodeQR(link.URI, qrcode.Medium, qrSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("X-Payment-URI", link.URI)
	c.Data(http.StatusOK, "image/png", png)
}
