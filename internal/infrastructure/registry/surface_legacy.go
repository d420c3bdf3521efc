package registry

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"property-registry.backend/internal/domain/entities"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/internal/infrastructure/blockchain"
)

type legacySurface struct {
	maxRecords uint64
}

// NewLegacySurface returns the V1/V2 surface: a single admin, boolean
// status flags and an explicit id list.
func NewLegacySurface(maxRecords uint64) Surface {
	return legacySurface{maxRecords: recordLimit(maxRecords)}
}

var legacyWriteMethods = map[string]string{
	"register": "registerProperty",
	"approve":  "validateProperty",
	"reject":   "rejectProperty",
	"buy":      "buyProperty",
	"withdraw": "withdrawAdminBalance",
}

func (legacySurface) Name() string { return "v1v2" }

func (legacySurface) Selector(op string) []byte {
	return methodID(LegacyRegistryABI, legacyWriteMethods[op])
}

func (s legacySurface) PropertyIDs(ctx context.Context, h blockchain.Handle) ([]uint64, error) {
	vals, err := h.Call(ctx, LegacyRegistryABI, "getAllProperties")
	if err != nil {
		return nil, err
	}
	raw, err := outputAt[[]*big.Int](vals, 0, "getAllProperties")
	if err != nil {
		return nil, err
	}
	if limit := recordLimit(s.maxRecords); uint64(len(raw)) > limit {
		return nil, fmt.Errorf("%w: getAllProperties returned %d ids, limit %d", ErrTooManyRecords, len(raw), limit)
	}
	ids := make([]uint64, 0, len(raw))
	for _, id := range raw {
		if !id.IsUint64() {
			return nil, fmt.Errorf("getAllProperties returned out-of-range id %s", id)
		}
		ids = append(ids, id.Uint64())
	}
	return ids, nil
}

// Property reads properties(id) and falls back to getPropertyDetails(id);
// V1 and V2 deployments expose one or the other.
func (s legacySurface) Property(ctx context.Context, h blockchain.Handle, id uint64) (*entities.PropertyRecord, error) {
	record, err := s.readProperty(ctx, h, "properties", id)
	if err == nil || errors.Is(err, domainerrors.ErrNotFound) {
		return record, err
	}
	record, detailsErr := s.readProperty(ctx, h, "getPropertyDetails", id)
	if detailsErr != nil {
		return nil, fmt.Errorf("properties: %v; getPropertyDetails: %w", err, detailsErr)
	}
	return record, nil
}

func (legacySurface) readProperty(ctx context.Context, h blockchain.Handle, method string, id uint64) (*entities.PropertyRecord, error) {
	vals, err := h.Call(ctx, LegacyRegistryABI, method, idArg(id))
	if err != nil {
		return nil, err
	}
	fields, err := decodePropertyFields(vals, method)
	if err != nil {
		return nil, err
	}
	if fields.ID.Sign() == 0 {
		return nil, fmt.Errorf("property %d: %w", id, domainerrors.ErrNotFound)
	}
	verified, err := outputAt[bool](vals, 6, method)
	if err != nil {
		return nil, err
	}
	sold, err := outputAt[bool](vals, 7, method)
	if err != nil {
		return nil, err
	}
	return &entities.PropertyRecord{
		ID:          fields.ID.Uint64(),
		Owner:       fields.Owner,
		Title:       fields.Title,
		Description: fields.Description,
		Location:    fields.Location,
		Price:       fields.Price,
		Status:      entities.LegacyStatus(verified, sold),
	}, nil
}

func (s legacySurface) Status(ctx context.Context, h blockchain.Handle, id uint64) (entities.PropertyStatus, error) {
	record, err := s.Property(ctx, h, id)
	if err != nil {
		return 0, err
	}
	return record.Status, nil
}

// Roles: the single legacy admin holds both roles
func (legacySurface) Roles(ctx context.Context, h blockchain.Handle, account common.Address) (entities.Roles, error) {
	roles := entities.Roles{Account: account}
	vals, err := h.Call(ctx, LegacyRegistryABI, "admin")
	if err != nil {
		return roles, err
	}
	admin, err := outputAt[common.Address](vals, 0, "admin")
	if err != nil {
		return roles, err
	}
	match := admin == account
	roles.Admin, roles.SuperAdmin = match, match
	return roles, nil
}

func (legacySurface) AdminBalance(ctx context.Context, h blockchain.Handle, _ common.Address) (*big.Int, error) {
	vals, err := h.Call(ctx, LegacyRegistryABI, "adminBalance")
	if err != nil {
		return nil, err
	}
	return outputAt[*big.Int](vals, 0, "adminBalance")
}

func (legacySurface) Register(ctx context.Context, h blockchain.Handle, title, description, location string, priceWei *big.Int) (*types.Transaction, error) {
	return h.Transact(ctx, LegacyRegistryABI, "registerProperty", nil, title, description, location, priceWei)
}

func (legacySurface) Approve(ctx context.Context, h blockchain.Handle, id uint64) (*types.Transaction, error) {
	return h.Transact(ctx, LegacyRegistryABI, "validateProperty", nil, idArg(id))
}

func (legacySurface) Reject(ctx context.Context, h blockchain.Handle, id uint64) (*types.Transaction, error) {
	return h.Transact(ctx, LegacyRegistryABI, "rejectProperty", nil, idArg(id))
}

func (legacySurface) Buy(ctx context.Context, h blockchain.Handle, id uint64, valueWei *big.Int) (*types.Transaction, error) {
	return h.Transact(ctx, LegacyRegistryABI, "buyProperty", valueWei, idArg(id))
}

func (legacySurface) Withdraw(ctx context.Context, h blockchain.Handle) (*types.Transaction, error) {
	return h.Transact(ctx, LegacyRegistryABI, "withdrawAdminBalance", nil)
}

func (legacySurface) RegisterUser(context.Context, blockchain.Handle, common.Address) (*types.Transaction, error) {
	return nil, ErrUnsupported
}

func (legacySurface) AddAdmin(context.Context, blockchain.Handle, common.Address) (*types.Transaction, error) {
	return nil, ErrUnsupported
}

func (legacySurface) RemoveAdmin(context.Context, blockchain.Handle, common.Address) (*types.Transaction, error) {
	return nil, ErrUnsupported
}

func (legacySurface) ChangeSuperAdmin(context.Context, blockchain.Handle, common.Address) (*types.Transaction, error) {
	return nil, ErrUnsupported
}
