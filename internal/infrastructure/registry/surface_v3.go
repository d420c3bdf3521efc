package registry

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"property-registry.backend/internal/domain/entities"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/internal/infrastructure/blockchain"
)

type v3Surface struct {
	maxRecords uint64
}

// NewV3Surface returns the surface for contracts exposing propertyCount,
// getPropertyStatus and the admin set. A propertyCount above maxRecords
// fails with ErrTooManyRecords; zero means DefaultMaxRecords.
func NewV3Surface(maxRecords uint64) Surface {
	return v3Surface{maxRecords: recordLimit(maxRecords)}
}

var v3WriteMethods = map[string]string{
	"register":         "registerProperty",
	"approve":          "approveProperty",
	"reject":           "rejectProperty",
	"buy":              "buyProperty",
	"withdraw":         "withdrawAdminBalance",
	"registerUser":     "registerUser",
	"addAdmin":         "addAdmin",
	"removeAdmin":      "removeAdmin",
	"changeSuperAdmin": "changeSuperAdmin",
}

func (v3Surface) Name() string { return "v3" }

func (v3Surface) Selector(op string) []byte {
	return methodID(RegistryV3ABI, v3WriteMethods[op])
}

func (s v3Surface) PropertyIDs(ctx context.Context, h blockchain.Handle) ([]uint64, error) {
	vals, err := h.Call(ctx, RegistryV3ABI, "propertyCount")
	if err != nil {
		return nil, err
	}
	count, err := outputAt[*big.Int](vals, 0, "propertyCount")
	if err != nil {
		return nil, err
	}
	limit := recordLimit(s.maxRecords)
	if !count.IsUint64() || count.Uint64() > limit {
		return nil, fmt.Errorf("%w: propertyCount %s, limit %d", ErrTooManyRecords, count, limit)
	}
	n := count.Uint64()
	ids := make([]uint64, 0, n)
	for id := uint64(1); id <= n; id++ {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s v3Surface) Property(ctx context.Context, h blockchain.Handle, id uint64) (*entities.PropertyRecord, error) {
	vals, err := h.Call(ctx, RegistryV3ABI, "properties", idArg(id))
	if err != nil {
		return nil, err
	}
	fields, err := decodePropertyFields(vals, "properties")
	if err != nil {
		return nil, err
	}
	if fields.ID.Sign() == 0 {
		return nil, fmt.Errorf("property %d: %w", id, domainerrors.ErrNotFound)
	}
	images, err := outputAt[string](vals, 6, "properties")
	if err != nil {
		return nil, err
	}
	status, err := s.Status(ctx, h, id)
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
		Status:      status,
		Images:      images,
	}, nil
}

func (v3Surface) Status(ctx context.Context, h blockchain.Handle, id uint64) (entities.PropertyStatus, error) {
	vals, err := h.Call(ctx, RegistryV3ABI, "getPropertyStatus", idArg(id))
	if err != nil {
		return 0, err
	}
	raw, err := outputAt[uint8](vals, 0, "getPropertyStatus")
	if err != nil {
		return 0, err
	}
	status := entities.PropertyStatus(raw)
	if !status.Valid() {
		return 0, fmt.Errorf("getPropertyStatus returned unknown status %d", raw)
	}
	return status, nil
}

// Roles checks the exact super-admin match first, then admin-set membership.
// A super-admin is always an admin too.
func (v3Surface) Roles(ctx context.Context, h blockchain.Handle, account common.Address) (entities.Roles, error) {
	roles := entities.Roles{Account: account}

	superResolved := false
	vals, superErr := h.Call(ctx, RegistryV3ABI, "superAdmin")
	if superErr == nil {
		var superAdmin common.Address
		superAdmin, superErr = outputAt[common.Address](vals, 0, "superAdmin")
		if superErr == nil {
			superResolved = true
			if superAdmin == account {
				roles.Admin, roles.SuperAdmin = true, true
				return roles, nil
			}
		}
	}

	vals, err := h.Call(ctx, RegistryV3ABI, "isAdmin", account)
	if err == nil {
		var isAdmin bool
		if isAdmin, err = outputAt[bool](vals, 0, "isAdmin"); err == nil {
			roles.Admin = isAdmin
			return roles, nil
		}
	}
	if superResolved {
		return roles, fmt.Errorf("%w: %v", errRoleUndetermined, err)
	}
	return roles, fmt.Errorf("superAdmin: %v; isAdmin: %w", superErr, err)
}

func (v3Surface) AdminBalance(ctx context.Context, h blockchain.Handle, account common.Address) (*big.Int, error) {
	vals, err := h.Call(ctx, RegistryV3ABI, "adminBalances", account)
	if err != nil {
		return nil, err
	}
	return outputAt[*big.Int](vals, 0, "adminBalances")
}

func (v3Surface) Register(ctx context.Context, h blockchain.Handle, title, description, location string, priceWei *big.Int) (*types.Transaction, error) {
	return h.Transact(ctx, RegistryV3ABI, "registerProperty", nil, title, description, location, priceWei)
}

func (v3Surface) Approve(ctx context.Context, h blockchain.Handle, id uint64) (*types.Transaction, error) {
	return h.Transact(ctx, RegistryV3ABI, "approveProperty", nil, idArg(id))
}

func (v3Surface) Reject(ctx context.Context, h blockchain.Handle, id uint64) (*types.Transaction, error) {
	return h.Transact(ctx, RegistryV3ABI, "rejectProperty", nil, idArg(id))
}

func (v3Surface) Buy(ctx context.Context, h blockchain.Handle, id uint64, valueWei *big.Int) (*types.Transaction, error) {
	return h.Transact(ctx, RegistryV3ABI, "buyProperty", valueWei, idArg(id))
}

func (v3Surface) Withdraw(ctx context.Context, h blockchain.Handle) (*types.Transaction, error) {
	return h.Transact(ctx, RegistryV3ABI, "withdrawAdminBalance", nil)
}

func (v3Surface) RegisterUser(ctx context.Context, h blockchain.Handle, user common.Address) (*types.Transaction, error) {
	return h.Transact(ctx, RegistryV3ABI, "registerUser", nil, user)
}

func (v3Surface) AddAdmin(ctx context.Context, h blockchain.Handle, admin common.Address) (*types.Transaction, error) {
	return h.Transact(ctx, RegistryV3ABI, "addAdmin", nil, admin)
}

func (v3Surface) RemoveAdmin(ctx context.Context, h blockchain.Handle, admin common.Address) (*types.Transaction, error) {
	return h.Transact(ctx, RegistryV3ABI, "removeAdmin", nil, admin)
}

func (v3Surface) ChangeSuperAdmin(ctx context.Context, h blockchain.Handle, next common.Address) (*types.Transaction, error) {
	return h.Transact(ctx, RegistryV3ABI, "changeSuperAdmin", nil, next)
}
