package registry

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"property-registry.backend/internal/domain/entities"
	"property-registry.backend/internal/infrastructure/blockchain"
)

// DefaultMaxRecords caps the ids a surface will list when none is configured
const DefaultMaxRecords = 10_000

var (
	// ErrTooManyRecords is returned when the contract reports more records
	// than the surface is allowed to enumerate
	ErrTooManyRecords = errors.New("record count exceeds enumeration limit")

	// ErrUnsupported is returned by a surface that has no method for an operation
	ErrUnsupported = errors.New("operation not supported by this contract schema")

	// errRoleUndetermined means the surface answered part of the role query
	// (the super-admin is someone else) but could not answer the rest.
	errRoleUndetermined = errors.New("admin membership undetermined")
)

// Surface is one contract schema's rendition of the registry operations.
// Write methods only submit; confirmation is the caller's job.
type Surface interface {
	Name() string
	// Selector is the 4-byte method id op submits, nil when unsupported
	Selector(op string) []byte

	PropertyIDs(ctx context.Context, h blockchain.Handle) ([]uint64, error)
	Property(ctx context.Context, h blockchain.Handle, id uint64) (*entities.PropertyRecord, error)
	Status(ctx context.Context, h blockchain.Handle, id uint64) (entities.PropertyStatus, error)
	Roles(ctx context.Context, h blockchain.Handle, account common.Address) (entities.Roles, error)
	AdminBalance(ctx context.Context, h blockchain.Handle, account common.Address) (*big.Int, error)

	Register(ctx context.Context, h blockchain.Handle, title, description, location string, priceWei *big.Int) (*types.Transaction, error)
	Approve(ctx context.Context, h blockchain.Handle, id uint64) (*types.Transaction, error)
	Reject(ctx context.Context, h blockchain.Handle, id uint64) (*types.Transaction, error)
	Buy(ctx context.Context, h blockchain.Handle, id uint64, valueWei *big.Int) (*types.Transaction, error)
	Withdraw(ctx context.Context, h blockchain.Handle) (*types.Transaction, error)

	// account management exists on V3 only
	RegisterUser(ctx context.Context, h blockchain.Handle, user common.Address) (*types.Transaction, error)
	AddAdmin(ctx context.Context, h blockchain.Handle, admin common.Address) (*types.Transaction, error)
	RemoveAdmin(ctx context.Context, h blockchain.Handle, admin common.Address) (*types.Transaction, error)
	ChangeSuperAdmin(ctx context.Context, h blockchain.Handle, next common.Address) (*types.Transaction, error)
}

func recordLimit(max uint64) uint64 {
	if max == 0 {
		return DefaultMaxRecords
	}
	return max
}

func idArg(id uint64) *big.Int {
	return new(big.Int).SetUint64(id)
}
