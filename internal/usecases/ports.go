package usecases

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"property-registry.backend/internal/domain/entities"
	"property-registry.backend/internal/infrastructure/registry"
)

// RegistryReader is the read side of the schema shim
type RegistryReader interface {
	PropertyIDs(ctx context.Context) ([]uint64, error)
	Property(ctx context.Context, id uint64) (*entities.PropertyRecord, error)
	Roles(ctx context.Context, account common.Address) (entities.Roles, error)
	AdminBalance(ctx context.Context, account common.Address) (*big.Int, error)
}

// RegistryWriter is the write side of the schema shim. Every call blocks
// until the transaction is confirmed or abandoned.
type RegistryWriter interface {
	Register(ctx context.Context, title, description, location string, priceWei *big.Int, onSubmit registry.SubmitFunc) (*types.Receipt, error)
	Approve(ctx context.Context, id uint64, onSubmit registry.SubmitFunc) (*types.Receipt, error)
	Reject(ctx context.Context, id uint64, onSubmit registry.SubmitFunc) (*types.Receipt, error)
	Buy(ctx context.Context, id uint64, valueWei *big.Int, onSubmit registry.SubmitFunc) (*types.Receipt, error)
	Withdraw(ctx context.Context, onSubmit registry.SubmitFunc) (*types.Receipt, error)
	RegisterUser(ctx context.Context, user common.Address, onSubmit registry.SubmitFunc) (*types.Receipt, error)
	AddAdmin(ctx context.Context, admin common.Address, onSubmit registry.SubmitFunc) (*types.Receipt, error)
	RemoveAdmin(ctx context.Context, admin common.Address, onSubmit registry.SubmitFunc) (*types.Receipt, error)
	ChangeSuperAdmin(ctx context.Context, next common.Address, onSubmit registry.SubmitFunc) (*types.Receipt, error)
}

// Registry is the full shim surface. *registry.Shim implements it.
type Registry interface {
	RegistryReader
	RegistryWriter
}

// RecordSource materializes the whole record set. *registry.Enumerator implements it.
type RecordSource interface {
	All(ctx context.Context) (*registry.Enumeration, error)
}

// AccountSession exposes the process-wide wallet state. *wallet.Session implements it.
type AccountSession interface {
	Current() (common.Address, bool)
	Accounts() []common.Address
}

// ChainReader reads chain state outside the registry. *blockchain.ContractAccessor implements it.
type ChainReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
	Balance(ctx context.Context, account common.Address) (*big.Int, error)
	ContractAddress() common.Address
}

// Locker hands out short-lived exclusive keys
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// WalletSession is an AccountSession that can be resynced after a change
type WalletSession interface {
	AccountSession
	Sync(ctx context.Context) error
}

// WalletController drives the wallet's authorization. *wallet.KeyedProvider implements it.
type WalletController interface {
	Known() []common.Address
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	Select(account common.Address) ([]common.Address, error)
	Disconnect()
}
