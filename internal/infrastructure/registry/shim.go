package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
	"property-registry.backend/internal/domain/entities"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/internal/infrastructure/blockchain"
	"property-registry.backend/internal/infrastructure/metrics"
	"property-registry.backend/pkg/logger"
)

// Accessor hands out contract handles. *blockchain.ContractAccessor implements it.
type Accessor interface {
	ReadHandle(ctx context.Context) (blockchain.Handle, error)
	SignerHandle(ctx context.Context) (blockchain.Handle, error)
}

// SubmitFunc observes every transaction the shim submits, including ones
// that are later abandoned for the next surface.
type SubmitFunc func(surface string, tx *types.Transaction)

// Shim runs each registry operation against its schema surfaces in order;
// the first surface that succeeds answers.
type Shim struct {
	accessor Accessor
	surfaces []Surface
	metrics  *metrics.Metrics
}

// NewShim builds a shim over the given surfaces, defaulting to V3 then V1/V2
func NewShim(accessor Accessor, m *metrics.Metrics, surfaces ...Surface) *Shim {
	if len(surfaces) == 0 {
		surfaces = []Surface{NewV3Surface(DefaultMaxRecords), NewLegacySurface(DefaultMaxRecords)}
	}
	return &Shim{accessor: accessor, surfaces: surfaces, metrics: m}
}

// PropertyIDs lists every property id the contract knows about
func (s *Shim) PropertyIDs(ctx context.Context) ([]uint64, error) {
	return read(ctx, s, "propertyIds", func(surface Surface, h blockchain.Handle) ([]uint64, error) {
		return surface.PropertyIDs(ctx, h)
	})
}

// Property reads and normalizes a single record
func (s *Shim) Property(ctx context.Context, id uint64) (*entities.PropertyRecord, error) {
	return read(ctx, s, "property", func(surface Surface, h blockchain.Handle) (*entities.PropertyRecord, error) {
		return surface.Property(ctx, h, id)
	})
}

// Status reads only the status of a record
func (s *Shim) Status(ctx context.Context, id uint64) (entities.PropertyStatus, error) {
	return read(ctx, s, "status", func(surface Surface, h blockchain.Handle) (entities.PropertyStatus, error) {
		return surface.Status(ctx, h, id)
	})
}

// AdminBalance reads the fees withdrawable by account
func (s *Shim) AdminBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	return read(ctx, s, "adminBalance", func(surface Surface, h blockchain.Handle) (*big.Int, error) {
		return surface.AdminBalance(ctx, h, account)
	})
}

// Roles resolves the account's privileges. When the super-admin is known to
// be someone else but admin membership cannot be read on any surface, the
// account is treated as unprivileged rather than failing.
func (s *Shim) Roles(ctx context.Context, account common.Address) (entities.Roles, error) {
	h, err := s.readHandle(ctx, "roles")
	if err != nil {
		return entities.Roles{}, err
	}
	roles, attempts := firstSuccess(ctx, s, "roles", h, func(surface Surface, h blockchain.Handle) (entities.Roles, error) {
		return surface.Roles(ctx, h, account)
	})
	if attempts == nil {
		return roles, nil
	}
	for _, attempt := range attempts {
		if errors.Is(attempt, errRoleUndetermined) {
			return entities.Roles{Account: account}, nil
		}
	}
	s.metrics.ShimFailure("roles", "read")
	return entities.Roles{}, &domainerrors.ContractReadError{Operation: "roles", Attempts: attempts}
}

func (s *Shim) Register(ctx context.Context, title, description, location string, priceWei *big.Int, onSubmit SubmitFunc) (*types.Receipt, error) {
	return s.write(ctx, "register", onSubmit, func(surface Surface, h blockchain.Handle) (*types.Transaction, error) {
		return surface.Register(ctx, h, title, description, location, priceWei)
	})
}

func (s *Shim) Approve(ctx context.Context, id uint64, onSubmit SubmitFunc) (*types.Receipt, error) {
	return s.write(ctx, "approve", onSubmit, func(surface Surface, h blockchain.Handle) (*types.Transaction, error) {
		return surface.Approve(ctx, h, id)
	})
}

func (s *Shim) Reject(ctx context.Context, id uint64, onSubmit SubmitFunc) (*types.Receipt, error) {
	return s.write(ctx, "reject", onSubmit, func(surface Surface, h blockchain.Handle) (*types.Transaction, error) {
		return surface.Reject(ctx, h, id)
	})
}

func (s *Shim) Buy(ctx context.Context, id uint64, valueWei *big.Int, onSubmit SubmitFunc) (*types.Receipt, error) {
	return s.write(ctx, "buy", onSubmit, func(surface Surface, h blockchain.Handle) (*types.Transaction, error) {
		return surface.Buy(ctx, h, id, valueWei)
	})
}

func (s *Shim) Withdraw(ctx context.Context, onSubmit SubmitFunc) (*types.Receipt, error) {
	return s.write(ctx, "withdraw", onSubmit, func(surface Surface, h blockchain.Handle) (*types.Transaction, error) {
		return surface.Withdraw(ctx, h)
	})
}

func (s *Shim) RegisterUser(ctx context.Context, user common.Address, onSubmit SubmitFunc) (*types.Receipt, error) {
	return s.write(ctx, "registerUser", onSubmit, func(surface Surface, h blockchain.Handle) (*types.Transaction, error) {
		return surface.RegisterUser(ctx, h, user)
	})
}

func (s *Shim) AddAdmin(ctx context.Context, admin common.Address, onSubmit SubmitFunc) (*types.Receipt, error) {
	return s.write(ctx, "addAdmin", onSubmit, func(surface Surface, h blockchain.Handle) (*types.Transaction, error) {
		return surface.AddAdmin(ctx, h, admin)
	})
}

func (s *Shim) RemoveAdmin(ctx context.Context, admin common.Address, onSubmit SubmitFunc) (*types.Receipt, error) {
	return s.write(ctx, "removeAdmin", onSubmit, func(surface Surface, h blockchain.Handle) (*types.Transaction, error) {
		return surface.RemoveAdmin(ctx, h, admin)
	})
}

func (s *Shim) ChangeSuperAdmin(ctx context.Context, next common.Address, onSubmit SubmitFunc) (*types.Receipt, error) {
	return s.write(ctx, "changeSuperAdmin", onSubmit, func(surface Surface, h blockchain.Handle) (*types.Transaction, error) {
		return surface.ChangeSuperAdmin(ctx, h, next)
	})
}

func read[T any](ctx context.Context, s *Shim, op string, fn func(Surface, blockchain.Handle) (T, error)) (T, error) {
	var zero T
	h, err := s.readHandle(ctx, op)
	if err != nil {
		return zero, err
	}
	value, attempts := firstSuccess(ctx, s, op, h, fn)
	if attempts == nil {
		return value, nil
	}
	last := attempts[len(attempts)-1]
	if errors.Is(last, domainerrors.ErrNotFound) {
		return zero, last
	}
	s.metrics.ShimFailure(op, "read")
	return zero, &domainerrors.ContractReadError{Operation: op, Attempts: attempts}
}

// firstSuccess returns nil attempts on success. A surface reporting ErrNotFound
// has answered definitively: every surface reads the same contract storage,
// so no later surface is tried.
func firstSuccess[T any](ctx context.Context, s *Shim, op string, h blockchain.Handle, fn func(Surface, blockchain.Handle) (T, error)) (T, []error) {
	var (
		zero     T
		attempts []error
	)
	for i, surface := range s.surfaces {
		value, err := fn(surface, h)
		if err == nil {
			return value, nil
		}
		attempts = append(attempts, fmt.Errorf("%s: %w", surface.Name(), err))
		if errors.Is(err, domainerrors.ErrNotFound) {
			break
		}
		if i < len(s.surfaces)-1 {
			s.fellBack(ctx, op, surface, err)
		}
	}
	return zero, attempts
}

func (s *Shim) write(ctx context.Context, op string, onSubmit SubmitFunc, fn func(Surface, blockchain.Handle) (*types.Transaction, error)) (*types.Receipt, error) {
	h, err := s.accessor.SignerHandle(ctx)
	if err != nil {
		if isSessionError(err) {
			return nil, err
		}
		s.metrics.ShimFailure(op, "write")
		return nil, &domainerrors.ContractWriteError{Operation: op, Attempts: []error{err}}
	}

	var attempts []error
	var reverted [][]byte
	for i, surface := range s.surfaces {
		// the same calldata against the same contract reverts the same way
		if selector := surface.Selector(op); len(selector) > 0 && containsSelector(reverted, selector) {
			continue
		}
		tx, err := fn(surface, h)
		if err != nil {
			attempts = append(attempts, fmt.Errorf("%s: %w", surface.Name(), err))
			if i < len(s.surfaces)-1 {
				s.fellBack(ctx, op, surface, err)
			}
			continue
		}
		if onSubmit != nil {
			onSubmit(surface.Name(), tx)
		}

		receipt, err := h.WaitConfirmed(ctx, tx)
		if err == nil {
			return receipt, nil
		}
		attempts = append(attempts, fmt.Errorf("%s: %w", surface.Name(), err))
		// anything but a mined revert leaves the transaction's fate unknown
		if !errors.Is(err, blockchain.ErrTxReverted) {
			break
		}
		reverted = append(reverted, surface.Selector(op))
		if i < len(s.surfaces)-1 {
			s.fellBack(ctx, op, surface, err)
		}
	}

	s.metrics.ShimFailure(op, "write")
	return nil, &domainerrors.ContractWriteError{Operation: op, Attempts: attempts}
}

func (s *Shim) readHandle(ctx context.Context, op string) (blockchain.Handle, error) {
	h, err := s.accessor.ReadHandle(ctx)
	if err != nil {
		if isSessionError(err) {
			return nil, err
		}
		s.metrics.ShimFailure(op, "read")
		return nil, &domainerrors.ContractReadError{Operation: op, Attempts: []error{err}}
	}
	return h, nil
}

func (s *Shim) fellBack(ctx context.Context, op string, surface Surface, err error) {
	s.metrics.ShimFallback(op, surface.Name())
	logger.Debug(ctx, "Registry surface failed, falling back",
		zap.String("operation", op),
		zap.String("surface", surface.Name()),
		zap.Error(err),
	)
}

func containsSelector(selectors [][]byte, selector []byte) bool {
	for _, candidate := range selectors {
		if bytes.Equal(candidate, selector) {
			return true
		}
	}
	return false
}

func isSessionError(err error) bool {
	return errors.Is(err, domainerrors.ErrNoWallet) ||
		errors.Is(err, domainerrors.ErrNoAccount) ||
		errors.Is(err, domainerrors.ErrWrongNetwork)
}
