package usecases

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"property-registry.backend/internal/domain/entities"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/internal/infrastructure/registry"
)

// SuperAdminUsecase manages users and admins. Only the V3 schema has these
// calls; on a legacy contract they fail as a ContractWriteError.
type SuperAdminUsecase struct {
	registry Registry
	session  AccountSession
	runner   *TxRunner
}

func NewSuperAdminUsecase(reg Registry, session AccountSession, runner *TxRunner) *SuperAdminUsecase {
	return &SuperAdminUsecase{registry: reg, session: session, runner: runner}
}

func (u *SuperAdminUsecase) RegisterUser(ctx context.Context, address string) (*entities.TxResult, error) {
	return u.manage(ctx, entities.TxActionRegisterUser, "user", address, u.registry.RegisterUser)
}

func (u *SuperAdminUsecase) AddAdmin(ctx context.Context, address string) (*entities.TxResult, error) {
	return u.manage(ctx, entities.TxActionAddAdmin, "admin", address, u.registry.AddAdmin)
}

func (u *SuperAdminUsecase) RemoveAdmin(ctx context.Context, address string) (*entities.TxResult, error) {
	return u.manage(ctx, entities.TxActionRemoveAdmin, "admin", address, u.registry.RemoveAdmin)
}

// ChangeSuperAdmin hands the role to another account
func (u *SuperAdminUsecase) ChangeSuperAdmin(ctx context.Context, address string) (*entities.TxResult, error) {
	return u.manage(ctx, entities.TxActionChangeSuperAdmin, "superAdmin", address, u.registry.ChangeSuperAdmin)
}

type accountWrite func(ctx context.Context, target common.Address, onSubmit registry.SubmitFunc) (*types.Receipt, error)

func (u *SuperAdminUsecase) manage(ctx context.Context, action entities.TxAction, field, address string, write accountWrite) (*entities.TxResult, error) {
	target, err := ParseAddress(field, address)
	if err != nil {
		return nil, err
	}
	account, err := requireRole(ctx, u.registry, u.session, func(r entities.Roles) bool { return r.SuperAdmin })
	if err != nil {
		return nil, err
	}
	if action == entities.TxActionChangeSuperAdmin && target == account {
		return nil, domainerrors.Invalid(field, "account is already the super admin")
	}

	req := TxRequest{
		Action:  action,
		Target:  target.Hex(),
		Account: account,
	}
	return u.runner.Run(ctx, req, func(ctx context.Context, onSubmit registry.SubmitFunc) (*types.Receipt, error) {
		return write(ctx, target, onSubmit)
	})
}

// ParseAddress accepts a hex account address, rejecting the zero address
func ParseAddress(field, value string) (common.Address, error) {
	value = strings.TrimSpace(value)
	if !common.IsHexAddress(value) {
		return common.Address{}, domainerrors.Invalid(field, "must be a 20 byte hex address")
	}
	addr := common.HexToAddress(value)
	if addr == (common.Address{}) {
		return common.Address{}, domainerrors.Invalid(field, "must not be the zero address")
	}
	return addr, nil
}
