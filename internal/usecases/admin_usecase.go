package usecases

import (
	"context"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"property-registry.backend/internal/domain/entities"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/internal/infrastructure/registry"
	"property-registry.backend/pkg/utils"
)

// AdminUsecase covers the validation panel and admin earnings
type AdminUsecase struct {
	records  RecordSource
	registry Registry
	session  AccountSession
	runner   *TxRunner
}

func NewAdminUsecase(records RecordSource, reg Registry, session AccountSession, runner *TxRunner) *AdminUsecase {
	return &AdminUsecase{records: records, registry: reg, session: session, runner: runner}
}

// Roles resolves the privileges of the connected account
func (u *AdminUsecase) Roles(ctx context.Context) (entities.Roles, error) {
	account, err := currentAccount(u.session)
	if err != nil {
		return entities.Roles{}, err
	}
	return u.registry.Roles(ctx, account)
}

// Pending lists properties waiting for validation
func (u *AdminUsecase) Pending(ctx context.Context, query string, pagination utils.PageRequest) (*entities.PropertyPage, error) {
	if _, err := u.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return listPage(ctx, u.records, u.session, BucketPending, query, pagination)
}

// Approve validates a pending property
func (u *AdminUsecase) Approve(ctx context.Context, id uint64) (*entities.TxResult, error) {
	return u.decide(ctx, id, entities.TxActionApprove, "",
		func(ctx context.Context, onSubmit registry.SubmitFunc) (*types.Receipt, error) {
			return u.registry.Approve(ctx, id, onSubmit)
		})
}

// Reject turns down a pending property. The reason is kept in the journal only.
func (u *AdminUsecase) Reject(ctx context.Context, id uint64, reason string) (*entities.TxResult, error) {
	return u.decide(ctx, id, entities.TxActionReject, strings.TrimSpace(reason),
		func(ctx context.Context, onSubmit registry.SubmitFunc) (*types.Receipt, error) {
			return u.registry.Reject(ctx, id, onSubmit)
		})
}

// Earnings reports the withdrawable fee balance and sales so far
func (u *AdminUsecase) Earnings(ctx context.Context) (*entities.Earnings, error) {
	account, err := u.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	balance, err := u.registry.AdminBalance(ctx, account)
	if err != nil {
		return nil, err
	}
	all, err := u.records.All(ctx)
	if err != nil {
		return nil, err
	}

	volume := new(big.Int)
	sold := FilterProperties(all.Records, BucketSold, "", account)
	for _, p := range sold {
		if p.Price != nil {
			volume.Add(volume, p.Price)
		}
	}
	return &entities.Earnings{
		Account:       account,
		BalanceWei:    balance,
		Balance:       entities.FormatEther(balance),
		SoldCount:     len(sold),
		SoldVolumeWei: volume,
		SoldVolume:    entities.FormatEther(volume),
	}, nil
}

// Withdraw pulls the account's fee balance
func (u *AdminUsecase) Withdraw(ctx context.Context) (*entities.TxResult, error) {
	account, err := u.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	balance, err := u.registry.AdminBalance(ctx, account)
	if err != nil {
		return nil, err
	}
	if balance == nil || balance.Sign() <= 0 {
		return nil, domainerrors.Invalid("balance", "no earnings to withdraw")
	}

	req := TxRequest{
		Action:  entities.TxActionWithdraw,
		Target:  account.Hex(),
		Account: account,
		Args:    []string{balance.String()},
	}
	return u.runner.Run(ctx, req, func(ctx context.Context, onSubmit registry.SubmitFunc) (*types.Receipt, error) {
		return u.registry.Withdraw(ctx, onSubmit)
	})
}

// decide submits a validation decision. Whether the record may still change
// state is for the contract to say; a refusal comes back as its revert.
func (u *AdminUsecase) decide(ctx context.Context, id uint64, action entities.TxAction, note string, submit SubmitFn) (*entities.TxResult, error) {
	account, err := u.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := u.registry.Property(ctx, id); err != nil {
		return nil, err
	}

	req := TxRequest{
		Action:  action,
		Target:  strconv.FormatUint(id, 10),
		Account: account,
		Note:    note,
	}
	result, err := u.runner.Run(ctx, req, submit)
	if err != nil {
		return nil, err
	}
	result.Property = refreshProperty(ctx, u.registry, id)
	return result, nil
}

func (u *AdminUsecase) requireAdmin(ctx context.Context) (common.Address, error) {
	return requireRole(ctx, u.registry, u.session, entities.Roles.Privileged)
}

// requireRole resolves the connected account and checks it with allowed
func requireRole(ctx context.Context, reader RegistryReader, session AccountSession, allowed func(entities.Roles) bool) (common.Address, error) {
	account, err := currentAccount(session)
	if err != nil {
		return common.Address{}, err
	}
	roles, err := reader.Roles(ctx, account)
	if err != nil {
		return common.Address{}, err
	}
	if !allowed(roles) {
		return common.Address{}, domainerrors.ErrNotPrivileged
	}
	return account, nil
}
