package usecases

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"property-registry.backend/internal/domain/entities"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/internal/infrastructure/wallet"
	"property-registry.backend/pkg/logger"
)

// AccountBalance is the native balance of the connected account
type AccountBalance struct {
	Account    string `json:"account"`
	BalanceWei string `json:"balanceWei"`
	Balance    string `json:"balance"`
}

// WalletUsecase is the connect/switch/disconnect flow of the wallet session
type WalletUsecase struct {
	controller WalletController
	session    WalletSession
	chain      ChainReader
}

// NewWalletUsecase builds the usecase. controller may be nil when no wallet is
// configured; connecting then fails with ErrNoWallet.
func NewWalletUsecase(controller WalletController, session WalletSession, chain ChainReader) *WalletUsecase {
	return &WalletUsecase{controller: controller, session: session, chain: chain}
}

// State reports the session without prompting the wallet
func (u *WalletUsecase) State(ctx context.Context) *entities.WalletState {
	state := &entities.WalletState{
		Accounts:  u.session.Accounts(),
		Available: []common.Address{},
		Contract:  u.chain.ContractAddress(),
	}
	if state.Accounts == nil {
		state.Accounts = []common.Address{}
	}
	if account, ok := u.session.Current(); ok {
		state.Connected = true
		state.Account = &account
	}
	if u.controller != nil {
		state.Available = u.controller.Known()
	}
	chainID, err := u.chain.ChainID(ctx)
	if err != nil {
		logger.Warn(ctx, "Failed to resolve chain id for wallet state", zap.Error(err))
	} else {
		state.ChainID = chainID.String()
	}
	return state
}

// Connect requests authorization from the wallet
func (u *WalletUsecase) Connect(ctx context.Context) (*entities.WalletState, error) {
	if u.controller == nil {
		return nil, domainerrors.ErrNoWallet
	}
	if _, err := u.controller.RequestAccounts(ctx); err != nil {
		return nil, err
	}
	return u.synced(ctx)
}

// Switch makes another authorized account the active one
func (u *WalletUsecase) Switch(ctx context.Context, address string) (*entities.WalletState, error) {
	if u.controller == nil {
		return nil, domainerrors.ErrNoWallet
	}
	account, err := ParseAddress("account", address)
	if err != nil {
		return nil, err
	}
	if _, err := u.controller.Select(account); err != nil {
		if errors.Is(err, wallet.ErrUnknownAccount) {
			return nil, domainerrors.Invalid("account", "is not held by this wallet")
		}
		return nil, err
	}
	return u.synced(ctx)
}

// Disconnect revokes authorization
func (u *WalletUsecase) Disconnect(ctx context.Context) (*entities.WalletState, error) {
	if u.controller == nil {
		return nil, domainerrors.ErrNoWallet
	}
	u.controller.Disconnect()
	return u.synced(ctx)
}

// Balance reads the native balance of the active account
func (u *WalletUsecase) Balance(ctx context.Context) (*AccountBalance, error) {
	account, err := currentAccount(u.session)
	if err != nil {
		return nil, err
	}
	balance, err := u.chain.Balance(ctx, account)
	if err != nil {
		return nil, err
	}
	return &AccountBalance{
		Account:    account.Hex(),
		BalanceWei: balance.String(),
		Balance:    entities.FormatEther(balance),
	}, nil
}

func (u *WalletUsecase) synced(ctx context.Context) (*entities.WalletState, error) {
	if err := u.session.Sync(ctx); err != nil {
		return nil, err
	}
	return u.State(ctx), nil
}
