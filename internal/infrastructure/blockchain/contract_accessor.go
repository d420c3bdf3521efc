package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	domainerrors "property-registry.backend/internal/domain/errors"
)

var (
	// ErrReadOnly is returned when a read handle is asked to transact
	ErrReadOnly = errors.New("contract handle is read-only")
	// ErrTxReverted is returned when a mined transaction has a failed status
	ErrTxReverted = errors.New("transaction reverted")

	performTransact = func(backend bind.ContractBackend, address common.Address, parsedABI abi.ABI, opts *bind.TransactOpts, method string, args ...interface{}) (*types.Transaction, error) {
		contract := bind.NewBoundContract(address, parsedABI, backend, backend, backend)
		return contract.Transact(opts, method, args...)
	}
	fetchReceipt = func(ctx context.Context, client *EVMClient, hash common.Hash) (*types.Receipt, error) {
		return client.Receipt(ctx, hash)
	}
)

// Handle is a callable binding to the registry contract. Read handles reject
// Transact; signer handles carry the active wallet account.
type Handle interface {
	Address() common.Address
	From() common.Address
	Call(ctx context.Context, parsedABI abi.ABI, method string, args ...interface{}) ([]interface{}, error)
	Transact(ctx context.Context, parsedABI abi.ABI, method string, value *big.Int, args ...interface{}) (*types.Transaction, error)
	WaitConfirmed(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Signer is the part of a wallet provider the accessor needs
type Signer interface {
	Accounts(ctx context.Context) ([]common.Address, error)
	Transactor(ctx context.Context, account common.Address, chainID *big.Int) (*bind.TransactOpts, error)
}

// AccessorConfig locates the registry contract
type AccessorConfig struct {
	RPCURL          string
	ContractAddress string
	ExpectedChainID int64 // zero disables the network check
	ConfirmTimeout  time.Duration
	PollInterval    time.Duration
}

// ContractAccessor hands out read and signer-bound handles to one contract
type ContractAccessor struct {
	clients         *ClientFactory
	rpcURL          string
	address         common.Address
	expectedChainID *big.Int
	signer          Signer
	confirmTimeout  time.Duration
	pollInterval    time.Duration
}

// NewContractAccessor binds the accessor to a fixed address. signer may be nil
// when no wallet is configured; SignerHandle then fails with ErrNoWallet.
func NewContractAccessor(clients *ClientFactory, cfg AccessorConfig, signer Signer) *ContractAccessor {
	a := &ContractAccessor{
		clients:        clients,
		rpcURL:         cfg.RPCURL,
		address:        common.HexToAddress(cfg.ContractAddress),
		signer:         signer,
		confirmTimeout: cfg.ConfirmTimeout,
		pollInterval:   cfg.PollInterval,
	}
	if cfg.ExpectedChainID > 0 {
		a.expectedChainID = big.NewInt(cfg.ExpectedChainID)
	}
	if a.pollInterval <= 0 {
		a.pollInterval = 2 * time.Second
	}
	return a
}

// ContractAddress returns the registry address
func (a *ContractAccessor) ContractAddress() common.Address {
	return a.address
}

// ChainID resolves the chain id of the configured node
func (a *ContractAccessor) ChainID(ctx context.Context) (*big.Int, error) {
	client, err := a.client(ctx)
	if err != nil {
		return nil, err
	}
	return client.ChainID(), nil
}

// ReadHandle returns a handle for view calls
func (a *ContractAccessor) ReadHandle(ctx context.Context) (Handle, error) {
	client, err := a.client(ctx)
	if err != nil {
		return nil, err
	}
	return a.newHandle(client, nil), nil
}

// SignerHandle returns a handle bound to the wallet's active account
func (a *ContractAccessor) SignerHandle(ctx context.Context) (Handle, error) {
	if a.signer == nil {
		return nil, domainerrors.ErrNoWallet
	}
	accounts, err := a.signer.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, domainerrors.ErrNoAccount
	}

	client, err := a.client(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := a.signer.Transactor(ctx, accounts[0], client.ChainID())
	if err != nil {
		return nil, err
	}
	return a.newHandle(client, opts), nil
}

// Balance returns the native balance of an account
func (a *ContractAccessor) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	client, err := a.client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Balance(ctx, account)
}

// Receipt looks up a mined transaction. Unmined hashes return ethereum.NotFound.
func (a *ContractAccessor) Receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	client, err := a.client(ctx)
	if err != nil {
		return nil, err
	}
	return fetchReceipt(ctx, client, hash)
}

func (a *ContractAccessor) client(ctx context.Context) (*EVMClient, error) {
	client, err := a.clients.Client(ctx, a.rpcURL)
	if err != nil {
		return nil, err
	}
	if a.expectedChainID != nil && client.ChainID().Cmp(a.expectedChainID) != 0 {
		return nil, fmt.Errorf("%w: node reports chain %s, registry lives on %s",
			domainerrors.ErrWrongNetwork, client.ChainID(), a.expectedChainID)
	}
	return client, nil
}

func (a *ContractAccessor) newHandle(client *EVMClient, opts *bind.TransactOpts) *contractHandle {
	return &contractHandle{
		client:         client,
		address:        a.address,
		opts:           opts,
		confirmTimeout: a.confirmTimeout,
		pollInterval:   a.pollInterval,
	}
}

type contractHandle struct {
	client         *EVMClient
	address        common.Address
	opts           *bind.TransactOpts
	confirmTimeout time.Duration
	pollInterval   time.Duration
}

func (h *contractHandle) Address() common.Address {
	return h.address
}

func (h *contractHandle) From() common.Address {
	if h.opts == nil {
		return common.Address{}
	}
	return h.opts.From
}

func (h *contractHandle) Call(ctx context.Context, parsedABI abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	out, err := h.client.Call(ctx, h.address, data)
	if err != nil {
		return nil, err
	}
	vals, err := parsedABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", method, err)
	}
	return vals, nil
}

func (h *contractHandle) Transact(ctx context.Context, parsedABI abi.ABI, method string, value *big.Int, args ...interface{}) (*types.Transaction, error) {
	if h.opts == nil {
		return nil, ErrReadOnly
	}
	backend, err := h.client.Backend()
	if err != nil {
		return nil, err
	}
	opts := *h.opts
	opts.Context = ctx
	opts.Value = value
	return performTransact(backend, h.address, parsedABI, &opts, method, args...)
}

// WaitConfirmed polls for the receipt until it is mined, the confirm timeout
// elapses, or ctx is cancelled.
func (h *contractHandle) WaitConfirmed(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if h.confirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.confirmTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := fetchReceipt(ctx, h.client, tx.Hash())
		switch {
		case err == nil && receipt != nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, ErrTxReverted
			}
			return receipt, nil
		case err != nil && !errors.Is(err, ethereum.NotFound):
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", tx.Hash().Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
