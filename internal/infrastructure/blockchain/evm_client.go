package blockchain

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	dialEthClient = ethclient.DialContext
	fetchChainID  = func(ctx context.Context, client *ethclient.Client) (*big.Int, error) {
		return client.ChainID(ctx)
	}
)

// ErrNoBackend is returned by clients built without an RPC connection
var ErrNoBackend = errors.New("evm client has no rpc backend")

// CallFunc answers eth_call for a static client
type CallFunc func(ctx context.Context, to common.Address, data []byte) ([]byte, error)

// EVMClient is one node connection with its resolved chain id
type EVMClient struct {
	backend *ethclient.Client
	chainID *big.Int
	rpcURL  string
	call    CallFunc
}

// NewEVMClient dials rpcURL and resolves its chain id
func NewEVMClient(ctx context.Context, rpcURL string) (*EVMClient, error) {
	backend, err := dialEthClient(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	chainID, err := fetchChainID(ctx, backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return &EVMClient{backend: backend, chainID: chainID, rpcURL: rpcURL}, nil
}

// NewStaticEVMClient builds a client without a node. Calls go to call,
// everything that needs a node fails with ErrNoBackend.
func NewStaticEVMClient(chainID *big.Int, call CallFunc) *EVMClient {
	if chainID == nil {
		chainID = big.NewInt(1)
	}
	return &EVMClient{chainID: chainID, call: call}
}

func (c *EVMClient) ChainID() *big.Int {
	return c.chainID
}

func (c *EVMClient) RPCURL() string {
	return c.rpcURL
}

// Backend exposes the connection for bound-contract transacts
func (c *EVMClient) Backend() (bind.ContractBackend, error) {
	if c.backend == nil {
		return nil, ErrNoBackend
	}
	return c.backend, nil
}

// Balance returns the latest native balance of account in wei
func (c *EVMClient) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	if c.backend == nil {
		return nil, ErrNoBackend
	}
	return c.backend.BalanceAt(ctx, account, nil)
}

// Receipt returns ethereum.NotFound while hash is unmined
func (c *EVMClient) Receipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if c.backend == nil {
		return nil, ErrNoBackend
	}
	return c.backend.TransactionReceipt(ctx, hash)
}

// Call runs a read-only call against the latest block
func (c *EVMClient) Call(ctx context.Context, to common.Address, data []byte) ([]byte, error) {
	if c.call != nil {
		return c.call(ctx, to, data)
	}
	if c.backend == nil {
		return nil, ErrNoBackend
	}
	return c.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
}

func (c *EVMClient) Close() {
	if c.backend != nil {
		c.backend.Close()
	}
}
