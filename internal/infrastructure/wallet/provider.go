package wallet

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
)

// Provider is the wallet the gateway signs with.
//
// Accounts never prompts and may return an empty list. RequestAccounts
// authorizes the wallet. Subscribers receive the new account list on every
// change, or an empty list on disconnect. The first account is the active one.
type Provider interface {
	Accounts(ctx context.Context) ([]common.Address, error)
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	SubscribeAccounts(ch chan<- []common.Address) event.Subscription
	Transactor(ctx context.Context, account common.Address, chainID *big.Int) (*bind.TransactOpts, error)
}
