package wallet

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
	domainerrors "property-registry.backend/internal/domain/errors"
)

// ErrUnknownAccount is returned for an address the provider holds no key for
var ErrUnknownAccount = errors.New("account is not held by this wallet")

// KeyedProvider is a Provider backed by raw private keys
type KeyedProvider struct {
	mu         sync.RWMutex
	keys       map[common.Address]*ecdsa.PrivateKey
	order      []common.Address
	authorized bool
	selected   common.Address

	feed event.Feed
}

// NewKeyedProvider parses hex private keys (with or without 0x). The first key
// becomes the active account once the wallet is authorized.
func NewKeyedProvider(hexKeys []string) (*KeyedProvider, error) {
	p := &KeyedProvider{keys: make(map[common.Address]*ecdsa.PrivateKey)}
	for i, raw := range hexKeys {
		raw = strings.TrimPrefix(strings.TrimSpace(raw), "0x")
		if raw == "" {
			continue
		}
		key, err := crypto.HexToECDSA(raw)
		if err != nil {
			return nil, fmt.Errorf("wallet key %d: %w", i, err)
		}
		addr := crypto.PubkeyToAddress(key.PublicKey)
		if _, dup := p.keys[addr]; dup {
			continue
		}
		p.keys[addr] = key
		p.order = append(p.order, addr)
	}
	if len(p.order) == 0 {
		return nil, domainerrors.ErrNoWallet
	}
	p.selected = p.order[0]
	return p, nil
}

// Known lists every address the provider holds a key for, authorized or not
func (p *KeyedProvider) Known() []common.Address {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]common.Address(nil), p.order...)
}

func (p *KeyedProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.accountsLocked(), nil
}

func (p *KeyedProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	p.mu.Lock()
	changed := !p.authorized
	p.authorized = true
	accounts := p.accountsLocked()
	p.mu.Unlock()

	if changed {
		p.feed.Send(accounts)
	}
	return accounts, nil
}

// Select makes account the active one. The wallet must be authorized.
func (p *KeyedProvider) Select(account common.Address) ([]common.Address, error) {
	p.mu.Lock()
	if !p.authorized {
		p.mu.Unlock()
		return nil, domainerrors.ErrNoAccount
	}
	if _, ok := p.keys[account]; !ok {
		p.mu.Unlock()
		return nil, ErrUnknownAccount
	}
	changed := p.selected != account
	p.selected = account
	accounts := p.accountsLocked()
	p.mu.Unlock()

	if changed {
		p.feed.Send(accounts)
	}
	return accounts, nil
}

// Disconnect revokes authorization; subscribers get an empty list
func (p *KeyedProvider) Disconnect() {
	p.mu.Lock()
	changed := p.authorized
	p.authorized = false
	p.mu.Unlock()

	if changed {
		p.feed.Send([]common.Address{})
	}
}

func (p *KeyedProvider) SubscribeAccounts(ch chan<- []common.Address) event.Subscription {
	return p.feed.Subscribe(ch)
}

func (p *KeyedProvider) Transactor(ctx context.Context, account common.Address, chainID *big.Int) (*bind.TransactOpts, error) {
	p.mu.RLock()
	key, ok := p.keys[account]
	authorized := p.authorized
	p.mu.RUnlock()

	if !authorized {
		return nil, domainerrors.ErrNoAccount
	}
	if !ok {
		return nil, ErrUnknownAccount
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

func (p *KeyedProvider) accountsLocked() []common.Address {
	if !p.authorized {
		return []common.Address{}
	}
	accounts := make([]common.Address, 0, len(p.order))
	accounts = append(accounts, p.selected)
	for _, addr := range p.order {
		if addr != p.selected {
			accounts = append(accounts, addr)
		}
	}
	return accounts
}
