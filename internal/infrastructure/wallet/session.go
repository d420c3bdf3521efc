package wallet

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"go.uber.org/zap"
	"property-registry.backend/pkg/logger"
)

// Session is the process-wide view of the wallet's accounts. It is seeded
// from Provider.Accounts on Start and kept current by the provider's
// account-change subscription until Close.
type Session struct {
	provider Provider

	mu       sync.RWMutex
	accounts []common.Address

	sub     event.Subscription
	updates chan []common.Address
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewSession creates a session over provider. Call Start before use. A nil
// provider gives a session that never has an account.
func NewSession(provider Provider) *Session {
	return &Session{
		provider: provider,
		updates:  make(chan []common.Address, 4),
		done:     make(chan struct{}),
	}
}

// Start subscribes to account changes and loads the current accounts
func (s *Session) Start(ctx context.Context) error {
	if s.provider == nil {
		return nil
	}
	s.sub = s.provider.SubscribeAccounts(s.updates)

	accounts, err := s.provider.Accounts(ctx)
	if err != nil {
		s.sub.Unsubscribe()
		return err
	}
	s.set(accounts)

	s.wg.Add(1)
	go s.listen()
	return nil
}

func (s *Session) listen() {
	defer s.wg.Done()
	for {
		select {
		case accounts := <-s.updates:
			s.set(accounts)
			if len(accounts) == 0 {
				logger.Info(context.Background(), "Wallet disconnected")
			} else {
				logger.Info(context.Background(), "Wallet account changed",
					zap.String("account", accounts[0].Hex()),
					zap.Int("authorized", len(accounts)),
				)
			}
		case err, ok := <-s.sub.Err():
			if ok && err != nil {
				logger.Error(context.Background(), "Wallet subscription failed", zap.Error(err))
			}
			return
		case <-s.done:
			return
		}
	}
}

// Sync reloads the accounts from the provider without waiting for the
// change notification.
func (s *Session) Sync(ctx context.Context) error {
	if s.provider == nil {
		return nil
	}
	accounts, err := s.provider.Accounts(ctx)
	if err != nil {
		return err
	}
	s.set(accounts)
	return nil
}

// Current returns the active account, if any
func (s *Session) Current() (common.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.accounts) == 0 {
		return common.Address{}, false
	}
	return s.accounts[0], true
}

// Accounts returns a copy of the authorized accounts, active first
func (s *Session) Accounts() []common.Address {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]common.Address(nil), s.accounts...)
}

// Close unsubscribes and stops the listener. Safe to call more than once.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
		if s.sub != nil {
			s.sub.Unsubscribe()
		}
		s.wg.Wait()
	})
}

func (s *Session) set(accounts []common.Address) {
	s.mu.Lock()
	s.accounts = append([]common.Address(nil), accounts...)
	s.mu.Unlock()
}
