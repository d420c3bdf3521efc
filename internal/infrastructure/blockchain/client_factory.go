package blockchain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const defaultDialTimeout = 10 * time.Second

// ClientFactory keeps one EVM client per RPC URL. Concurrent first requests
// for a URL share a single dial.
type ClientFactory struct {
	mu      sync.RWMutex
	clients map[string]*EVMClient
	dials   singleflight.Group

	dial        func(ctx context.Context, rpcURL string) (*EVMClient, error)
	dialTimeout time.Duration
}

func NewClientFactory() *ClientFactory {
	return &ClientFactory{
		clients:     make(map[string]*EVMClient),
		dial:        NewEVMClient,
		dialTimeout: defaultDialTimeout,
	}
}

// Client returns the cached client for rpcURL, dialing it on first use. A
// failed dial is not cached, so the next call retries.
func (f *ClientFactory) Client(ctx context.Context, rpcURL string) (*EVMClient, error) {
	if c, ok := f.cached(rpcURL); ok {
		return c, nil
	}

	v, err, _ := f.dials.Do(rpcURL, func() (interface{}, error) {
		if c, ok := f.cached(rpcURL); ok {
			return c, nil
		}
		dialCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.dialTimeout)
		defer cancel()

		c, err := f.dial(dialCtx, rpcURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create EVM client: %w", err)
		}
		f.mu.Lock()
		f.clients[rpcURL] = c
		f.mu.Unlock()
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*EVMClient), nil
}

func (f *ClientFactory) cached(rpcURL string) (*EVMClient, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	c, ok := f.clients[rpcURL]
	return c, ok
}

// Register pins client for rpcURL, replacing any cached one
func (f *ClientFactory) Register(rpcURL string, client *EVMClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clients[rpcURL] = client
}

// Close closes and forgets every cached client
func (f *ClientFactory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for url, client := range f.clients {
		client.Close()
		delete(f.clients, url)
	}
}
