package usecases_test

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"property-registry.backend/internal/domain/entities"
	"property-registry.backend/internal/infrastructure/registry"
	"property-registry.backend/pkg/redis"
)

var (
	alice    = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob      = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	contract = common.HexToAddress("0x8da644e76f2d3174CFec4a235bD4f242A259E1c7")

	submittedTx = types.NewTx(&types.LegacyTx{Nonce: 7})
)

func minedReceipt(block int64) *types.Receipt {
	return &types.Receipt{
		Status:      types.ReceiptStatusSuccessful,
		TxHash:      submittedTx.Hash(),
		BlockNumber: big.NewInt(block),
	}
}

func record(id uint64, owner common.Address, status entities.PropertyStatus, title, location string) *entities.PropertyRecord {
	return &entities.PropertyRecord{
		ID:          id,
		Owner:       owner,
		Title:       title,
		Description: "description of " + title,
		Location:    location,
		Price:       new(big.Int).Mul(big.NewInt(int64(id)), big.NewInt(1e18)),
		Status:      status,
	}
}

func fixtureRecords() []*entities.PropertyRecord {
	return []*entities.PropertyRecord{
		record(1, alice, entities.PropertyStatusPending, "Lake House", "Lakeside"),
		record(2, bob, entities.PropertyStatusApproved, "City Loft", "Central Park"),
		record(3, alice, entities.PropertyStatusSold, "Farm", "Valley"),
		record(4, bob, entities.PropertyStatusRejected, "Shack", "Nowhere"),
	}
}

// MockRegistry implements usecases.Registry. When SubmitSurface is set every
// write reports submittedTx through onSubmit before returning.
type MockRegistry struct {
	mock.Mock
	SubmitSurface string
}

func (m *MockRegistry) PropertyIDs(ctx context.Context) ([]uint64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint64), args.Error(1)
}

func (m *MockRegistry) Property(ctx context.Context, id uint64) (*entities.PropertyRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PropertyRecord), args.Error(1)
}

func (m *MockRegistry) Roles(ctx context.Context, account common.Address) (entities.Roles, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(entities.Roles), args.Error(1)
}

func (m *MockRegistry) AdminBalance(ctx context.Context, account common.Address) (*big.Int, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockRegistry) write(onSubmit registry.SubmitFunc, args mock.Arguments) (*types.Receipt, error) {
	if m.SubmitSurface != "" && onSubmit != nil {
		onSubmit(m.SubmitSurface, submittedTx)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Receipt), args.Error(1)
}

func (m *MockRegistry) Register(ctx context.Context, title, description, location string, priceWei *big.Int, onSubmit registry.SubmitFunc) (*types.Receipt, error) {
	return m.write(onSubmit, m.Called(ctx, title, description, location, priceWei))
}

func (m *MockRegistry) Approve(ctx context.Context, id uint64, onSubmit registry.SubmitFunc) (*types.Receipt, error) {
	return m.write(onSubmit, m.Called(ctx, id))
}

func (m *MockRegistry) Reject(ctx context.Context, id uint64, onSubmit registry.SubmitFunc) (*types.Receipt, error) {
	return m.write(onSubmit, m.Called(ctx, id))
}

func (m *MockRegistry) Buy(ctx context.Context, id uint64, valueWei *big.Int, onSubmit registry.SubmitFunc) (*types.Receipt, error) {
	return m.write(onSubmit, m.Called(ctx, id, valueWei))
}

func (m *MockRegistry) Withdraw(ctx context.Context, onSubmit registry.SubmitFunc) (*types.Receipt, error) {
	return m.write(onSubmit, m.Called(ctx))
}

func (m *MockRegistry) RegisterUser(ctx context.Context, user common.Address, onSubmit registry.SubmitFunc) (*types.Receipt, error) {
	return m.write(onSubmit, m.Called(ctx, user))
}

func (m *MockRegistry) AddAdmin(ctx context.Context, admin common.Address, onSubmit registry.SubmitFunc) (*types.Receipt, error) {
	return m.write(onSubmit, m.Called(ctx, admin))
}

func (m *MockRegistry) RemoveAdmin(ctx context.Context, admin common.Address, onSubmit registry.SubmitFunc) (*types.Receipt, error) {
	return m.write(onSubmit, m.Called(ctx, admin))
}

func (m *MockRegistry) ChangeSuperAdmin(ctx context.Context, next common.Address, onSubmit registry.SubmitFunc) (*types.Receipt, error) {
	return m.write(onSubmit, m.Called(ctx, next))
}

// MockRecordSource implements usecases.RecordSource
type MockRecordSource struct {
	mock.Mock
}

func (m *MockRecordSource) All(ctx context.Context) (*registry.Enumeration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*registry.Enumeration), args.Error(1)
}

// stubSession is a fixed account list; the first entry is active
type stubSession struct {
	accounts []common.Address
	syncErr  error
	synced   int
}

func sessionFor(accounts ...common.Address) *stubSession {
	return &stubSession{accounts: accounts}
}

func (s *stubSession) Current() (common.Address, bool) {
	if len(s.accounts) == 0 {
		return common.Address{}, false
	}
	return s.accounts[0], true
}

func (s *stubSession) Accounts() []common.Address {
	return s.accounts
}

func (s *stubSession) Sync(context.Context) error {
	s.synced++
	return s.syncErr
}

// MockChain implements usecases.ChainReader
type MockChain struct {
	mock.Mock
}

func (m *MockChain) ChainID(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockChain) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*big.Int), args.Error(1)
}

func (m *MockChain) ContractAddress() common.Address {
	return contract
}

// MockLocker implements usecases.Locker
type MockLocker struct {
	mock.Mock
	released []string
}

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	args := m.Called(ctx, key, ttl)
	if !args.Bool(0) || args.Error(1) != nil {
		return nil, args.Bool(0), args.Error(1)
	}
	return func() { m.released = append(m.released, key) }, true, nil
}

// MockTxJournalRepository implements repositories.TxJournalRepository
type MockTxJournalRepository struct {
	mock.Mock
}

func (m *MockTxJournalRepository) Create(ctx context.Context, entry *entities.TxJournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTxJournalRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, txHash, surface string) error {
	args := m.Called(ctx, id, txHash, surface)
	return args.Error(0)
}

func (m *MockTxJournalRepository) MarkConfirmed(ctx context.Context, id uuid.UUID, blockNumber uint64) error {
	args := m.Called(ctx, id, blockNumber)
	return args.Error(0)
}

func (m *MockTxJournalRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockTxJournalRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.TxJournalEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TxJournalEntry), args.Error(1)
}

func (m *MockTxJournalRepository) List(ctx context.Context, limit, offset int) ([]*entities.TxJournalEntry, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.TxJournalEntry), args.Get(1).(int64), args.Error(2)
}

func (m *MockTxJournalRepository) ListUnsettled(ctx context.Context, before time.Time, limit int) ([]*entities.TxJournalEntry, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TxJournalEntry), args.Error(1)
}

// MockWalletController implements usecases.WalletController
type MockWalletController struct {
	mock.Mock
}

func (m *MockWalletController) Known() []common.Address {
	args := m.Called()
	return args.Get(0).([]common.Address)
}

func (m *MockWalletController) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]common.Address), args.Error(1)
}

func (m *MockWalletController) Select(account common.Address) ([]common.Address, error) {
	args := m.Called(account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]common.Address), args.Error(1)
}

func (m *MockWalletController) Disconnect() {
	m.Called()
}

// MockSessionStore implements usecases.SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Save(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error {
	args := m.Called(ctx, sessionID, data, expiration)
	return args.Error(0)
}

func (m *MockSessionStore) Load(ctx context.Context, sessionID string) (*redis.SessionData, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*redis.SessionData), args.Error(1)
}

func (m *MockSessionStore) Revoke(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}
