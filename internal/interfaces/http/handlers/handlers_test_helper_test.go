package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"property-registry.backend/internal/domain/entities"
	"property-registry.backend/internal/usecases"
	"property-registry.backend/pkg/utils"
)

var (
	testAccount  = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	testContract = common.HexToAddress("0x8da644e76f2d3174CFec4a235bD4f242A259E1c7")
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func sampleRecord(id uint64, status entities.PropertyStatus) *entities.PropertyRecord {
	return &entities.PropertyRecord{
		ID:     id,
		Owner:  testAccount,
		Title:  "Lake House",
		Price:  big.NewInt(1e18),
		Status: status,
	}
}

func sampleResult() *entities.TxResult {
	return &entities.TxResult{JournalID: uuid.New(), TxHash: "0xabc", BlockNumber: 12}
}

type propertyServiceMock struct{ mock.Mock }

func (m *propertyServiceMock) Marketplace(ctx context.Context, query string, p utils.PageRequest) (*entities.PropertyPage, error) {
	args := m.Called(ctx, query, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PropertyPage), args.Error(1)
}

func (m *propertyServiceMock) List(ctx context.Context, bucket usecases.Bucket, query string, p utils.PageRequest) (*entities.PropertyPage, error) {
	args := m.Called(ctx, bucket, query, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PropertyPage), args.Error(1)
}

func (m *propertyServiceMock) Get(ctx context.Context, id uint64) (*entities.PropertyView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PropertyView), args.Error(1)
}

func (m *propertyServiceMock) Dashboard(ctx context.Context) (*entities.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Dashboard), args.Error(1)
}

func (m *propertyServiceMock) Register(ctx context.Context, input *entities.RegisterPropertyInput) (*entities.TxResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TxResult), args.Error(1)
}

func (m *propertyServiceMock) Buy(ctx context.Context, id uint64) (*entities.TxResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TxResult), args.Error(1)
}

func (m *propertyServiceMock) BuyLink(ctx context.Context, id uint64) (*entities.BuyLink, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BuyLink), args.Error(1)
}

type adminServiceMock struct{ mock.Mock }

func (m *adminServiceMock) Roles(ctx context.Context) (entities.Roles, error) {
	args := m.Called(ctx)
	return args.Get(0).(entities.Roles), args.Error(1)
}

func (m *adminServiceMock) Pending(ctx context.Context, query string, p utils.PageRequest) (*entities.PropertyPage, error) {
	args := m.Called(ctx, query, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PropertyPage), args.Error(1)
}

func (m *adminServiceMock) Approve(ctx context.Context, id uint64) (*entities.TxResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TxResult), args.Error(1)
}

func (m *adminServiceMock) Reject(ctx context.Context, id uint64, reason string) (*entities.TxResult, error) {
	args := m.Called(ctx, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TxResult), args.Error(1)
}

func (m *adminServiceMock) Earnings(ctx context.Context) (*entities.Earnings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Earnings), args.Error(1)
}

func (m *adminServiceMock) Withdraw(ctx context.Context) (*entities.TxResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TxResult), args.Error(1)
}

type superAdminServiceMock struct{ mock.Mock }

func (m *superAdminServiceMock) call(method string, ctx context.Context, address string) (*entities.TxResult, error) {
	args := m.MethodCalled(method, ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TxResult), args.Error(1)
}

func (m *superAdminServiceMock) RegisterUser(ctx context.Context, address string) (*entities.TxResult, error) {
	return m.call("RegisterUser", ctx, address)
}

func (m *superAdminServiceMock) AddAdmin(ctx context.Context, address string) (*entities.TxResult, error) {
	return m.call("AddAdmin", ctx, address)
}

func (m *superAdminServiceMock) RemoveAdmin(ctx context.Context, address string) (*entities.TxResult, error) {
	return m.call("RemoveAdmin", ctx, address)
}

func (m *superAdminServiceMock) ChangeSuperAdmin(ctx context.Context, address string) (*entities.TxResult, error) {
	return m.call("ChangeSuperAdmin", ctx, address)
}

type walletServiceMock struct{ mock.Mock }

func (m *walletServiceMock) State(ctx context.Context) *entities.WalletState {
	return m.Called(ctx).Get(0).(*entities.WalletState)
}

func (m *walletServiceMock) state(method string, args ...interface{}) (*entities.WalletState, error) {
	out := m.MethodCalled(method, args...)
	if out.Get(0) == nil {
		return nil, out.Error(1)
	}
	return out.Get(0).(*entities.WalletState), out.Error(1)
}

func (m *walletServiceMock) Connect(ctx context.Context) (*entities.WalletState, error) {
	return m.state("Connect", ctx)
}

func (m *walletServiceMock) Switch(ctx context.Context, address string) (*entities.WalletState, error) {
	return m.state("Switch", ctx, address)
}

func (m *walletServiceMock) Disconnect(ctx context.Context) (*entities.WalletState, error) {
	return m.state("Disconnect", ctx)
}

func (m *walletServiceMock) Balance(ctx context.Context) (*usecases.AccountBalance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecases.AccountBalance), args.Error(1)
}

type txJournalServiceMock struct{ mock.Mock }

func (m *txJournalServiceMock) List(ctx context.Context, p utils.PageRequest) (*usecases.TxJournalPage, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecases.TxJournalPage), args.Error(1)
}

func (m *txJournalServiceMock) Get(ctx context.Context, id uuid.UUID) (*entities.TxJournalEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TxJournalEntry), args.Error(1)
}

type authServiceMock struct{ mock.Mock }

func (m *authServiceMock) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AuthResponse), args.Error(1)
}

func (m *authServiceMock) Refresh(ctx context.Context, refreshToken string) (*entities.AuthResponse, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AuthResponse), args.Error(1)
}

func (m *authServiceMock) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}
