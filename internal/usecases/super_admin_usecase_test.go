package usecases_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"property-registry.backend/internal/domain/entities"
	domainerrors "property-registry.backend/internal/domain/errors"
	"property-registry.backend/internal/usecases"
)

func newSuperAdminUsecase(roles entities.Roles) (*usecases.SuperAdminUsecase, *MockRegistry, *MockTxJournalRepository) {
	reg := &MockRegistry{SubmitSurface: "v3"}
	reg.On("Roles", mock.Anything, alice).Return(roles, nil)
	runner, journal, _ := permissiveRunner()
	return usecases.NewSuperAdminUsecase(reg, sessionFor(alice), runner), reg, journal
}

var superRoles = entities.Roles{Account: alice, Admin: true, SuperAdmin: true}

func TestSuperAdminUsecase_AccountManagement(t *testing.T) {
	tests := []struct {
		name   string
		method string
		action entities.TxAction
		call   func(*usecases.SuperAdminUsecase) (*entities.TxResult, error)
	}{
		{"register user", "RegisterUser", entities.TxActionRegisterUser, func(u *usecases.SuperAdminUsecase) (*entities.TxResult, error) {
			return u.RegisterUser(context.Background(), bob.Hex())
		}},
		{"add admin", "AddAdmin", entities.TxActionAddAdmin, func(u *usecases.SuperAdminUsecase) (*entities.TxResult, error) {
			return u.AddAdmin(context.Background(), bob.Hex())
		}},
		{"remove admin", "RemoveAdmin", entities.TxActionRemoveAdmin, func(u *usecases.SuperAdminUsecase) (*entities.TxResult, error) {
			return u.RemoveAdmin(context.Background(), bob.Hex())
		}},
		{"change super admin", "ChangeSuperAdmin", entities.TxActionChangeSuperAdmin, func(u *usecases.SuperAdminUsecase) (*entities.TxResult, error) {
			return u.ChangeSuperAdmin(context.Background(), bob.Hex())
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			uc, reg, journal := newSuperAdminUsecase(superRoles)
			reg.On(tc.method, mock.Anything, bob).Return(minedReceipt(30), nil).Once()

			result, err := tc.call(uc)
			require.NoError(t, err)
			assert.Equal(t, uint64(30), result.BlockNumber)
			reg.AssertExpectations(t)
			journal.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(e *entities.TxJournalEntry) bool {
				return e.Action == tc.action && e.Target == bob.Hex()
			}))
		})
	}
}

func TestSuperAdminUsecase_RequiresSuperAdmin(t *testing.T) {
	uc, reg, _ := newSuperAdminUsecase(adminRoles)
	_, err := uc.AddAdmin(context.Background(), bob.Hex())
	require.ErrorIs(t, err, domainerrors.ErrNotPrivileged)
	reg.AssertNotCalled(t, "AddAdmin", mock.Anything, mock.Anything)
}

func TestSuperAdminUsecase_AddressValidation(t *testing.T) {
	uc, reg, _ := newSuperAdminUsecase(superRoles)

	for _, bad := range []string{"", "0x123", "not-an-address", common.Address{}.Hex()} {
		_, err := uc.RegisterUser(context.Background(), bad)
		var validation *domainerrors.ValidationError
		require.ErrorAs(t, err, &validation, bad)
		assert.Equal(t, "user", validation.Field)
	}

	_, err := uc.ChangeSuperAdmin(context.Background(), alice.Hex())
	var validation *domainerrors.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "superAdmin", validation.Field)

	reg.AssertNotCalled(t, "RegisterUser", mock.Anything, mock.Anything)
	reg.AssertNotCalled(t, "ChangeSuperAdmin", mock.Anything, mock.Anything)
}
