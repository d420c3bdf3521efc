package registry

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// LegacyRegistryABI is the V1/V2 surface. properties(id) reports
	// isVerified, getPropertyDetails(id) reports the same flag as isValidated.
	LegacyRegistryABI = mustParseABI(`[
		{"inputs":[],"name":"admin","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
		{"inputs":[],"name":"adminBalance","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
		{"inputs":[{"internalType":"uint256","name":"","type":"uint256"}],"name":"properties","outputs":[{"internalType":"uint256","name":"id","type":"uint256"},{"internalType":"string","name":"title","type":"string"},{"internalType":"string","name":"description","type":"string"},{"internalType":"string","name":"location","type":"string"},{"internalType":"uint256","name":"price","type":"uint256"},{"internalType":"address","name":"owner","type":"address"},{"internalType":"bool","name":"isVerified","type":"bool"},{"internalType":"bool","name":"isSold","type":"bool"}],"stateMutability":"view","type":"function"},
		{"inputs":[],"name":"getAllProperties","outputs":[{"internalType":"uint256[]","name":"","type":"uint256[]"}],"stateMutability":"view","type":"function"},
		{"inputs":[{"internalType":"uint256","name":"_id","type":"uint256"}],"name":"getPropertyDetails","outputs":[{"internalType":"uint256","name":"id","type":"uint256"},{"internalType":"string","name":"title","type":"string"},{"internalType":"string","name":"description","type":"string"},{"internalType":"string","name":"location","type":"string"},{"internalType":"uint256","name":"price","type":"uint256"},{"internalType":"address","name":"owner","type":"address"},{"internalType":"bool","name":"isValidated","type":"bool"},{"internalType":"bool","name":"isSold","type":"bool"}],"stateMutability":"view","type":"function"},
		{"inputs":[{"internalType":"string","name":"_title","type":"string"},{"internalType":"string","name":"_description","type":"string"},{"internalType":"string","name":"_location","type":"string"},{"internalType":"uint256","name":"_price","type":"uint256"}],"name":"registerProperty","outputs":[],"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"internalType":"uint256","name":"_id","type":"uint256"}],"name":"validateProperty","outputs":[],"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"internalType":"uint256","name":"_id","type":"uint256"}],"name":"rejectProperty","outputs":[],"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"internalType":"uint256","name":"_id","type":"uint256"}],"name":"buyProperty","outputs":[],"stateMutability":"payable","type":"function"},
		{"inputs":[],"name":"withdrawAdminBalance","outputs":[],"stateMutability":"nonpayable","type":"function"}
	]`)

	// RegistryV3ABI is the V3 surface with explicit status and an admin set
	RegistryV3ABI = mustParseABI(`[
		{"inputs":[],"name":"superAdmin","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
		{"inputs":[{"internalType":"address","name":"_account","type":"address"}],"name":"isAdmin","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
		{"inputs":[{"internalType":"address","name":"","type":"address"}],"name":"adminBalances","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
		{"inputs":[],"name":"propertyCount","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
		{"inputs":[{"internalType":"uint256","name":"","type":"uint256"}],"name":"properties","outputs":[{"internalType":"uint256","name":"id","type":"uint256"},{"internalType":"string","name":"title","type":"string"},{"internalType":"string","name":"description","type":"string"},{"internalType":"string","name":"location","type":"string"},{"internalType":"uint256","name":"price","type":"uint256"},{"internalType":"address","name":"owner","type":"address"},{"internalType":"string","name":"images","type":"string"}],"stateMutability":"view","type":"function"},
		{"inputs":[{"internalType":"uint256","name":"_id","type":"uint256"}],"name":"getPropertyStatus","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
		{"inputs":[{"internalType":"string","name":"_title","type":"string"},{"internalType":"string","name":"_description","type":"string"},{"internalType":"string","name":"_location","type":"string"},{"internalType":"uint256","name":"_price","type":"uint256"}],"name":"registerProperty","outputs":[],"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"internalType":"uint256","name":"_id","type":"uint256"}],"name":"approveProperty","outputs":[],"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"internalType":"uint256","name":"_id","type":"uint256"}],"name":"rejectProperty","outputs":[],"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"internalType":"uint256","name":"_id","type":"uint256"}],"name":"buyProperty","outputs":[],"stateMutability":"payable","type":"function"},
		{"inputs":[],"name":"withdrawAdminBalance","outputs":[],"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"internalType":"address","name":"_user","type":"address"}],"name":"registerUser","outputs":[],"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"internalType":"address","name":"_admin","type":"address"}],"name":"addAdmin","outputs":[],"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"internalType":"address","name":"_admin","type":"address"}],"name":"removeAdmin","outputs":[],"stateMutability":"nonpayable","type":"function"},
		{"inputs":[{"internalType":"address","name":"_newSuperAdmin","type":"address"}],"name":"changeSuperAdmin","outputs":[],"stateMutability":"nonpayable","type":"function"}
	]`)
)

func methodID(parsed abi.ABI, name string) []byte {
	method, ok := parsed.Methods[name]
	if !ok {
		return nil
	}
	return method.ID
}

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// outputAt converts the i-th unpacked value, failing on arity or type mismatch
func outputAt[T any](vals []interface{}, i int, method string) (T, error) {
	var zero T
	if i >= len(vals) {
		return zero, fmt.Errorf("%s returned %d values, want more than %d", method, len(vals), i)
	}
	value, ok := vals[i].(T)
	if !ok {
		return zero, fmt.Errorf("invalid %s return type at %d: %T", method, i, vals[i])
	}
	return value, nil
}

// propertyFields is the common head of every properties-style tuple:
// id, title, description, location, price, owner
type propertyFields struct {
	ID          *big.Int
	Title       string
	Description string
	Location    string
	Price       *big.Int
	Owner       common.Address
}

func decodePropertyFields(vals []interface{}, method string) (propertyFields, error) {
	var (
		f   propertyFields
		err error
	)
	if f.ID, err = outputAt[*big.Int](vals, 0, method); err != nil {
		return f, err
	}
	if f.Title, err = outputAt[string](vals, 1, method); err != nil {
		return f, err
	}
	if f.Description, err = outputAt[string](vals, 2, method); err != nil {
		return f, err
	}
	if f.Location, err = outputAt[string](vals, 3, method); err != nil {
		return f, err
	}
	if f.Price, err = outputAt[*big.Int](vals, 4, method); err != nil {
		return f, err
	}
	if f.Owner, err = outputAt[common.Address](vals, 5, method); err != nil {
		return f, err
	}
	if !f.ID.IsUint64() {
		return f, fmt.Errorf("%s returned out-of-range id %s", method, f.ID)
	}
	return f, nil
}
