package registry

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"property-registry.backend/internal/domain/entities"
	"property-registry.backend/internal/infrastructure/blockchain"
)

var (
	errSelectorUnknown = errors.New("execution reverted: function selector was not recognized")

	registryAddr = common.HexToAddress("0x8da644e76f2d3174CFec4a235bD4f242A259E1c7")
	superAddr    = common.HexToAddress("0x1000000000000000000000000000000000000001")
	adminAddr    = common.HexToAddress("0x2000000000000000000000000000000000000002")
	aliceAddr    = common.HexToAddress("0x3000000000000000000000000000000000000003")
	bobAddr      = common.HexToAddress("0x4000000000000000000000000000000000000004")
)

type viewFn func(args []interface{}) ([]interface{}, error)
type writeFn func(args []interface{}, value *big.Int) error

// fakeContract is an in-memory registry. Results are ABI-encoded with the
// contract's own schema and decoded with the caller's, so a caller speaking
// the wrong schema sees the same failures it would against a node.
type fakeContract struct {
	mu sync.Mutex

	schema abi.ABI
	from   common.Address
	views  map[string]viewFn
	writes map[string]writeFn

	// per-method overrides
	failViews map[string]error
	reverts   map[string]bool
	waitErr   error

	records    map[uint64]*entities.PropertyRecord
	superAdmin common.Address
	admins     map[common.Address]bool
	balances   map[common.Address]*big.Int

	nonce     uint64
	txMethods map[common.Hash]string
	submitted []string
	calls     map[string]int
}

func newFakeContract(schema abi.ABI) *fakeContract {
	return &fakeContract{
		schema:    schema,
		views:     make(map[string]viewFn),
		writes:    make(map[string]writeFn),
		failViews: make(map[string]error),
		reverts:   make(map[string]bool),
		records:   make(map[uint64]*entities.PropertyRecord),
		admins:    make(map[common.Address]bool),
		balances:  make(map[common.Address]*big.Int),
		txMethods: make(map[common.Hash]string),
		calls:     make(map[string]int),
	}
}

func seedRecords() []*entities.PropertyRecord {
	return []*entities.PropertyRecord{
		{ID: 1, Owner: aliceAddr, Title: "Lake House", Description: "Quiet", Location: "Central Park", Price: big.NewInt(1e18), Status: entities.PropertyStatusPending, Images: "ipfs://1"},
		{ID: 2, Owner: bobAddr, Title: "Loft", Description: "Downtown loft", Location: "Soho", Price: big.NewInt(2e18), Status: entities.PropertyStatusApproved},
		{ID: 3, Owner: aliceAddr, Title: "Cabin", Description: "Woods", Location: "Vermont", Price: big.NewInt(5e17), Status: entities.PropertyStatusSold},
	}
}

func (f *fakeContract) put(records ...*entities.PropertyRecord) *fakeContract {
	for _, r := range records {
		cp := *r
		f.records[r.ID] = &cp
	}
	return f
}

func (f *fakeContract) sortedIDs() []uint64 {
	ids := make([]uint64, 0, len(f.records))
	for id := range f.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (f *fakeContract) record(args []interface{}) (*entities.PropertyRecord, uint64) {
	id := args[0].(*big.Int).Uint64()
	return f.records[id], id
}

func (f *fakeContract) balanceOf(addr common.Address) *big.Int {
	if b, ok := f.balances[addr]; ok {
		return b
	}
	return big.NewInt(0)
}

func (f *fakeContract) register(args []interface{}, _ *big.Int) error {
	id := uint64(len(f.records) + 1)
	f.records[id] = &entities.PropertyRecord{
		ID: id, Owner: f.from,
		Title: args[0].(string), Description: args[1].(string), Location: args[2].(string),
		Price: args[3].(*big.Int), Status: entities.PropertyStatusPending,
	}
	return nil
}

func (f *fakeContract) buy(args []interface{}, value *big.Int) error {
	rec, _ := f.record(args)
	if rec == nil || rec.Status != entities.PropertyStatusApproved {
		return errors.New("execution reverted: property not for sale")
	}
	if value == nil || value.Cmp(rec.Price) != 0 {
		return errors.New("execution reverted: incorrect price")
	}
	rec.Owner = f.from
	rec.Status = entities.PropertyStatusSold
	return nil
}

func (f *fakeContract) setStatus(status entities.PropertyStatus) writeFn {
	return func(args []interface{}, _ *big.Int) error {
		rec, id := f.record(args)
		if rec == nil {
			return fmt.Errorf("execution reverted: property %d does not exist", id)
		}
		rec.Status = status
		return nil
	}
}

// newV3Contract serves RegistryV3ABI
func newV3Contract(records ...*entities.PropertyRecord) *fakeContract {
	f := newFakeContract(RegistryV3ABI).put(records...)
	f.superAdmin = superAddr
	f.admins[adminAddr] = true

	f.views["superAdmin"] = func([]interface{}) ([]interface{}, error) {
		return []interface{}{f.superAdmin}, nil
	}
	f.views["isAdmin"] = func(args []interface{}) ([]interface{}, error) {
		return []interface{}{f.admins[args[0].(common.Address)]}, nil
	}
	f.views["adminBalances"] = func(args []interface{}) ([]interface{}, error) {
		return []interface{}{f.balanceOf(args[0].(common.Address))}, nil
	}
	f.views["propertyCount"] = func([]interface{}) ([]interface{}, error) {
		return []interface{}{big.NewInt(int64(len(f.records)))}, nil
	}
	f.views["properties"] = func(args []interface{}) ([]interface{}, error) {
		rec, _ := f.record(args)
		if rec == nil {
			return []interface{}{big.NewInt(0), "", "", "", big.NewInt(0), common.Address{}, ""}, nil
		}
		return []interface{}{new(big.Int).SetUint64(rec.ID), rec.Title, rec.Description, rec.Location, rec.Price, rec.Owner, rec.Images}, nil
	}
	f.views["getPropertyStatus"] = func(args []interface{}) ([]interface{}, error) {
		rec, id := f.record(args)
		if rec == nil {
			return nil, fmt.Errorf("execution reverted: property %d does not exist", id)
		}
		return []interface{}{uint8(rec.Status)}, nil
	}

	f.writes["registerProperty"] = f.register
	f.writes["approveProperty"] = f.setStatus(entities.PropertyStatusApproved)
	f.writes["rejectProperty"] = f.setStatus(entities.PropertyStatusRejected)
	f.writes["buyProperty"] = f.buy
	f.writes["withdrawAdminBalance"] = func([]interface{}, *big.Int) error {
		f.balances[f.from] = big.NewInt(0)
		return nil
	}
	f.writes["registerUser"] = func([]interface{}, *big.Int) error { return nil }
	f.writes["addAdmin"] = func(args []interface{}, _ *big.Int) error {
		f.admins[args[0].(common.Address)] = true
		return nil
	}
	f.writes["removeAdmin"] = func(args []interface{}, _ *big.Int) error {
		delete(f.admins, args[0].(common.Address))
		return nil
	}
	f.writes["changeSuperAdmin"] = func(args []interface{}, _ *big.Int) error {
		f.superAdmin = args[0].(common.Address)
		return nil
	}
	return f
}

// newLegacyContract serves LegacyRegistryABI. withProperties=false models a
// V1 deployment that only has getPropertyDetails.
func newLegacyContract(withProperties bool, records ...*entities.PropertyRecord) *fakeContract {
	f := newFakeContract(LegacyRegistryABI).put(records...)
	f.superAdmin = adminAddr

	legacyTuple := func(args []interface{}) ([]interface{}, error) {
		rec, id := f.record(args)
		if rec == nil {
			return nil, fmt.Errorf("execution reverted: property %d does not exist", id)
		}
		verified := rec.Status == entities.PropertyStatusApproved || rec.Status == entities.PropertyStatusSold
		sold := rec.Status == entities.PropertyStatusSold
		return []interface{}{new(big.Int).SetUint64(rec.ID), rec.Title, rec.Description, rec.Location, rec.Price, rec.Owner, verified, sold}, nil
	}

	f.views["admin"] = func([]interface{}) ([]interface{}, error) {
		return []interface{}{f.superAdmin}, nil
	}
	f.views["adminBalance"] = func([]interface{}) ([]interface{}, error) {
		return []interface{}{f.balanceOf(f.superAdmin)}, nil
	}
	f.views["getAllProperties"] = func([]interface{}) ([]interface{}, error) {
		ids := make([]*big.Int, 0, len(f.records))
		for _, id := range f.sortedIDs() {
			ids = append(ids, new(big.Int).SetUint64(id))
		}
		return []interface{}{ids}, nil
	}
	if withProperties {
		f.views["properties"] = legacyTuple
	}
	f.views["getPropertyDetails"] = legacyTuple

	f.writes["registerProperty"] = f.register
	f.writes["validateProperty"] = f.setStatus(entities.PropertyStatusApproved)
	// no rejected state: the record stays unverified
	f.writes["rejectProperty"] = f.setStatus(entities.PropertyStatusPending)
	f.writes["buyProperty"] = f.buy
	f.writes["withdrawAdminBalance"] = func([]interface{}, *big.Int) error {
		f.balances[f.superAdmin] = big.NewInt(0)
		return nil
	}
	return f
}

func (f *fakeContract) Address() common.Address { return registryAddr }
func (f *fakeContract) From() common.Address    { return f.from }

func (f *fakeContract) Call(_ context.Context, parsedABI abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	own, err := f.schema.MethodById(data[:4])
	if err != nil {
		return nil, errSelectorUnknown
	}
	f.calls[own.Name]++
	if failure := f.failViews[own.Name]; failure != nil {
		return nil, failure
	}
	view, ok := f.views[own.Name]
	if !ok {
		return nil, errSelectorUnknown
	}
	inputs, err := own.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}
	out, err := view(inputs)
	if err != nil {
		return nil, err
	}
	encoded, err := own.Outputs.Pack(out...)
	if err != nil {
		return nil, err
	}
	return parsedABI.Unpack(method, encoded)
}

func (f *fakeContract) Transact(_ context.Context, parsedABI abi.ABI, method string, value *big.Int, args ...interface{}) (*types.Transaction, error) {
	data, err := parsedABI.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	own, err := f.schema.MethodById(data[:4])
	if err != nil {
		return nil, errSelectorUnknown
	}
	write, ok := f.writes[own.Name]
	if !ok {
		return nil, errSelectorUnknown
	}
	inputs, err := own.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}
	if !f.reverts[own.Name] {
		if err := write(inputs, value); err != nil {
			return nil, err
		}
	}

	f.nonce++
	to := registryAddr
	tx := types.NewTx(&types.LegacyTx{Nonce: f.nonce, To: &to, Value: value, Data: data, Gas: 21000, GasPrice: big.NewInt(1)})
	f.txMethods[tx.Hash()] = own.Name
	f.submitted = append(f.submitted, own.Name)
	return tx, nil
}

func (f *fakeContract) WaitConfirmed(_ context.Context, tx *types.Transaction) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.waitErr != nil {
		return nil, f.waitErr
	}
	receipt := &types.Receipt{TxHash: tx.Hash(), BlockNumber: new(big.Int).SetUint64(100 + f.nonce)}
	if f.reverts[f.txMethods[tx.Hash()]] {
		receipt.Status = types.ReceiptStatusFailed
		return receipt, blockchain.ErrTxReverted
	}
	receipt.Status = types.ReceiptStatusSuccessful
	return receipt, nil
}

func (f *fakeContract) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

type fakeAccessor struct {
	handle    *fakeContract
	readErr   error
	signerErr error
}

func (a *fakeAccessor) ReadHandle(context.Context) (blockchain.Handle, error) {
	if a.readErr != nil {
		return nil, a.readErr
	}
	return a.handle, nil
}

func (a *fakeAccessor) SignerHandle(context.Context) (blockchain.Handle, error) {
	if a.signerErr != nil {
		return nil, a.signerErr
	}
	return a.handle, nil
}
