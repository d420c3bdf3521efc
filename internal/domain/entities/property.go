package entities

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"
)

// PropertyStatus is the lifecycle state of a registered property
type PropertyStatus uint8

// Values match the V3 getPropertyStatus enum
const (
	PropertyStatusPending PropertyStatus = iota
	PropertyStatusApproved
	PropertyStatusRejected
	PropertyStatusSold
)

func (s PropertyStatus) String() string {
	switch s {
	case PropertyStatusPending:
		return "Pending"
	case PropertyStatusApproved:
		return "Approved"
	case PropertyStatusRejected:
		return "Rejected"
	case PropertyStatusSold:
		return "Sold"
	}
	return "Unknown"
}

// Valid reports whether s is one of the four known states
func (s PropertyStatus) Valid() bool {
	return s <= PropertyStatusSold
}

// MarshalText renders the status by name in JSON payloads
func (s PropertyStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CanTransitionTo reports whether next is a legal successor of s. The
// contract is the authority; this only drives the view flags.
func (s PropertyStatus) CanTransitionTo(next PropertyStatus) bool {
	switch s {
	case PropertyStatusPending:
		return next == PropertyStatusApproved || next == PropertyStatusRejected
	case PropertyStatusApproved:
		return next == PropertyStatusSold
	}
	return false
}

// LegacyStatus rebuilds a status from the V1/V2 boolean pair.
// Rejection has no representation there and reads as Pending.
func LegacyStatus(isVerified, isSold bool) PropertyStatus {
	if isSold {
		return PropertyStatusSold
	}
	if isVerified {
		return PropertyStatusApproved
	}
	return PropertyStatusPending
}

// PropertyRecord is the normalized shape of a property across contract schemas
type PropertyRecord struct {
	ID          uint64         `json:"id"`
	Owner       common.Address `json:"owner"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Location    string         `json:"location"`
	Price       *big.Int       `json:"priceWei"`
	Status      PropertyStatus `json:"status"`
	Images      string         `json:"images,omitempty"`
}

// OwnedBy reports whether account owns the record. Addresses compare
// byte-wise, so checksum casing never matters.
func (p *PropertyRecord) OwnedBy(account common.Address) bool {
	return account != (common.Address{}) && p.Owner == account
}

// ForSale is true for approved listings that have not been sold
func (p *PropertyRecord) ForSale() bool {
	return p.Status == PropertyStatusApproved
}

// PropertyView is a record as presented to a particular viewer
type PropertyView struct {
	*PropertyRecord
	PriceEther    string `json:"price"`
	OwnedByViewer bool   `json:"ownedByViewer"`
	// Buyable mirrors the marketplace buy control
	Buyable bool `json:"buyable"`
	// Reviewable is set while an admin can still approve or reject
	Reviewable bool `json:"reviewable"`
}

// NewPropertyView decorates a record for the given viewer
func NewPropertyView(p *PropertyRecord, viewer common.Address) PropertyView {
	owned := p.OwnedBy(viewer)
	return PropertyView{
		PropertyRecord: p,
		PriceEther:     FormatEther(p.Price),
		OwnedByViewer:  owned,
		Buyable:        p.Status.CanTransitionTo(PropertyStatusSold) && !owned,
		Reviewable:     p.Status.CanTransitionTo(PropertyStatusApproved) && p.Status.CanTransitionTo(PropertyStatusRejected),
	}
}

// RegisterPropertyInput is the form submitted when listing a new property
type RegisterPropertyInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Price       string `json:"price"` // decimal ether
}

// Roles describes the privileges of an account on the registry
type Roles struct {
	Account    common.Address `json:"account"`
	Admin      bool           `json:"isAdmin"`
	SuperAdmin bool           `json:"isSuperAdmin"`
}

// Privileged reports whether the account may approve or reject listings
func (r Roles) Privileged() bool {
	return r.Admin || r.SuperAdmin
}

// FormatEther renders a wei amount as a decimal ether string
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	ether := new(big.Rat).SetFrac(wei, big.NewInt(params.Ether))
	out := ether.FloatString(18)
	out = strings.TrimRight(out, "0")
	return strings.TrimSuffix(out, ".")
}

// ParseEther converts a decimal ether string into wei.
// More than 18 fractional digits is an error.
func ParseEther(value string) (*big.Int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, false
	}
	if strings.Trim(value, "0123456789.") != "" || strings.Count(value, ".") > 1 {
		return nil, false
	}
	if i := strings.IndexByte(value, '.'); i >= 0 && len(value)-i-1 > 18 {
		return nil, false
	}
	rat, ok := new(big.Rat).SetString(value)
	if !ok {
		return nil, false
	}
	rat.Mul(rat, new(big.Rat).SetInt64(params.Ether))
	if !rat.IsInt() {
		return nil, false
	}
	return new(big.Int).Set(rat.Num()), true
}
