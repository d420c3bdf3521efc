package entities

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"property-registry.backend/pkg/utils"
)

// PropertyPage is a filtered, paginated slice of the record set.
// Omitted counts records that could not be read during enumeration.
type PropertyPage struct {
	Items   []PropertyView       `json:"items"`
	Meta    utils.PageMeta `json:"meta"`
	Omitted int                  `json:"omitted"`
}

// Dashboard summarizes the connected account
type Dashboard struct {
	Account      common.Address `json:"account"`
	BalanceWei   *big.Int       `json:"balanceWei"`
	Balance      string         `json:"balance"`
	Properties   []PropertyView `json:"properties"`
	OwnedCount   int            `json:"ownedCount"`
	ForSaleCount int            `json:"forSaleCount"`
}

// Earnings is the admin fee summary
type Earnings struct {
	Account       common.Address `json:"account"`
	BalanceWei    *big.Int       `json:"balanceWei"`
	Balance       string         `json:"balance"`
	SoldCount     int            `json:"soldCount"`
	SoldVolumeWei *big.Int       `json:"soldVolumeWei"`
	SoldVolume    string         `json:"soldVolume"`
}

// WalletState is the process-wide wallet session as shown to clients
type WalletState struct {
	Connected bool             `json:"connected"`
	Account   *common.Address  `json:"account"`
	Accounts  []common.Address `json:"accounts"`
	Available []common.Address `json:"available"`
	ChainID   string           `json:"chainId,omitempty"`
	Contract  common.Address   `json:"contract"`
}

// BuyLink is an EIP-681 payment request for a listing
type BuyLink struct {
	Property *PropertyRecord `json:"property"`
	URI      string          `json:"uri"`
}
