package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// TxAction names a mutating registry operation
type TxAction string

const (
	TxActionRegister         TxAction = "register"
	TxActionApprove          TxAction = "approve"
	TxActionReject           TxAction = "reject"
	TxActionBuy              TxAction = "buy"
	TxActionWithdraw         TxAction = "withdraw"
	TxActionRegisterUser     TxAction = "register_user"
	TxActionAddAdmin         TxAction = "add_admin"
	TxActionRemoveAdmin      TxAction = "remove_admin"
	TxActionChangeSuperAdmin TxAction = "change_super_admin"
)

// TxState tracks the two-phase submit/confirm lifecycle
type TxState string

const (
	TxStateSubmitting TxState = "SUBMITTING"
	TxStateSubmitted  TxState = "SUBMITTED"
	TxStateConfirmed  TxState = "CONFIRMED"
	TxStateFailed     TxState = "FAILED"
)

// TxJournalEntry records one mutating call made through the gateway
type TxJournalEntry struct {
	ID          uuid.UUID   `json:"id"`
	Action      TxAction    `json:"action"`
	Target      string      `json:"target"` // property id or address, empty for withdraw
	Account     string      `json:"account"`
	Args        []string    `json:"args"`
	Note        string      `json:"note,omitempty"`
	TxHash      null.String `json:"txHash"`
	Surface     null.String `json:"surface"` // schema surface that accepted the transaction
	State       TxState     `json:"state"`
	Error       null.String `json:"error"`
	BlockNumber null.Uint64 `json:"blockNumber"`
	CreatedAt   time.Time   `json:"createdAt"`
	ConfirmedAt null.Time   `json:"confirmedAt"`
}

// TxResult is returned to callers after a mutation settles
type TxResult struct {
	JournalID   uuid.UUID       `json:"journalId"`
	TxHash      string          `json:"txHash"`
	BlockNumber uint64          `json:"blockNumber"`
	Property    *PropertyRecord `json:"property,omitempty"`
}
