package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Participant is one side of a proposed transfer. EndingBalances carry the
// post-transfer state for the party; the pipeline overwrites each of them
// onto the account's wallet when the transaction commits.
type Participant struct {
	ID             uuid.UUID
	EndingBalances []HoldingsEntry
}

// NewParticipant creates a participant for the given account id.
func NewParticipant(id uuid.UUID, ending ...HoldingsEntry) *Participant {
	return &Participant{ID: id, EndingBalances: ending}
}

// Transaction is a proposed balance change between up to two parties. It is
// constructed by a caller, consumed exactly once by the pipeline, and never
// mutated after submission.
type Transaction struct {
	Type   string
	Source string
	From   *Participant
	To     *Participant
}

// Validate checks the structural contract: at least one party present.
func (t *Transaction) Validate() error {
	if t.From == nil && t.To == nil {
		return ErrNoParticipants
	}

	return nil
}

// TaxEntry is a flat or percentage amount assessed against one party of a
// transaction and routed to a system account.
type TaxEntry struct {
	Percentage bool
	Amount     decimal.Decimal
}

// Apply returns the tax owed on amount.
func (t TaxEntry) Apply(amount decimal.Decimal) decimal.Decimal {
	if t.Percentage {
		return amount.Mul(t.Amount).Div(decimal.NewFromInt(100))
	}

	return t.Amount
}

// TransactionType is a named policy object registered once at startup.
// FromTax is added on top of the sender's outgoing amount; ToTax is taken
// from the amount arriving at the recipient.
type TransactionType struct {
	Identifier string
	FromTax    *TaxEntry
	ToTax      *TaxEntry
}

// CheckResponse is the outcome of one validation check.
type CheckResponse struct {
	Success bool
	Message string
}

// Check is a named validation rule run against a transaction before it is
// applied.
type Check interface {
	Identifier() string
	Process(transaction *Transaction) CheckResponse
}

// Receipt is the immutable record of a committed transaction.
type Receipt struct {
	ID          uuid.UUID
	Time        time.Time
	Transaction *Transaction
}

// NewReceipt creates a receipt with a fresh random id and the current time.
func NewReceipt(transaction *Transaction) *Receipt {
	return &Receipt{
		ID:          uuid.New(),
		Time:        time.Now().UTC(),
		Transaction: transaction,
	}
}

// Result is what the pipeline returns for a processed transaction.
type Result struct {
	Committed bool
	Message   string
	Receipt   *Receipt
}
