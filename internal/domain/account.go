package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account kinds. Player accounts belong to a real player resolved through
// the identity service; every other kind is a shared, non-player account
// classified by an ordered predicate list in the account directory.
const (
	AccountKindPlayer    = "player"
	AccountKindNonPlayer = "nonplayer"
)

// Account is an identity owning one wallet of currency balances. An id maps
// to at most one account; alias lookups never bypass id uniqueness.
type Account struct {
	ID        uuid.UUID
	Name      string
	Kind      string
	CreatedAt time.Time
	Wallet    *Wallet
}

// NewPlayerAccount creates a player account for a resolved external id.
func NewPlayerAccount(id uuid.UUID, name string) *Account {
	return &Account{
		ID:        id,
		Name:      name,
		Kind:      AccountKindPlayer,
		CreatedAt: time.Now().UTC(),
		Wallet:    NewWallet(),
	}
}

// NewNonPlayerAccount creates a shared account of the given kind. Non-player
// accounts are keyed by name in the directory; the generated id keeps
// receipts and persistence uniform across kinds.
func NewNonPlayerAccount(kind, name string) *Account {
	return &Account{
		ID:        uuid.New(),
		Name:      name,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
		Wallet:    NewWallet(),
	}
}

// IsPlayer reports whether this account belongs to a player.
func (a *Account) IsPlayer() bool {
	return a.Kind == AccountKindPlayer
}

// Identifier returns the directory key for this account: the id string for
// players, the name for shared accounts.
func (a *Account) Identifier() string {
	if a.IsPlayer() {
		return a.ID.String()
	}

	return a.Name
}

// AccountResponse is the outcome of an account creation call.
type AccountResponse int

const (
	AccountCreated AccountResponse = iota
	AccountAlreadyExists
	AccountCreationFailed
)

// String returns the human-readable form of the response.
func (r AccountResponse) String() string {
	switch r {
	case AccountCreated:
		return "created"
	case AccountAlreadyExists:
		return "already exists"
	case AccountCreationFailed:
		return "creation failed"
	default:
		return "unknown"
	}
}
