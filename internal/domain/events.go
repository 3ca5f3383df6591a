package domain

import "github.com/google/uuid"

// Message types carried across nodes.
const (
	MessageTypeBalance = "balance.sync"
)

// BalanceSyncMessage fans a committed balance overwrite out to other nodes.
// Amounts travel as strings to keep full decimal precision on the wire.
// Applying the same final-balance overwrite twice is harmless, which is what
// makes backlog replay safe without coalescing.
type BalanceSyncMessage struct {
	Origin   string    `json:"origin"`
	Account  uuid.UUID `json:"account"`
	Region   string    `json:"region"`
	Currency string    `json:"currency"`
	Handler  string    `json:"handler"`
	Amount   string    `json:"amount"`
	Time     int64     `json:"time"`
}

// BacklogEntry is one queued balance-affecting message for a remote node.
type BacklogEntry struct {
	Time    int64
	Payload []byte
}
