package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound  = errors.New("account not found")
	ErrAccountExists    = errors.New("account already exists")
	ErrNoAccountType    = errors.New("no account type accepts the given name")

	// Currency errors
	ErrCurrencyNotFound = errors.New("currency not found")
	ErrRegionDisabled   = errors.New("currency not enabled in region")

	// Monetary errors
	ErrMalformedAmount = errors.New("amount is not a valid decimal")

	// Transaction errors
	ErrNoParticipants   = errors.New("transaction requires at least one participant")
	ErrUnknownType      = errors.New("unknown transaction type")
	ErrReceiptNotFound  = errors.New("receipt not found")

	// Backlog errors
	ErrReplayInProgress = errors.New("replay already running for node")
	ErrNodeOffline      = errors.New("node is not reachable")
)
