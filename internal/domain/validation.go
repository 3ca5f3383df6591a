package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Validation errors
var (
	ErrInvalidAccountName = errors.New("invalid account name")
	ErrInvalidRegion      = errors.New("invalid region name")
	ErrInvalidIdentifier  = errors.New("invalid currency identifier")
)

// Validation constants
const (
	MaxAccountNameLength = 64
	MinAccountNameLength = 1
	MaxRegionLength      = 128
)

// ValidExternalID reports whether s is a syntactically valid external id,
// the stable 128-bit identifier form used for player accounts.
func ValidExternalID(s string) bool {
	_, err := uuid.Parse(s)

	return err == nil
}

// ValidateAccountName validates an account name.
func ValidateAccountName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < MinAccountNameLength || len(name) > MaxAccountNameLength {
		return ErrInvalidAccountName
	}

	return nil
}

// ValidateRegion validates a region name.
func ValidateRegion(region string) error {
	if region == "" || len(region) > MaxRegionLength {
		return ErrInvalidRegion
	}

	return nil
}

// ValidateCurrencyIdentifier validates a currency's short string identifier.
func ValidateCurrencyIdentifier(identifier string) error {
	if identifier == "" || strings.ContainsAny(identifier, " \t\n") {
		return ErrInvalidIdentifier
	}

	return nil
}
