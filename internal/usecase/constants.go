package usecase

// Pagination defaults for list operations.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// clampLimit applies the pagination defaults.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}

	if limit > MaxListLimit {
		return MaxListLimit
	}

	return limit
}
