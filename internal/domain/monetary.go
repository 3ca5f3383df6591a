package domain

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Monetary is the major/minor decomposition of a decimal amount at a fixed
// scale. The amount is always truncated toward zero, never rounded, so
// 100.009 at scale 2 decomposes to major=100 minor="00".
type Monetary struct {
	major *big.Int
	minor string
	scale int
}

// NewMonetary decomposes amount at the given scale.
func NewMonetary(amount decimal.Decimal, scale int) Monetary {
	if scale < 0 {
		scale = 0
	}

	truncated := amount.Truncate(int32(scale))

	var major, minor string

	plain := truncated.StringFixed(int32(scale))
	if idx := strings.IndexByte(plain, '.'); idx >= 0 {
		major = plain[:idx]
		minor = plain[idx+1:]
	} else {
		major = plain
		minor = "0"
	}

	m := new(big.Int)
	m.SetString(major, 10)

	return Monetary{
		major: m,
		minor: minor,
		scale: scale,
	}
}

// ParseMonetary parses a decimal string and decomposes it at the given scale.
// Malformed input returns an explicit error, never a silently truncated value.
func ParseMonetary(amount string, scale int) (Monetary, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Monetary{}, ErrMalformedAmount
	}

	return NewMonetary(d, scale), nil
}

// Major returns the whole-unit component.
func (m Monetary) Major() *big.Int {
	return new(big.Int).Set(m.major)
}

// Minor returns the fractional component as a fixed-width digit string of
// length scale. Leading zeros are preserved for display.
func (m Monetary) Minor() string {
	return m.minor
}

// MinorAsInt returns the fractional component as an integer.
func (m Monetary) MinorAsInt() *big.Int {
	i := new(big.Int)
	i.SetString(m.minor, 10)

	return i
}

// Scale returns the scale this Monetary was decomposed at.
func (m Monetary) Scale() int {
	return m.scale
}

// IsOne reports whether the major component is exactly one. Used by display
// formatting to pick the singular currency name.
func (m Monetary) IsOne() bool {
	return m.major.Cmp(big.NewInt(1)) == 0
}

// Equal reports whether both major and minor components match.
func (m Monetary) Equal(other Monetary) bool {
	return m.major.Cmp(other.major) == 0 && m.minor == other.minor
}

// String reconstructs the truncated amount as "major.minor", or the bare
// major component at scale zero.
func (m Monetary) String() string {
	if m.scale == 0 {
		return m.major.String()
	}

	return m.major.String() + "." + m.minor
}
