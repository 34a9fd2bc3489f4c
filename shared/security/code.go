package security

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const digits = "0123456789"

// GenerateNumericCode returns a code of length decimal digits, each drawn
// independently and uniformly from a cryptographically secure source.
func GenerateNumericCode(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)

	max := big.NewInt(int64(len(digits)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(digits[n.Int64()])
	}

	return b.String(), nil
}
