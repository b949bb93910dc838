package assess

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// NewTestCode returns an 8-character uppercase hex code. Collisions are not
// retried here; the unique index on tests.test_code rejects the write.
func NewTestCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// NormalizeTestCode upper-cases lookups so codes are case-insensitive on read.
func NormalizeTestCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
