package token

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// Symbols used for paste ids (lowercase hex, URL-safe)
const idSymbols = "0123456789abcdef"

// IDLength is the fixed length of generated paste ids.
const IDLength = 12

// NewPasteID creates a fresh random paste id. Ids are not checked against
// storage; the keyspace makes collisions negligible.
func NewPasteID() (string, error) {
	result := make([]byte, IDLength)
	symbolsLen := big.NewInt(int64(len(idSymbols)))

	for i := 0; i < IDLength; i++ {
		n, err := rand.Int(rand.Reader, symbolsLen)
		if err != nil {
			return "", err
		}
		result[i] = idSymbols[n.Int64()]
	}

	return string(result), nil
}

// NewEditKey creates the secret token authorizing metadata edits for one
// paste. It is longer than a paste id and never derivable from it.
func NewEditKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsValidID checks whether a string has the shape of a generated paste id.
// Used by handlers to reject junk before touching storage.
func IsValidID(id string) bool {
	if len(id) != IDLength {
		return false
	}
	for _, c := range id {
		if !strings.ContainsRune(idSymbols, c) {
			return false
		}
	}
	return true
}
