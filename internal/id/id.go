// Package id generates the record identifiers used across the codebase.
// Endpoints, schemas, and templates each carry a typed prefix so an ID in a
// log line or API response is self-describing.
package id

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// Record ID prefixes.
const (
	PrefixEndpoint = "ep"
	PrefixSchema   = "sch"
	PrefixTemplate = "tpl"
)

// UUID returns a random UUID v4 string.
func UUID() string {
	return uuid.NewString()
}

// Short returns a 16-character random hex ID.
func Short() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Prefixed returns a typed record ID such as "ep-3fa9c2d417b08e61".
func Prefixed(prefix string) string {
	return prefix + "-" + Short()
}
