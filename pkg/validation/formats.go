package validation

import (
	"net/mail"
	"strings"
)

// IsEmail reports whether value is an RFC 5322 address with a dotted domain.
// The dotted-domain requirement rejects bare-host addresses like "a@b" that
// mail.ParseAddress accepts but no real upstream would.
func IsEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return false
	}
	// Reject the "Name <addr>" form: schema fields carry bare addresses.
	if addr.Address != value {
		return false
	}
	at := strings.LastIndex(value, "@")
	if at < 1 {
		return false
	}
	return strings.Contains(value[at+1:], ".")
}
