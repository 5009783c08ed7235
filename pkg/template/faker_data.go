package template

import (
	"fmt"
	mathrand "math/rand/v2"
	"strings"
)

// fakerFirstNames contains common given names for name and email generation.
var fakerFirstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael",
	"Linda", "David", "Elizabeth", "William", "Barbara", "Richard", "Susan",
	"Joseph", "Jessica", "Thomas", "Sarah", "Charles", "Karen", "Daniel",
	"Lisa", "Matthew", "Nancy", "Anthony", "Betty", "Mark", "Margaret",
	"Emma", "Olivia", "Noah", "Liam", "Sophia", "Ava", "Lucas", "Mia",
}

// fakerLastNames contains common family names.
var fakerLastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
	"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	"Lee", "Perez", "Thompson", "White", "Harris", "Sanchez", "Clark",
	"Ramirez", "Lewis", "Robinson", "Walker", "Young", "Allen", "King",
}

// fakerEmailDomains contains plausible mail domains.
var fakerEmailDomains = []string{
	"example.com", "example.org", "mail.com", "inbox.net",
	"fastmail.dev", "postbox.io",
}

// fakerURLHosts contains plausible web hosts for url generation.
var fakerURLHosts = []string{
	"example.com", "acme.dev", "northwind.io", "contoso.net",
	"globex.org", "initech.app",
}

// fakerURLPaths contains path segments appended to generated urls.
var fakerURLPaths = []string{
	"products", "docs", "about", "blog", "api", "pricing", "team", "careers",
}

// fakerCurrencyCodes contains ISO 4217 currency codes.
var fakerCurrencyCodes = []string{
	"USD", "EUR", "GBP", "JPY", "AUD", "CAD", "CHF", "CNY",
	"SEK", "NZD", "MXN", "SGD", "HKD", "NOK", "KRW", "INR",
}

const alphanumerics = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// randomAlphanumeric returns a random alphanumeric string of length n.
func randomAlphanumeric(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumerics[mathrand.IntN(len(alphanumerics))]
	}
	return string(b)
}

// randomFullName returns "First Last".
func randomFullName() string {
	return pick(fakerFirstNames) + " " + pick(fakerLastNames)
}

// randomEmail returns "first.last@domain" built from the name tables.
func randomEmail() string {
	first := strings.ToLower(pick(fakerFirstNames))
	last := strings.ToLower(pick(fakerLastNames))
	return fmt.Sprintf("%s.%s@%s", first, last, pick(fakerEmailDomains))
}

// randomPhone returns a NANP-shaped number with a 555 exchange.
func randomPhone() string {
	return fmt.Sprintf("+1-%d%d%d-555-%04d",
		2+mathrand.IntN(8), mathrand.IntN(10), mathrand.IntN(10), mathrand.IntN(10000))
}

// randomURL returns an https url with one path segment.
func randomURL() string {
	return fmt.Sprintf("https://%s/%s", pick(fakerURLHosts), pick(fakerURLPaths))
}

// randomShortID returns a compact lowercase identifier, e.g. "k3f9d2ax".
func randomShortID() string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 8)
	for i := range b {
		b[i] = chars[mathrand.IntN(len(chars))]
	}
	return string(b)
}
