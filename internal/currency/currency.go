// Package currency lists the invoice currencies the application supports.
package currency

import "fmt"

// Code is an ISO 4217 currency code.
type Code string

const (
	PLN Code = "PLN"
	EUR Code = "EUR"
	USD Code = "USD"
)

// Base is the home currency every foreign total is expressed in.
const Base = PLN

var supported = []Code{PLN, EUR, USD}

// All returns the supported currencies, base first.
func All() []Code {
	out := make([]Code, len(supported))
	copy(out, supported)

	return out
}

// Parse validates s as a supported currency code.
func Parse(s string) (Code, error) {
	c := Code(s)
	if !c.Valid() {
		return "", fmt.Errorf("unsupported currency %q", s)
	}

	return c, nil
}

// Valid reports whether c is a supported currency.
func (c Code) Valid() bool {
	for _, s := range supported {
		if s == c {
			return true
		}
	}

	return false
}

// IsForeign reports whether c needs an exchange rate to reach the base currency.
func (c Code) IsForeign() bool {
	return c.Valid() && c != Base
}

func (c Code) String() string {
	return string(c)
}
