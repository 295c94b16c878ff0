// Package nip validates Polish tax identification numbers (NIP).
package nip

import "strings"

var weights = [9]int{6, 5, 7, 2, 3, 4, 5, 6, 7}

// Valid reports whether s is a 10-digit NIP with a correct check digit.
// A weighted sum that reduces to 10 has no valid check digit.
func Valid(s string) bool {
	if len(s) != 10 {
		return false
	}

	sum := 0

	for i := 0; i < 10; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}

		if i < 9 {
			sum += int(c-'0') * weights[i]
		}
	}

	check := sum % 11
	if check == 10 {
		return false
	}

	return check == int(s[9]-'0')
}

// Normalize strips the "PL" prefix, spaces and dashes. It does not validate.
func Normalize(s string) string {
	s = strings.TrimSpace(strings.ToUpper(s))
	s = strings.TrimPrefix(s, "PL")

	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}

		return r
	}, s)
}
