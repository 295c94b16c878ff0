// Package hours formats and parses billable hour quantities.
package hours

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// Format renders hours as "2h 30m", "45m" or "3h".
// The combined minute count is rounded first and only then split, so the
// minute part is always in [0,59].
func Format(h decimal.Decimal) string {
	total := h.Mul(sixty).Round(0).IntPart()

	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}

	whole, minutes := total/60, total%60

	switch {
	case whole == 0:
		return fmt.Sprintf("%s%dm", sign, minutes)
	case minutes == 0:
		return fmt.Sprintf("%s%dh", sign, whole)
	}

	return fmt.Sprintf("%s%dh %dm", sign, whole, minutes)
}

// Canonical renders hours as a fixed two-place decimal, e.g. "2.50".
func Canonical(h decimal.Decimal) string {
	return h.StringFixed(2)
}

// FromMinutes converts a minute count to hours.
func FromMinutes(minutes int64) decimal.Decimal {
	return decimal.NewFromInt(minutes).Div(sixty)
}

var (
	ErrEmpty   = errors.New("empty duration")
	ErrInvalid = errors.New("invalid duration")

	unitsPattern = regexp.MustCompile(`^(?:(\d+)\s*h)?\s*(?:(\d+)\s*m)?$`)
)

// Parse reads a duration typed by a person or found in a timesheet export.
// Accepted forms: "1.5", "1,5", "1:30", "1:30:00", "1h 30m", "1h", "90m".
func Parse(s string) (decimal.Decimal, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return decimal.Zero, ErrEmpty
	}

	if strings.Contains(s, ":") {
		return parseClock(s)
	}

	if m := unitsPattern.FindStringSubmatch(s); m != nil && (m[1] != "" || m[2] != "") {
		h, _ := strconv.ParseInt(orZero(m[1]), 10, 64)
		mins, _ := strconv.ParseInt(orZero(m[2]), 10, 64)

		return FromMinutes(h*60 + mins), nil
	}

	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative %q", ErrInvalid, s)
	}

	return d, nil
}

func parseClock(s string) (decimal.Decimal, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	var values [3]int64

	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalid, s)
		}

		if i > 0 && n > 59 {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalid, s)
		}

		values[i] = n
	}

	seconds := values[0]*3600 + values[1]*60 + values[2]

	return decimal.NewFromInt(seconds).Div(decimal.NewFromInt(3600)), nil
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}

	return s
}
