// Package payterm converts between invoice payment terms and due dates.
package payterm

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
)

// Term is a payment term: a named rule or a day count from StandardDays.
type Term string

const (
	Immediate Term = "immediate"
	Month     Term = "month"
	Custom    Term = "custom"
)

// DefaultDays is the term assumed for invoices without a due date.
const DefaultDays = 7

// StandardDays are the day counts offered as payment terms.
var StandardDays = []int{1, 3, 5, 7, 14, 21, 30, 45, 60, 75, 90}

// Days returns the term for a day count.
func Days(n int) Term {
	return Term(strconv.Itoa(n))
}

// Default returns the term used when nothing else is known.
func Default() Term {
	return Days(DefaultDays)
}

// Days returns the day count of a day-count term.
func (t Term) Days() (int, bool) {
	n, err := strconv.Atoi(string(t))
	if err != nil {
		return 0, false
	}

	return n, slices.Contains(StandardDays, n)
}

// Valid reports whether t is a named term or a standard day count.
func (t Term) Valid() bool {
	switch t {
	case Immediate, Month, Custom:
		return true
	}

	_, ok := t.Days()

	return ok
}

// Parse validates s as a payment term.
func Parse(s string) (Term, error) {
	t := Term(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown payment term %q", s)
	}

	return t, nil
}

// AddMonth advances t by one calendar month, clamping to the last day of the
// target month: Jan 31 becomes Feb 28 (or 29), never early March.
func AddMonth(t time.Time) time.Time {
	y, m, d := t.Date()

	first := time.Date(y, m+1, 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()

	return time.Date(first.Year(), first.Month(), min(d, last), 0, 0, 0, 0, t.Location())
}

// DueDate derives the due date for an issue date and term.
// Custom has no derivation: the due date itself is the source of truth.
func DueDate(issue time.Time, term Term) (time.Time, error) {
	issue = dateOnly(issue)

	switch term {
	case Immediate:
		return issue, nil
	case Month:
		return AddMonth(issue), nil
	case Custom:
		return time.Time{}, apperror.Preconditionf("custom payment term has no derived due date")
	}

	n, ok := term.Days()
	if !ok {
		return time.Time{}, apperror.Preconditionf("unknown payment term %q", term)
	}

	return issue.AddDate(0, 0, n), nil
}

// Classify derives the payment term from an issue date and due date.
// Month is checked before the day counts so that e.g. Apr 15 -> May 15 is a
// month rather than 30 days.
func Classify(issue time.Time, due *time.Time) Term {
	if due == nil {
		return Default()
	}

	issue, d := dateOnly(issue), dateOnly(*due)

	days := DaysBetween(issue, d)
	if days == 0 {
		return Immediate
	}

	if AddMonth(issue).Equal(d) {
		return Month
	}

	if slices.Contains(StandardDays, days) {
		return Days(days)
	}

	return Custom
}

// Reconcile returns a due date and term that agree with each other.
//
// A standard term with no due date (or a matching one) derives the due date.
// An explicit due date that the term does not produce is kept and the term is
// reclassified from it, collapsing to Custom when it is non-standard.
func Reconcile(issue time.Time, due *time.Time, term Term) (time.Time, Term, error) {
	issue = dateOnly(issue)

	if term != "" && !term.Valid() {
		return time.Time{}, "", apperror.Field("payment_term", "unknown payment term %q", term)
	}

	if due != nil && dateOnly(*due).Before(issue) {
		return time.Time{}, "", apperror.Field("due_date", "must not be before the issue date")
	}

	if term == Custom || term == "" {
		if due == nil {
			if term == Custom {
				return time.Time{}, "", apperror.Field("due_date", "required for a custom payment term")
			}

			term = Default()

			d, err := DueDate(issue, term)

			return d, term, err
		}

		return dateOnly(*due), Classify(issue, due), nil
	}

	derived, err := DueDate(issue, term)
	if err != nil {
		return time.Time{}, "", err
	}

	if due == nil || dateOnly(*due).Equal(derived) {
		return derived, term, nil
	}

	return dateOnly(*due), Classify(issue, due), nil
}

// DaysBetween counts calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(dateOnly(b).Sub(dateOnly(a)).Hours() / 24))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
