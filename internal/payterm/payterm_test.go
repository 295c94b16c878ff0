package payterm_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/payterm"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestDueDate(t *testing.T) {
	tests := []struct {
		name  string
		issue time.Time
		term  payterm.Term
		want  time.Time
	}{
		{name: "immediate", issue: date(2025, 3, 10), term: payterm.Immediate, want: date(2025, 3, 10)},
		{name: "seven days", issue: date(2025, 3, 10), term: payterm.Days(7), want: date(2025, 3, 17)},
		{name: "ninety days across year", issue: date(2025, 11, 15), term: payterm.Days(90), want: date(2026, 2, 13)},
		{name: "month same day", issue: date(2025, 4, 15), term: payterm.Month, want: date(2025, 5, 15)},
		{name: "month clamps january 31", issue: date(2025, 1, 31), term: payterm.Month, want: date(2025, 2, 28)},
		{name: "month clamps leap year", issue: date(2024, 1, 31), term: payterm.Month, want: date(2024, 2, 29)},
		{name: "month december", issue: date(2025, 12, 31), term: payterm.Month, want: date(2026, 1, 31)},
		{name: "month march 31", issue: date(2025, 3, 31), term: payterm.Month, want: date(2025, 4, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := payterm.DueDate(tt.issue, tt.term)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDueDate_CustomIsPrecondition(t *testing.T) {
	_, err := payterm.DueDate(date(2025, 1, 1), payterm.Custom)
	assert.ErrorIs(t, err, apperror.ErrPrecondition)

	_, err = payterm.DueDate(date(2025, 1, 1), payterm.Term("11"))
	assert.ErrorIs(t, err, apperror.ErrPrecondition)
}

func TestDueDate_MonthNeverOverflows(t *testing.T) {
	for m := 1; m <= 12; m++ {
		for d := 28; d <= 31; d++ {
			issue := date(2025, m, d)
			if issue.Month() != time.Month(m) {
				continue
			}

			got, err := payterm.DueDate(issue, payterm.Month)
			require.NoError(t, err)

			wantMonth := time.Month(m%12 + 1)
			assert.Equal(t, wantMonth, got.Month(), "issue %s", issue.Format(time.DateOnly))
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		issue time.Time
		due   *time.Time
		want  payterm.Term
	}{
		{name: "no due date defaults to seven", issue: date(2025, 1, 1), due: nil, want: payterm.Days(7)},
		{name: "same day", issue: date(2025, 1, 1), due: new(date(2025, 1, 1)), want: payterm.Immediate},
		{name: "fourteen", issue: date(2025, 1, 1), due: new(date(2025, 1, 15)), want: payterm.Days(14)},
		{name: "month wins over thirty", issue: date(2025, 4, 15), due: new(date(2025, 5, 15)), want: payterm.Month},
		{name: "thirty days from january 31", issue: date(2025, 1, 31), due: new(date(2025, 3, 2)), want: payterm.Days(30)},
		{name: "clamped month", issue: date(2025, 1, 31), due: new(date(2025, 2, 28)), want: payterm.Month},
		{name: "thirty one day month", issue: date(2025, 1, 1), due: new(date(2025, 1, 31)), want: payterm.Days(30)},
		{name: "month of thirty one days", issue: date(2025, 1, 1), due: new(date(2025, 2, 1)), want: payterm.Month},
		{name: "non standard", issue: date(2025, 1, 1), due: new(date(2025, 1, 12)), want: payterm.Custom},
		{name: "before issue", issue: date(2025, 1, 10), due: new(date(2025, 1, 3)), want: payterm.Custom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, payterm.Classify(tt.issue, tt.due))
		})
	}
}

func TestClassify_RoundTrip(t *testing.T) {
	start := date(2024, 1, 1)

	for i := 0; i < 731; i++ {
		issue := start.AddDate(0, 0, i)

		for _, n := range payterm.StandardDays {
			due, err := payterm.DueDate(issue, payterm.Days(n))
			require.NoError(t, err)

			got := payterm.Classify(issue, &due)
			if due.Equal(payterm.AddMonth(issue)) {
				assert.Equal(t, payterm.Month, got, "issue %s n %d", issue.Format(time.DateOnly), n)
				continue
			}

			assert.Equal(t, payterm.Days(n), got, "issue %s n %d", issue.Format(time.DateOnly), n)
		}

		for _, term := range []payterm.Term{payterm.Immediate, payterm.Month} {
			due, err := payterm.DueDate(issue, term)
			require.NoError(t, err)
			assert.Equal(t, term, payterm.Classify(issue, &due))
		}
	}
}

func TestReconcile(t *testing.T) {
	issue := date(2025, 6, 2)

	tests := []struct {
		name     string
		due      *time.Time
		term     payterm.Term
		wantDue  time.Time
		wantTerm payterm.Term
		wantErr  bool
	}{
		{name: "term derives due date", term: payterm.Days(14), wantDue: date(2025, 6, 16), wantTerm: payterm.Days(14)},
		{name: "matching due date kept", due: new(date(2025, 6, 16)), term: payterm.Days(14), wantDue: date(2025, 6, 16), wantTerm: payterm.Days(14)},
		{name: "explicit non standard due collapses to custom", due: new(date(2025, 6, 20)), term: payterm.Days(14), wantDue: date(2025, 6, 20), wantTerm: payterm.Custom},
		{name: "explicit standard due reclassified", due: new(date(2025, 6, 9)), term: payterm.Days(14), wantDue: date(2025, 6, 9), wantTerm: payterm.Days(7)},
		{name: "custom keeps due", due: new(date(2025, 6, 20)), term: payterm.Custom, wantDue: date(2025, 6, 20), wantTerm: payterm.Custom},
		{name: "custom without due", term: payterm.Custom, wantErr: true},
		{name: "nothing given", wantDue: date(2025, 6, 9), wantTerm: payterm.Days(7)},
		{name: "due before issue", due: new(date(2025, 6, 1)), term: payterm.Custom, wantErr: true},
		{name: "unknown term", term: payterm.Term("11"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			due, term, err := payterm.Reconcile(issue, tt.due, tt.term)
			if tt.wantErr {
				assert.True(t, apperror.IsValidation(err), "got %v", err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantDue, due)
			assert.Equal(t, tt.wantTerm, term)
		})
	}
}

func TestParse(t *testing.T) {
	for _, s := range []string{"immediate", "month", "custom", "1", "30", "90"} {
		_, err := payterm.Parse(s)
		assert.NoError(t, err, s)
	}

	for _, s := range []string{"", "0", "2", "31", "weekly"} {
		_, err := payterm.Parse(s)
		assert.Error(t, err, s)
	}
}
