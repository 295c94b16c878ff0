package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/money"
)

const dbTimeout = 5 * time.Second

var amounts = money.NewFormatter(money.Polish)

// FormatMoney renders an amount the way it appears on a printed invoice.
func FormatMoney(d decimal.Decimal, cur currency.Code) string {
	return amounts.Money(d, cur)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
