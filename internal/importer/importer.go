// Package importer turns timesheet exports into time entries.
package importer

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// Row is one line of work read from a timesheet export.
type Row struct {
	Line        int
	Date        time.Time
	Description string
	Hours       decimal.Decimal
	Client      string
	Note        string
}

type Parser interface {
	Parse(r io.Reader) ([]Row, error)
}
