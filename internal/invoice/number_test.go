package invoice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/billable/internal/invoice"
)

func TestNextSequence(t *testing.T) {
	issue := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "FV/2025/03/", invoice.NumberPrefix(issue))
	assert.Equal(t, "FV/2025/03/7", invoice.FormatNumber(issue, 7))

	tests := []struct {
		name    string
		numbers []string
		want    int
	}{
		{name: "first of month", want: 1},
		{name: "after highest", numbers: []string{"FV/2025/03/1", "FV/2025/03/10", "FV/2025/03/9"}, want: 11},
		{name: "other months ignored", numbers: []string{"FV/2025/02/5", "FV/2024/03/8"}, want: 1},
		{name: "malformed ignored", numbers: []string{"FV/2025/03/x", "FV/2025/03/2"}, want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, invoice.NextSequence(issue, tt.numbers))
		})
	}
}
