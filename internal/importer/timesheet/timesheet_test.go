package timesheet_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	"github.com/MrJamesThe3rd/billable/internal/importer/timesheet"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func hours(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParser_Toggl(t *testing.T) {
	csv := `User,Email,Client,Project,Task,Description,Billable,Start date,Start time,End date,End time,Duration,Tags,Amount ()
Jan,jan@example.com,Acme,Website,,Design review,Yes,2025-03-14,09:00:00,2025-03-14,10:30:00,01:30:00,meeting,
Jan,jan@example.com,Acme,Website,,"Deploy, hotfix",Yes,2025-03-15,12:00:00,2025-03-15,12:15:00,00:15:00,,
`

	rows, err := timesheet.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, date(2025, 3, 14), rows[0].Date)
	assert.Equal(t, "Design review", rows[0].Description)
	assert.True(t, hours("1.5").Equal(rows[0].Hours))
	assert.Equal(t, "Acme", rows[0].Client)
	assert.Equal(t, "meeting", rows[0].Note)
	assert.Equal(t, 2, rows[0].Line)

	assert.Equal(t, "Deploy, hotfix", rows[1].Description)
	assert.True(t, hours("0.25").Equal(rows[1].Hours))
}

func TestParser_Clockify(t *testing.T) {
	csv := `"Project","Client","Description","Task","User","Group","Email","Tags","Billable","Start Date","Start Time","End Date","End Time","Duration (h)","Duration (decimal)"
"API","Acme","Code review","","Jan","","jan@example.com","","Yes","03/14/2025","09:00:00","03/14/2025","11:15:00","02:15:00","2.25"
`

	rows, err := timesheet.NewParser().Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, date(2025, 3, 14), rows[0].Date)
	assert.True(t, hours("2.25").Equal(rows[0].Hours))
}

func TestParser_GenericPolishWindows1250(t *testing.T) {
	content := "Zestawienie godzin - marzec\n\nData;Opis;Godziny;Uwagi\n14.03.2025;Spotkanie z klientem;1,5;zdalnie\n15.03.2025;Wdrożenie, śledzenie błędów;2h 30m;\nRazem;;4\n"

	encoded, err := charmap.Windows1250.NewEncoder().Bytes([]byte(content))
	require.NoError(t, err)

	rows, err := timesheet.NewParser().Parse(bytes.NewReader(encoded))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, date(2025, 3, 14), rows[0].Date)
	assert.True(t, hours("1.5").Equal(rows[0].Hours))
	assert.Equal(t, "zdalnie", rows[0].Note)
	assert.Equal(t, 4, rows[0].Line)

	assert.Equal(t, date(2025, 3, 15), rows[1].Date)
	assert.Equal(t, "Wdrożenie, śledzenie błędów", rows[1].Description)
	assert.True(t, hours("2.5").Equal(rows[1].Hours))
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantFields []string
	}{
		{
			name:       "NoKnownHeader",
			input:      "foo,bar\n1,2\n",
			wantFields: []string{"file"},
		},
		{
			name:       "BadRows",
			input:      "date,description,hours\n2025-03-14,,1\n2025-03-15,Dev,abc\n2025-03-16,Dev,1\n",
			wantFields: []string{"line 2", "line 3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := timesheet.NewParser().Parse(strings.NewReader(tt.input))

			var verr *apperror.ValidationError
			require.ErrorAs(t, err, &verr)

			var got []string
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}

			assert.Equal(t, tt.wantFields, got)
		})
	}
}

func TestWithProfile(t *testing.T) {
	_, err := timesheet.WithProfile("harvest")
	assert.True(t, apperror.IsValidation(err))

	p, err := timesheet.WithProfile("generic")
	require.NoError(t, err)

	// A Toggl export does not satisfy the generic layout.
	_, err = p.Parse(strings.NewReader("Start date,Description,Duration\n2025-03-14,Dev,01:00:00\n"))
	assert.True(t, apperror.IsValidation(err))
}
