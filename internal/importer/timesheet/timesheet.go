// Package timesheet reads CSV exports of time trackers (Toggl, Clockify) and
// hand-made spreadsheets.
package timesheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/billable/internal/apperror"
	enc "github.com/MrJamesThe3rd/billable/internal/encoding"
	"github.com/MrJamesThe3rd/billable/internal/hours"
	"github.com/MrJamesThe3rd/billable/internal/importer"
)

// Parser detects the export format by matching headers against known
// profiles unless a profile is forced.
type Parser struct {
	profile *Profile
}

func NewParser() *Parser {
	return &Parser{}
}

// WithProfile returns a parser that only accepts the named format.
func WithProfile(name string) (*Parser, error) {
	p, ok := Lookup(name)
	if !ok {
		return nil, apperror.Field("format", "unknown format %q", name)
	}

	return &Parser{profile: p}, nil
}

func (p *Parser) Parse(r io.Reader) ([]importer.Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	data, charset, err := enc.ToUTF8(raw)
	if err != nil {
		return nil, apperror.Field("file", "unreadable text: %v", err)
	}

	slog.Debug("decoded timesheet", "charset", charset, "bytes", len(raw))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := readRecords(reader)
	if err != nil {
		return nil, apperror.Field("file", "not a readable CSV file: %v", err)
	}

	candidates := profiles
	if p.profile != nil {
		candidates = []Profile{*p.profile}
	}

	profile, cols, headerIdx := detectProfile(candidates, rows)
	if profile == nil {
		return nil, apperror.Field("file", "no date, description and hours columns found")
	}

	return parseRows(profile, cols, rows[headerIdx+1:])
}

// record is a CSV row with the file line it starts on.
type record struct {
	line  int
	cells []string
}

func readRecords(reader *csv.Reader) ([]record, error) {
	var out []record

	for {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}

		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		out = append(out, record{line: line, cells: cells})
	}
}

// detectDelimiter picks the separator used most in the first lines.
func detectDelimiter(data []byte) rune {
	counts := map[rune]int{}

	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 0; n < 5 && sc.Scan(); n++ {
		line := sc.Text()
		for _, d := range []rune{';', ',', '\t'} {
			counts[d] += strings.Count(line, string(d))
		}
	}

	best := ','
	for _, d := range []rune{';', '\t'} {
		if counts[d] > counts[best] {
			best = d
		}
	}

	return best
}

type colIndex map[string]int

func (c colIndex) find(names []string) int {
	for _, n := range names {
		if i, ok := c[n]; ok {
			return i
		}
	}

	return -1
}

func detectProfile(candidates []Profile, rows []record) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row.cells {
			name := strings.ToLower(strings.TrimSpace(cell))
			if _, seen := cols[name]; name != "" && !seen {
				cols[name] = i
			}
		}

		for i := range candidates {
			if matchesProfile(&candidates[i], cols) {
				return &candidates[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, names := range p.requiredCols() {
		if cols.find(names) < 0 {
			return false
		}
	}

	return true
}

func parseRows(p *Profile, cols colIndex, rows []record) ([]importer.Row, error) {
	var (
		dateIdx   = cols.find(p.DateCol)
		descIdx   = cols.find(p.DescCol)
		hoursIdx  = cols.find(p.HoursCol)
		clientIdx = cols.find(p.ClientCol)
		noteIdx   = cols.find(p.NoteCol)
	)

	var (
		out    []importer.Row
		fields []apperror.FieldError
	)

	for _, rec := range rows {
		row, line := rec.cells, rec.line

		date, ok := parseDate(cellValue(row, dateIdx), p.DateLayouts)
		if !ok {
			// Totals and footer rows carry no date.
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			fields = append(fields, apperror.FieldError{Field: fmt.Sprintf("line %d", line), Message: "missing description"})
			continue
		}

		h, err := hours.Parse(cellValue(row, hoursIdx))
		if err != nil {
			fields = append(fields, apperror.FieldError{Field: fmt.Sprintf("line %d", line), Message: err.Error()})
			continue
		}

		out = append(out, importer.Row{
			Line:        line,
			Date:        date,
			Description: desc,
			Hours:       h,
			Client:      cellValue(row, clientIdx),
			Note:        cellValue(row, noteIdx),
		})
	}

	if len(fields) > 0 {
		return nil, apperror.Validation(fields...)
	}

	return out, nil
}

func parseDate(s string, layouts []string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
