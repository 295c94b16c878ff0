// Package export writes time entries out for spreadsheets and accountants.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/billable/internal/client"
	"github.com/MrJamesThe3rd/billable/internal/hours"
	"github.com/MrJamesThe3rd/billable/internal/timeentry"
)

// Header is the first CSV row.
var Header = []string{"date", "client", "description", "hours", "rate", "currency", "value", "invoiced", "note"}

var bom = []byte{0xEF, 0xBB, 0xBF}

//go:generate mockgen -source=service.go -destination=service_mock.go -package=export
type EntrySource interface {
	List(ctx context.Context, userID uuid.UUID, filter timeentry.ListFilter) ([]*timeentry.Entry, error)
}

type ClientSource interface {
	List(ctx context.Context, userID uuid.UUID) ([]*client.Client, error)
}

type Service struct {
	entries EntrySource
	clients ClientSource
}

func NewService(entries EntrySource, clients ClientSource) *Service {
	return &Service{entries: entries, clients: clients}
}

// WriteCSV writes the entries matching filter to w. The output starts with a
// UTF-8 BOM so spreadsheet programs pick the right encoding.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer, userID uuid.UUID, filter timeentry.ListFilter) (int, error) {
	entries, err := s.entries.List(ctx, userID, filter)
	if err != nil {
		return 0, fmt.Errorf("listing entries: %w", err)
	}

	names, err := s.clientNames(ctx, userID)
	if err != nil {
		return 0, err
	}

	if _, err := w.Write(bom); err != nil {
		return 0, fmt.Errorf("writing bom: %w", err)
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	for _, e := range entries {
		if err := cw.Write(record(e, names[e.ClientID])); err != nil {
			return 0, fmt.Errorf("writing entry %s: %w", e.ID, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flushing csv: %w", err)
	}

	return len(entries), nil
}

// Export writes the CSV into dir and returns the file path.
func (s *Service) Export(ctx context.Context, userID uuid.UUID, filter timeentry.ListFilter, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, Filename(filter, time.Now()))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}

	// A failed export leaves no partial file behind.
	if _, err := s.WriteCSV(ctx, f, userID, filter); err != nil {
		_ = f.Close()
		_ = os.Remove(path)

		return "", err
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("closing file: %w", err)
	}

	return path, nil
}

// Filename names an export after its date range, e.g. time-entries_20250301-20250331.csv.
func Filename(filter timeentry.ListFilter, now time.Time) string {
	from, to := "all", now.Format("20060102")

	if filter.StartDate != nil {
		from = filter.StartDate.Format("20060102")
	}

	if filter.EndDate != nil {
		to = filter.EndDate.Format("20060102")
	}

	return fmt.Sprintf("time-entries_%s-%s.csv", from, to)
}

func (s *Service) clientNames(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]string, error) {
	clients, err := s.clients.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}

	names := make(map[uuid.UUID]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
	}

	return names, nil
}

func record(e *timeentry.Entry, clientName string) []string {
	invoiced := "no"
	if e.Invoiced() {
		invoiced = "yes"
	}

	return []string{
		e.Date.Format(time.DateOnly),
		clientName,
		e.Description,
		e.Hours.String(),
		e.Rate.StringFixed(2),
		e.Currency.String(),
		e.Value().StringFixed(2),
		invoiced,
		e.Note,
	}
}

// Summary renders entries as a short plain-text list for pasting into an email.
func Summary(entries []*timeentry.Entry, clientName func(uuid.UUID) string) string {
	var sb strings.Builder

	for _, e := range entries {
		fmt.Fprintf(&sb, "* %s | %s | %s | %s | %s %s\n",
			e.Date.Format(time.DateOnly),
			clientName(e.ClientID),
			e.Description,
			hours.Format(e.Hours),
			e.Value().StringFixed(2),
			e.Currency,
		)
	}

	return sb.String()
}
