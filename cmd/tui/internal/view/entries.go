package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/billable/internal/client"
	"github.com/MrJamesThe3rd/billable/internal/hours"
	"github.com/MrJamesThe3rd/billable/internal/timeentry"
)

type entriesState int

const (
	entriesStateBrowse entriesState = iota
	entriesStateEdit
)

type entryForm struct {
	description string
	hours       string
	note        string
}

type EntriesModel struct {
	CommonModel
	userID  uuid.UUID
	entries *timeentry.Service
	clients *client.Service

	state   entriesState
	table   table.Model
	rows    []*timeentry.Entry
	names   map[uuid.UUID]string
	form    *huh.Form
	editing *entryForm

	invoicedFilterIdx int
	dateFilterIdx     int

	filter  timeentry.ListFilter
	loading bool
	err     error
	status  string
}

func NewEntriesModel(userID uuid.UUID, entries *timeentry.Service, clients *client.Service) EntriesModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Client", Width: 18},
		{Title: "Hours", Width: 9},
		{Title: "Value", Width: 16},
		{Title: "Invoiced", Width: 9},
		{Title: "Description", Width: 40},
	}

	t := newTable(columns)

	return EntriesModel{
		userID:  userID,
		entries: entries,
		clients: clients,
		table:   t,
		loading: true,
	}
}

func (m EntriesModel) Title() string { return "Time Entries" }

func (m EntriesModel) ShortHelp() string {
	if m.state == entriesStateEdit {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | e: edit | x: delete | i: invoiced filter | d: date filter | r: refresh"
}

func (m EntriesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m EntriesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadEntriesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.rows = msg.entries
		m.names = msg.names
		m.refreshTable()

		return m, nil

	case entrySavedMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		}

		m.state = entriesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case entriesStateBrowse:
		return m.updateBrowse(msg)
	case entriesStateEdit:
		return m.updateEdit(msg)
	}

	return m, nil
}

func (m EntriesModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "e":
			return m.enterEditMode()
		case "x":
			return m, m.deleteCmd()
		case "i":
			m.invoicedFilterIdx = (m.invoicedFilterIdx + 1) % 3
			m.applyFilter(time.Now())

			return m, m.loadCmd()
		case "d":
			m.dateFilterIdx = (m.dateFilterIdx + 1) % 3
			m.applyFilter(time.Now())

			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m EntriesModel) selected() *timeentry.Entry {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return nil
	}

	return m.rows[idx]
}

func (m EntriesModel) enterEditMode() (tea.Model, tea.Cmd) {
	e := m.selected()
	if e == nil {
		return m, nil
	}

	if e.Invoiced() {
		m.status = "Invoiced entries cannot be edited."
		return m, nil
	}

	m.editing = &entryForm{
		description: e.Description,
		hours:       hours.Canonical(e.Hours),
		note:        e.Note,
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&m.editing.description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("description cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("hours").
				Title("Hours").
				Description("e.g. 1.5, 1:30 or 90m").
				Value(&m.editing.hours).
				Validate(validateHours),

			huh.NewInput().
				Key("note").
				Title("Note").
				Value(&m.editing.note),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = entriesStateEdit
	m.table.Blur()

	return m, m.form.Init()
}

func (m EntriesModel) updateEdit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = entriesStateBrowse
			m.form = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.saveCmd()
}

func (m EntriesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading time entries...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	invoicedLabels := []string{"All", "Unbilled", "Invoiced"}
	dateLabels := []string{"All Time", "This Month", "Last Month"}

	header := fmt.Sprintf(
		"Filter: [i] %s | [d] Date: %s",
		activeStyle(invoicedLabels[m.invoicedFilterIdx]),
		activeStyle(dateLabels[m.dateFilterIdx]),
	)

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == entriesStateEdit && m.form != nil {
		raw := ""
		if e := m.selected(); e != nil {
			raw = e.RawDescription
		}

		panel := panelStyle.Width(48).Render(
			fmt.Sprintf("Edit Time Entry\n\nOriginal: %s\n\n%s", raw, m.form.View()),
		)

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *EntriesModel) applyFilter(now time.Time) {
	switch m.invoicedFilterIdx {
	case 1:
		m.filter.Invoiced = new(false)
	case 2:
		m.filter.Invoiced = new(true)
	default:
		m.filter.Invoiced = nil
	}

	switch m.dateFilterIdx {
	case 1:
		start, end := normalizeDateRange(dateRange(TimeframeThisMonth, now))
		m.filter.StartDate = &start
		m.filter.EndDate = &end
	case 2:
		start, end := normalizeDateRange(dateRange(TimeframeLastMonth, now))
		m.filter.StartDate = &start
		m.filter.EndDate = &end
	default:
		m.filter.StartDate = nil
		m.filter.EndDate = nil
	}
}

func (m *EntriesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.rows))

	for _, e := range m.rows {
		invoiced := ""
		if e.Invoiced() {
			invoiced = "yes"
		}

		rows = append(rows, table.Row{
			FormatDate(e.Date),
			m.names[e.ClientID],
			hours.Format(e.Hours),
			FormatMoney(e.Value(), e.Currency),
			invoiced,
			e.Description,
		})
	}

	m.table.SetRows(rows)
}

func validateHours(s string) error {
	h, err := hours.Parse(s)
	if err != nil {
		return err
	}

	if !h.IsPositive() {
		return fmt.Errorf("hours must be positive")
	}

	return nil
}

// Messages

type loadEntriesMsg struct {
	entries []*timeentry.Entry
	names   map[uuid.UUID]string
	err     error
}

func (m EntriesModel) loadCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		clients, err := m.clients.List(ctx, m.userID)
		if err != nil {
			return loadEntriesMsg{err: err}
		}

		names := make(map[uuid.UUID]string, len(clients))
		for _, c := range clients {
			names[c.ID] = c.Name
		}

		entries, err := m.entries.List(ctx, m.userID, filter)

		return loadEntriesMsg{entries: entries, names: names, err: err}
	}
}

type entrySavedMsg struct {
	status string
	err    error
}

func (m EntriesModel) saveCmd() tea.Cmd {
	e := m.selected()
	if e == nil || m.editing == nil {
		return nil
	}

	values := *m.editing

	return func() tea.Msg {
		h, err := hours.Parse(values.hours)
		if err != nil {
			return entrySavedMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		_, err = m.entries.Update(ctx, m.userID, e.ID, timeentry.CreateParams{
			ClientID:       e.ClientID,
			Date:           e.Date,
			Description:    strings.TrimSpace(values.description),
			RawDescription: e.RawDescription,
			Hours:          h,
			Rate:           e.Rate,
			Currency:       e.Currency,
			Note:           values.note,
		})
		if err != nil {
			return entrySavedMsg{err: err}
		}

		return entrySavedMsg{status: "Saved."}
	}
}

func (m EntriesModel) deleteCmd() tea.Cmd {
	e := m.selected()
	if e == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := m.entries.Delete(ctx, m.userID, e.ID); err != nil {
			return entrySavedMsg{err: err}
		}

		return entrySavedMsg{status: fmt.Sprintf("Deleted %s entry from %s.", hours.Format(e.Hours), FormatDate(e.Date))}
	}
}
