package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/client"
	"github.com/MrJamesThe3rd/billable/internal/hours"
	"github.com/MrJamesThe3rd/billable/internal/timeentry"
)

type logState int

const (
	logStateLoading logState = iota
	logStateForm
	logStateSaving
)

type logValues struct {
	clientID    uuid.UUID
	date        string
	hours       string
	description string
	rate        string
	note        string
}

// LogTimeModel records a single time entry.
type LogTimeModel struct {
	CommonModel
	userID  uuid.UUID
	entries *timeentry.Service
	clients *client.Service

	state      logState
	clientList []*client.Client
	form       *huh.Form
	values     *logValues
	status     string
	err        error
}

func NewLogTimeModel(userID uuid.UUID, entries *timeentry.Service, clients *client.Service) LogTimeModel {
	return LogTimeModel{
		userID:  userID,
		entries: entries,
		clients: clients,
		state:   logStateLoading,
	}
}

func (m LogTimeModel) Title() string { return "Log Time" }

func (m LogTimeModel) Init() tea.Cmd {
	return loadClientsCmd(m.userID, m.clients)
}

func (m LogTimeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clientsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.clientList = msg.clients
		if len(m.clientList) == 0 {
			m.err = errors.New("add a client before logging time")
			return m, nil
		}

		return m.resetForm(time.Now())

	case entryLoggedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m.buildForm()
		}

		m.err = nil
		m.status = msg.status

		return m.resetForm(time.Now())
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	if m.state != logStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = logStateSaving

	return m, m.saveCmd()
}

// resetForm starts a fresh form, keeping the last client and date so a day
// can be logged in a row.
func (m LogTimeModel) resetForm(now time.Time) (tea.Model, tea.Cmd) {
	prev := m.values

	m.values = &logValues{
		clientID: m.clientList[0].ID,
		date:     FormatDate(now),
	}

	if prev != nil {
		m.values.clientID = prev.clientID
		m.values.date = prev.date
	}

	return m.buildForm()
}

// buildForm binds a new form to the current values.
func (m LogTimeModel) buildForm() (tea.Model, tea.Cmd) {
	options := make([]huh.Option[uuid.UUID], 0, len(m.clientList))
	for _, c := range m.clientList {
		options = append(options, huh.NewOption(c.Name, c.ID))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[uuid.UUID]().
				Title("Client").
				Options(options...).
				Value(&m.values.clientID),

			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.values.date).
				Validate(func(s string) error {
					if _, err := time.Parse(time.DateOnly, s); err != nil {
						return errors.New("use YYYY-MM-DD")
					}
					return nil
				}),

			huh.NewInput().
				Title("Hours").
				Description("e.g. 1.5, 1:30 or 90m").
				Value(&m.values.hours).
				Validate(validateHours),

			huh.NewInput().
				Title("Description").
				Value(&m.values.description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("description cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Title("Hourly rate").
				Description("Leave empty to use the client's rate").
				Value(&m.values.rate).
				Validate(func(s string) error {
					if s == "" {
						return nil
					}
					if d, err := decimal.NewFromString(s); err != nil || d.IsNegative() {
						return errors.New("must be a non-negative number")
					}
					return nil
				}),

			huh.NewInput().
				Title("Note").
				Value(&m.values.note),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = logStateForm

	return m, m.form.Init()
}

func (m LogTimeModel) client(id uuid.UUID) *client.Client {
	for _, c := range m.clientList {
		if c.ID == id {
			return c
		}
	}

	return nil
}

// entryParams turns the form values into a new entry billed at the given
// rate, or at the client's default when no rate was typed.
func entryParams(v logValues, c *client.Client) (timeentry.CreateParams, error) {
	date, err := time.Parse(time.DateOnly, v.date)
	if err != nil {
		return timeentry.CreateParams{}, fmt.Errorf("invalid date: %w", err)
	}

	h, err := hours.Parse(v.hours)
	if err != nil {
		return timeentry.CreateParams{}, err
	}

	rate := decimal.Zero

	switch {
	case v.rate != "":
		if rate, err = decimal.NewFromString(v.rate); err != nil {
			return timeentry.CreateParams{}, fmt.Errorf("invalid rate: %w", err)
		}
	case c.DefaultRate != nil:
		rate = *c.DefaultRate
	}

	description := strings.TrimSpace(v.description)

	return timeentry.CreateParams{
		ClientID:       c.ID,
		Date:           date,
		Description:    description,
		RawDescription: description,
		Hours:          h,
		Rate:           rate,
		Currency:       c.Currency,
		Note:           strings.TrimSpace(v.note),
	}, nil
}

func (m LogTimeModel) View() string {
	switch {
	case m.clientList == nil && m.err == nil:
		return lipgloss.NewStyle().Padding(2).Render("Loading clients...")
	case m.form == nil:
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.state == logStateSaving:
		return lipgloss.NewStyle().Padding(2).Render("Saving...")
	}

	content := m.form.View()

	if m.err != nil {
		content = errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + content
	} else if m.status != "" {
		content = successStyle.Render(m.status) + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n\n(Esc to back)")
}

type entryLoggedMsg struct {
	status string
	err    error
}

func (m LogTimeModel) saveCmd() tea.Cmd {
	values := *m.values
	c := m.client(values.clientID)

	return func() tea.Msg {
		if c == nil {
			return entryLoggedMsg{err: errors.New("unknown client")}
		}

		params, err := entryParams(values, c)
		if err != nil {
			return entryLoggedMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		e, err := m.entries.Create(ctx, m.userID, params)
		if err != nil {
			return entryLoggedMsg{err: err}
		}

		return entryLoggedMsg{status: fmt.Sprintf("Logged %s for %s on %s.", hours.Format(e.Hours), c.Name, FormatDate(e.Date))}
	}
}

type clientsLoadedMsg struct {
	clients []*client.Client
	err     error
}

func loadClientsCmd(userID uuid.UUID, clients *client.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		list, err := clients.List(ctx, userID)
		if list == nil && err == nil {
			list = []*client.Client{}
		}

		return clientsLoadedMsg{clients: list, err: err}
	}
}
