package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/billable/internal/client"
	"github.com/MrJamesThe3rd/billable/internal/currency"
	"github.com/MrJamesThe3rd/billable/internal/hours"
	"github.com/MrJamesThe3rd/billable/internal/invoice"
	"github.com/MrJamesThe3rd/billable/internal/payterm"
	"github.com/MrJamesThe3rd/billable/internal/rate"
	"github.com/MrJamesThe3rd/billable/internal/timeentry"
)

type invoiceState int

const (
	invoiceStateLoading invoiceState = iota
	invoiceStateSetup
	invoiceStateEntries
	invoiceStateRate
	invoiceStateSaving
	invoiceStateDone
)

var vatRates = []string{"23", "8", "5", "0"}

type invoiceSetup struct {
	clientID uuid.UUID
	vatRate  string
}

// InvoiceModel builds an invoice draft from unbilled time entries with a live
// preview of its totals.
type InvoiceModel struct {
	CommonModel
	userID   uuid.UUID
	invoices *invoice.Service
	entries  *timeentry.Service
	clients  *client.Service
	rates    *rate.Service

	state      invoiceState
	clientList []*client.Client
	form       *huh.Form
	setup      *invoiceSetup

	client   *client.Client
	vatRate  decimal.Decimal
	rate     *rate.Resolution
	rateErr  error
	// manualRate overrides the looked-up rate and is sent as a custom rate.
	manualRate *decimal.Decimal
	rateInput  *string
	skipped  int
	table    table.Model
	unbilled []*timeentry.Entry
	picked   map[uuid.UUID]bool

	draft      *invoice.Draft
	summary    invoice.Summary
	previewErr error

	created *invoice.Invoice
	err     error
}

func NewInvoiceModel(userID uuid.UUID, invoices *invoice.Service, entries *timeentry.Service, clients *client.Service, rates *rate.Service) InvoiceModel {
	return InvoiceModel{
		userID:   userID,
		invoices: invoices,
		entries:  entries,
		clients:  clients,
		rates:    rates,
		state:    invoiceStateLoading,
		table: newTable([]table.Column{
			{Title: " ", Width: 3},
			{Title: "Date", Width: 12},
			{Title: "Hours", Width: 9},
			{Title: "Rate", Width: 12},
			{Title: "Description", Width: 40},
		}),
		draft: invoice.NewDraft(invoice.ModeTimeEntries),
	}
}

func (m InvoiceModel) Title() string { return "New Invoice" }

func (m InvoiceModel) ShortHelp() string {
	if m.state == invoiceStateEntries {
		if m.client != nil && m.client.Currency.IsForeign() {
			return "Space: toggle | a: toggle all | r: set rate | s: save draft | Esc: back"
		}

		return "Space: toggle | a: toggle all | s: save draft | Esc: back"
	}

	return "Esc: back"
}

func (m InvoiceModel) Init() tea.Cmd {
	return loadClientsCmd(m.userID, m.clients)
}

func (m InvoiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clientsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.clientList = msg.clients
		if len(m.clientList) == 0 {
			m.err = errors.New("add a client before drafting an invoice")
			return m, nil
		}

		return m.setupForm()

	case unbilledLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = invoiceStateDone

			return m, nil
		}

		m.unbilled = msg.entries
		m.skipped = msg.skipped
		m.rate = msg.rate
		m.rateErr = msg.rateErr
		m.manualRate = nil
		m.picked = make(map[uuid.UUID]bool, len(m.unbilled))

		for _, e := range m.unbilled {
			m.picked[e.ID] = true
		}

		m.state = invoiceStateEntries
		m.recompute()
		m.refreshTable()

		return m, nil

	case invoiceCreatedMsg:
		m.state = invoiceStateDone
		m.created = msg.invoice
		m.err = msg.err

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 14)
		return m, nil
	}

	switch m.state {
	case invoiceStateSetup:
		return m.updateSetup(msg)
	case invoiceStateEntries:
		return m.updateEntries(msg)
	case invoiceStateRate:
		return m.updateRate(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	return m, nil
}

func (m InvoiceModel) setupForm() (tea.Model, tea.Cmd) {
	m.setup = &invoiceSetup{clientID: m.clientList[0].ID, vatRate: vatRates[0]}

	options := make([]huh.Option[uuid.UUID], 0, len(m.clientList))
	for _, c := range m.clientList {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", c.Name, c.Currency), c.ID))
	}

	vat := make([]huh.Option[string], 0, len(vatRates))
	for _, r := range vatRates {
		vat = append(vat, huh.NewOption(r+"%", r))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[uuid.UUID]().
				Title("Client").
				Options(options...).
				Value(&m.setup.clientID),

			huh.NewSelect[string]().
				Title("VAT rate").
				Options(vat...).
				Value(&m.setup.vatRate),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = invoiceStateSetup

	return m, m.form.Init()
}

func (m InvoiceModel) updateSetup(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	for _, c := range m.clientList {
		if c.ID == m.setup.clientID {
			m.client = c
		}
	}

	m.vatRate = decimal.RequireFromString(m.setup.vatRate)
	m.state = invoiceStateLoading

	return m, m.loadUnbilledCmd(time.Now())
}

func (m InvoiceModel) updateEntries(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m.setupForm()
		case " ":
			if idx := m.table.Cursor(); idx >= 0 && idx < len(m.unbilled) {
				id := m.unbilled[idx].ID
				m.picked[id] = !m.picked[id]
			}

			m.recompute()
			m.refreshTable()

			return m, nil
		case "a":
			all := len(m.selected()) < len(m.unbilled)
			for _, e := range m.unbilled {
				m.picked[e.ID] = all
			}

			m.recompute()
			m.refreshTable()

			return m, nil
		case "r":
			if !m.client.Currency.IsForeign() {
				return m, nil
			}

			return m.rateForm()
		case "s":
			if len(m.draft.Items()) == 0 || m.previewErr != nil {
				return m, nil
			}

			// Without a looked-up rate the user has to type one in.
			if m.client.Currency.IsForeign() && m.exchangeRate() == nil {
				return m.rateForm()
			}

			m.state = invoiceStateSaving

			return m, m.saveCmd(time.Now())
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InvoiceModel) rateForm() (tea.Model, tea.Cmd) {
	value := ""
	if r := m.exchangeRate(); r != nil {
		value = r.String()
	}

	m.rateInput = &value

	title := fmt.Sprintf("%s/PLN exchange rate", m.client.Currency)
	if m.rateErr != nil {
		title += " (lookup failed)"
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Placeholder("4.2954").
				Value(m.rateInput).
				Validate(func(s string) error {
					_, err := parseRate(s)
					return err
				}),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = invoiceStateRate

	return m, m.form.Init()
}

func (m InvoiceModel) updateRate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = invoiceStateEntries
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	r, err := parseRate(*m.rateInput)
	if err != nil {
		return m.rateForm()
	}

	m.setManualRate(r)

	return m, nil
}

func (m *InvoiceModel) setManualRate(r decimal.Decimal) {
	m.manualRate = &r
	m.state = invoiceStateEntries
	m.recompute()
}

// parseRate accepts a positive rate written with a dot or a comma.
func parseRate(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, errors.New("rate is required")
	}

	r, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.New("rate must be a number")
	}

	if !r.IsPositive() {
		return decimal.Zero, errors.New("rate must be greater than 0")
	}

	return r, nil
}

func (m InvoiceModel) selected() []*timeentry.Entry {
	var out []*timeentry.Entry

	for _, e := range m.unbilled {
		if m.picked[e.ID] {
			out = append(out, e)
		}
	}

	return out
}

func (m *InvoiceModel) exchangeRate() *decimal.Decimal {
	if m.manualRate != nil {
		return m.manualRate
	}

	if m.rate == nil {
		return nil
	}

	return &m.rate.Rate
}

// recompute rebuilds the draft items from the picked entries and refreshes the
// preview totals.
func (m *InvoiceModel) recompute() {
	m.previewErr = nil

	selected := m.selected()

	if err := invoice.CheckRates(selected, invoice.DescriptionKey); err != nil {
		m.previewErr = err
		m.draft.SetItems(nil)
	} else if items, err := invoice.FromTimeEntries(selected, invoice.DescriptionKey); err != nil {
		m.previewErr = err
		m.draft.SetItems(nil)
	} else {
		m.draft.SetItems(items)
	}

	m.summary = invoice.ComputeSummary(m.draft.Items(), m.vatRate, m.client.Currency, m.exchangeRate())
}

func (m *InvoiceModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.unbilled))

	for _, e := range m.unbilled {
		mark := "[ ]"
		if m.picked[e.ID] {
			mark = "[x]"
		}

		rows = append(rows, table.Row{
			mark,
			FormatDate(e.Date),
			hours.Format(e.Hours),
			amounts.Amount(e.Rate),
			e.Description,
		})
	}

	m.table.SetRows(rows)
}

func (m InvoiceModel) View() string {
	switch {
	case m.state == invoiceStateLoading && m.err == nil:
		return lipgloss.NewStyle().Padding(2).Render("Loading...")
	case m.err != nil:
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to back)")
	case m.state == invoiceStateSetup, m.state == invoiceStateRate:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case m.state == invoiceStateSaving:
		return lipgloss.NewStyle().Padding(2).Render("Saving draft...")
	case m.state == invoiceStateDone:
		return lipgloss.NewStyle().Padding(1).Render(
			successStyle.Render(fmt.Sprintf("Draft %s created.", m.created.Number)) + "\n\n" +
				m.summaryView(m.created.Summary(), m.created.Items, m.created.ExchangeRate) + "\n\n(Esc to back)",
		)
	}

	if len(m.unbilled) == 0 {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("%s has no unbilled time.\n\n(Esc to back)", m.client.Name))
	}

	header := fmt.Sprintf("%s | VAT %s%%", activeStyle(m.client.Name), m.vatRate)
	if m.skipped > 0 {
		header += lipgloss.NewStyle().Faint(true).Render(
			fmt.Sprintf(" | %d entries in other currencies hidden", m.skipped))
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	preview := m.summaryView(m.summary, m.draft.Items(), m.exchangeRate())
	if m.previewErr != nil {
		preview = errorStyle.Render(m.previewErr.Error())
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		lipgloss.JoinHorizontal(lipgloss.Top, tableView, panelStyle.Width(52).Render(preview)),
	)

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m InvoiceModel) summaryView(s invoice.Summary, items []invoice.LineItem, exchangeRate *decimal.Decimal) string {
	cur := m.client.Currency

	var sb strings.Builder

	sb.WriteString("Preview\n\n")

	for _, item := range items {
		fmt.Fprintf(&sb, "%d. %s  %s x %s\n", item.Position, item.Description, hours.Format(item.Quantity), amounts.Amount(item.UnitPrice))
	}

	fmt.Fprintf(&sb, "\nNet:   %s\n", FormatMoney(s.Net, cur))
	fmt.Fprintf(&sb, "VAT:   %s\n", FormatMoney(s.VAT, cur))
	fmt.Fprintf(&sb, "Gross: %s\n", FormatMoney(s.Gross, cur))

	if cur.IsForeign() {
		switch {
		case s.GrossBase != nil && exchangeRate != nil:
			label := "Rate:  "
			if m.manualRate != nil {
				label = "Rate*: "
			}

			fmt.Fprintf(&sb, "\n%s%s\n", label, amounts.Rate(*exchangeRate))
			fmt.Fprintf(&sb, "Gross: %s\n", FormatMoney(*s.GrossBase, currency.Base))
		case m.rateErr != nil:
			sb.WriteString("\n" + errorStyle.Render("Exchange rate unavailable: "+m.rateErr.Error()) + "\n")
			sb.WriteString("Press r to enter it by hand.\n")
		}
	}

	return sb.String()
}

type unbilledLoadedMsg struct {
	entries []*timeentry.Entry
	skipped int
	rate    *rate.Resolution
	rateErr error
	err     error
}

// loadUnbilledCmd fetches the client's unbilled entries in its currency and,
// for foreign currencies, the rate the invoice would be converted at.
func (m InvoiceModel) loadUnbilledCmd(now time.Time) tea.Cmd {
	c := m.client

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		entries, err := m.entries.List(ctx, m.userID, timeentry.ListFilter{ClientID: &c.ID, Invoiced: new(false)})
		if err != nil {
			return unbilledLoadedMsg{err: err}
		}

		msg := unbilledLoadedMsg{}

		for _, e := range entries {
			if e.Currency != c.Currency {
				msg.skipped++
				continue
			}

			msg.entries = append(msg.entries, e)
		}

		if c.Currency.IsForeign() {
			msg.rate, msg.rateErr = m.rates.Resolve(ctx, c.Currency, invoice.RateDate(issueDate(now)))
		}

		return msg
	}
}

type invoiceCreatedMsg struct {
	invoice *invoice.Invoice
	err     error
}

// saveParams describes the draft being previewed. A looked-up rate is left to
// the service, which reads it back from the rate cache.
func (m InvoiceModel) saveParams(now time.Time) invoice.DraftParams {
	ids := make([]uuid.UUID, 0, len(m.unbilled))
	for _, e := range m.selected() {
		ids = append(ids, e.ID)
	}

	return invoice.DraftParams{
		ClientID:     m.client.ID,
		Mode:         m.draft.Mode(),
		TimeEntryIDs: ids,
		IssueDate:    issueDate(now),
		PaymentTerm:  payterm.Default(),
		VATRate:      m.vatRate,
		Currency:     m.client.Currency,
		ExchangeRate: m.manualRate,
	}
}

func (m InvoiceModel) saveCmd(now time.Time) tea.Cmd {
	params := m.saveParams(now)

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		inv, err := m.invoices.Create(ctx, m.userID, params)

		return invoiceCreatedMsg{invoice: inv, err: err}
	}
}

func issueDate(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
