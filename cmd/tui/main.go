package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/billable/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/billable/internal/client"
	clientStore "github.com/MrJamesThe3rd/billable/internal/client/store"
	"github.com/MrJamesThe3rd/billable/internal/config"
	"github.com/MrJamesThe3rd/billable/internal/database"
	"github.com/MrJamesThe3rd/billable/internal/export"
	"github.com/MrJamesThe3rd/billable/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/billable/internal/invoice/store"
	"github.com/MrJamesThe3rd/billable/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/billable/internal/matching/store"
	"github.com/MrJamesThe3rd/billable/internal/rate"
	"github.com/MrJamesThe3rd/billable/internal/rate/nbp"
	rateStore "github.com/MrJamesThe3rd/billable/internal/rate/store"
	"github.com/MrJamesThe3rd/billable/internal/registry"
	"github.com/MrJamesThe3rd/billable/internal/timeentry"
	entryStore "github.com/MrJamesThe3rd/billable/internal/timeentry/store"
)

type model struct {
	userID         uuid.UUID
	entryService   *timeentry.Service
	clientService  *client.Service
	invoiceService *invoice.Service
	rateService    *rate.Service
	exportService  *export.Service

	currentView View

	logView     view.LogTimeModel
	entriesView view.EntriesModel
	invoiceView view.InvoiceModel
	exportView  view.ExportModel
}

type View int

const (
	ViewMenu    View = 0
	ViewLog     View = 1
	ViewEntries View = 2
	ViewInvoice View = 3
	ViewExport  View = 4
)

func newModel(db *sql.DB, cfg *config.Config, userID uuid.UUID) model {
	clientSvc := client.NewService(clientStore.New(db), registry.New(cfg.Registry.BaseURL, cfg.Registry.Timeout))
	entrySvc := timeentry.NewService(entryStore.New(db))
	rateSvc := rate.NewService(rateStore.New(db), nbp.New(cfg.NBP.BaseURL, cfg.NBP.Timeout))
	matchSvc := matching.NewService(matchingStore.New(db))
	invoiceSvc := invoice.NewService(invoiceStore.New(db), clientSvc, entrySvc, rateSvc, matchSvc)
	exportSvc := export.NewService(entrySvc, clientSvc)

	return model{
		userID:         userID,
		entryService:   entrySvc,
		clientService:  clientSvc,
		invoiceService: invoiceSvc,
		rateService:    rateSvc,
		exportService:  exportSvc,
		currentView:    ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewLog
				m.logView = view.NewLogTimeModel(m.userID, m.entryService, m.clientService)

				return m, m.logView.Init()
			case "2":
				m.currentView = ViewEntries
				m.entriesView = view.NewEntriesModel(m.userID, m.entryService, m.clientService)

				return m, m.entriesView.Init()
			case "3":
				m.currentView = ViewInvoice
				m.invoiceView = view.NewInvoiceModel(m.userID, m.invoiceService, m.entryService, m.clientService, m.rateService)

				return m, m.invoiceView.Init()
			case "4":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.userID, m.exportService, m.entryService, m.clientService)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewLog:
		var newModel tea.Model
		newModel, cmd = m.logView.Update(msg)
		m.logView = newModel.(view.LogTimeModel)
	case ViewEntries:
		var newModel tea.Model
		newModel, cmd = m.entriesView.Update(msg)
		m.entriesView = newModel.(view.EntriesModel)
	case ViewInvoice:
		var newModel tea.Model
		newModel, cmd = m.invoiceView.Update(msg)
		m.invoiceView = newModel.(view.InvoiceModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Billable\n\n" +
				"1. Log Time\n" +
				"2. Time Entries\n" +
				"3. New Invoice\n" +
				"4. Export Time Entries\n\n" +
				"q. Quit",
		)
	case ViewLog:
		return m.logView.View()
	case ViewEntries:
		return m.entriesView.View()
	case ViewInvoice:
		return m.invoiceView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.TUI.UserID == "" {
		return errors.New("TUI_USER_ID must be set")
	}

	userID, err := uuid.Parse(cfg.TUI.UserID)
	if err != nil {
		return fmt.Errorf("parsing TUI_USER_ID: %w", err)
	}

	db, err := database.New(context.Background(), cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	p := tea.NewProgram(newModel(db, cfg, userID))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("tui failed", "error", err)
		os.Exit(1)
	}
}
