package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/billable/internal/timeentry"
)

// Timeframe is a preset or custom range of days.
type Timeframe int

const (
	TimeframeToday Timeframe = iota
	TimeframeThisWeek
	TimeframeLastWeek
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeThisYear
	TimeframeAll
	TimeframeCustom
)

var timeframeLabels = map[Timeframe]string{
	TimeframeToday:     "Today",
	TimeframeThisWeek:  "This Week",
	TimeframeLastWeek:  "Last Week",
	TimeframeThisMonth: "This Month",
	TimeframeLastMonth: "Last Month",
	TimeframeThisYear:  "This Year",
	TimeframeAll:       "All Time",
	TimeframeCustom:    "Custom Range",
}

func (t Timeframe) String() string {
	if s, ok := timeframeLabels[t]; ok {
		return s
	}

	return "Unknown"
}

// dateRange returns the days a preset covers relative to now. Weeks start on
// Monday.
func dateRange(tf Timeframe, now time.Time) (time.Time, time.Time) {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}

	monday := now.AddDate(0, 0, 1-weekday)

	switch tf {
	case TimeframeThisWeek:
		return monday, now
	case TimeframeLastWeek:
		return monday.AddDate(0, 0, -7), monday.AddDate(0, 0, -1)
	case TimeframeThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), now
	case TimeframeLastMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
		return first, first.AddDate(0, 1, -1)
	case TimeframeThisYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), now
	}

	return now, now
}

// Entry dates are stored as UTC midnights, so both ends are inclusive days.
func normalizeDateRange(start, end time.Time) (time.Time, time.Time) {
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
}

// TimeframeSelectedMsg is emitted when the user has selected a valid date range.
// Start and End are zero values when All is true.
type TimeframeSelectedMsg struct {
	Start time.Time
	End   time.Time
	All   bool
}

// Filter narrows a time entry listing to the selected range.
func (msg TimeframeSelectedMsg) Filter() timeentry.ListFilter {
	if msg.All {
		return timeentry.ListFilter{}
	}

	return timeentry.ListFilter{StartDate: &msg.Start, EndDate: &msg.End}
}

type customRange struct {
	start string
	end   string
}

func (c customRange) parse() (time.Time, time.Time, error) {
	start, err := time.Parse(time.DateOnly, strings.TrimSpace(c.start))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid start date (YYYY-MM-DD)")
	}

	end, err := time.Parse(time.DateOnly, strings.TrimSpace(c.end))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid end date (YYYY-MM-DD)")
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("end date is before start date")
	}

	return start, end, nil
}

// TimeframePicker lets the user pick a preset range or type their own.
type TimeframePicker struct {
	selected Timeframe
	minFrame Timeframe

	custom *customRange
	form   *huh.Form
	err    error
}

// NewTimeframePicker offers presets from minFrame onwards.
func NewTimeframePicker(minFrame Timeframe) TimeframePicker {
	return TimeframePicker{selected: minFrame, minFrame: minFrame}
}

func (m TimeframePicker) Init() tea.Cmd {
	return nil
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if m.form != nil {
		return m.updateCustom(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyUp:
		if m.selected > m.minFrame {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		return m.choose(time.Now())
	}

	return m, nil
}

func (m TimeframePicker) choose(now time.Time) (TimeframePicker, tea.Cmd) {
	switch m.selected {
	case TimeframeCustom:
		m.custom = &customRange{}
		m.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Start date").Placeholder("YYYY-MM-DD").Value(&m.custom.start),
				huh.NewInput().Title("End date").Placeholder("YYYY-MM-DD").Value(&m.custom.end),
			),
		).WithWidth(30).WithShowHelp(false)

		return m, m.form.Init()
	case TimeframeAll:
		return m, selectedCmd(TimeframeSelectedMsg{All: true})
	}

	start, end := normalizeDateRange(dateRange(m.selected, now))

	return m, selectedCmd(TimeframeSelectedMsg{Start: start, End: end})
}

func (m TimeframePicker) updateCustom(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.Reset()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	start, end, err := m.custom.parse()
	if err != nil {
		m.err = err
		return m.choose(time.Now())
	}

	m.err = nil
	start, end = normalizeDateRange(start, end)

	return m, selectedCmd(TimeframeSelectedMsg{Start: start, End: end})
}

func selectedCmd(msg TimeframeSelectedMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errorStyle.Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.form != nil {
		return "Enter Custom Range:\n\n" + m.form.View() + "\n\n(Enter to confirm, Esc to back)" + errStr
	}

	var sb strings.Builder

	sb.WriteString("Select Timeframe:\n\n")

	for tf := m.minFrame; tf <= TimeframeCustom; tf++ {
		cursor := " "
		if m.selected == tf {
			cursor = ">"
		}

		fmt.Fprintf(&sb, "%s %s\n", cursor, tf)
	}

	sb.WriteString("\n(Enter to select, Esc to back)")

	return sb.String() + errStr
}

// IsSelecting reports whether the preset list, not the custom form, is shown.
func (m TimeframePicker) IsSelecting() bool {
	return m.form == nil
}

// Reset returns the picker to the preset list.
func (m *TimeframePicker) Reset() {
	m.selected = m.minFrame
	m.custom = nil
	m.form = nil
	m.err = nil
}
