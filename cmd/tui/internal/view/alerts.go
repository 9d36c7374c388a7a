package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/prestamos/internal/collections"
)

// AlertTracker remembers which alerts were shown on the previous refresh.
// The first refresh is the baseline and marks nothing as new.
type AlertTracker struct {
	seen    map[string]struct{}
	started bool
}

func NewAlertTracker() *AlertTracker {
	return &AlertTracker{seen: make(map[string]struct{})}
}

// Mark reports, per alert, whether it was absent from the previous refresh.
func (t *AlertTracker) Mark(alerts []collections.Alert) []bool {
	fresh := make([]bool, len(alerts))
	next := make(map[string]struct{}, len(alerts))

	for i, a := range alerts {
		key := a.Key()
		if _, ok := t.seen[key]; !ok && t.started {
			fresh[i] = true
		}

		next[key] = struct{}{}
	}

	t.seen = next
	t.started = true

	return fresh
}

// AlertsModel shows the current collections alerts and flags the ones that
// appeared since the last refresh.
type AlertsModel struct {
	svc     *collections.Service
	tracker *AlertTracker

	table  table.Model
	alerts []collections.Alert
	fresh  []bool

	loading bool
	err     error
}

func NewAlertsModel(svc *collections.Service, tracker *AlertTracker) AlertsModel {
	columns := []table.Column{
		{Title: "", Width: 2},
		{Title: "Urgencia", Width: 9},
		{Title: "Cliente", Width: 20},
		{Title: "Título", Width: 22},
		{Title: "Mensaje", Width: 40},
	}

	return AlertsModel{
		svc:     svc,
		tracker: tracker,
		table:   newTable(columns),
		loading: true,
	}
}

func (m AlertsModel) Title() string     { return "Alertas" }
func (m AlertsModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m AlertsModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m AlertsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadAlertsMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.alerts = msg.alerts
			m.fresh = m.tracker.Mark(msg.alerts)
			m.refreshTable()
		}

		return m, nil

	case RefreshMsg:
		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m AlertsModel) View() string {
	if m.loading && m.alerts == nil {
		return lipgloss.NewStyle().Padding(2).Render("Loading alerts...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	newCount := 0
	for _, f := range m.fresh {
		if f {
			newCount++
		}
	}

	header := fmt.Sprintf("%d alertas", len(m.alerts))
	if newCount > 0 {
		header += " | " + activeStyle(fmt.Sprintf("%d nuevas", newCount))
	}

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	))
}

func (m *AlertsModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.alerts))
	for i, a := range m.alerts {
		marker := ""
		if m.fresh[i] {
			marker = "●"
		}

		rows = append(rows, table.Row{marker, string(a.Urgency), a.ClientName, a.Title, a.Message})
	}

	m.table.SetRows(rows)
}

type loadAlertsMsg struct {
	alerts []collections.Alert
	err    error
}

func (m AlertsModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		alerts, err := m.svc.Alerts(ctx, m.svc.Today())

		return loadAlertsMsg{alerts: alerts, err: err}
	}
}
