package view

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/prestamos/internal/collections"
)

// PortfolioModel lists every collectible loan, most urgent first.
type PortfolioModel struct {
	svc *collections.Service

	table   table.Model
	entries []collections.Entry
	asOf    time.Time

	kindFilterIdx int

	loading bool
	err     error
}

var portfolioFilters = []collections.Kind{
	"",
	collections.KindInDefault,
	collections.KindOverdue,
	collections.KindDueSoon,
	collections.KindCurrent,
}

func NewPortfolioModel(svc *collections.Service) PortfolioModel {
	columns := []table.Column{
		{Title: "Cliente", Width: 22},
		{Title: "Estado", Width: 12},
		{Title: "Atraso", Width: 7},
		{Title: "Vence", Width: 11},
		{Title: "Cuota", Width: 14},
		{Title: "Saldo", Width: 14},
	}

	return PortfolioModel{
		svc:     svc,
		table:   newTable(columns),
		loading: true,
	}
}

func (m PortfolioModel) Title() string { return "Cartera" }
func (m PortfolioModel) ShortHelp() string {
	return "Esc: back | f: state filter | r: refresh"
}

func (m PortfolioModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m PortfolioModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadPortfolioMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.entries = msg.entries
			m.asOf = msg.asOf
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
		case "f":
			m.kindFilterIdx = (m.kindFilterIdx + 1) % len(portfolioFilters)
			m.refreshTable()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m PortfolioModel) View() string {
	if m.loading && m.entries == nil {
		return lipgloss.NewStyle().Padding(2).Render("Loading portfolio...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	filter := "Todos"
	if k := portfolioFilters[m.kindFilterIdx]; k != "" {
		filter = k.Label()
	}

	header := fmt.Sprintf("Corte: %s | [f] Estado: %s", FormatDate(m.asOf), activeStyle(filter))

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	))
}

func (m *PortfolioModel) refreshTable() {
	want := portfolioFilters[m.kindFilterIdx]

	rows := make([]table.Row, 0, len(m.entries))
	for _, e := range m.entries {
		if want != "" && e.State.Kind != want {
			continue
		}

		rows = append(rows, table.Row{
			e.Loan.ClientName,
			e.State.Kind.Label(),
			strconv.Itoa(e.State.DaysOverdue),
			formatOptionalDate(e.State.NextDueDate),
			FormatMoney(e.Loan.InstallmentAmount, e.Loan.Currency),
			FormatMoney(e.Loan.OutstandingBalance, e.Loan.Currency),
		})
	}

	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

type loadPortfolioMsg struct {
	entries []collections.Entry
	asOf    time.Time
	err     error
}

func (m PortfolioModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		asOf := m.svc.Today()
		entries, err := m.svc.Portfolio(ctx, asOf)

		return loadPortfolioMsg{entries: entries, asOf: asOf, err: err}
	}
}
