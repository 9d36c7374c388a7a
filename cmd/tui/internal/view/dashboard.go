package view

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/prestamos/internal/analytics"
	"github.com/MrJamesThe3rd/prestamos/internal/collections"
	"github.com/MrJamesThe3rd/prestamos/internal/loan"
	"github.com/MrJamesThe3rd/prestamos/internal/rates"
)

const projectionMonths = 3

// DashboardModel summarises delinquency metrics, the loan size distribution
// and projected income.
type DashboardModel struct {
	collections *collections.Service
	analytics   *analytics.Service

	metrics      collections.Metrics
	distribution []analytics.BucketCount
	projection   []analytics.MonthlyProjection
	noRate       bool

	loaded bool
	err    error
}

func NewDashboardModel(collectionsSvc *collections.Service, analyticsSvc *analytics.Service) DashboardModel {
	return DashboardModel{
		collections: collectionsSvc,
		analytics:   analyticsSvc,
	}
}

func (m DashboardModel) Title() string     { return "Resumen" }
func (m DashboardModel) ShortHelp() string { return "Esc: back | r: refresh" }

func (m DashboardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDashboardMsg:
		m.loaded = true
		m.err = msg.err
		if msg.err == nil {
			m.metrics = msg.metrics
			m.distribution = msg.distribution
			m.projection = msg.projection
			m.noRate = msg.noRate
		}

		return m, nil

	case RefreshMsg:
		return m, m.loadCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			return m, m.loadCmd()
		}
	}

	return m, nil
}

func (m DashboardModel) View() string {
	if !m.loaded {
		return lipgloss.NewStyle().Padding(2).Render("Loading dashboard...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	panel := lipgloss.NewStyle().
		Padding(0, 2).
		MarginRight(1).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63"))

	return lipgloss.NewStyle().Padding(1).Render(lipgloss.JoinHorizontal(lipgloss.Top,
		panel.Render(m.metricsView()),
		panel.Render(m.distributionView()),
		panel.Render(m.projectionView()),
	))
}

func (m DashboardModel) metricsView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Morosidad"))
	b.WriteString("\n")

	counts := []struct {
		kind  collections.Kind
		count int
	}{
		{collections.KindCurrent, m.metrics.Current},
		{collections.KindDueSoon, m.metrics.DueSoon},
		{collections.KindOverdue, m.metrics.Overdue},
		{collections.KindInDefault, m.metrics.InDefault},
	}

	fmt.Fprintf(&b, "%-12s %4d\n", "Activos", m.metrics.Total)

	for _, c := range counts {
		label := lipgloss.NewStyle().Foreground(kindColours[string(c.kind)]).Render(fmt.Sprintf("%-12s", c.kind.Label()))
		fmt.Fprintf(&b, "%s %4d\n", label, c.count)
	}

	fmt.Fprintf(&b, "\nTasa de morosidad: %s\n", activeStyle(fmt.Sprintf("%.1f%%", m.metrics.DelinquencyRate)))

	currencies := make([]loan.Currency, 0, len(m.metrics.ByCurrency))
	for cur := range m.metrics.ByCurrency {
		currencies = append(currencies, cur)
	}

	slices.Sort(currencies)

	for _, cur := range currencies {
		a := m.metrics.ByCurrency[cur]
		fmt.Fprintf(&b, "\n%s\n", cur)
		fmt.Fprintf(&b, "  Saldo    %s\n", FormatMoney(a.Outstanding, cur))
		fmt.Fprintf(&b, "  Vencido  %s\n", FormatMoney(a.Overdue, cur))
		fmt.Fprintf(&b, "  En mora  %s\n", FormatMoney(a.InDefault, cur))
	}

	return b.String()
}

func (m DashboardModel) distributionView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Distribución (USD)"))
	b.WriteString("\n")

	if m.noRate {
		b.WriteString(faintStyle.Render("Sin tasa de cambio registrada"))
		return b.String()
	}

	for _, bucket := range m.distribution {
		fmt.Fprintf(&b, "%-10s %4d  %s\n", bucket.Label, bucket.Count, FormatMoney(bucket.Amount, loan.CurrencyUSD))
	}

	return b.String()
}

func (m DashboardModel) projectionView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Ingresos proyectados"))
	b.WriteString("\n")

	for _, p := range m.projection {
		fmt.Fprintf(&b, "%s  %s  %s\n",
			p.Month.Format("2006-01"),
			FormatMoney(p.USD, loan.CurrencyUSD),
			FormatMoney(p.VES, loan.CurrencyVES),
		)
	}

	return b.String()
}

type loadDashboardMsg struct {
	metrics      collections.Metrics
	distribution []analytics.BucketCount
	projection   []analytics.MonthlyProjection
	noRate       bool
	err          error
}

func (m DashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		metrics, err := m.collections.Metrics(ctx, m.collections.Today())
		if err != nil {
			return loadDashboardMsg{err: err}
		}

		projection, err := m.analytics.Projection(ctx, projectionMonths)
		if err != nil {
			return loadDashboardMsg{err: err}
		}

		msg := loadDashboardMsg{metrics: metrics, projection: projection}

		msg.distribution, err = m.analytics.Distribution(ctx)
		switch {
		case errors.Is(err, rates.ErrNotFound):
			msg.noRate = true
		case err != nil:
			return loadDashboardMsg{err: err}
		}

		return msg
	}
}
