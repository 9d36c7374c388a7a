package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/prestamos/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/prestamos/internal/app"
	"github.com/MrJamesThe3rd/prestamos/internal/config"
)

type model struct {
	svc     *app.Services
	refresh time.Duration
	tracker *view.AlertTracker

	currentView View
	screen      view.View
}

type View int

const (
	ViewMenu      View = 0
	ViewPortfolio View = 1
	ViewAlerts    View = 2
	ViewDashboard View = 3
	ViewPayment   View = 4
	ViewRate      View = 5
)

type tickMsg time.Time

func initialModel(svc *app.Services, refresh time.Duration) model {
	return model{
		svc:         svc,
		refresh:     refresh,
		tracker:     view.NewAlertTracker(),
		currentView: ViewMenu,
	}
}

func (m model) tick() tea.Cmd {
	if m.refresh <= 0 {
		return nil
	}

	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd {
	return m.tick()
}

func (m model) open(v View) (tea.Model, tea.Cmd) {
	switch v {
	case ViewPortfolio:
		m.screen = view.NewPortfolioModel(m.svc.Collections)
	case ViewAlerts:
		m.screen = view.NewAlertsModel(m.svc.Collections, m.tracker)
	case ViewDashboard:
		m.screen = view.NewDashboardModel(m.svc.Collections, m.svc.Analytics)
	case ViewPayment:
		m.screen = view.NewPaymentModel(m.svc.Loans, m.svc.Payments, m.svc.Collections.Today())
	case ViewRate:
		m.screen = view.NewRateModel(m.svc.Rates)
	default:
		return m, nil
	}

	m.currentView = v

	return m, m.screen.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				return m.open(ViewPortfolio)
			case "2":
				return m.open(ViewAlerts)
			case "3":
				return m.open(ViewDashboard)
			case "4":
				return m.open(ViewPayment)
			case "5":
				return m.open(ViewRate)
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		m.screen = nil

		return m, nil
	case tickMsg:
		// Forms are left alone; only the read-only screens reload.
		switch m.currentView {
		case ViewPortfolio, ViewAlerts, ViewDashboard:
			next, cmd := m.screen.Update(view.RefreshMsg{})
			m.screen = next.(view.View)

			return m, tea.Batch(cmd, m.tick())
		}

		return m, m.tick()
	}

	if m.screen == nil {
		return m, nil
	}

	next, cmd := m.screen.Update(msg)
	m.screen = next.(view.View)

	return m, cmd
}

func (m model) View() string {
	if m.screen == nil {
		return lipgloss.NewStyle().Padding(2).Render(
			"Prestamos: cobranza\n\n" +
				"1. Cartera\n" +
				"2. Alertas\n" +
				"3. Resumen\n" +
				"4. Registrar pago\n" +
				"5. Tasa de cambio\n\n" +
				"q. Quit",
		)
	}

	footer := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(m.screen.Title() + " | " + m.screen.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, m.screen.View(), footer)
}

func main() {
	if err := run(); err != nil {
		slog.Error("tui stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	svc, err := app.New(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("starting services: %w", err)
	}
	defer svc.Close()

	p := tea.NewProgram(initialModel(svc, cfg.Collections.RefreshInterval), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}
