package view

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/prestamos/internal/rates"
)

// RateModel records a new VES per USD exchange rate.
type RateModel struct {
	svc *rates.Service

	form    *huh.Form
	current *rates.ExchangeRate
	saved   *rates.ExchangeRate
	done    bool
	err     error

	rate   string
	source string
}

func NewRateModel(svc *rates.Service) RateModel {
	return RateModel{svc: svc}
}

func (m RateModel) Title() string     { return "Tasa de cambio" }
func (m RateModel) ShortHelp() string { return "Navigate form | Esc: back" }

func (m RateModel) Init() tea.Cmd {
	return m.loadCurrentCmd()
}

func (m RateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case currentRateMsg:
		if msg.err != nil && !errors.Is(msg.err, rates.ErrNotFound) {
			m.err = msg.err
		}

		m.current = msg.rate

		return m.startForm()

	case rateSavedMsg:
		m.done = true
		m.saved = msg.rate
		m.err = msg.err

		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	if m.done {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEnter {
			return m, Back
		}

		return m, nil
	}

	if m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		return m, Back
	case huh.StateCompleted:
		return m, m.saveCmd()
	}

	return m, cmd
}

func (m RateModel) startForm() (tea.Model, tea.Cmd) {
	m.rate = ""
	m.source = "BCV"

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("rate").
				Title("Bs por USD").
				Value(&m.rate).
				Validate(validateAmount),

			huh.NewInput().
				Key("source").
				Title("Fuente").
				Value(&m.source),
		),
	).WithWidth(40).WithShowHelp(false)

	return m, m.form.Init()
}

func (m RateModel) View() string {
	style := lipgloss.NewStyle().Padding(1, 2)

	if m.done {
		if m.err != nil {
			return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + faintStyle.Render("esc: back"))
		}

		return style.Render(fmt.Sprintf("Tasa registrada: %s Bs/USD (%s)\n\n%s",
			m.saved.Rate.String(), m.saved.Source, faintStyle.Render("enter: back")))
	}

	if m.form == nil {
		return style.Render("Loading current rate...")
	}

	current := faintStyle.Render("Sin tasa registrada")
	if m.current != nil {
		current = fmt.Sprintf("Actual: %s Bs/USD desde %s", activeStyle(m.current.Rate.String()), FormatDate(m.current.EffectiveAt))
	}

	body := titleStyle.Render(m.Title()) + "\n" + current + "\n\n" + m.form.View()
	if m.err != nil {
		body = errorStyle.Render(m.err.Error()) + "\n" + body
	}

	return style.Render(body)
}

type currentRateMsg struct {
	rate *rates.ExchangeRate
	err  error
}

func (m RateModel) loadCurrentCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		r, err := m.svc.Current(ctx)

		return currentRateMsg{rate: r, err: err}
	}
}

type rateSavedMsg struct {
	rate *rates.ExchangeRate
	err  error
}

func (m RateModel) saveCmd() tea.Cmd {
	rate, err := ParseAmount(m.form.GetString("rate"))
	if err != nil {
		return func() tea.Msg { return rateSavedMsg{err: err} }
	}

	source := strings.TrimSpace(m.form.GetString("source"))

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		r, err := m.svc.Record(ctx, rates.RecordParams{Rate: rate, Source: source})

		return rateSavedMsg{rate: r, err: err}
	}
}
