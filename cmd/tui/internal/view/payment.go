package view

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/prestamos/internal/loan"
	"github.com/MrJamesThe3rd/prestamos/internal/payment"
)

type paymentState int

const (
	paymentStateLoading paymentState = iota
	paymentStateForm
	paymentStateDone
)

// PaymentModel registers a single payment against an active loan.
type PaymentModel struct {
	loans    *loan.Service
	payments *payment.Service
	today    time.Time

	state  paymentState
	form   *huh.Form
	active []*loan.Loan
	result *payment.Payment
	err    error

	// Form defaults; submitted values are read back from the form by key.
	loanID    string
	amount    string
	currency  string
	rate      string
	date      string
	reference string
}

func NewPaymentModel(loans *loan.Service, payments *payment.Service, today time.Time) PaymentModel {
	return PaymentModel{
		loans:    loans,
		payments: payments,
		today:    today,
	}
}

func (m PaymentModel) Title() string { return "Registrar pago" }
func (m PaymentModel) ShortHelp() string {
	if m.state == paymentStateForm {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | n: new payment"
}

func (m PaymentModel) Init() tea.Cmd {
	return m.loadLoansCmd()
}

func (m PaymentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadActiveLoansMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = paymentStateDone

			return m, nil
		}

		m.active = msg.loans

		return m.startForm()

	case paymentSavedMsg:
		m.state = paymentStateDone
		m.result = msg.payment
		m.err = msg.err

		return m, nil
	}

	switch m.state {
	case paymentStateForm:
		return m.updateForm(msg)
	case paymentStateDone:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc", "enter":
				return m, Back
			case "n":
				m.state = paymentStateLoading
				return m, m.loadLoansCmd()
			}
		}
	}

	return m, nil
}

func (m PaymentModel) startForm() (tea.Model, tea.Cmd) {
	if len(m.active) == 0 {
		m.state = paymentStateDone
		m.err = fmt.Errorf("no active loans")

		return m, nil
	}

	options := make([]huh.Option[string], 0, len(m.active))
	for _, l := range m.active {
		label := fmt.Sprintf("%s (saldo %s)", l.ClientName, FormatMoney(l.OutstandingBalance, l.Currency))
		options = append(options, huh.NewOption(label, l.ID.String()))
	}

	m.loanID = m.active[0].ID.String()
	m.amount = ""
	m.currency = string(m.active[0].Currency)
	m.rate = ""
	m.date = FormatDate(m.today)
	m.reference = ""
	m.result = nil
	m.err = nil

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("loan").
				Title("Préstamo").
				Options(options...).
				Value(&m.loanID),

			huh.NewInput().
				Key("amount").
				Title("Monto").
				Value(&m.amount).
				Validate(validateAmount),

			huh.NewSelect[string]().
				Key("currency").
				Title("Moneda").
				Options(
					huh.NewOption("USD", string(loan.CurrencyUSD)),
					huh.NewOption("Bs", string(loan.CurrencyVES)),
				).
				Value(&m.currency),

			huh.NewInput().
				Key("rate").
				Title("Tasa (Bs por USD)").
				Description("Required when paying in the other currency").
				Value(&m.rate).
				Validate(validateOptionalAmount),

			huh.NewInput().
				Key("date").
				Title("Fecha").
				Placeholder("YYYY-MM-DD").
				Value(&m.date).
				Validate(validateDate),

			huh.NewInput().
				Key("reference").
				Title("Referencia").
				Value(&m.reference),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = paymentStateForm

	return m, m.form.Init()
}

func (m PaymentModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
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

func (m PaymentModel) View() string {
	style := lipgloss.NewStyle().Padding(1, 2)

	switch m.state {
	case paymentStateLoading:
		return style.Render("Loading loans...")
	case paymentStateForm:
		return style.Render(titleStyle.Render(m.Title()) + "\n" + m.form.View())
	}

	if m.err != nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + faintStyle.Render("n: try again | esc: back"))
	}

	p := m.result

	return style.Render(fmt.Sprintf(
		"Pago registrado para %s\n\nMonto: %s\nAbonado: %s\n\n%s",
		p.ClientName,
		FormatMoney(p.Amount, p.Currency),
		p.AppliedAmount.StringFixed(2),
		faintStyle.Render("n: new payment | esc: back"),
	))
}

type loadActiveLoansMsg struct {
	loans []*loan.Loan
	err   error
}

func (m PaymentModel) loadLoansCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		loans, err := m.loans.List(ctx, loan.ListFilter{Status: new(loan.StatusActive)})

		return loadActiveLoansMsg{loans: loans, err: err}
	}
}

type paymentSavedMsg struct {
	payment *payment.Payment
	err     error
}

func (m PaymentModel) saveCmd() tea.Cmd {
	params, err := m.params()
	if err != nil {
		return func() tea.Msg { return paymentSavedMsg{err: err} }
	}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		p, err := m.payments.Register(ctx, params)

		return paymentSavedMsg{payment: p, err: err}
	}
}

func (m PaymentModel) params() (payment.CreateParams, error) {
	loanID, err := uuid.Parse(m.form.GetString("loan"))
	if err != nil {
		return payment.CreateParams{}, fmt.Errorf("invalid loan: %w", err)
	}

	amount, err := ParseAmount(m.form.GetString("amount"))
	if err != nil {
		return payment.CreateParams{}, fmt.Errorf("amount: %w", err)
	}

	rate, err := ParseOptionalAmount(m.form.GetString("rate"))
	if err != nil {
		return payment.CreateParams{}, fmt.Errorf("rate: %w", err)
	}

	date, err := time.Parse(time.DateOnly, strings.TrimSpace(m.form.GetString("date")))
	if err != nil {
		return payment.CreateParams{}, fmt.Errorf("date: %w", err)
	}

	return payment.CreateParams{
		LoanID:       loanID,
		Amount:       amount,
		Currency:     loan.Currency(m.form.GetString("currency")),
		ExchangeRate: rate,
		PaymentDate:  date,
		Reference:    strings.TrimSpace(m.form.GetString("reference")),
	}, nil
}
