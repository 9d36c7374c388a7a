// Package report renders collections snapshots as Excel workbooks.
package report

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/prestamos/internal/collections"
	"github.com/MrJamesThe3rd/prestamos/internal/loan"
)

const (
	SheetPortfolio = "Cartera"
	SheetAlerts    = "Alertas"
	SheetSummary   = "Resumen"
)

// SnapshotSource is satisfied by *collections.Service.
type SnapshotSource interface {
	Snapshot(ctx context.Context, asOf time.Time) (*collections.Snapshot, error)
}

type Service struct {
	snapshots SnapshotSource
}

func NewService(snapshots SnapshotSource) *Service {
	return &Service{snapshots: snapshots}
}

// Collections writes the collections workbook for asOf to w.
func (s *Service) Collections(ctx context.Context, asOf time.Time, w io.Writer) error {
	snap, err := s.snapshots.Snapshot(ctx, asOf)
	if err != nil {
		return fmt.Errorf("loading snapshot: %w", err)
	}

	return Write(w, snap)
}

// Filename is the download name of the workbook for a cut-off date.
func Filename(asOf time.Time) string {
	return fmt.Sprintf("cobranza_%s.xlsx", asOf.Format("20060102"))
}

// Write renders snap as an XLSX workbook with one sheet each for the
// portfolio, the alerts and the summary metrics.
func Write(w io.Writer, snap *collections.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetPortfolio); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	for _, name := range []string{SheetAlerts, SheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	writers := []struct {
		sheet string
		rows  [][]any
	}{
		{SheetPortfolio, portfolioRows(snap.Portfolio)},
		{SheetAlerts, alertRows(snap.Alerts)},
		{SheetSummary, summaryRows(snap)},
	}

	for _, sw := range writers {
		if err := writeSheet(f, sw.sheet, sw.rows, header); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}

	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}

	if err := f.SetColWidth(sheet, "A", "J", 18); err != nil {
		return fmt.Errorf("sizing %s columns: %w", sheet, err)
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func portfolioRows(entries []collections.Entry) [][]any {
	rows := [][]any{{
		"Cliente", "Préstamo", "Estado", "Días de atraso", "Próximo vencimiento",
		"Cuota", "Saldo", "Moneda", "Estatus",
	}}

	for _, e := range entries {
		rows = append(rows, []any{
			e.Loan.ClientName,
			e.Loan.ID.String(),
			e.State.Kind.Label(),
			e.State.DaysOverdue,
			dateCell(e.State.NextDueDate),
			money(e.Loan.InstallmentAmount),
			money(e.Loan.OutstandingBalance),
			string(e.Loan.Currency),
			string(e.Loan.Status),
		})
	}

	return rows
}

func alertRows(alerts []collections.Alert) [][]any {
	rows := [][]any{{"Urgencia", "Severidad", "Título", "Mensaje", "Cliente", "Préstamo"}}

	for _, a := range alerts {
		rows = append(rows, []any{
			string(a.Urgency),
			string(a.Severity),
			a.Title,
			a.Message,
			a.ClientName,
			a.LoanID.String(),
		})
	}

	return rows
}

func summaryRows(snap *collections.Snapshot) [][]any {
	m := snap.Metrics

	rows := [][]any{
		{"Indicador", "Valor"},
		{"Fecha de corte", snap.AsOf.Format(time.DateOnly)},
		{"Préstamos activos", m.Total},
		{"Al día", m.Current},
		{"Por vencer", m.DueSoon},
		{"Vencidos", m.Overdue},
		{"En mora", m.InDefault},
		{"Saldo pendiente", money(m.OutstandingTotal)},
		{"Monto vencido", money(m.OverdueAmount)},
		{"Monto en mora", money(m.InDefaultAmount)},
		{"Tasa de morosidad (%)", m.DelinquencyRate},
	}

	currencies := make([]loan.Currency, 0, len(m.ByCurrency))
	for c := range m.ByCurrency {
		currencies = append(currencies, c)
	}

	slices.Sort(currencies)

	for _, c := range currencies {
		a := m.ByCurrency[c]
		rows = append(rows,
			[]any{"Saldo pendiente " + string(c), money(a.Outstanding)},
			[]any{"Monto vencido " + string(c), money(a.Overdue)},
			[]any{"Monto en mora " + string(c), money(a.InDefault)},
		)
	}

	return rows
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func dateCell(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format(time.DateOnly)
}
