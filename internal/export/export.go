// Package export renders a group's settlement as XLSX or PDF.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/service"
)

// Sheet names in the XLSX export.
const (
	SheetSummary   = "summary"
	SheetBalances  = "balances"
	SheetTransfers = "transfers"
	SheetRecorded  = "recorded"
)

// BuildSettlementXLSX renders balances, transfers and recorded settlements
// as a workbook. Amounts are written as numbers in major units.
func BuildSettlementXLSX(summary *service.Summary, symbol string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetBalances, SheetTransfers, SheetRecorded} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	group := summary.Group
	result := summary.Result
	rows := [][]any{
		{"Settlement", group.Name},
		{"Kind", group.Kind},
		{"Members", len(group.Members)},
		{"Currency", symbol},
		{"Total spent", major(result.TotalSpent)},
		{"Per person", major(result.PerPersonAvg)},
		{"Transfers", len(result.Transfers)},
	}
	if err := writeRows(f, SheetSummary, rows); err != nil {
		return nil, err
	}

	rows = [][]any{{"Member", "Paid", "Owes", "Balance"}}
	for _, b := range result.Balances {
		rows = append(rows, []any{b.Name, major(b.Paid), major(b.Owes), major(b.Balance)})
	}
	if err := writeRows(f, SheetBalances, rows); err != nil {
		return nil, err
	}

	rows = [][]any{{"From", "To", "Amount"}}
	for _, t := range result.Transfers {
		rows = append(rows, []any{t.FromName, t.ToName, major(t.Amount)})
	}
	if err := writeRows(f, SheetTransfers, rows); err != nil {
		return nil, err
	}

	rows = [][]any{{"Date", "From", "To", "Amount", "Note"}}
	for _, s := range summary.Recorded {
		rows = append(rows, []any{
			time.Unix(s.CreatedAt, 0).UTC().Format("2006-01-02"),
			group.MemberName(s.FromUserID),
			group.MemberName(s.ToUserID),
			major(s.Amount),
			s.Note,
		})
	}
	if err := writeRows(f, SheetRecorded, rows); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// major converts minor units to a float for spreadsheet cells.
func major(minor int64) float64 {
	f, _ := money.Float(minor)
	return f
}

// BuildSettlementPDF renders the settlement as a one-table-per-section PDF.
// The core fonts cannot draw most currency symbols, so amounts are plain
// decimals.
func BuildSettlementPDF(summary *service.Summary) ([]byte, error) {
	group := summary.Group
	result := summary.Result

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, tr("Settlement: "+group.Name))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Members: %d", len(group.Members)))
	pdf.Ln(5)
	pdf.Cell(0, 6, "Total spent: "+money.Decimal(result.TotalSpent))
	pdf.Ln(5)
	pdf.Cell(0, 6, "Per person: "+money.Decimal(result.PerPersonAvg))
	pdf.Ln(8)

	table(pdf, tr, "Balances", []float64{60, 40, 40, 40}, []string{"Member", "Paid", "Owes", "Balance"},
		func(row func(...string)) {
			for _, b := range result.Balances {
				row(b.Name, money.Decimal(b.Paid), money.Decimal(b.Owes), money.Decimal(b.Balance))
			}
		})

	table(pdf, tr, "Suggested transfers", []float64{60, 60, 40}, []string{"From", "To", "Amount"},
		func(row func(...string)) {
			for _, t := range result.Transfers {
				row(t.FromName, t.ToName, money.Decimal(t.Amount))
			}
		})

	if len(summary.Recorded) > 0 {
		table(pdf, tr, "Recorded settlements", []float64{30, 50, 50, 40}, []string{"Date", "From", "To", "Amount"},
			func(row func(...string)) {
				for _, s := range summary.Recorded {
					row(time.Unix(s.CreatedAt, 0).UTC().Format("2006-01-02"),
						group.MemberName(s.FromUserID), group.MemberName(s.ToUserID), money.Decimal(s.Amount))
				}
			})
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// table draws a titled table. The first column is left aligned, the rest
// (amounts) right aligned.
func table(pdf *gofpdf.Fpdf, tr func(string) string, title string, widths []float64, header []string, body func(row func(...string))) {
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, title)
	pdf.Ln(7)

	pdf.SetFont("Arial", "B", 10)
	for i, h := range header {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	body(func(cells ...string) {
		for i, c := range cells {
			align := "R"
			if i == 0 || header[i] == "From" || header[i] == "To" {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, tr(c), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	})
	pdf.Ln(4)
}
