// Package report renders transaction exports.
package report

import (
	"fmt"
	"io"

	"github.com/rongwang/fintrack-server/internal/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding exported transactions
const SheetName = "Transactions"

// ContentType of the generated workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{"Date", "Type", "Category", "Wallet", "Amount", "Description"}

// WriteTransactions renders txns as an XLSX workbook followed by income,
// expense and net totals.
func WriteTransactions(w io.Writer, txns []models.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return err
		}
	}

	income, expense := decimal.Zero, decimal.Zero
	for idx, t := range txns {
		row := idx + 2
		category := ""
		if t.CategoryName != nil {
			category = *t.CategoryName
		}
		wallet := ""
		if t.WalletName != nil {
			wallet = *t.WalletName
		}
		description := ""
		if t.Description != nil {
			description = *t.Description
		}

		values := []interface{}{t.Date.String(), t.Type, category, wallet, t.Amount.InexactFloat64(), description}
		if err := f.SetSheetRow(SheetName, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}

		if t.Type == models.TypeIncome {
			income = income.Add(t.Amount)
		} else {
			expense = expense.Add(t.Amount)
		}
	}

	totalsRow := len(txns) + 3
	totals := []struct {
		label string
		value decimal.Decimal
	}{
		{"Total income", income},
		{"Total expense", expense},
		{"Net", income.Sub(expense)},
	}
	for i, tot := range totals {
		row := totalsRow + i
		if err := f.SetCellValue(SheetName, fmt.Sprintf("D%d", row), tot.label); err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, fmt.Sprintf("E%d", row), tot.value.InexactFloat64()); err != nil {
			return err
		}
	}

	f.SetColWidth(SheetName, "A", "A", 12)
	f.SetColWidth(SheetName, "B", "B", 10)
	f.SetColWidth(SheetName, "C", "D", 18)
	f.SetColWidth(SheetName, "E", "E", 14)
	f.SetColWidth(SheetName, "F", "F", 40)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
