package report

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/txnbatch/internal/aggregate"
	"github.com/xuri/excelize/v2"
)

// WorkbookSheet is the name of the single sheet in a report workbook.
const WorkbookSheet = "Report"

// amountFormat is the built-in "0.00" number format.
const amountFormat = 2

// WriteWorkbook writes the aggregate as <source>.REPORT.xlsx into dir.
//
// LAYOUT:
//   | Day       | Amount (EUR) |
//   | Monday    | 12.50        |
//   | ...       | ...          |
//   | Total     | 15.50        |
//   |           |              |
//   | Processing time | 1.2ms  |
func WriteWorkbook(dir, sourceName string, agg *aggregate.Aggregate, elapsed time.Duration) (string, error) {
	path := filepath.Join(dir, WorkbookFileName(sourceName))

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), WorkbookSheet); err != nil {
		return "", fmt.Errorf("failed to name sheet: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{NumFmt: amountFormat})
	if err != nil {
		return "", fmt.Errorf("failed to create amount style: %w", err)
	}

	header := []interface{}{"Day", "Amount (" + Currency + ")"}
	if err := f.SetSheetRow(WorkbookSheet, "A1", &header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	row := 2
	for _, entry := range agg.Entries() {
		if err := setAmountRow(f, row, entry.Day.String(), entry.Amount, style); err != nil {
			return "", err
		}
		row++
	}
	if err := setAmountRow(f, row, "Total", agg.Total(), style); err != nil {
		return "", err
	}

	row += 2
	timing := []interface{}{"Processing time", elapsed.String()}
	if err := f.SetSheetRow(WorkbookSheet, fmt.Sprintf("A%d", row), &timing); err != nil {
		return "", fmt.Errorf("failed to write processing time: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	return path, nil
}

func setAmountRow(f *excelize.File, row int, label string, cents int64, style int) error {
	labelCell := fmt.Sprintf("A%d", row)
	amountCell := fmt.Sprintf("B%d", row)

	if err := f.SetCellValue(WorkbookSheet, labelCell, label); err != nil {
		return fmt.Errorf("failed to write %s: %w", labelCell, err)
	}
	if err := f.SetCellValue(WorkbookSheet, amountCell, Amount(cents).InexactFloat64()); err != nil {
		return fmt.Errorf("failed to write %s: %w", amountCell, err)
	}
	if err := f.SetCellStyle(WorkbookSheet, amountCell, amountCell, style); err != nil {
		return fmt.Errorf("failed to style %s: %w", amountCell, err)
	}
	return nil
}
