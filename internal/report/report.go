// =============================================================================
// txnbatch - Report Writers
// =============================================================================
//
// This module writes the per-file artifacts produced at the end of a
// processing pass:
//
//   <file>.REPORT.txt   - aggregate per weekday, in the output folder
//   <file>.REPORT.xlsx  - the same aggregate as a workbook (optional)
//   <file>.ERROR.txt    - validation errors, in the error folder
//
// REPORT FORMAT:
//   Monday   : 12.50 EUR
//   Wednesday: 3.00 EUR
//   ------------------------------
//   Processing time: 1.2ms
//
// ERROR LOG FORMAT:
//   One error per line, then one blank line. The file is opened in append
//   mode so that reruns accumulate, separated by the blank lines.
//
// =============================================================================

package report

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/txnbatch/internal/aggregate"
	"github.com/ginjaninja78/txnbatch/internal/types"
	"github.com/shopspring/decimal"
)

// =============================================================================
// NAMING
// =============================================================================

// Artifact suffixes appended to the source file name.
const (
	ReportSuffix   = ".REPORT.txt"
	WorkbookSuffix = ".REPORT.xlsx"
	ErrorSuffix    = ".ERROR.txt"
)

// Currency is printed after every amount.
const Currency = "EUR"

// Separator divides the day lines from the processing-time line.
var Separator = strings.Repeat("-", 30)

// ReportFileName returns the report name for a source file.
func ReportFileName(sourceName string) string {
	return filepath.Base(sourceName) + ReportSuffix
}

// WorkbookFileName returns the workbook name for a source file.
func WorkbookFileName(sourceName string) string {
	return filepath.Base(sourceName) + WorkbookSuffix
}

// ErrorFileName returns the error log name for a source file.
func ErrorFileName(sourceName string) string {
	return filepath.Base(sourceName) + ErrorSuffix
}

// =============================================================================
// FORMATTING
// =============================================================================

// Amount converts cents to a decimal amount.
func Amount(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatAmount renders cents as units with two decimals, e.g. 1250 -> "12.50".
func FormatAmount(cents int64) string {
	return Amount(cents).StringFixed(2)
}

// FormatDayLine renders one weekday line of the report.
func FormatDayLine(entry aggregate.Entry) string {
	return fmt.Sprintf("%-*s: %s %s", types.DayLabelWidth, entry.Day.String(), FormatAmount(entry.Amount), Currency)
}

// RenderReport builds the full text of a report.
func RenderReport(agg *aggregate.Aggregate, elapsed time.Duration) string {
	var b strings.Builder
	for _, entry := range agg.Entries() {
		b.WriteString(FormatDayLine(entry))
		b.WriteString("\n")
	}
	b.WriteString(Separator)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Processing time: %s\n", elapsed)
	return b.String()
}

// =============================================================================
// WRITERS
// =============================================================================

// WriteReport writes <source>.REPORT.txt into dir, replacing an older one.
//
// RETURNS:
//   - The path of the report.
//   - An error if the file cannot be written.
func WriteReport(dir, sourceName string, agg *aggregate.Aggregate, elapsed time.Duration) (string, error) {
	path := filepath.Join(dir, ReportFileName(sourceName))

	if err := os.WriteFile(path, []byte(RenderReport(agg, elapsed)), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}

// AppendErrors appends the entries to <source>.ERROR.txt in dir, creating it
// if needed, and terminates the block with a blank line.
//
// RETURNS:
//   - The path of the error log.
//   - An error if the file cannot be written.
func AppendErrors(dir, sourceName string, entries []string) (string, error) {
	path := filepath.Join(dir, ErrorFileName(sourceName))

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, entry := range entries {
		writer.WriteString(entry)
		writer.WriteString("\n")
	}
	writer.WriteString("\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return path, nil
}
