// =============================================================================
// txnbatch - Shared Types
// =============================================================================
//
// This package contains the data contracts shared by the reader, validator,
// aggregator, generator and processor. It holds no business logic beyond a
// few accessors so that every other package can import it without cycles.
//
// USED BY:
//   - csvparser  (builds InputRecord values)
//   - validation (consumes InputRecord, fills ErrorLog)
//   - aggregate  (consumes InputRecord)
//   - generator  (produces InputRecord)
//   - processor  (owns one ErrorLog per file)
//
// =============================================================================

package types

import (
	"time"
)

// =============================================================================
// INPUT RECORD
// =============================================================================

// SentinelAmount marks an amount field that could not be parsed as an integer.
// A literal -1 in a file reads as the same value; either way the record
// fails validation.
const SentinelAmount int64 = -1

// SentinelTimestamp marks a timestamp field that could not be parsed.
// It is always outside the accepted validation window.
var SentinelTimestamp = time.Unix(0, 0)

// InputRecord is one data line of a transaction file.
type InputRecord struct {
	// Identifier is the MSISDN-like subscriber string.
	Identifier string

	// Amount is the transaction amount in cents.
	// SentinelAmount if the field was not an integer.
	Amount int64

	// Timestamp is the time of the transaction.
	// SentinelTimestamp if the field could not be parsed.
	Timestamp time.Time
}

// HasAmount reports whether the amount field was parsed successfully.
func (r InputRecord) HasAmount() bool {
	return r.Amount != SentinelAmount
}

// HasTimestamp reports whether the timestamp field was parsed successfully.
func (r InputRecord) HasTimestamp() bool {
	return !r.Timestamp.Equal(SentinelTimestamp)
}

// =============================================================================
// FILE FORMAT
// =============================================================================

// FieldSeparator separates the fields of one line.
const FieldSeparator = ';'

// FieldCount is the number of fields in a well-formed data line.
const FieldCount = 3

// HeaderRow is the header written to generated files.
var HeaderRow = []string{"MSISDN", "Amount", "Timestamp"}

// TimestampLayout is the canonical timestamp format of data files.
const TimestampLayout = "2006.01.02. 15:04:05"

// =============================================================================
// ERROR LOG
// =============================================================================

// ErrorLog collects the formatted error lines of a single file in the order
// they were encountered. It is owned by one file's processing pass.
type ErrorLog struct {
	// FileName is the base name of the file the entries belong to.
	FileName string

	entries []string
}

// NewErrorLog creates an empty error log for the given file.
func NewErrorLog(fileName string) *ErrorLog {
	return &ErrorLog{FileName: fileName}
}

// Add appends one formatted error line.
func (l *ErrorLog) Add(entry string) {
	l.entries = append(l.entries, entry)
}

// Entries returns the collected lines in insertion order.
func (l *ErrorLog) Entries() []string {
	return l.entries
}

// Len returns the number of collected lines.
func (l *ErrorLog) Len() int {
	return len(l.entries)
}

// Empty reports whether no error has been recorded.
func (l *ErrorLog) Empty() bool {
	return len(l.entries) == 0
}

// Reset drops all entries after a flush.
func (l *ErrorLog) Reset() {
	l.entries = nil
}

// =============================================================================
// WEEKDAY ORDERING
// =============================================================================

// WeekOrder is the fixed week-start ordering used by reports (Monday first).
var WeekOrder = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
	time.Saturday,
	time.Sunday,
}

// DayLabelWidth is the width of the longest weekday label ("Wednesday").
const DayLabelWidth = 9

// =============================================================================
// EXIT CODES
// =============================================================================

// ExitCode is the process exit status for CLI misuse.
type ExitCode int

const (
	// ExitOK means the command completed.
	ExitOK ExitCode = 0

	// ExitFailure means the command ran but failed.
	ExitFailure ExitCode = 1

	// ExitNoArgs means the program was started without a command.
	ExitNoArgs ExitCode = -1

	// ExitTooManyArgs means a command got more positional arguments than it accepts.
	ExitTooManyArgs ExitCode = -2

	// ExitNonNumeric means the line count argument is not a number.
	ExitNonNumeric ExitCode = -3

	// ExitZeroValue means the line count argument is zero or negative.
	ExitZeroValue ExitCode = -4

	// ExitUnknownCommand means the command name is not recognized.
	ExitUnknownCommand ExitCode = -5
)
