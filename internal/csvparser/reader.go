// =============================================================================
// txnbatch - Line Reader
// =============================================================================
//
// This module streams transaction files one line at a time. A transaction
// file is semicolon-delimited:
//
//   MSISDN;Amount;Timestamp                  <- header, always skipped
//   38591234567;1250;2024.06.01. 10:00:00
//   38598765432;99;2024.06.02. 18:30:12
//
// FAILURE POLICY:
//   The reader distinguishes two tiers of problems and keeps them apart:
//   1. Structural: a line that does not split into exactly three fields.
//      The line is reported to the error sink as "invalid data entry in
//      line N" and ReadNext returns a *MalformedLineError. The caller skips
//      the line and keeps reading.
//   2. Field-level: an amount that is not an integer or a timestamp that
//      cannot be parsed. The field is replaced by its sentinel value
//      (types.SentinelAmount / types.SentinelTimestamp), a warning is logged,
//      and the record is still returned so the validator can report it.
//
// USAGE:
//   reader, err := csvparser.NewLineReader(inputFolder, "data.csv", errLog, logger)
//   if err != nil {
//       return err
//   }
//   defer reader.Close()
//
//   for reader.HasNext() {
//       record, err := reader.ReadNext()
//       if errors.Is(err, csvparser.ErrMalformedLine) {
//           continue
//       }
//       // validate record...
//   }
//
// =============================================================================

package csvparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/txnbatch/internal/logging"
	"github.com/ginjaninja78/txnbatch/internal/types"
	"go.uber.org/zap"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrMissingFile is returned when the file to read does not exist.
var ErrMissingFile = errors.New("input file not found")

// ErrMalformedLine is matched by every *MalformedLineError.
var ErrMalformedLine = errors.New("malformed line")

// MalformedLineError describes a line with the wrong number of fields.
type MalformedLineError struct {
	// FileName is the base name of the file being read.
	FileName string

	// Line is the 1-based physical line number.
	Line int

	// Fields is the number of fields the line split into.
	Fields int
}

// Error implements the error interface.
func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("%s: line %d has %d field(s), expected %d",
		e.FileName, e.Line, e.Fields, types.FieldCount)
}

// Unwrap lets errors.Is match ErrMalformedLine.
func (e *MalformedLineError) Unwrap() error {
	return ErrMalformedLine
}

// MalformedEntry formats the error log line for a structurally broken line.
func MalformedEntry(line int) string {
	return fmt.Sprintf("invalid data entry in line %d", line)
}

// =============================================================================
// ERROR SINK
// =============================================================================

// ErrorSink receives the error lines of one file. *types.ErrorLog
// implements it; the processor flushes it to <file>.ERROR.txt in append mode.
type ErrorSink interface {
	Add(entry string)
}

type discardSink struct{}

func (discardSink) Add(string) {}

// =============================================================================
// LINE READER
// =============================================================================

// maxLineSize bounds a single physical line.
const maxLineSize = 1024 * 1024

// pendingRow is a row read ahead by HasNext.
type pendingRow struct {
	fields []string
	line   int
}

// LineReader reads one InputRecord per call from a transaction file.
//
// Lines are split on ';' as they are. Quotes carry no meaning, so a stray
// quote only affects the line it appears on.
type LineReader struct {
	file     *os.File
	scanner  *bufio.Scanner
	fileName string
	path     string
	sink     ErrorSink
	logger   *zap.Logger

	pending *pendingRow
	line    int
	scanned int
	err     error
	eof     bool
	closed  bool
}

// NewLineReader opens fileName inside inputFolder and skips the header line.
//
// PARAMETERS:
//   - inputFolder: The folder the file name is resolved against.
//                  Ignored when fileName is an absolute path.
//   - fileName:    The file to read.
//   - sink:        Receives structural error lines. May be nil.
//   - logger:      Receives field-level warnings. May be nil.
//
// RETURNS:
//   - The reader, positioned on the first data line.
//   - An error wrapping ErrMissingFile if the file does not exist.
func NewLineReader(inputFolder, fileName string, sink ErrorSink, logger *zap.Logger) (*LineReader, error) {
	path := fileName
	if !filepath.IsAbs(path) {
		path = filepath.Join(inputFolder, fileName)
	}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a data file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	if sink == nil {
		sink = discardSink{}
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	r := &LineReader{
		file:     file,
		scanner:  scanner,
		fileName: filepath.Base(path),
		path:     path,
		sink:     sink,
		logger:   logging.OrNop(logger),
	}

	r.skipHeader()

	return r, nil
}

// scanLine advances to the next physical line.
func (r *LineReader) scanLine() (string, bool) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			r.err = fmt.Errorf("error reading %s after line %d: %w", r.fileName, r.scanned, err)
		}
		r.eof = true
		return "", false
	}
	r.scanned++
	return strings.TrimSuffix(r.scanner.Text(), "\r"), true
}

// skipHeader discards the first physical line, whatever it contains.
func (r *LineReader) skipHeader() {
	if _, ok := r.scanLine(); ok {
		r.line = 1
	}
}

// HasNext reports whether at least one more data line exists.
// Blank lines are passed over.
func (r *LineReader) HasNext() bool {
	if r.pending != nil {
		return true
	}
	if r.closed || r.eof || r.err != nil {
		return false
	}

	for {
		text, ok := r.scanLine()
		if !ok {
			return false
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		r.pending = &pendingRow{
			fields: strings.Split(text, string(types.FieldSeparator)),
			line:   r.scanned,
		}
		return true
	}
}

// ReadNext returns the next record.
//
// RETURNS:
//   - The record, with unparseable amount/timestamp replaced by sentinels.
//   - A *MalformedLineError if the line does not have exactly three fields.
//   - io.EOF if there are no more lines.
func (r *LineReader) ReadNext() (types.InputRecord, error) {
	if !r.HasNext() {
		if r.err != nil {
			return types.InputRecord{}, r.err
		}
		return types.InputRecord{}, io.EOF
	}

	row := r.pending
	r.pending = nil
	r.line = row.line

	if len(row.fields) != types.FieldCount {
		r.sink.Add(MalformedEntry(row.line))
		r.logger.Warn("skipping malformed line",
			zap.String("file", r.fileName),
			zap.Int("line", row.line),
			zap.Int("fields", len(row.fields)))
		return types.InputRecord{}, &MalformedLineError{
			FileName: r.fileName,
			Line:     row.line,
			Fields:   len(row.fields),
		}
	}

	return r.buildRecord(row.fields, row.line), nil
}

// buildRecord converts three fields into a record, degrading bad fields.
func (r *LineReader) buildRecord(fields []string, line int) types.InputRecord {
	record := types.InputRecord{
		Identifier: strings.TrimSpace(fields[0]),
	}

	rawAmount := strings.TrimSpace(fields[1])
	amount, err := strconv.ParseInt(rawAmount, 10, 64)
	if err != nil {
		r.logger.Warn("amount is not an integer",
			zap.String("file", r.fileName),
			zap.Int("line", line),
			zap.String("value", rawAmount))
		amount = types.SentinelAmount
	}
	record.Amount = amount

	rawTimestamp := strings.TrimSpace(fields[2])
	timestamp, err := ParseTimestamp(rawTimestamp)
	if err != nil {
		r.logger.Warn("timestamp could not be parsed",
			zap.String("file", r.fileName),
			zap.Int("line", line),
			zap.String("value", rawTimestamp))
		timestamp = types.SentinelTimestamp
	}
	record.Timestamp = timestamp

	return record
}

// LineNumber returns the physical line number of the last row returned.
func (r *LineReader) LineNumber() int {
	return r.line
}

// FileName returns the base name of the file.
func (r *LineReader) FileName() string {
	return r.fileName
}

// Path returns the resolved path of the file.
func (r *LineReader) Path() string {
	return r.path
}

// Err returns the I/O error that stopped reading, if any.
func (r *LineReader) Err() error {
	return r.err
}

// Close releases the file handle. Calling it more than once is safe.
func (r *LineReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.pending = nil
	return r.file.Close()
}

// =============================================================================
// TIMESTAMPS
// =============================================================================

// timestampLayouts are tried in order. The first is the format written by
// the generator.
var timestampLayouts = []string{
	types.TimestampLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02.01.2006. 15:04:05",
}

// ParseTimestamp parses a timestamp field in the local time zone.
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

// FormatTimestamp renders t in the canonical file format.
func FormatTimestamp(t time.Time) string {
	return t.Format(types.TimestampLayout)
}
