// =============================================================================
// txnbatch - Processor Module
// =============================================================================
//
// This module runs the parse pipeline for one file or for the whole input
// folder. It owns the per-file state (error log and aggregate) and decides
// where each file ends up.
//
// PROCESSING PIPELINE (per file):
//   1. Open the file with the line reader (header skipped)
//   2. For each line:
//      a. Structurally broken line -> already logged by the reader, skip
//      b. Validate the record against the three rules
//      c. Valid record -> add its amount to the weekday aggregate
//   3. Route the file:
//      - No errors: write <file>.REPORT.txt to the output folder and move the
//        file to the archive folder
//      - Errors:    append to <file>.ERROR.txt in the error folder and move
//        the file to the error folder
//
// FOLDER MODE:
//   Files are processed one after another in lexicographic name order. A
//   failure in one file is recorded in its Result and the loop continues.
//
// =============================================================================

package processor

import (
	"errors"
	"fmt"
	"time"

	"github.com/ginjaninja78/txnbatch/internal/aggregate"
	"github.com/ginjaninja78/txnbatch/internal/config"
	"github.com/ginjaninja78/txnbatch/internal/csvparser"
	"github.com/ginjaninja78/txnbatch/internal/logging"
	"github.com/ginjaninja78/txnbatch/internal/report"
	"github.com/ginjaninja78/txnbatch/internal/types"
	"github.com/ginjaninja78/txnbatch/internal/validation"
	"github.com/ginjaninja78/txnbatch/pkg/utils"
	"go.uber.org/zap"
)

// ErrEmptyFolder is returned by ProcessFolder when there is nothing to process.
var ErrEmptyFolder = errors.New("input folder contains no files")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Outcome is where a file ended up.
type Outcome int

const (
	// OutcomeFailed means the file could not be processed (missing, unreadable).
	OutcomeFailed Outcome = iota

	// OutcomeArchived means every line was valid.
	OutcomeArchived

	// OutcomeRejected means at least one line was invalid.
	OutcomeRejected
)

// String returns a short label for summaries.
func (o Outcome) String() string {
	switch o {
	case OutcomeArchived:
		return "archived"
	case OutcomeRejected:
		return "rejected"
	default:
		return "failed"
	}
}

// Result represents the outcome of processing a single file.
type Result struct {
	// FileName is the file that was processed, as given.
	FileName string

	// Outcome tells whether the file was archived, rejected or failed.
	Outcome Outcome

	// Artifact is the report (archived) or error log (rejected) path.
	Artifact string

	// Workbook is the optional .xlsx report path.
	Workbook string

	// Destination is where the source file was moved, or would have been
	// moved when Moved is false.
	Destination string

	// Moved is false when the destination already existed.
	Moved bool

	// Error is set when Outcome is OutcomeFailed.
	Error error

	// Stats contains processing statistics.
	Stats Stats
}

// Stats contains statistics about one file.
type Stats struct {
	// Records is the number of lines with three fields.
	Records int

	// ValidRecords passed all three rules.
	ValidRecords int

	// InvalidRecords failed at least one rule.
	InvalidRecords int

	// MalformedLines did not have three fields.
	MalformedLines int

	// ErrorEntries is the number of lines written to the error log.
	ErrorEntries int

	// Total is the aggregated amount in cents of the valid records.
	Total int64

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// PROCESSOR
// =============================================================================

// Options tune a Processor.
type Options struct {
	// Now is the clock used by the timestamp rule. Nil means time.Now.
	Now func() time.Time

	// WriteWorkbook also writes <file>.REPORT.xlsx for archived files.
	WriteWorkbook bool
}

// Processor runs the parse pipeline with one configuration snapshot.
type Processor struct {
	params    config.Parameters
	files     *utils.FileManager
	validator *validation.Validator
	logger    *zap.Logger
	opts      Options
}

// New creates a Processor.
//
// PARAMETERS:
//   - params: The configuration snapshot for this run.
//   - logger: Receives per-file and per-line diagnostics. May be nil.
//   - opts:   Optional clock and workbook output.
func New(params config.Parameters, logger *zap.Logger, opts Options) *Processor {
	logger = logging.OrNop(logger)
	return &Processor{
		params: params,
		files: utils.NewFileManager(
			params.InputFolder,
			params.OutputFolder,
			params.ArchiveFolder,
			params.ErrorFolder,
			logger,
		),
		validator: validation.New(opts.Now, logger),
		logger:    logger,
		opts:      opts,
	}
}

// Files exposes the file manager used for discovery and moves.
func (p *Processor) Files() *utils.FileManager {
	return p.files
}

// ProcessFolder processes every file of the input folder in name order.
//
// RETURNS:
//   - One Result per file, in processing order.
//   - ErrEmptyFolder if there are no files, or a discovery error.
func (p *Processor) ProcessFolder() ([]Result, error) {
	names, err := p.files.DiscoverInputFiles()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFolder, p.params.InputFolder)
	}

	p.logger.Info("processing input folder",
		zap.String("folder", p.params.InputFolder),
		zap.Int("files", len(names)))

	results := make([]Result, 0, len(names))
	for _, name := range names {
		results = append(results, p.ProcessFile(name))
	}

	return results, nil
}

// ProcessFile runs the pipeline for one file of the input folder.
func (p *Processor) ProcessFile(fileName string) Result {
	startTime := time.Now()
	result := Result{
		FileName: fileName,
		Outcome:  OutcomeFailed,
	}

	// =========================================================================
	// STEP 1: OPEN THE FILE
	// =========================================================================

	errLog := types.NewErrorLog(fileName)
	agg := aggregate.New()

	reader, err := csvparser.NewLineReader(p.params.InputFolder, fileName, errLog, p.logger)
	if err != nil {
		p.logger.Error("cannot open file", zap.String("file", fileName), zap.Error(err))
		result.Error = err
		return result
	}
	defer reader.Close()

	p.logger.Debug("processing file", zap.String("file", reader.Path()))

	// =========================================================================
	// STEP 2: READ, VALIDATE, AGGREGATE
	// =========================================================================

	for reader.HasNext() {
		record, err := reader.ReadNext()
		if errors.Is(err, csvparser.ErrMalformedLine) {
			result.Stats.MalformedLines++
			continue
		}
		if err != nil {
			break
		}

		result.Stats.Records++
		if p.validator.ParseLine(record, reader.LineNumber(), errLog) {
			agg.Accumulate(record)
			result.Stats.ValidRecords++
		} else {
			result.Stats.InvalidRecords++
		}
	}

	if err := reader.Err(); err != nil {
		p.logger.Error("reading stopped", zap.String("file", fileName), zap.Error(err))
		result.Error = err
		return result
	}

	// The handle must be released before the file is moved.
	if err := reader.Close(); err != nil {
		p.logger.Warn("failed to close file", zap.String("file", fileName), zap.Error(err))
	}

	result.Stats.ErrorEntries = errLog.Len()
	result.Stats.Total = agg.Total()
	result.Stats.ProcessingTime = time.Since(startTime)

	// =========================================================================
	// STEP 3: ROUTE THE FILE
	// =========================================================================

	if errLog.Empty() {
		p.archive(reader.Path(), agg, &result)
	} else {
		p.reject(reader.Path(), errLog, &result)
	}

	return result
}

// archive writes the aggregate report and moves the file to the archive folder.
func (p *Processor) archive(path string, agg *aggregate.Aggregate, result *Result) {
	reportPath, err := report.WriteReport(p.params.OutputFolder, path, agg, result.Stats.ProcessingTime)
	if err != nil {
		result.Error = err
		return
	}
	result.Artifact = reportPath

	if p.opts.WriteWorkbook {
		workbookPath, err := report.WriteWorkbook(p.params.OutputFolder, path, agg, result.Stats.ProcessingTime)
		if err != nil {
			// The text report is the primary artifact; keep going.
			p.logger.Warn("failed to write workbook", zap.String("file", result.FileName), zap.Error(err))
		} else {
			result.Workbook = workbookPath
		}
	}

	move, err := p.files.MoveToArchive(path)
	if err != nil {
		result.Error = err
		return
	}

	result.Outcome = OutcomeArchived
	result.Destination = move.Destination
	result.Moved = move.Moved

	p.logger.Info("file archived",
		zap.String("file", result.FileName),
		zap.Int("records", result.Stats.ValidRecords),
		zap.String("total", report.FormatAmount(result.Stats.Total)),
		zap.Bool("moved", move.Moved))
}

// reject flushes the error log and moves the file to the error folder.
func (p *Processor) reject(path string, errLog *types.ErrorLog, result *Result) {
	logPath, err := report.AppendErrors(p.params.ErrorFolder, path, errLog.Entries())
	if err != nil {
		result.Error = err
		return
	}
	result.Artifact = logPath
	errLog.Reset()

	move, err := p.files.MoveToError(path)
	if err != nil {
		result.Error = err
		return
	}

	result.Outcome = OutcomeRejected
	result.Destination = move.Destination
	result.Moved = move.Moved

	p.logger.Warn("file rejected",
		zap.String("file", result.FileName),
		zap.Int("invalid", result.Stats.InvalidRecords),
		zap.Int("malformed", result.Stats.MalformedLines),
		zap.Bool("moved", move.Moved))
}
