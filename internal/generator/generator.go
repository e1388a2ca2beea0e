// =============================================================================
// txnbatch - Test Data Generator
// =============================================================================
//
// This module produces synthetic transaction files for the parse pipeline.
// Every generated record is shaped to pass validation when parsed in the
// same month:
//   - Identifier: 3859 + one of {1,2,7,8,9} + a digit 1-9 + 5 or 6 digits
//   - Amount:     1 - 9999 cents
//   - Timestamp:  between the start of the current month and now
//
// OUTPUT:
//   TestData_<yyyyMMdd_HHmmss>.csv in the input folder, header
//   "MSISDN;Amount;Timestamp" followed by one line per record. An existing
//   file with the same name is never overwritten.
//
// =============================================================================

package generator

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/txnbatch/internal/csvparser"
	"github.com/ginjaninja78/txnbatch/internal/logging"
	"github.com/ginjaninja78/txnbatch/internal/types"
	"github.com/ginjaninja78/txnbatch/internal/validation"
	"github.com/ginjaninja78/txnbatch/pkg/utils"
	"go.uber.org/zap"
)

// =============================================================================
// LIMITS
// =============================================================================

const (
	// CountryPrefix starts every identifier.
	CountryPrefix = "3859"

	// operatorDigits are the accepted digits after the prefix.
	operatorDigits = "12789"

	// MaxAmount is the exclusive upper bound of generated amounts in cents.
	MaxAmount int64 = 10000

	// FileNameFormat is expanded by utils.GenerateOutputFileName.
	FileNameFormat = "TestData_{timestamp}.csv"
)

// =============================================================================
// GENERATOR
// =============================================================================

// Options tune a Generator.
type Options struct {
	// Seed makes the output reproducible. Zero picks a time-based seed.
	Seed int64

	// Now is the clock for timestamps and file names. Nil means time.Now.
	Now func() time.Time
}

// Generator produces synthetic records and data files.
type Generator struct {
	inputFolder string
	rng         *rand.Rand
	seed        int64
	now         func() time.Time
	logger      *zap.Logger
}

// New creates a Generator that writes into inputFolder.
func New(inputFolder string, opts Options, logger *zap.Logger) *Generator {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Generator{
		inputFolder: inputFolder,
		rng:         rand.New(rand.NewSource(seed)),
		seed:        seed,
		now:         now,
		logger:      logging.OrNop(logger),
	}
}

// Seed returns the seed in use, so a run can be repeated.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Identifier returns a random MSISDN-like identifier.
func (g *Generator) Identifier() string {
	var b strings.Builder
	b.WriteString(CountryPrefix)
	b.WriteByte(operatorDigits[g.rng.Intn(len(operatorDigits))])
	b.WriteByte(byte('1' + g.rng.Intn(9)))

	tail := 5 + g.rng.Intn(2)
	for i := 0; i < tail; i++ {
		b.WriteByte(byte('0' + g.rng.Intn(10)))
	}
	return b.String()
}

// Amount returns a random amount in [1, MaxAmount).
func (g *Generator) Amount() int64 {
	return 1 + g.rng.Int63n(MaxAmount-1)
}

// Timestamp returns a random whole-second time in [start of month, now).
func (g *Generator) Timestamp(now time.Time) time.Time {
	start := validation.StartOfMonth(now)
	span := now.Sub(start)
	if span <= time.Second {
		return start
	}
	offset := time.Duration(g.rng.Int63n(int64(span)))
	return start.Add(offset).Truncate(time.Second)
}

// Record returns one random record.
func (g *Generator) Record(now time.Time) types.InputRecord {
	return types.InputRecord{
		Identifier: g.Identifier(),
		Amount:     g.Amount(),
		Timestamp:  g.Timestamp(now),
	}
}

// Generate returns n random records.
func (g *Generator) Generate(n int) []types.InputRecord {
	now := g.now().Local()
	records := make([]types.InputRecord, n)
	for i := range records {
		records[i] = g.Record(now)
	}
	return records
}

// WriteFile writes a data file with n records into the input folder.
//
// RETURNS:
//   - The path of the new file.
//   - An error if n is not positive, the file exists, or writing fails.
func (g *Generator) WriteFile(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("number of lines must be positive, got %d", n)
	}

	now := g.now().Local()
	name := utils.GenerateOutputFileName(FileNameFormat, nil, now)
	path := filepath.Join(g.inputFolder, name)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create data file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	writer.Comma = types.FieldSeparator

	if err := writer.Write(types.HeaderRow); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for i := 0; i < n; i++ {
		record := g.Record(now)
		row := []string{
			record.Identifier,
			strconv.FormatInt(record.Amount, 10),
			csvparser.FormatTimestamp(record.Timestamp),
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("failed to write line %d: %w", i+2, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to write data file: %w", err)
	}

	g.logger.Info("data file generated",
		zap.String("file", path),
		zap.Int("lines", n),
		zap.Int64("seed", g.seed))

	return path, nil
}
