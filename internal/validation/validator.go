// =============================================================================
// txnbatch - Validation Engine
// =============================================================================
//
// This module checks each InputRecord against three independent business
// rules:
//   1. Identifier: MSISDN-like string matching ^3859[12789][1-9]\d{5,6}$
//   2. Amount:     0 < amount <= 100000 (cents)
//   3. Timestamp:  start of the current month <= timestamp < now
//
// ERROR HANDLING:
//   - Every rule runs for every record; a failing identifier does not hide a
//     bad amount on the same line.
//   - Failures are appended to the file's ErrorLog, never returned as errors.
//   - A record is valid only if all rules pass.
//
// The rules form a closed set of strategies behind the Rule interface so the
// processor can iterate them without knowing which field each one checks.
//
// =============================================================================

package validation

import (
	"fmt"
	"regexp"
	"time"

	"github.com/ginjaninja78/txnbatch/internal/logging"
	"github.com/ginjaninja78/txnbatch/internal/types"
	"go.uber.org/zap"
)

// =============================================================================
// LIMITS
// =============================================================================

// IdentifierPattern is the accepted MSISDN format: country code 385,
// mobile prefix 9, operator digit, a non-zero digit, then 5 or 6 digits.
var IdentifierPattern = regexp.MustCompile(`^3859[12789][1-9]\d{5,6}$`)

// MaxAmount is the largest accepted amount in cents.
const MaxAmount int64 = 100000

// =============================================================================
// RULES
// =============================================================================

// Rule checks one aspect of a record.
type Rule interface {
	// Name identifies the rule in logs.
	Name() string

	// Check returns "" if the record passes, or a description of the failure.
	Check(record types.InputRecord) string
}

// IdentifierRule validates the subscriber identifier.
type IdentifierRule struct{}

// Name implements Rule.
func (IdentifierRule) Name() string { return "identifier" }

// Check implements Rule.
func (IdentifierRule) Check(record types.InputRecord) string {
	if record.Identifier == "" {
		return "MSISDN is missing"
	}
	if !IdentifierPattern.MatchString(record.Identifier) {
		return fmt.Sprintf("MSISDN '%s' is not valid", record.Identifier)
	}
	return ""
}

// AmountRule validates the amount range. An amount equal to
// types.SentinelAmount, including a literal -1 in the file, is reported as
// not a valid integer instead of out of range.
type AmountRule struct{}

// Name implements Rule.
func (AmountRule) Name() string { return "amount" }

// Check implements Rule.
func (AmountRule) Check(record types.InputRecord) string {
	if !record.HasAmount() {
		return "amount is not a valid integer"
	}
	if record.Amount <= 0 || record.Amount > MaxAmount {
		return fmt.Sprintf("amount %d is out of range (1 - %d)", record.Amount, MaxAmount)
	}
	return ""
}

// TimestampRule validates that the timestamp falls in the current month and
// is not in the future. Now is read on every check.
type TimestampRule struct {
	Now func() time.Time
}

// Name implements Rule.
func (TimestampRule) Name() string { return "timestamp" }

// Check implements Rule.
func (r TimestampRule) Check(record types.InputRecord) string {
	if !record.HasTimestamp() {
		return "timestamp could not be parsed"
	}

	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}

	start := StartOfMonth(now)
	if record.Timestamp.Before(start) || !record.Timestamp.Before(now) {
		return fmt.Sprintf("timestamp %s is outside %s - %s",
			record.Timestamp.Format(types.TimestampLayout),
			start.Format(types.TimestampLayout),
			now.Format(types.TimestampLayout))
	}
	return ""
}

// StartOfMonth returns midnight on the first day of t's month, in t's location.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator applies the rule set to records of one or more files.
type Validator struct {
	rules  []Rule
	logger *zap.Logger
}

// New creates a Validator with the three standard rules.
// now is the clock used by the timestamp rule; nil means time.Now.
func New(now func() time.Time, logger *zap.Logger) *Validator {
	return NewWithRules(logging.OrNop(logger),
		IdentifierRule{},
		AmountRule{},
		TimestampRule{Now: now},
	)
}

// NewWithRules creates a Validator with an explicit rule set.
func NewWithRules(logger *zap.Logger, rules ...Rule) *Validator {
	return &Validator{
		rules:  rules,
		logger: logging.OrNop(logger),
	}
}

// Rules returns the configured rules in evaluation order.
func (v *Validator) Rules() []Rule {
	return v.rules
}

// ParseLine validates one record.
//
// PARAMETERS:
//   - record: The record to check.
//   - line:   The 1-based line number, used in error messages.
//   - log:    Receives one entry per failed rule.
//
// RETURNS:
//   - true if every rule passed.
func (v *Validator) ParseLine(record types.InputRecord, line int, log *types.ErrorLog) bool {
	valid := true

	for _, rule := range v.rules {
		failure := rule.Check(record)
		if failure == "" {
			continue
		}

		valid = false
		log.Add(FormatEntry(line, failure))
		v.logger.Debug("validation failed",
			zap.String("file", log.FileName),
			zap.Int("line", line),
			zap.String("rule", rule.Name()),
			zap.String("reason", failure))
	}

	return valid
}

// FormatEntry renders one validation failure for the error log.
func FormatEntry(line int, failure string) string {
	return fmt.Sprintf("Line %d: %s", line, failure)
}
