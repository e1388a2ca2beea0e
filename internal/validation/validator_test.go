package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/txnbatch/internal/types"
)

// fixedNow is mid-June 2024, after the scenario timestamps.
var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)

func clock() time.Time { return fixedNow }

func record(id string, amount int64, ts time.Time) types.InputRecord {
	return types.InputRecord{Identifier: id, Amount: amount, Timestamp: ts}
}

func TestIdentifierRule(t *testing.T) {
	valid := []string{
		"38591123456",  // 5 trailing digits
		"385912345678", // 6 trailing digits
		"38592123456",
		"38597987654",
		"38598111111",
		"38599900000",
	}
	invalid := []string{
		"",
		"abc",
		"HR38591123456",  // country prefix letters
		"38501123456",    // wrong mobile digit
		"38593123456",    // operator digit not in {1,2,7,8,9}
		"38591023456",    // zero after operator digit
		"3859112345",     // 4 trailing digits
		"3859112345678",  // 7 trailing digits
		"38591123456 ",   // trailing space
		"3859112345a",
	}

	rule := IdentifierRule{}
	for _, id := range valid {
		if failure := rule.Check(record(id, 1, fixedNow)); failure != "" {
			t.Errorf("identifier %q should pass, got %q", id, failure)
		}
	}
	for _, id := range invalid {
		if rule.Check(record(id, 1, fixedNow)) == "" {
			t.Errorf("identifier %q should fail", id)
		}
	}
}

func TestIdentifierRule_EmptyFailsWithoutPattern(t *testing.T) {
	failure := IdentifierRule{}.Check(record("", 1, fixedNow))
	if failure != "MSISDN is missing" {
		t.Errorf("got=%q want=%q", failure, "MSISDN is missing")
	}
}

func TestAmountRule_Boundaries(t *testing.T) {
	cases := map[int64]bool{
		types.SentinelAmount: false,
		-500:                 false,
		0:                    false,
		1:                    true,
		9999:                 true,
		10000:                true,
		100000:               true,
		100001:               false,
	}

	rule := AmountRule{}
	for amount, want := range cases {
		got := rule.Check(record("38591123456", amount, fixedNow)) == ""
		if got != want {
			t.Errorf("amount %d got=%v want=%v", amount, got, want)
		}
	}
}

func TestAmountRule_SentinelMessage(t *testing.T) {
	failure := AmountRule{}.Check(record("38591123456", types.SentinelAmount, fixedNow))
	if !strings.Contains(failure, "not a valid integer") {
		t.Errorf("sentinel message got=%q", failure)
	}
}

func TestTimestampRule_Window(t *testing.T) {
	start := StartOfMonth(fixedNow)
	cases := []struct {
		name string
		ts   time.Time
		want bool
	}{
		{"start of month", start, true},
		{"just before start", start.Add(-time.Second), false},
		{"middle", time.Date(2024, 6, 10, 8, 0, 0, 0, time.Local), true},
		{"just before now", fixedNow.Add(-time.Second), true},
		{"exactly now", fixedNow, false},
		{"future", fixedNow.Add(time.Hour), false},
		{"previous month", time.Date(2024, 5, 31, 23, 59, 59, 0, time.Local), false},
		{"sentinel", types.SentinelTimestamp, false},
	}

	rule := TimestampRule{Now: clock}
	for _, tc := range cases {
		got := rule.Check(record("38591123456", 1, tc.ts)) == ""
		if got != tc.want {
			t.Errorf("%s: got=%v want=%v", tc.name, got, tc.want)
		}
	}
}

func TestTimestampRule_EvaluatesClockOnEveryCheck(t *testing.T) {
	now := time.Date(2024, 6, 30, 23, 0, 0, 0, time.Local)
	rule := TimestampRule{Now: func() time.Time { return now }}
	ts := time.Date(2024, 6, 20, 0, 0, 0, 0, time.Local)

	if failure := rule.Check(record("38591123456", 1, ts)); failure != "" {
		t.Fatalf("June timestamp in June should pass: %s", failure)
	}

	now = time.Date(2024, 7, 1, 0, 30, 0, 0, time.Local)
	if rule.Check(record("38591123456", 1, ts)) == "" {
		t.Error("June timestamp should fail once the month rolls over")
	}
}

func TestStartOfMonth(t *testing.T) {
	got := StartOfMonth(time.Date(2024, 2, 29, 13, 14, 15, 16, time.UTC))
	want := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("StartOfMonth got=%v want=%v", got, want)
	}
}

func TestParseLine_ValidScenario(t *testing.T) {
	v := New(clock, nil)
	log := types.NewErrorLog("data.csv")
	ts := time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local)

	if !v.ParseLine(record("38592123456", 500, ts), 2, log) {
		t.Fatalf("record should be valid, errors: %v", log.Entries())
	}
	if !log.Empty() {
		t.Errorf("error log should be empty, got %v", log.Entries())
	}
}

func TestParseLine_BadIdentifierOnly(t *testing.T) {
	v := New(clock, nil)
	log := types.NewErrorLog("data.csv")
	ts := time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local)

	if v.ParseLine(record("abc", 500, ts), 2, log) {
		t.Fatal("record should be invalid")
	}
	entries := log.Entries()
	if len(entries) != 1 {
		t.Fatalf("entries got=%d want=1: %v", len(entries), entries)
	}
	if entries[0] != "Line 2: MSISDN 'abc' is not valid" {
		t.Errorf("entry got=%q", entries[0])
	}
}

func TestParseLine_NoShortCircuit(t *testing.T) {
	v := New(clock, nil)
	log := types.NewErrorLog("data.csv")

	if v.ParseLine(record("abc", 0, types.SentinelTimestamp), 7, log) {
		t.Fatal("record should be invalid")
	}
	if log.Len() != 3 {
		t.Fatalf("entries got=%d want=3: %v", log.Len(), log.Entries())
	}
	for _, entry := range log.Entries() {
		if !strings.HasPrefix(entry, "Line 7: ") {
			t.Errorf("entry %q missing line prefix", entry)
		}
	}
}

func TestParseLine_AppendsInLineOrder(t *testing.T) {
	v := New(clock, nil)
	log := types.NewErrorLog("data.csv")
	ts := time.Date(2024, 6, 1, 10, 0, 0, 0, time.Local)

	v.ParseLine(record("abc", 1, ts), 2, log)
	v.ParseLine(record("38591123456", 1, ts), 3, log)
	v.ParseLine(record("38591123456", 0, ts), 4, log)

	entries := log.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries got=%d want=2", len(entries))
	}
	if !strings.HasPrefix(entries[0], "Line 2:") || !strings.HasPrefix(entries[1], "Line 4:") {
		t.Errorf("entries out of order: %v", entries)
	}
}

func TestNew_RuleOrder(t *testing.T) {
	names := []string{}
	for _, rule := range New(nil, nil).Rules() {
		names = append(names, rule.Name())
	}
	if strings.Join(names, ",") != "identifier,amount,timestamp" {
		t.Errorf("rule order got=%v", names)
	}
}
