package aggregate

import (
	"testing"
	"time"

	"github.com/ginjaninja78/txnbatch/internal/types"
)

func at(day int) time.Time {
	// June 2024: the 3rd is a Monday.
	return time.Date(2024, 6, day, 12, 0, 0, 0, time.Local)
}

func TestAccumulate_SumsPerWeekday(t *testing.T) {
	agg := New()
	agg.Accumulate(types.InputRecord{Amount: 100, Timestamp: at(3)})  // Monday
	agg.Accumulate(types.InputRecord{Amount: 250, Timestamp: at(10)}) // Monday
	agg.Accumulate(types.InputRecord{Amount: 75, Timestamp: at(9)})   // Sunday

	if got, _ := agg.Amount(time.Monday); got != 350 {
		t.Errorf("Monday got=%d want=350", got)
	}
	if got, _ := agg.Amount(time.Sunday); got != 75 {
		t.Errorf("Sunday got=%d want=75", got)
	}
	if _, ok := agg.Amount(time.Tuesday); ok {
		t.Error("Tuesday bucket should not exist")
	}
	if agg.Total() != 425 {
		t.Errorf("Total got=%d want=425", agg.Total())
	}
	if agg.Records() != 3 || agg.Len() != 2 {
		t.Errorf("Records=%d Len=%d want 3 and 2", agg.Records(), agg.Len())
	}
}

func TestEntries_MondayFirst(t *testing.T) {
	agg := New()
	for _, day := range []int{9, 8, 7, 6, 5, 4, 3} {
		agg.Accumulate(types.InputRecord{Amount: int64(day), Timestamp: at(day)})
	}

	entries := agg.Entries()
	if len(entries) != 7 {
		t.Fatalf("entries got=%d want=7", len(entries))
	}
	for i, entry := range entries {
		if entry.Day != types.WeekOrder[i] {
			t.Errorf("entry %d got=%v want=%v", i, entry.Day, types.WeekOrder[i])
		}
	}
	if entries[0].Amount != 3 || entries[6].Amount != 9 {
		t.Errorf("amounts got first=%d last=%d", entries[0].Amount, entries[6].Amount)
	}
}

func TestEntries_Empty(t *testing.T) {
	if got := New().Entries(); len(got) != 0 {
		t.Errorf("empty aggregate entries got=%v", got)
	}
}
