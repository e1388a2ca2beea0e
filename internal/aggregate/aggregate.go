// Package aggregate sums transaction amounts per day of week.
package aggregate

import (
	"time"

	"github.com/ginjaninja78/txnbatch/internal/types"
)

// Entry is one day-of-week bucket.
type Entry struct {
	Day    time.Weekday
	Amount int64
}

// Aggregate maps each weekday to the cent total of its records. The zero
// value is not usable; call New.
type Aggregate struct {
	buckets map[time.Weekday]int64
	count   int
}

// New returns an empty Aggregate.
func New() *Aggregate {
	return &Aggregate{buckets: make(map[time.Weekday]int64)}
}

// Accumulate adds the record's amount to the bucket of its weekday. It does no
// validation; callers pass only records that passed every rule.
func (a *Aggregate) Accumulate(record types.InputRecord) {
	a.buckets[record.Timestamp.Weekday()] += record.Amount
	a.count++
}

// Amount returns the total for day and whether the bucket exists.
func (a *Aggregate) Amount(day time.Weekday) (int64, bool) {
	amount, ok := a.buckets[day]
	return amount, ok
}

// Entries returns the existing buckets in Monday-first order.
func (a *Aggregate) Entries() []Entry {
	entries := make([]Entry, 0, len(a.buckets))
	for _, day := range types.WeekOrder {
		if amount, ok := a.buckets[day]; ok {
			entries = append(entries, Entry{Day: day, Amount: amount})
		}
	}
	return entries
}

// Total is the sum over all buckets.
func (a *Aggregate) Total() int64 {
	var total int64
	for _, amount := range a.buckets {
		total += amount
	}
	return total
}

// Len is the number of buckets.
func (a *Aggregate) Len() int { return len(a.buckets) }

// Records is the number of accumulated records.
func (a *Aggregate) Records() int { return a.count }
