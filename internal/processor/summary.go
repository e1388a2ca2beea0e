package processor

import (
	"fmt"
	"io"
	"path/filepath"
	"time"
)

// Summary contains summary information about a processing run.
type Summary struct {
	StartTime      time.Time
	EndTime        time.Time
	TotalFiles     int
	Archived       int
	Rejected       int
	Failed         int
	NotMoved       int
	Records        int
	ValidRecords   int
	InvalidRecords int
	MalformedLines int
}

// Summarize folds per-file results into a Summary.
func Summarize(results []Result, start, end time.Time) Summary {
	summary := Summary{
		StartTime:  start,
		EndTime:    end,
		TotalFiles: len(results),
	}

	for _, r := range results {
		switch r.Outcome {
		case OutcomeArchived:
			summary.Archived++
		case OutcomeRejected:
			summary.Rejected++
		default:
			summary.Failed++
		}
		if r.Outcome != OutcomeFailed && !r.Moved {
			summary.NotMoved++
		}
		summary.Records += r.Stats.Records
		summary.ValidRecords += r.Stats.ValidRecords
		summary.InvalidRecords += r.Stats.InvalidRecords
		summary.MalformedLines += r.Stats.MalformedLines
	}

	return summary
}

// Elapsed is the wall time of the run.
func (s Summary) Elapsed() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// PrintResult writes the one-line status of a file.
func PrintResult(w io.Writer, r Result) {
	name := filepath.Base(r.FileName)
	switch r.Outcome {
	case OutcomeArchived:
		fmt.Fprintf(w, "  ✓ %s -> %s\n", name, filepath.Base(r.Artifact))
	case OutcomeRejected:
		fmt.Fprintf(w, "  ✗ %s: %d error(s) -> %s\n", name, r.Stats.ErrorEntries, filepath.Base(r.Artifact))
	default:
		fmt.Fprintf(w, "  ✗ %s: %v\n", name, r.Error)
	}
	if r.Outcome != OutcomeFailed && !r.Moved {
		fmt.Fprintf(w, "    (not moved, %s already exists)\n", r.Destination)
	}
}

// Print writes the end-of-run summary block.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "\n=== Processing Complete ===")
	fmt.Fprintf(w, "Total files:     %d\n", s.TotalFiles)
	fmt.Fprintf(w, "Archived:        %d\n", s.Archived)
	fmt.Fprintf(w, "Rejected:        %d\n", s.Rejected)
	fmt.Fprintf(w, "Failed:          %d\n", s.Failed)
	if s.NotMoved > 0 {
		fmt.Fprintf(w, "Not moved:       %d\n", s.NotMoved)
	}
	fmt.Fprintf(w, "Records:         %d (valid %d, invalid %d)\n", s.Records, s.ValidRecords, s.InvalidRecords)
	fmt.Fprintf(w, "Malformed lines: %d\n", s.MalformedLines)
	fmt.Fprintf(w, "Time elapsed:    %s\n", s.Elapsed())
}
