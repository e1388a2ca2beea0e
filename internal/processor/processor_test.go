package processor

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/txnbatch/internal/config"
	"github.com/ginjaninja78/txnbatch/internal/csvparser"
	"github.com/ginjaninja78/txnbatch/internal/generator"
	"github.com/ginjaninja78/txnbatch/pkg/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// fixedNow is in June 2024; the 3rd is a Monday.
var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)

func clock() time.Time { return fixedNow }

func setup(t *testing.T) (config.Parameters, *Processor) {
	t.Helper()
	root := t.TempDir()
	params := config.Parameters{
		InputFolder:   filepath.Join(root, "input"),
		ErrorFolder:   filepath.Join(root, "error"),
		ArchiveFolder: filepath.Join(root, "archive"),
		OutputFolder:  filepath.Join(root, "output"),
		NumOfLines:    10,
	}
	p := New(params, zaptest.NewLogger(t), Options{Now: clock})
	if err := p.Files().EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	return params, p
}

func writeInput(t *testing.T, params config.Parameters, name string, lines ...string) {
	t.Helper()
	content := "MSISDN;Amount;Timestamp\n" + strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(params.InputFolder, name), []byte(content), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestProcessFile_ValidFileIsArchivedWithReport(t *testing.T) {
	params, p := setup(t)
	writeInput(t, params, "good.csv",
		"38591123456;1250;2024.06.03. 10:00:00",
		"38592123456;250;2024.06.10. 11:00:00",
		"38598123456;300;2024.06.05. 09:00:00",
	)

	result := p.ProcessFile("good.csv")
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}
	if result.Outcome != OutcomeArchived {
		t.Fatalf("Outcome got=%v want=archived", result.Outcome)
	}
	if !result.Moved {
		t.Error("file should have been moved")
	}
	if result.Stats.ValidRecords != 3 || result.Stats.Total != 1800 {
		t.Errorf("stats got=%+v", result.Stats)
	}

	if !utils.FileExists(filepath.Join(params.ArchiveFolder, "good.csv")) {
		t.Error("file missing from archive")
	}
	if utils.FileExists(filepath.Join(params.InputFolder, "good.csv")) {
		t.Error("file still in input folder")
	}
	if utils.FileExists(filepath.Join(params.ErrorFolder, "good.csv")) ||
		utils.FileExists(filepath.Join(params.ErrorFolder, "good.csv.ERROR.txt")) {
		t.Error("valid file must not appear in the error folder")
	}

	content := readFile(t, filepath.Join(params.OutputFolder, "good.csv.REPORT.txt"))
	if !strings.HasPrefix(content, "Monday   : 15.00 EUR\nWednesday: 3.00 EUR\n") {
		t.Errorf("report got:\n%s", content)
	}
	if !strings.Contains(content, "Processing time: ") {
		t.Errorf("report lacks processing time:\n%s", content)
	}
}

func TestProcessFile_InvalidFileIsRejected(t *testing.T) {
	params, p := setup(t)
	writeInput(t, params, "bad.csv",
		"38591123456;1250;2024.06.03. 10:00:00",
		"abc;500;2024.06.01. 10:00:00",
		"38591123456;0;2024.05.01. 10:00:00",
	)

	result := p.ProcessFile("bad.csv")
	if result.Outcome != OutcomeRejected {
		t.Fatalf("Outcome got=%v want=rejected (err=%v)", result.Outcome, result.Error)
	}
	if result.Stats.ValidRecords != 1 || result.Stats.InvalidRecords != 2 {
		t.Errorf("stats got=%+v", result.Stats)
	}

	if !utils.FileExists(filepath.Join(params.ErrorFolder, "bad.csv")) {
		t.Error("file missing from error folder")
	}
	if utils.FileExists(filepath.Join(params.ArchiveFolder, "bad.csv")) {
		t.Error("rejected file must not be archived")
	}
	if utils.FileExists(filepath.Join(params.OutputFolder, "bad.csv.REPORT.txt")) {
		t.Error("rejected file must not get a report")
	}

	want := "Line 3: MSISDN 'abc' is not valid\n" +
		"Line 4: amount 0 is out of range (1 - 100000)\n"
	got := readFile(t, filepath.Join(params.ErrorFolder, "bad.csv.ERROR.txt"))
	if !strings.HasPrefix(got, want) {
		t.Errorf("error log got:\n%s", got)
	}
	if !strings.Contains(got, "Line 4: timestamp ") || !strings.HasSuffix(got, "\n\n") {
		t.Errorf("error log missing timestamp entry or separator:\n%q", got)
	}
}

func TestProcessFile_MalformedRowSkippedOthersEvaluated(t *testing.T) {
	params, p := setup(t)
	writeInput(t, params, "mixed.csv",
		"38591123456;1250;2024.06.03. 10:00:00",
		"38591123456;1250",
		"38592123456;100;2024.06.04. 10:00:00",
	)

	result := p.ProcessFile("mixed.csv")
	if result.Stats.MalformedLines != 1 {
		t.Errorf("MalformedLines got=%d want=1", result.Stats.MalformedLines)
	}
	if result.Stats.Records != 2 || result.Stats.ValidRecords != 2 {
		t.Errorf("stats got=%+v", result.Stats)
	}
	if result.Outcome != OutcomeRejected {
		t.Fatalf("a malformed line must send the file to the error folder, got %v", result.Outcome)
	}

	got := readFile(t, filepath.Join(params.ErrorFolder, "mixed.csv.ERROR.txt"))
	if got != "invalid data entry in line 3\n\n" {
		t.Errorf("error log got=%q", got)
	}
}

func TestProcessFile_ErrorLogAppendsAcrossRuns(t *testing.T) {
	params, p := setup(t)
	writeInput(t, params, "again.csv", "abc;1;2024.06.03. 10:00:00")
	p.ProcessFile("again.csv")

	// Same name again, after the first copy was moved away.
	if err := os.Remove(filepath.Join(params.ErrorFolder, "again.csv")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	writeInput(t, params, "again.csv", "xyz;1;2024.06.03. 10:00:00")
	p.ProcessFile("again.csv")

	got := readFile(t, filepath.Join(params.ErrorFolder, "again.csv.ERROR.txt"))
	want := "Line 2: MSISDN 'abc' is not valid\n\nLine 2: MSISDN 'xyz' is not valid\n\n"
	if got != want {
		t.Errorf("error log got=%q want=%q", got, want)
	}
}

func TestProcessFile_ExistingArchiveCopyIsKept(t *testing.T) {
	params, p := setup(t)
	writeInput(t, params, "dup.csv", "38591123456;1;2024.06.03. 10:00:00")
	if err := os.WriteFile(filepath.Join(params.ArchiveFolder, "dup.csv"), []byte("old"), 0644); err != nil {
		t.Fatalf("write archive copy: %v", err)
	}

	result := p.ProcessFile("dup.csv")
	if result.Error != nil {
		t.Fatalf("existing destination must not be an error: %v", result.Error)
	}
	if result.Moved {
		t.Error("Moved should be false")
	}
	if !utils.FileExists(filepath.Join(params.InputFolder, "dup.csv")) {
		t.Error("source should stay in the input folder")
	}
	if readFile(t, filepath.Join(params.ArchiveFolder, "dup.csv")) != "old" {
		t.Error("archive copy was overwritten")
	}
}

func TestProcessFile_MissingFile(t *testing.T) {
	_, p := setup(t)

	result := p.ProcessFile("absent.csv")
	if result.Outcome != OutcomeFailed {
		t.Fatalf("Outcome got=%v want=failed", result.Outcome)
	}
	if !errors.Is(result.Error, csvparser.ErrMissingFile) {
		t.Errorf("expected ErrMissingFile, got %v", result.Error)
	}
}

func TestProcessFile_Workbook(t *testing.T) {
	params, _ := setup(t)
	p := New(params, zap.NewNop(), Options{Now: clock, WriteWorkbook: true})
	writeInput(t, params, "wb.csv", "38591123456;1250;2024.06.03. 10:00:00")

	result := p.ProcessFile("wb.csv")
	if result.Outcome != OutcomeArchived {
		t.Fatalf("Outcome got=%v err=%v", result.Outcome, result.Error)
	}
	if filepath.Base(result.Workbook) != "wb.csv.REPORT.xlsx" || !utils.FileExists(result.Workbook) {
		t.Errorf("workbook got=%q", result.Workbook)
	}
}

func TestProcessFolder_LexicographicOrder(t *testing.T) {
	params, p := setup(t)
	writeInput(t, params, "b.csv", "38591123456;1;2024.06.03. 10:00:00")
	writeInput(t, params, "a.csv", "abc;1;2024.06.03. 10:00:00")
	writeInput(t, params, "c.csv", "38591123456;2;2024.06.04. 10:00:00")

	results, err := p.ProcessFolder()
	if err != nil {
		t.Fatalf("ProcessFolder failed: %v", err)
	}

	var names []string
	for _, r := range results {
		names = append(names, r.FileName)
	}
	if strings.Join(names, ",") != "a.csv,b.csv,c.csv" {
		t.Errorf("order got=%v", names)
	}

	summary := Summarize(results, fixedNow, fixedNow.Add(time.Second))
	if summary.Archived != 2 || summary.Rejected != 1 || summary.Failed != 0 {
		t.Errorf("summary got=%+v", summary)
	}

	var out bytes.Buffer
	summary.Print(&out)
	if !strings.Contains(out.String(), "Total files:     3") {
		t.Errorf("printed summary got:\n%s", out.String())
	}
}

func TestProcessFolder_Empty(t *testing.T) {
	_, p := setup(t)

	_, err := p.ProcessFolder()
	if !errors.Is(err, ErrEmptyFolder) {
		t.Fatalf("expected ErrEmptyFolder, got %v", err)
	}
}

func TestRoundTrip_GeneratedFileIsArchived(t *testing.T) {
	params, p := setup(t)
	g := generator.New(params.InputFolder, generator.Options{Seed: 2024, Now: clock}, nil)

	path, err := g.WriteFile(200)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	result := p.ProcessFile(filepath.Base(path))
	if result.Outcome != OutcomeArchived {
		t.Fatalf("generated file should validate, got %v (errors %d, err %v)",
			result.Outcome, result.Stats.ErrorEntries, result.Error)
	}
	if result.Stats.ValidRecords != 200 {
		t.Errorf("ValidRecords got=%d want=200", result.Stats.ValidRecords)
	}
}

func TestPrintResult(t *testing.T) {
	var out bytes.Buffer
	PrintResult(&out, Result{FileName: "x.csv", Outcome: OutcomeRejected, Artifact: "/e/x.csv.ERROR.txt",
		Destination: "/e/x.csv", Moved: false, Stats: Stats{ErrorEntries: 2}})

	got := out.String()
	if !strings.Contains(got, "x.csv: 2 error(s) -> x.csv.ERROR.txt") || !strings.Contains(got, "not moved") {
		t.Errorf("PrintResult got=%q", got)
	}
}
