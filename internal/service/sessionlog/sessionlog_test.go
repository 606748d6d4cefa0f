package sessionlog

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/Sid110307/FaceCounter/internal/dto"
	"github.com/Sid110307/FaceCounter/internal/errs"
)

var day = time.Date(2025, 3, 14, 14, 5, 9, 0, time.Local)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestFileName_FromStartDate(t *testing.T) {
	name := FileName(day)
	if name != "FaceCounter_14_03_2025.csv" {
		t.Errorf("unexpected file name %s", name)
	}

	parsed, err := ParseFileDate(filepath.Join("some", "dir", name))
	if err != nil {
		t.Fatalf("ParseFileDate failed: %v", err)
	}
	if parsed.Year() != 2025 || parsed.Month() != time.March || parsed.Day() != 14 {
		t.Errorf("unexpected date %v", parsed)
	}

	matched, _ := filepath.Match(Pattern, name)
	if !matched {
		t.Errorf("%s does not match %s", name, Pattern)
	}
}

func TestParseFileDate_Invalid(t *testing.T) {
	for _, name := range []string{"", "faces.csv", "FaceCounter_.csv", "FaceCounter_14_03_2025.txt", "FaceCounter_99_99_2025.csv"} {
		if _, err := ParseFileDate(name); err == nil {
			t.Errorf("expected error for %q", name)
		}
	}
}

func TestSessionLog_WritesHeaderRowsAndTotal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName(day))

	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	records := []dto.SampleRecord{
		{Timestamp: time.Date(2025, 3, 14, 9, 0, 1, 250_000_000, time.Local), Count: 2},
		{Timestamp: time.Date(2025, 3, 14, 14, 0, 2, 5_000_000, time.Local), Count: 0},
	}
	for _, r := range records {
		if err := log.Append(r); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	if err := log.AppendSummary(2); err != nil {
		t.Fatalf("AppendSummary failed: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	expected := []string{
		"Time,Faces",
		"09:00:01.250 AM,2",
		"02:00:02.005 PM,0",
		"Total,2",
	}
	lines := readLines(t, path)
	if len(lines) != len(expected) {
		t.Fatalf("expected %d lines, got %d: %v", len(expected), len(lines), lines)
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("line %d: got %q, expected %q", i, lines[i], expected[i])
		}
	}

	if !filepath.IsAbs(log.Path()) {
		t.Errorf("expected absolute path, got %s", log.Path())
	}
	if log.Rows() != 2 {
		t.Errorf("expected 2 rows, got %d", log.Rows())
	}
}

func TestSessionLog_RowsVisibleBeforeClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName(day))

	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer log.Close()

	log.Append(dto.SampleRecord{Timestamp: day, Count: 3})

	lines := readLines(t, path)
	if len(lines) != 2 || lines[1] != "02:05:09.000 PM,3" {
		t.Errorf("appended row not flushed: %v", lines)
	}
}

func TestSessionLog_AppendsAcrossRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName(day))

	for run := 0; run < 2; run++ {
		log, err := Open(path)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		log.Append(dto.SampleRecord{Timestamp: day, Count: run + 1})
		log.AppendSummary(run + 1)
		log.Close()
	}

	blocks, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	for i, b := range blocks {
		if !b.HasTotal || b.Total != i+1 || len(b.Samples) != 1 {
			t.Errorf("block %d: %+v", i, b)
		}
	}
}

func TestSessionLog_NoWritesAfterSummary(t *testing.T) {
	log, err := Open(filepath.Join(t.TempDir(), FileName(day)))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer log.Close()

	log.AppendSummary(0)

	if err := log.Append(dto.SampleRecord{Timestamp: day, Count: 1}); !errors.Is(err, errs.ErrInvariantViolation) {
		t.Errorf("expected ErrInvariantViolation, got %v", err)
	}
	if err := log.AppendSummary(1); !errors.Is(err, errs.ErrInvariantViolation) {
		t.Errorf("expected ErrInvariantViolation, got %v", err)
	}
}

func TestSessionLog_CloseIsIdempotent(t *testing.T) {
	log, err := Open(filepath.Join(t.TempDir(), FileName(day)))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := log.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := log.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if err := log.Append(dto.SampleRecord{Timestamp: day}); !errors.Is(err, errs.ErrLogIO) {
		t.Errorf("expected ErrLogIO after close, got %v", err)
	}
}

func TestOpen_FailsOnDirectoryPath(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(dir)
	if !errors.Is(err, errs.ErrLogIO) {
		t.Errorf("expected ErrLogIO, got %v", err)
	}
}

func TestOpen_KeepsOSError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatalf("failed to create blocker: %v", err)
	}

	_, err := Open(filepath.Join(blocker, "logs", FileName(day)))
	if !errors.Is(err, errs.ErrLogIO) {
		t.Errorf("expected ErrLogIO, got %v", err)
	}

	var pathErr *fs.PathError
	if !errors.As(err, &pathErr) {
		t.Errorf("expected the *fs.PathError to stay in the chain, got %v", err)
	}
	if !errors.Is(err, syscall.ENOTDIR) {
		t.Errorf("expected ENOTDIR in the chain, got %v", err)
	}
}

func TestAppend_AfterCloseIsLogIO(t *testing.T) {
	log, err := Open(filepath.Join(t.TempDir(), FileName(day)))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	log.Close()

	if err := log.Append(dto.SampleRecord{Timestamp: day, Count: 1}); !errors.Is(err, errs.ErrLogIO) {
		t.Errorf("expected ErrLogIO, got %v", err)
	}
}

func TestRead_Blocks(t *testing.T) {
	input := strings.Join([]string{
		"Time,Faces",
		"10:00:00.000 AM,1",
		"10:00:01.100 AM,2",
		"Total,3",
		"Time,Faces",
		"11:00:00.000 AM,4",
	}, "\n") + "\n"

	blocks, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if !blocks[0].HasTotal || blocks[0].Total != 3 || len(blocks[0].Samples) != 2 {
		t.Errorf("unexpected first block: %+v", blocks[0])
	}
	if blocks[1].HasTotal || len(blocks[1].Samples) != 1 || blocks[1].Samples[0].Count != 4 {
		t.Errorf("unexpected second block: %+v", blocks[1])
	}
	if blocks[0].Samples[1].Timestamp.Sub(blocks[0].Samples[0].Timestamp) != 1100*time.Millisecond {
		t.Errorf("timestamps not parsed with millisecond precision")
	}
}

func TestRead_Malformed(t *testing.T) {
	inputs := []string{
		"Total,1\n",
		"10:00:00.000 AM,1\n",
		"Time,Faces\nnoon,1\n",
		"Time,Faces\n10:00:00.000 AM,x\n",
		"Time,Faces\nTotal,many\n",
		"Time,Faces,Extra\n",
	}

	for _, in := range inputs {
		if _, err := Read(strings.NewReader(in)); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}
