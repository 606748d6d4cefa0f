// Package sessionlog writes the per-session CSV artifact: a Time,Faces header,
// one row per committed sample and a trailing Total row.
package sessionlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Sid110307/FaceCounter/internal/dto"
	"github.com/Sid110307/FaceCounter/internal/errs"
)

const (
	HeaderTime  = "Time"
	HeaderFaces = "Faces"
	TotalLabel  = "Total"

	filePrefix     = "FaceCounter_"
	fileExt        = ".csv"
	fileDateLayout = "02_01_2006"
)

// Pattern matches every session log name in a directory.
const Pattern = filePrefix + "*" + fileExt

// FileName returns the artifact name for a session started at start.
// Sessions started on the same day append to the same file.
func FileName(start time.Time) string {
	return filePrefix + start.Format(fileDateLayout) + fileExt
}

// ParseFileDate extracts the session date from a name produced by FileName.
func ParseFileDate(name string) (time.Time, error) {
	base := filepath.Base(name)
	if !strings.HasPrefix(base, filePrefix) || !strings.HasSuffix(base, fileExt) {
		return time.Time{}, fmt.Errorf("not a session log name: %s", base)
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(base, filePrefix), fileExt)
	return time.ParseInLocation(fileDateLayout, stamp, time.Local)
}

// SessionLog owns the open log file for the lifetime of one session.
// Rows must be appended with non-decreasing timestamps; this is not checked.
type SessionLog struct {
	file       *os.File
	writer     *csv.Writer
	path       string
	rows       int
	summarized bool
	closed     bool
}

// Open creates or opens path for append and writes the header for this run.
func Open(path string) (*SessionLog, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %s: %w", errs.ErrLogIO, path, err)
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: create directory for %s: %w", errs.ErrLogIO, absPath, err)
	}

	file, err := os.OpenFile(absPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", errs.ErrLogIO, absPath, err)
	}

	l := &SessionLog{
		file:   file,
		writer: csv.NewWriter(file),
		path:   absPath,
	}

	if err := l.writeRow(HeaderTime, HeaderFaces); err != nil {
		file.Close()
		return nil, err
	}
	return l, nil
}

// Append writes one sample row.
func (l *SessionLog) Append(record dto.SampleRecord) error {
	if err := l.writable(); err != nil {
		return err
	}
	if err := l.writeRow(record.FormattedTimestamp(), strconv.Itoa(record.Count)); err != nil {
		return err
	}
	l.rows++
	return nil
}

// AppendSummary writes the trailing Total row. No rows may follow it.
func (l *SessionLog) AppendSummary(total int) error {
	if err := l.writable(); err != nil {
		return err
	}
	if err := l.writeRow(TotalLabel, strconv.Itoa(total)); err != nil {
		return err
	}
	l.summarized = true
	return nil
}

// Close flushes and releases the file. Only the first call does any work.
func (l *SessionLog) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true

	var errList []error
	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		errList = append(errList, err)
	}
	if err := l.file.Sync(); err != nil {
		errList = append(errList, err)
	}
	if err := l.file.Close(); err != nil {
		errList = append(errList, err)
	}

	if err := errors.Join(errList...); err != nil {
		return fmt.Errorf("%w: close %s: %w", errs.ErrLogIO, l.path, err)
	}
	return nil
}

// Path returns the absolute location of the log.
func (l *SessionLog) Path() string {
	return l.path
}

// Rows returns the number of sample rows written by this session.
func (l *SessionLog) Rows() int {
	return l.rows
}

// Summarized reports whether the Total row has been written.
func (l *SessionLog) Summarized() bool {
	return l.summarized
}

func (l *SessionLog) writable() error {
	if l.closed {
		return fmt.Errorf("%w: write to closed log %s", errs.ErrLogIO, l.path)
	}
	if l.summarized {
		return fmt.Errorf("%w: write after Total row", errs.ErrInvariantViolation)
	}
	return nil
}

// writeRow flushes every row so a crash never loses what was already appended.
func (l *SessionLog) writeRow(fields ...string) error {
	if err := l.writer.Write(fields); err != nil {
		return fmt.Errorf("%w: write %s: %w", errs.ErrLogIO, l.path, err)
	}
	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		return fmt.Errorf("%w: flush %s: %w", errs.ErrLogIO, l.path, err)
	}
	return nil
}
