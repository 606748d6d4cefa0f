// Package importer loads session logs written by earlier runs into the archive.
package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Sid110307/FaceCounter/internal/model"
	"github.com/Sid110307/FaceCounter/internal/repository"
	"github.com/Sid110307/FaceCounter/internal/service/sessionlog"

	"github.com/google/uuid"
)

// ImportSource is stored as the session source for imported blocks.
const ImportSource = "import"

// Result counts what happened to the blocks of one or more files.
type Result struct {
	Imported   int
	Duplicates int
	Empty      int
	Samples    int
}

func (r *Result) add(other Result) {
	r.Imported += other.Imported
	r.Duplicates += other.Duplicates
	r.Empty += other.Empty
	r.Samples += other.Samples
}

type Importer struct {
	sessions repository.SessionRepository
	samples  repository.SampleRepository
}

func New(sessions repository.SessionRepository, samples repository.SampleRepository) *Importer {
	return &Importer{sessions: sessions, samples: samples}
}

// ImportDir imports every session log in dir. Files that fail to parse are
// reported through skip and do not stop the import.
func (im *Importer) ImportDir(dir string, skip func(path string, err error)) (Result, error) {
	paths, err := filepath.Glob(filepath.Join(dir, sessionlog.Pattern))
	if err != nil {
		return Result{}, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	var total Result
	for _, path := range paths {
		res, err := im.ImportFile(path)
		if err != nil {
			if skip != nil {
				skip(path, err)
			}
			continue
		}
		total.add(res)
	}
	return total, nil
}

// ImportFile imports each block of one session log as a session. Blocks without
// samples carry no time of day and are skipped. A block already in the archive
// is counted as a duplicate.
func (im *Importer) ImportFile(path string) (Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Result{}, err
	}

	date, err := sessionlog.ParseFileDate(abs)
	if err != nil {
		return Result{}, err
	}

	blocks, err := sessionlog.ReadFile(abs)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, block := range blocks {
		if len(block.Samples) == 0 {
			res.Empty++
			continue
		}

		imported, err := im.importBlock(abs, date, block)
		if err != nil {
			return res, err
		}
		if !imported {
			res.Duplicates++
			continue
		}
		res.Imported++
		res.Samples += len(block.Samples)
	}
	return res, nil
}

func (im *Importer) importBlock(logPath string, date time.Time, block sessionlog.Block) (bool, error) {
	samples := make([]model.Sample, 0, len(block.Samples))
	total := 0
	for _, record := range block.Samples {
		samples = append(samples, model.Sample{Timestamp: OnDate(date, record.Timestamp), Faces: record.Count})
		total += record.Count
	}
	if block.HasTotal {
		total = block.Total
	}

	startedAt := samples[0].Timestamp
	exists, err := im.sessions.ExistsForLog(logPath, startedAt)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	session := &model.Session{
		ID:        uuid.NewString(),
		Source:    ImportSource,
		LogPath:   logPath,
		StartedAt: startedAt,
	}
	if err := im.sessions.Insert(session); err != nil {
		return false, err
	}

	for i := range samples {
		samples[i].SessionID = session.ID
	}
	if err := im.samples.InsertBatch(samples); err != nil {
		return false, im.discard(session.ID, err)
	}

	if block.HasTotal {
		if err := im.sessions.Finish(session.ID, samples[len(samples)-1].Timestamp, total); err != nil {
			return false, im.discard(session.ID, err)
		}
	}
	return true, nil
}

// discard removes a half-written session so a later import does not take it
// for a duplicate.
func (im *Importer) discard(id string, cause error) error {
	if err := im.sessions.Delete(id); err != nil {
		return errors.Join(cause, fmt.Errorf("failed to discard session %s: %w", id, err))
	}
	return cause
}

// OnDate combines the calendar day of date with the time of day of clock.
func OnDate(date, clock time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), date.Location())
}
