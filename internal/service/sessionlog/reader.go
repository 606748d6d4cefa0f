package sessionlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/Sid110307/FaceCounter/internal/dto"
)

// Block is one run's worth of rows: everything between a header and its Total row.
type Block struct {
	// Samples carry only a time of day; the date lives in the file name.
	Samples  []dto.SampleRecord
	Total    int
	HasTotal bool
}

// ReadFile parses a session log written by SessionLog.
func ReadFile(path string) ([]Block, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session log: %w", err)
	}
	defer file.Close()

	return Read(file)
}

// Read parses session log rows into blocks. A block without a Total row,
// e.g. from a killed process, is returned with HasTotal false.
func Read(r io.Reader) ([]Block, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2

	var blocks []Block
	var current *Block
	line := 0

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}

		switch row[0] {
		case HeaderTime:
			if current != nil {
				blocks = append(blocks, *current)
			}
			current = &Block{}

		case TotalLabel:
			if current == nil {
				return nil, fmt.Errorf("row %d: Total row before header", line)
			}
			total, err := strconv.Atoi(row[1])
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid total %q: %w", line, row[1], err)
			}
			current.Total = total
			current.HasTotal = true
			blocks = append(blocks, *current)
			current = nil

		default:
			if current == nil {
				return nil, fmt.Errorf("row %d: sample row outside a session block", line)
			}
			ts, err := time.Parse(dto.TimestampLayout, row[0])
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid timestamp %q: %w", line, row[0], err)
			}
			count, err := strconv.Atoi(row[1])
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid count %q: %w", line, row[1], err)
			}
			current.Samples = append(current.Samples, dto.SampleRecord{Timestamp: ts, Count: count})
		}
	}

	if current != nil {
		blocks = append(blocks, *current)
	}
	return blocks, nil
}
