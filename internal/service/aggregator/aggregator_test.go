package aggregator

import (
	"errors"
	"testing"

	"github.com/Sid110307/FaceCounter/internal/errs"
)

func TestUpdate_Additivity(t *testing.T) {
	tests := [][]int{
		{},
		{0},
		{2, 2},
		{1, 0, 3, 0, 0, 7},
		{100, 250, 1},
	}

	for _, counts := range tests {
		a := New()
		sum := 0
		for i, c := range counts {
			if err := a.Update(c); err != nil {
				t.Fatalf("Update(%d) failed: %v", c, err)
			}
			sum += c
			if a.Total() != sum {
				t.Errorf("after %d updates of %v: total %d, expected %d", i+1, counts, a.Total(), sum)
			}
		}
		if a.Samples() != len(counts) {
			t.Errorf("expected %d samples, got %d", len(counts), a.Samples())
		}
	}
}

func TestUpdate_NegativeCountIsInvariantViolation(t *testing.T) {
	a := New()
	a.Update(4)

	err := a.Update(-1)
	if !errors.Is(err, errs.ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}
	if a.Total() != 4 {
		t.Errorf("total changed by rejected update: %d", a.Total())
	}
}

func TestFinalize_Idempotent(t *testing.T) {
	a := New()
	a.Update(3)
	a.Update(5)

	first := a.Finalize()
	second := a.Finalize()

	if first != 8 || second != 8 {
		t.Errorf("expected 8 twice, got %d and %d", first, second)
	}
	if a.Total() != 8 {
		t.Errorf("finalize mutated total: %d", a.Total())
	}
}

func TestUpdate_AfterFinalizeRejected(t *testing.T) {
	a := New()
	a.Finalize()

	if err := a.Update(1); !errors.Is(err, errs.ErrInvariantViolation) {
		t.Errorf("expected ErrInvariantViolation, got %v", err)
	}
	if a.Finalize() != 0 {
		t.Errorf("expected total 0, got %d", a.Finalize())
	}
}
