package physics

import (
	"errors"
	"testing"
)

func TestScratch_NestedScopes(t *testing.T) {
	s := NewScratch()

	outer := s.Mark()
	v := s.VectorOf(Vector2D{X: 1, Y: 2})
	r := s.Range()
	if *v != (Vector2D{X: 1, Y: 2}) || *r != (Range{}) {
		t.Errorf("unexpected slot contents %v %v", *v, *r)
	}

	inner := s.Mark()
	s.Vector()
	s.Vector()
	if vectors, ranges := s.InUse(); vectors != 3 || ranges != 1 {
		t.Errorf("InUse() = (%d, %d), want (3, 1)", vectors, ranges)
	}

	s.Release(inner)
	if vectors, ranges := s.InUse(); vectors != 1 || ranges != 1 {
		t.Errorf("InUse() after inner release = (%d, %d), want (1, 1)", vectors, ranges)
	}
	s.Release(outer)
	if vectors, ranges := s.InUse(); vectors != 0 || ranges != 0 {
		t.Errorf("InUse() after outer release = (%d, %d), want (0, 0)", vectors, ranges)
	}
}

func TestScratch_GrowsAndReuses(t *testing.T) {
	s := NewScratch()
	initialVectors, initialRanges := s.Capacity()

	m := s.Mark()
	first := s.Vector()
	for i := 0; i < initialVectors*3; i++ {
		s.Vector()
	}
	for i := 0; i < initialRanges*3; i++ {
		s.Range()
	}
	s.Release(m)

	vectors, ranges := s.Capacity()
	if vectors <= initialVectors || ranges <= initialRanges {
		t.Errorf("Capacity() = (%d, %d), expected growth from (%d, %d)", vectors, ranges, initialVectors, initialRanges)
	}

	*first = Vector2D{X: 9, Y: 9}
	if again := s.Vector(); again != first || *again != (Vector2D{}) {
		t.Error("released slot should be reused and zeroed")
	}
	s.Release(m)

	if v, r := s.Capacity(); v != vectors || r != ranges {
		t.Error("pools should not shrink")
	}
}

func TestScratch_OutOfOrderReleasePanics(t *testing.T) {
	s := NewScratch()
	outer := s.Mark()
	s.Vector()
	inner := s.Mark()
	s.Vector()

	s.Release(outer)

	defer func() {
		rec := recover()
		err, ok := rec.(error)
		if !ok || !errors.Is(err, ErrScratchOrder) {
			t.Errorf("recover() = %v, want ErrScratchOrder", rec)
		}
	}()
	s.Release(inner)
}
