package physics

import (
	"errors"
	"math"
	"testing"
)

// testObj is a minimal Object positioned in world space
type testObj struct {
	pos  Vector2D
	body *Body
}

func (o *testObj) Position() Vector2D     { return o.pos }
func (o *testObj) SetPosition(p Vector2D) { o.pos = p }
func (o *testObj) Body() *Body            { return o.body }
func (o *testObj) Space() Space           { return WorldSpace }
func (o *testObj) Kinematic() bool        { return false }

func (o *testObj) Bounds() Bounds {
	if o.body == nil {
		return BoundsFromRect(o.pos.X, o.pos.Y, 0, 0)
	}
	return o.body.WorldBounds()
}

func at(x, y float64) *testObj { return &testObj{pos: Vector2D{X: x, Y: y}} }

func mustRect(t *testing.T, w, h float64) *Polygon {
	t.Helper()
	r, err := NewRect(0, 0, w, h)
	if err != nil {
		t.Fatalf("NewRect: %v", err)
	}
	return r
}

func mustCircle(t *testing.T, r float64) *Ellipse {
	t.Helper()
	c, err := NewCircle(0, 0, r)
	if err != nil {
		t.Fatalf("NewCircle: %v", err)
	}
	return c
}

func assertNoScratchInUse(t *testing.T, s *SAT) {
	t.Helper()
	if vectors, ranges := s.Scratch().InUse(); vectors != 0 || ranges != 0 {
		t.Errorf("scratch still holds %d vectors and %d ranges", vectors, ranges)
	}
}

func TestSAT_PolygonPolygon(t *testing.T) {
	tests := []struct {
		name        string
		bx, by      float64
		wantHit     bool
		wantOverlap float64
		wantN       Vector2D
	}{
		{name: "horizontal_overlap", bx: 5, by: 0, wantHit: true, wantOverlap: 5, wantN: Vector2D{X: 1}},
		{name: "vertical_overlap", bx: 0, by: 8, wantHit: true, wantOverlap: 2, wantN: Vector2D{Y: 1}},
		{name: "overlap_from_left", bx: -7, by: 1, wantHit: true, wantOverlap: 3, wantN: Vector2D{X: -1}},
		{name: "separated", bx: 11, by: 0, wantHit: false},
		{name: "diagonal_gap", bx: 10.5, by: 10.5, wantHit: false},
	}

	sat := NewSAT()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := at(0, 0), at(tt.bx, tt.by)
			r := NewResponse()
			hit := sat.TestPolygonPolygon(a, mustRect(t, 10, 10), b, mustRect(t, 10, 10), r)
			assertNoScratchInUse(t, sat)

			if hit != tt.wantHit {
				t.Fatalf("hit = %v, want %v", hit, tt.wantHit)
			}
			if !hit {
				if !math.IsInf(r.Overlap, 1) || r.A != nil {
					t.Errorf("response written on a miss: %+v", r)
				}
				return
			}
			if !nearlyEqual(r.Overlap, tt.wantOverlap) {
				t.Errorf("Overlap = %v, want %v", r.Overlap, tt.wantOverlap)
			}
			if !vecNearlyEqual(r.OverlapN, tt.wantN) {
				t.Errorf("OverlapN = %v, want %v", r.OverlapN, tt.wantN)
			}
			if !vecNearlyEqual(r.OverlapV, tt.wantN.Scale(tt.wantOverlap)) {
				t.Errorf("OverlapV = %v", r.OverlapV)
			}
			if r.A != Object(a) || r.B != Object(b) {
				t.Error("participants not recorded")
			}
			if r.AInB || r.BInA {
				t.Errorf("unexpected containment AInB=%v BInA=%v", r.AInB, r.BInA)
			}
		})
	}
}

func TestSAT_PolygonPolygonSymmetry(t *testing.T) {
	triangle, err := NewPolygon(0, 0, []Vector2D{{X: 0, Y: 0}, {X: 12, Y: 4}, {X: 3, Y: 9}})
	if err != nil {
		t.Fatalf("NewPolygon: %v", err)
	}
	shapes := []*Polygon{mustRect(t, 10, 10), mustRect(t, 4, 16), triangle}
	offsets := []Vector2D{{X: 0, Y: 0}, {X: 3, Y: 2}, {X: 9, Y: -5}, {X: -11, Y: 4}, {X: 14, Y: 14}, {X: 2, Y: 12}}

	sat := NewSAT()
	for i, sa := range shapes {
		for j, sb := range shapes {
			for _, off := range offsets {
				a, b := at(0, 0), at(off.X, off.Y)
				rab, rba := NewResponse(), NewResponse()
				hitAB := sat.TestPolygonPolygon(a, sa, b, sb, rab)
				hitBA := sat.TestPolygonPolygon(b, sb, a, sa, rba)
				if hitAB != hitBA {
					t.Errorf("shapes %d/%d at %v: hit %v one way and %v the other", i, j, off, hitAB, hitBA)
					continue
				}
				if hitAB && !nearlyEqual(rab.Overlap, rba.Overlap) {
					t.Errorf("shapes %d/%d at %v: overlap %v vs %v", i, j, off, rab.Overlap, rba.Overlap)
				}
			}
		}
	}
	assertNoScratchInUse(t, sat)
}

func TestSAT_PolygonContainment(t *testing.T) {
	sat := NewSAT()
	big, small := at(0, 0), at(4, 4)
	r := NewResponse()

	if !sat.TestPolygonPolygon(big, mustRect(t, 10, 10), small, mustRect(t, 2, 2), r) {
		t.Fatal("nested squares should collide")
	}
	if r.AInB || !r.BInA {
		t.Errorf("AInB=%v BInA=%v, want false/true", r.AInB, r.BInA)
	}

	r.Clear()
	if !sat.TestPolygonPolygon(small, mustRect(t, 2, 2), big, mustRect(t, 10, 10), r) {
		t.Fatal("nested squares should collide")
	}
	if !r.AInB || r.BInA {
		t.Errorf("AInB=%v BInA=%v, want true/false", r.AInB, r.BInA)
	}
}

func TestSAT_EllipseEllipse(t *testing.T) {
	tests := []struct {
		name        string
		ra, rb      float64
		bx          float64
		wantHit     bool
		wantOverlap float64
		wantAInB    bool
		wantBInA    bool
	}{
		{name: "apart", ra: 3, rb: 3, bx: 10, wantHit: false},
		{name: "overlapping", ra: 3, rb: 3, bx: 5, wantHit: true, wantOverlap: 1},
		{name: "touching", ra: 3, rb: 3, bx: 6, wantHit: true, wantOverlap: 0},
		{name: "a_inside_b", ra: 1, rb: 5, bx: 2, wantHit: true, wantOverlap: 4, wantAInB: true},
		{name: "b_inside_a", ra: 5, rb: 1, bx: 2, wantHit: true, wantOverlap: 4, wantBInA: true},
	}

	sat := NewSAT()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := at(0, 0), at(tt.bx, 0)
			r := NewResponse()
			hit := sat.TestEllipseEllipse(a, mustCircle(t, tt.ra), b, mustCircle(t, tt.rb), r)
			assertNoScratchInUse(t, sat)

			if hit != tt.wantHit {
				t.Fatalf("hit = %v, want %v", hit, tt.wantHit)
			}
			if !hit {
				if !math.IsInf(r.Overlap, 1) {
					t.Errorf("response written on a miss: %+v", r)
				}
				return
			}
			if !nearlyEqual(r.Overlap, tt.wantOverlap) {
				t.Errorf("Overlap = %v, want %v", r.Overlap, tt.wantOverlap)
			}
			if !vecNearlyEqual(r.OverlapN, Vector2D{X: 1}) {
				t.Errorf("OverlapN = %v, want (1, 0)", r.OverlapN)
			}
			if r.AInB != tt.wantAInB || r.BInA != tt.wantBInA {
				t.Errorf("AInB=%v BInA=%v, want %v/%v", r.AInB, r.BInA, tt.wantAInB, tt.wantBInA)
			}
		})
	}
}

func TestSAT_PolygonEllipse(t *testing.T) {
	diag := Vector2D{X: 1, Y: 1}.Normalize()
	tests := []struct {
		name        string
		size        float64
		cx, cy      float64
		radius      float64
		wantHit     bool
		wantOverlap float64
		wantN       Vector2D
		wantBInA    bool
	}{
		{name: "edge_region", size: 10, cx: 12, cy: 5, radius: 3, wantHit: true, wantOverlap: 1, wantN: Vector2D{X: 1}},
		{name: "edge_region_miss", size: 10, cx: 14, cy: 5, radius: 3, wantHit: false},
		{name: "vertex_region", size: 10, cx: 12, cy: 12, radius: 3, wantHit: true, wantOverlap: 3 - math.Sqrt(8), wantN: diag},
		{name: "vertex_region_miss", size: 10, cx: 13, cy: 13, radius: 3, wantHit: false},
		{name: "circle_inside", size: 20, cx: 10, cy: 10, radius: 2, wantHit: true, wantOverlap: 12, wantN: Vector2D{Y: -1}, wantBInA: true},
	}

	sat := NewSAT()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := at(0, 0), at(tt.cx, tt.cy)
			r := NewResponse()
			hit := sat.TestPolygonEllipse(a, mustRect(t, tt.size, tt.size), b, mustCircle(t, tt.radius), r)
			assertNoScratchInUse(t, sat)

			if hit != tt.wantHit {
				t.Fatalf("hit = %v, want %v", hit, tt.wantHit)
			}
			if !hit {
				if r.A != nil || !math.IsInf(r.Overlap, 1) {
					t.Errorf("response written on a miss: %+v", r)
				}
				return
			}
			if !nearlyEqual(r.Overlap, tt.wantOverlap) {
				t.Errorf("Overlap = %v, want %v", r.Overlap, tt.wantOverlap)
			}
			if !vecNearlyEqual(r.OverlapN, tt.wantN) {
				t.Errorf("OverlapN = %v, want %v", r.OverlapN, tt.wantN)
			}
			if r.AInB {
				t.Error("a polygon larger than the circle cannot be inside it")
			}
			if r.BInA != tt.wantBInA {
				t.Errorf("BInA = %v, want %v", r.BInA, tt.wantBInA)
			}
		})
	}
}

func TestSAT_EllipsePolygonSwapsResponse(t *testing.T) {
	sat := NewSAT()
	circle, box := at(12, 5), at(0, 0)
	r := NewResponse()

	if !sat.TestEllipsePolygon(circle, mustCircle(t, 3), box, mustRect(t, 10, 10), r) {
		t.Fatal("expected a hit")
	}
	if r.A != Object(circle) || r.B != Object(box) {
		t.Error("response should be expressed from the circle's side")
	}
	if !vecNearlyEqual(r.OverlapN, Vector2D{X: -1}) || !nearlyEqual(r.Overlap, 1) {
		t.Errorf("OverlapN = %v Overlap = %v, want (-1, 0) and 1", r.OverlapN, r.Overlap)
	}
	assertNoScratchInUse(t, sat)
}

func TestSAT_NilResponse(t *testing.T) {
	sat := NewSAT()
	if !sat.TestPolygonPolygon(at(0, 0), mustRect(t, 10, 10), at(5, 0), mustRect(t, 10, 10), nil) {
		t.Error("polygon pair should hit without a response")
	}
	if !sat.TestPolygonEllipse(at(0, 0), mustRect(t, 10, 10), at(12, 12), mustCircle(t, 3), nil) {
		t.Error("polygon/circle pair should hit without a response")
	}
	if sat.TestEllipseEllipse(at(0, 0), mustCircle(t, 3), at(10, 0), mustCircle(t, 3), nil) {
		t.Error("distant circles should miss")
	}
	assertNoScratchInUse(t, sat)
}

func TestSAT_NilOwnerUsesShapeOffset(t *testing.T) {
	sat := NewSAT()
	ray, err := NewLine(0, 0, Vector2D{X: 0, Y: 5}, Vector2D{X: 30, Y: 5})
	if err != nil {
		t.Fatalf("NewLine: %v", err)
	}
	hit, err := sat.Test(nil, ray, at(20, 0), mustRect(t, 10, 10), nil)
	if err != nil || !hit {
		t.Errorf("Test() = %v, %v, want a hit", hit, err)
	}
	hit, err = sat.Test(nil, ray, at(40, 0), mustRect(t, 10, 10), nil)
	if err != nil || hit {
		t.Errorf("Test() = %v, %v, want a miss", hit, err)
	}
}

// fakeShape reports an arbitrary kind without being a real shape
type fakeShape struct{ kind Kind }

func (f fakeShape) Kind() Kind       { return f.kind }
func (f fakeShape) Offset() Vector2D { return Vector2D{} }
func (f fakeShape) Bounds() Bounds   { return NewBounds() }

func TestSAT_TestErrors(t *testing.T) {
	rect := mustRect(t, 10, 10)
	tests := []struct {
		name    string
		shape   Shape
		wantErr error
	}{
		{name: "unknown_kind", shape: fakeShape{kind: Kind(7)}, wantErr: ErrUnsupportedShapePair},
		{name: "negative_kind", shape: fakeShape{kind: Kind(-1)}, wantErr: ErrUnsupportedShapePair},
		{name: "kind_without_type", shape: fakeShape{kind: KindEllipse}, wantErr: ErrUnsupportedShapePair},
		{name: "degenerate_polygon", shape: &Polygon{Points: []Vector2D{{X: 1, Y: 1}}}, wantErr: ErrDegeneratePolygon},
		{name: "zero_radius", shape: &Ellipse{}, wantErr: ErrInvalidRadius},
	}

	sat := NewSAT()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResponse()
			hit, err := sat.Test(at(0, 0), rect, at(0, 0), tt.shape, r)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Test() error = %v, want %v", err, tt.wantErr)
			}
			if hit || r.A != nil {
				t.Error("failed test must not report a hit")
			}
		})
	}
	assertNoScratchInUse(t, sat)
}
