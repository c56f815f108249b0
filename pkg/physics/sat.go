// pkg/physics/sat.go
package physics

import (
	"fmt"
	"math"
)

// Voronoi regions of a point relative to a line segment
const (
	leftRegion   = -1
	middleRegion = 0
	rightRegion  = 1
)

// SAT runs separating-axis narrow-phase tests. It owns the scratch pool the
// tests draw from, so one SAT must not be shared between goroutines.
//
// When a Response is passed, it is only written if the test reports an
// intersection; on a miss the caller's response is left as it was.
type SAT struct {
	scratch *Scratch
}

// NewSAT creates a SAT tester with its own scratch pool
func NewSAT() *SAT {
	return &SAT{scratch: NewScratch()}
}

// Scratch exposes the tester's pool, mainly for leak checks
func (s *SAT) Scratch() *Scratch {
	return s.scratch
}

// contact accumulates the minimum overlap while axes or edges are tested
type contact struct {
	overlap float64
	normal  Vector2D
	aInB    bool
	bInA    bool
}

// from seeds c with r's current state. It returns nil when r is nil so the
// tests can skip all response bookkeeping.
func (c *contact) from(r *Response) *contact {
	if r == nil {
		return nil
	}
	*c = contact{overlap: r.Overlap, normal: r.OverlapN, aInB: r.AInB, bInA: r.BInA}
	return c
}

func (c *contact) commit(r *Response, a, b Object) {
	r.A = a
	r.B = b
	r.Overlap = c.overlap
	r.OverlapN = c.normal
	r.OverlapV = c.normal.Scale(c.overlap)
	r.AInB = c.aInB
	r.BInA = c.bInA
}

// worldPos returns the absolute position of a shape. A nil owner sits at the origin.
func worldPos(o Object, s Shape) Vector2D {
	if o == nil {
		return s.Offset()
	}
	return o.Position().Add(s.Offset())
}

// flattenPointsOn projects points onto a unit axis
func flattenPointsOn(points []Vector2D, axis Vector2D, out *Range) {
	lo := math.MaxFloat64
	hi := -math.MaxFloat64
	for _, p := range points {
		d := p.Dot(axis)
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	out.Min = lo
	out.Max = hi
}

// isSeparatingAxis reports whether axis separates the two point sets. When
// it does not and c is non-nil, c keeps the smaller of its current overlap
// and the overlap on this axis.
func (s *SAT) isSeparatingAxis(aPos, bPos Vector2D, aPoints, bPoints []Vector2D, axis Vector2D, c *contact) bool {
	defer s.scratch.Release(s.scratch.Mark())

	rangeA := s.scratch.Range()
	rangeB := s.scratch.Range()
	offset := s.scratch.VectorOf(bPos.Sub(aPos))
	projected := offset.Dot(axis)

	flattenPointsOn(aPoints, axis, rangeA)
	flattenPointsOn(bPoints, axis, rangeB)
	rangeB.Min += projected
	rangeB.Max += projected

	if rangeA.Min > rangeB.Max || rangeB.Min > rangeA.Max {
		return true
	}
	if c == nil {
		return false
	}

	var overlap float64
	if rangeA.Min < rangeB.Min {
		// A starts left of B
		c.aInB = false
		if rangeA.Max < rangeB.Max {
			overlap = rangeA.Max - rangeB.Min
			c.bInA = false
		} else {
			// B nested in A, take the shorter exit
			option1 := rangeA.Max - rangeB.Min
			option2 := rangeB.Max - rangeA.Min
			if option1 < option2 {
				overlap = option1
			} else {
				overlap = -option2
			}
		}
	} else {
		// B starts left of A
		c.bInA = false
		if rangeA.Max > rangeB.Max {
			overlap = rangeA.Min - rangeB.Max
			c.aInB = false
		} else {
			// A nested in B, take the shorter exit
			option1 := rangeA.Max - rangeB.Min
			option2 := rangeB.Max - rangeA.Min
			if option1 < option2 {
				overlap = option1
			} else {
				overlap = -option2
			}
		}
	}

	if abs := math.Abs(overlap); abs < c.overlap {
		c.overlap = abs
		c.normal = axis
		if overlap < 0 {
			c.normal = axis.Negate()
		}
	}
	return false
}

// voronoiRegion classifies point against the segment from the origin to line
func voronoiRegion(line, point Vector2D) int {
	len2 := line.LengthSquared()
	dp := point.Dot(line)
	switch {
	case dp < 0:
		return leftRegion
	case dp > len2:
		return rightRegion
	default:
		return middleRegion
	}
}

// TestPolygonPolygon checks whether two convex polygons intersect
func (s *SAT) TestPolygonPolygon(a Object, polyA *Polygon, b Object, polyB *Polygon, r *Response) bool {
	defer s.scratch.Release(s.scratch.Mark())

	posA := s.scratch.VectorOf(worldPos(a, polyA))
	posB := s.scratch.VectorOf(worldPos(b, polyB))
	var acc contact
	c := acc.from(r)

	for _, axis := range polyA.Normals {
		if s.isSeparatingAxis(*posA, *posB, polyA.Points, polyB.Points, axis, c) {
			return false
		}
	}
	for _, axis := range polyB.Normals {
		if s.isSeparatingAxis(*posA, *posB, polyA.Points, polyB.Points, axis, c) {
			return false
		}
	}

	if r != nil {
		c.commit(r, a, b)
	}
	return true
}

// TestEllipseEllipse checks whether two circles intersect
func (s *SAT) TestEllipseEllipse(a Object, ellA *Ellipse, b Object, ellB *Ellipse, r *Response) bool {
	defer s.scratch.Release(s.scratch.Mark())

	diff := s.scratch.VectorOf(worldPos(b, ellB).Sub(worldPos(a, ellA)))
	radiusA := ellA.Radius
	radiusB := ellB.Radius
	total := radiusA + radiusB
	distSq := diff.LengthSquared()

	if distSq > total*total {
		return false
	}

	if r != nil {
		dist := math.Sqrt(distSq)
		r.A = a
		r.B = b
		r.Overlap = total - dist
		r.OverlapN = diff.Normalize()
		r.OverlapV = r.OverlapN.Scale(r.Overlap)
		r.AInB = radiusA <= radiusB && dist <= radiusB-radiusA
		r.BInA = radiusB <= radiusA && dist <= radiusA-radiusB
	}
	return true
}

// TestPolygonEllipse checks whether a polygon and a circle intersect.
//
// Containment flags are cleared edge by edge as evidence turns up and are
// not re-derived once all edges have been seen.
func (s *SAT) TestPolygonEllipse(a Object, polyA *Polygon, b Object, ellB *Ellipse, r *Response) bool {
	defer s.scratch.Release(s.scratch.Mark())

	circlePos := s.scratch.VectorOf(worldPos(b, ellB).Sub(worldPos(a, polyA)))
	radius := ellB.Radius
	radius2 := radius * radius
	points := polyA.Points
	edges := polyA.Edges
	n := len(edges)
	edge := s.scratch.Vector()
	normal := s.scratch.Vector()
	point := s.scratch.Vector()
	var acc contact
	c := acc.from(r)

	for i := 0; i < n; i++ {
		mark := s.scratch.Mark()
		next := (i + 1) % n
		prev := (i + n - 1) % n
		overlap := 0.0
		var overlapN *Vector2D

		*edge = edges[i]
		// circle center relative to the edge start
		*point = circlePos.Sub(points[i])

		if c != nil && point.LengthSquared() > radius2 {
			c.aInB = false
		}

		inRegion := true
		switch voronoiRegion(*edge, *point) {
		case leftRegion:
			// the start vertex is shared with the previous edge, which must
			// agree the center lies past its end
			*edge = edges[prev]
			point2 := s.scratch.VectorOf(circlePos.Sub(points[prev]))
			if voronoiRegion(*edge, *point2) != rightRegion {
				inRegion = false
			}
			if inRegion {
				dist := point.Length()
				if dist > radius {
					return false
				}
				if c != nil {
					c.bInA = false
					*point = point.Normalize()
					overlapN = point
					overlap = radius - dist
				}
			}

		case rightRegion:
			*edge = edges[next]
			*point = circlePos.Sub(points[next])
			if voronoiRegion(*edge, *point) != leftRegion {
				inRegion = false
			}
			if inRegion {
				dist := point.Length()
				if dist > radius {
					return false
				}
				if c != nil {
					c.bInA = false
					*point = point.Normalize()
					overlapN = point
					overlap = radius - dist
				}
			}

		default:
			*normal = polyA.Normals[i]
			// signed distance from the edge line, positive outside
			dist := point.Dot(*normal)
			if dist > 0 && math.Abs(dist) > radius {
				return false
			}
			if c != nil {
				overlapN = normal
				overlap = radius - dist
				if dist >= 0 || overlap < 2*radius {
					c.bInA = false
				}
			}
		}

		if overlapN != nil && c != nil && math.Abs(overlap) < math.Abs(c.overlap) {
			c.overlap = overlap
			c.normal = *overlapN
		}
		s.scratch.Release(mark)
	}

	if r != nil {
		c.commit(r, a, b)
	}
	return true
}

// TestEllipsePolygon checks whether a circle and a polygon intersect. The
// response is expressed from the circle's side.
func (s *SAT) TestEllipsePolygon(a Object, ellA *Ellipse, b Object, polyB *Polygon, r *Response) bool {
	hit := s.TestPolygonEllipse(b, polyB, a, ellA, r)
	if hit && r != nil {
		r.Swap()
	}
	return hit
}

type testFunc func(s *SAT, a Object, sa Shape, b Object, sb Shape, r *Response) (bool, error)

// dispatch maps (kind of A, kind of B) to the matching narrow-phase test
var dispatch = [kindCount][kindCount]testFunc{
	KindPolygon: {
		KindPolygon: func(s *SAT, a Object, sa Shape, b Object, sb Shape, r *Response) (bool, error) {
			pa, err := asPolygon(sa)
			if err != nil {
				return false, err
			}
			pb, err := asPolygon(sb)
			if err != nil {
				return false, err
			}
			return s.TestPolygonPolygon(a, pa, b, pb, r), nil
		},
		KindEllipse: func(s *SAT, a Object, sa Shape, b Object, sb Shape, r *Response) (bool, error) {
			pa, err := asPolygon(sa)
			if err != nil {
				return false, err
			}
			eb, err := asEllipse(sb)
			if err != nil {
				return false, err
			}
			return s.TestPolygonEllipse(a, pa, b, eb, r), nil
		},
	},
	KindEllipse: {
		KindPolygon: func(s *SAT, a Object, sa Shape, b Object, sb Shape, r *Response) (bool, error) {
			ea, err := asEllipse(sa)
			if err != nil {
				return false, err
			}
			pb, err := asPolygon(sb)
			if err != nil {
				return false, err
			}
			return s.TestEllipsePolygon(a, ea, b, pb, r), nil
		},
		KindEllipse: func(s *SAT, a Object, sa Shape, b Object, sb Shape, r *Response) (bool, error) {
			ea, err := asEllipse(sa)
			if err != nil {
				return false, err
			}
			eb, err := asEllipse(sb)
			if err != nil {
				return false, err
			}
			return s.TestEllipseEllipse(a, ea, b, eb, r), nil
		},
	},
}

// Test runs the narrow-phase test matching the two shape kinds
func (s *SAT) Test(a Object, sa Shape, b Object, sb Shape, r *Response) (bool, error) {
	ka, kb := sa.Kind(), sb.Kind()
	if ka < 0 || ka >= kindCount || kb < 0 || kb >= kindCount || dispatch[ka][kb] == nil {
		return false, fmt.Errorf("%w: %s/%s", ErrUnsupportedShapePair, ka, kb)
	}
	return dispatch[ka][kb](s, a, sa, b, sb, r)
}

func asPolygon(sh Shape) (*Polygon, error) {
	p, ok := sh.(*Polygon)
	if !ok {
		return nil, fmt.Errorf("%w: %T reports kind %s", ErrUnsupportedShapePair, sh, sh.Kind())
	}
	if len(p.Points) < 2 || len(p.Normals) != len(p.Points) || len(p.Edges) != len(p.Points) {
		return nil, fmt.Errorf("%w: %d points", ErrDegeneratePolygon, len(p.Points))
	}
	return p, nil
}

func asEllipse(sh Shape) (*Ellipse, error) {
	e, ok := sh.(*Ellipse)
	if !ok {
		return nil, fmt.Errorf("%w: %T reports kind %s", ErrUnsupportedShapePair, sh, sh.Kind())
	}
	if !(e.Radius > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, e.Radius)
	}
	return e, nil
}
