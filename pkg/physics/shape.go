// pkg/physics/shape.go
package physics

import (
	"fmt"
	"math"
)

// Kind identifies a narrow-phase shape variant
type Kind int

const (
	KindPolygon Kind = iota
	KindEllipse

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindPolygon:
		return "Polygon"
	case KindEllipse:
		return "Ellipse"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Shape is a collision shape attached to a Body. Offset is relative to the
// body's owner; Bounds are in the same local space with the offset applied.
type Shape interface {
	Kind() Kind
	Offset() Vector2D
	Bounds() Bounds
}

// Polygon is a convex polygon given as an ordered ring of points relative
// to Pos. Edges and Normals are kept in sync with Points.
type Polygon struct {
	Pos     Vector2D
	Points  []Vector2D
	Edges   []Vector2D
	Normals []Vector2D

	bounds Bounds
}

// NewPolygon creates a polygon at (x, y) from the given points
func NewPolygon(x, y float64, points []Vector2D) (*Polygon, error) {
	p := &Polygon{}
	if err := p.SetShape(x, y, points); err != nil {
		return nil, err
	}
	return p, nil
}

// NewRect creates an axis-aligned rectangle polygon with its top-left corner at (x, y)
func NewRect(x, y, w, h float64) (*Polygon, error) {
	return NewPolygon(x, y, []Vector2D{
		{X: 0, Y: 0},
		{X: w, Y: 0},
		{X: w, Y: h},
		{X: 0, Y: h},
	})
}

// NewLine creates a two-point polygon from (x, y)+from to (x, y)+to
func NewLine(x, y float64, from, to Vector2D) (*Polygon, error) {
	return NewPolygon(x, y, []Vector2D{from, to})
}

// Kind implements Shape
func (p *Polygon) Kind() Kind { return KindPolygon }

// Offset implements Shape
func (p *Polygon) Offset() Vector2D { return p.Pos }

// Bounds implements Shape
func (p *Polygon) Bounds() Bounds { return p.bounds }

// SetShape replaces position and points. The points slice is copied. On
// error the polygon is left unchanged.
func (p *Polygon) SetShape(x, y float64, points []Vector2D) error {
	if err := validatePoints(points); err != nil {
		return err
	}
	p.Pos = Vector2D{X: x, Y: y}
	p.Points = append(p.Points[:0], points...)
	p.recalc()
	return nil
}

// validatePoints rejects rings with fewer than two points or a zero-length edge
func validatePoints(points []Vector2D) error {
	n := len(points)
	if n < 2 {
		return fmt.Errorf("%w: %d points", ErrDegeneratePolygon, n)
	}
	for i := 0; i < n; i++ {
		if points[(i+1)%n].Sub(points[i]).LengthSquared() == 0 {
			return fmt.Errorf("%w: vertices %d and %d coincide", ErrDegeneratePolygon, i, (i+1)%n)
		}
	}
	return nil
}

// Translate moves every point by v, keeping Pos
func (p *Polygon) Translate(v Vector2D) {
	for i := range p.Points {
		p.Points[i] = p.Points[i].Add(v)
	}
	p.updateBounds()
}

// Rotate rotates the points by angle around pivot (relative to Pos)
func (p *Polygon) Rotate(angle float64, pivot Vector2D) {
	if angle == 0 {
		return
	}
	for i := range p.Points {
		p.Points[i] = p.Points[i].RotateAround(angle, pivot)
	}
	p.recalc()
}

// recalc rebuilds edges, normals and bounds from Points, which must have
// passed validatePoints
func (p *Polygon) recalc() {
	n := len(p.Points)
	p.Edges = resize(p.Edges, n)
	p.Normals = resize(p.Normals, n)
	for i := 0; i < n; i++ {
		e := p.Points[(i+1)%n].Sub(p.Points[i])
		p.Edges[i] = e
		p.Normals[i] = e.Perp().Normalize()
	}
	p.updateBounds()
}

func (p *Polygon) updateBounds() {
	p.bounds.Clear()
	p.bounds.Add(p.Points...)
	p.bounds.Translate(p.Pos)
}

func resize(s []Vector2D, n int) []Vector2D {
	if cap(s) < n {
		return make([]Vector2D, n)
	}
	return s[:n]
}

// Ellipse is a circle-backed ellipse. Only Radius takes part in the narrow
// phase; RadiusV gives the per-axis extent used for bounds.
type Ellipse struct {
	Pos     Vector2D
	Radius  float64
	RadiusV Vector2D

	bounds Bounds
}

// NewEllipse creates an ellipse centered at (x, y) with the given full width and height
func NewEllipse(x, y, w, h float64) (*Ellipse, error) {
	e := &Ellipse{}
	if err := e.SetShape(x, y, w, h); err != nil {
		return nil, err
	}
	return e, nil
}

// NewCircle creates a circle centered at (x, y)
func NewCircle(x, y, radius float64) (*Ellipse, error) {
	return NewEllipse(x, y, radius*2, radius*2)
}

// SetShape replaces center and size
func (e *Ellipse) SetShape(x, y, w, h float64) error {
	if !(w > 0) || !(h > 0) {
		return fmt.Errorf("%w: %vx%v", ErrInvalidRadius, w, h)
	}
	e.Pos = Vector2D{X: x, Y: y}
	e.RadiusV = Vector2D{X: w / 2, Y: h / 2}
	e.Radius = math.Max(e.RadiusV.X, e.RadiusV.Y)
	e.bounds = Bounds{Min: e.Pos.Sub(e.RadiusV), Max: e.Pos.Add(e.RadiusV)}
	return nil
}

// Kind implements Shape
func (e *Ellipse) Kind() Kind { return KindEllipse }

// Offset implements Shape
func (e *Ellipse) Offset() Vector2D { return e.Pos }

// Bounds implements Shape
func (e *Ellipse) Bounds() Bounds { return e.bounds }
