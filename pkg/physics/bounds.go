// pkg/physics/bounds.go
package physics

import "math"

// Bounds is an axis-aligned bounding box. A zero Bounds is a degenerate box
// at the origin; use NewBounds for an empty box that any Add will replace.
type Bounds struct {
	Min Vector2D
	Max Vector2D
}

// NewBounds returns an empty bounds (min at +Inf, max at -Inf)
func NewBounds() Bounds {
	b := Bounds{}
	b.Clear()
	return b
}

// BoundsFromRect creates bounds from a top-left corner and a size
func BoundsFromRect(x, y, w, h float64) Bounds {
	return Bounds{
		Min: Vector2D{X: x, Y: y},
		Max: Vector2D{X: x + w, Y: y + h},
	}
}

// Clear resets the bounds to the empty state
func (b *Bounds) Clear() {
	b.SetMinMax(math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1))
}

// SetMinMax sets both corners
func (b *Bounds) SetMinMax(minX, minY, maxX, maxY float64) {
	b.Min.X = minX
	b.Min.Y = minY
	b.Max.X = maxX
	b.Max.Y = maxY
}

func (b Bounds) Left() float64   { return b.Min.X }
func (b Bounds) Right() float64  { return b.Max.X }
func (b Bounds) Top() float64    { return b.Min.Y }
func (b Bounds) Bottom() float64 { return b.Max.Y }
func (b Bounds) Width() float64  { return b.Max.X - b.Min.X }
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }

// CenterX returns the horizontal center
func (b Bounds) CenterX() float64 { return b.Min.X + b.Width()/2 }

// CenterY returns the vertical center
func (b Bounds) CenterY() float64 { return b.Min.Y + b.Height()/2 }

// Center returns the center point
func (b Bounds) Center() Vector2D {
	return Vector2D{X: b.CenterX(), Y: b.CenterY()}
}

// Add grows the bounds to include the given points
func (b *Bounds) Add(points ...Vector2D) {
	for _, p := range points {
		if p.X > b.Max.X {
			b.Max.X = p.X
		}
		if p.X < b.Min.X {
			b.Min.X = p.X
		}
		if p.Y > b.Max.Y {
			b.Max.Y = p.Y
		}
		if p.Y < b.Min.Y {
			b.Min.Y = p.Y
		}
	}
}

// AddBounds grows the bounds to the union with other
func (b *Bounds) AddBounds(other Bounds) {
	if other.Max.X > b.Max.X {
		b.Max.X = other.Max.X
	}
	if other.Min.X < b.Min.X {
		b.Min.X = other.Min.X
	}
	if other.Max.Y > b.Max.Y {
		b.Max.Y = other.Max.Y
	}
	if other.Min.Y < b.Min.Y {
		b.Min.Y = other.Min.Y
	}
}

// Union returns a new bounds covering both
func (b Bounds) Union(other Bounds) Bounds {
	b.AddBounds(other)
	return b
}

// Overlaps reports whether the two boxes intersect. Touching edges count.
func (b Bounds) Overlaps(other Bounds) bool {
	return b.Min.X <= other.Max.X && b.Max.X >= other.Min.X &&
		b.Max.Y >= other.Min.Y && b.Min.Y <= other.Max.Y
}

// Contains reports whether other lies entirely inside b
func (b Bounds) Contains(other Bounds) bool {
	return other.Min.X >= b.Min.X && other.Max.X <= b.Max.X &&
		other.Min.Y >= b.Min.Y && other.Max.Y <= b.Max.Y
}

// ContainsPoint reports whether p lies inside b, edges included
func (b Bounds) ContainsPoint(p Vector2D) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// IsFinite reports whether all four edges are finite numbers
func (b Bounds) IsFinite() bool {
	return !math.IsInf(b.Min.X, 0) && !math.IsNaN(b.Min.X) &&
		!math.IsInf(b.Min.Y, 0) && !math.IsNaN(b.Min.Y) &&
		!math.IsInf(b.Max.X, 0) && !math.IsNaN(b.Max.X) &&
		!math.IsInf(b.Max.Y, 0) && !math.IsNaN(b.Max.Y)
}

// Translate moves the bounds by v
func (b *Bounds) Translate(v Vector2D) {
	b.Min = b.Min.Add(v)
	b.Max = b.Max.Add(v)
}

// Translated returns a copy moved by v
func (b Bounds) Translated(v Vector2D) Bounds {
	b.Translate(v)
	return b
}

// Shift moves the min corner to p, keeping the size
func (b *Bounds) Shift(p Vector2D) {
	w, h := b.Width(), b.Height()
	b.Min = p
	b.Max = Vector2D{X: p.X + w, Y: p.Y + h}
}

// Resize changes the size, keeping the min corner
func (b *Bounds) Resize(w, h float64) {
	b.Max.X = b.Min.X + w
	b.Max.Y = b.Min.Y + h
}
