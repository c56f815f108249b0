// pkg/physics/body.go
package physics

import (
	"fmt"
	"math"
	"slices"
)

// Collision type bits. A body collides with another when each one's mask
// matches the other's type.
const (
	NoObject          uint32 = 0
	PlayerObject      uint32 = 1 << 0
	NPCObject         uint32 = 1 << 1
	EnemyObject       uint32 = 1 << 2
	CollectableObject uint32 = 1 << 3
	ActionObject      uint32 = 1 << 4
	ProjectileObject  uint32 = 1 << 5
	WorldShape        uint32 = 1 << 6
	UserObject        uint32 = 1 << 7
	AllObject         uint32 = 0xFFFFFFFF
)

// Body holds the collision shapes and motion state of an Object
type Body struct {
	CollisionType uint32
	CollisionMask uint32
	Static        bool

	Vel          Vector2D
	Force        Vector2D
	Friction     Vector2D
	MaxVel       Vector2D
	Bounce       float64
	Mass         float64
	GravityScale float64

	// Falling is set while the body moves along gravity. Jumping is set when
	// a response pushed it against gravity and cleared once it falls again.
	Falling bool
	Jumping bool

	ancestor Object
	shapes   []Shape
	bounds   Bounds
	// sign of the gravity last applied on the y axis
	gravityDir float64
}

// NewBody creates a body owned by ancestor with the given shapes
func NewBody(ancestor Object, shapes ...Shape) (*Body, error) {
	if ancestor == nil {
		return nil, fmt.Errorf("body requires an owner")
	}
	b := &Body{
		CollisionType: EnemyObject,
		CollisionMask: AllObject,
		MaxVel:        Vector2D{X: 490, Y: 490},
		Mass:          1,
		GravityScale:  1,
		ancestor:      ancestor,
	}
	for _, s := range shapes {
		if s == nil {
			return nil, fmt.Errorf("nil shape")
		}
		b.shapes = append(b.shapes, s)
	}
	b.UpdateBounds()
	return b, nil
}

// Ancestor returns the object that owns this body
func (b *Body) Ancestor() Object { return b.ancestor }

// AddShape appends a shape and returns the new shape count
func (b *Body) AddShape(s Shape) int {
	b.shapes = append(b.shapes, s)
	b.UpdateBounds()
	return len(b.shapes)
}

// RemoveShape removes s and returns the new shape count
func (b *Body) RemoveShape(s Shape) int {
	if i := slices.Index(b.shapes, s); i >= 0 {
		b.shapes = slices.Delete(b.shapes, i, i+1)
		b.UpdateBounds()
	}
	return len(b.shapes)
}

// RemoveShapeAt removes the shape at index i
func (b *Body) RemoveShapeAt(i int) int {
	if i < 0 || i >= len(b.shapes) {
		return len(b.shapes)
	}
	return b.RemoveShape(b.shapes[i])
}

// Shape returns the shape at index i, or nil when out of range
func (b *Body) Shape(i int) Shape {
	if i < 0 || i >= len(b.shapes) {
		return nil
	}
	return b.shapes[i]
}

// Shapes returns the shape list. It must not be modified.
func (b *Body) Shapes() []Shape { return b.shapes }

// ShapeCount returns the number of shapes
func (b *Body) ShapeCount() int { return len(b.shapes) }

// SetCollisionMask sets which types this body collides with
func (b *Body) SetCollisionMask(mask uint32) { b.CollisionMask = mask }

// SetCollisionType sets the type bit(s) of this body
func (b *Body) SetCollisionType(t uint32) { b.CollisionType = t }

// Bounds returns the union of the shape bounds, relative to the ancestor
func (b *Body) Bounds() Bounds { return b.bounds }

// WorldBounds returns Bounds translated to the ancestor's position
func (b *Body) WorldBounds() Bounds {
	return b.bounds.Translated(b.ancestor.Position())
}

// UpdateBounds recomputes the cached bounds from the shapes. It must be
// called after a shape is mutated in place.
func (b *Body) UpdateBounds() {
	b.bounds.Clear()
	for _, s := range b.shapes {
		b.bounds.AddBounds(s.Bounds())
	}
}

// Rotate rotates every polygon shape around the body's center
func (b *Body) Rotate(angle float64) {
	pivot := b.bounds.Center()
	for _, s := range b.shapes {
		if p, ok := s.(*Polygon); ok {
			p.Rotate(angle, pivot.Sub(p.Pos))
		}
	}
	b.UpdateBounds()
}

// SetVelocity sets the current velocity and caps the per-axis max velocity
// to the same magnitudes.
func (b *Body) SetVelocity(x, y float64) {
	b.Vel = Vector2D{X: x, Y: y}
	b.SetMaxVelocity(math.Abs(x), math.Abs(y))
}

// SetMaxVelocity sets the per-axis velocity cap
func (b *Body) SetMaxVelocity(x, y float64) {
	b.MaxVel = Vector2D{X: x, Y: y}
}

// SetFriction sets the per-axis friction
func (b *Body) SetFriction(x, y float64) {
	b.Friction = Vector2D{X: x, Y: y}
}

// Update integrates force, friction and gravity over dt and moves the
// ancestor. It reports whether the body is moving.
func (b *Body) Update(gravity Vector2D, dt float64) bool {
	if b.Static {
		return false
	}
	b.Vel = b.Vel.Add(b.Force.Scale(dt))

	if b.Friction.X != 0 || b.Friction.Y != 0 {
		b.Vel.X = applyFriction(b.Vel.X, b.Friction.X*dt)
		b.Vel.Y = applyFriction(b.Vel.Y, b.Friction.Y*dt)
	}

	b.Vel = b.Vel.Add(gravity.Scale(b.GravityScale * b.Mass * dt))
	b.gravityDir = sign(gravity.Y * b.GravityScale)
	b.Falling = b.Vel.Y*b.gravityDir > 0
	b.Jumping = !b.Falling && b.Jumping

	b.Vel.X = clamp(b.Vel.X, -b.MaxVel.X, b.MaxVel.X)
	b.Vel.Y = clamp(b.Vel.Y, -b.MaxVel.Y, b.MaxVel.Y)

	if b.Vel.X == 0 && b.Vel.Y == 0 {
		return false
	}
	b.ancestor.SetPosition(b.ancestor.Position().Add(b.Vel.Scale(dt)))
	return true
}

// RespondToCollision moves the ancestor out of the other object. The
// response's A side moves against OverlapV, the B side along it.
func (b *Body) RespondToCollision(r *Response) {
	overlap := r.OverlapV
	if r.B == b.ancestor {
		overlap = overlap.Negate()
	}

	b.ancestor.SetPosition(b.ancestor.Position().Sub(overlap))

	if overlap.X != 0 {
		b.Vel.X = math.Trunc(0.5 + b.Vel.X - overlap.X)
		if b.Bounce > 0 {
			b.Vel.X *= -b.Bounce
		}
	}
	if overlap.Y != 0 {
		b.Vel.Y = math.Trunc(0.5 + b.Vel.Y - overlap.Y)
		if b.Bounce > 0 {
			b.Vel.Y *= -b.Bounce
		}

		dir := b.gravityDir
		if dir == 0 {
			dir = 1
		}
		b.Falling = overlap.Y >= dir
		b.Jumping = overlap.Y <= -dir
	}
}

func applyFriction(v, f float64) float64 {
	switch {
	case v+f < 0:
		return v + f
	case v-f > 0:
		return v - f
	default:
		return 0
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
