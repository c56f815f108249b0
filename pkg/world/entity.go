// pkg/world/entity.go
package world

import (
	"github.com/EngoEngine/ecs"
	"github.com/opd-ai/go-collide/pkg/physics"
)

// Entity is a positioned scene object that may carry a physics body
type Entity struct {
	ecs.BasicEntity

	pos       physics.Vector2D
	width     float64
	height    float64
	space     physics.Space
	kinematic bool
	body      *physics.Body

	// OnCollisionFunc is called for every confirmed collision with this
	// entity. Returning false keeps the entity from being moved apart.
	OnCollisionFunc func(r *physics.Response, other physics.Object) bool
}

// NewEntity creates an entity with its top-left corner at (x, y)
func NewEntity(x, y, width, height float64) *Entity {
	return &Entity{
		BasicEntity: ecs.NewBasic(),
		pos:         physics.Vector2D{X: x, Y: y},
		width:       width,
		height:      height,
	}
}

// AttachBody gives the entity a body built from shapes, replacing any existing one
func (e *Entity) AttachBody(shapes ...physics.Shape) (*physics.Body, error) {
	body, err := physics.NewBody(e, shapes...)
	if err != nil {
		return nil, err
	}
	e.body = body
	return body, nil
}

// DetachBody removes the entity's body
func (e *Entity) DetachBody() { e.body = nil }

// Position returns the top-left corner
func (e *Entity) Position() physics.Vector2D { return e.pos }

// SetPosition moves the entity
func (e *Entity) SetPosition(p physics.Vector2D) { e.pos = p }

// Body returns the entity's body, or nil
func (e *Entity) Body() *physics.Body { return e.body }

// Space returns the coordinate space the entity lives in
func (e *Entity) Space() physics.Space { return e.space }

// SetSpace moves the entity between world and screen coordinates
func (e *Entity) SetSpace(s physics.Space) { e.space = s }

// Kinematic reports whether the entity is ignored by collision detection
func (e *Entity) Kinematic() bool { return e.kinematic }

// SetKinematic toggles collision participation
func (e *Entity) SetKinematic(k bool) { e.kinematic = k }

// Size returns the entity's own width and height
func (e *Entity) Size() (float64, float64) { return e.width, e.height }

// Resize changes the entity's own size
func (e *Entity) Resize(width, height float64) {
	e.width = width
	e.height = height
}

// Bounds returns the entity's rectangle merged with its body's bounds
func (e *Entity) Bounds() physics.Bounds {
	b := physics.BoundsFromRect(e.pos.X, e.pos.Y, e.width, e.height)
	if e.body != nil && e.body.ShapeCount() > 0 {
		b.AddBounds(e.body.WorldBounds())
	}
	return b
}

// OnCollision implements physics.CollisionHandler
func (e *Entity) OnCollision(r *physics.Response, other physics.Object) bool {
	if e.OnCollisionFunc == nil {
		return true
	}
	return e.OnCollisionFunc(r, other)
}
