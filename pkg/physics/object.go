// pkg/physics/object.go
package physics

// Space tags the coordinate space an object's bounds are expressed in
type Space int

const (
	// WorldSpace bounds are in world coordinates
	WorldSpace Space = iota
	// ScreenSpace bounds follow the viewport and must be converted before
	// they are compared against world-space data
	ScreenSpace
)

func (s Space) String() string {
	if s == ScreenSpace {
		return "screen"
	}
	return "world"
}

// Object is the game-object side of a Body: something with a position,
// bounds and (optionally) a physics body.
type Object interface {
	// Position returns the absolute world position shapes are offset from
	Position() Vector2D
	SetPosition(p Vector2D)
	// Body returns nil for objects that take no part in collisions
	Body() *Body
	// Bounds returns the object's own AABB
	Bounds() Bounds
	Space() Space
	Kinematic() bool
}

// CollisionHandler is implemented by objects that want to be told about
// collisions. Returning false suppresses the automatic response for that side.
type CollisionHandler interface {
	OnCollision(r *Response, other Object) bool
}

// Identifier is implemented by objects with a stable numeric id
type Identifier interface {
	ID() uint64
}

// ObjectID returns the object's id, or 0 when it has none
func ObjectID(o Object) uint64 {
	if id, ok := o.(Identifier); ok {
		return id.ID()
	}
	return 0
}
