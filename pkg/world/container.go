// pkg/world/container.go
package world

import (
	"slices"

	"github.com/opd-ai/go-collide/pkg/physics"
)

// Container is an entity holding an ordered list of children. Children
// keep their own absolute positions.
type Container struct {
	Entity
	children []physics.Object
}

// NewContainer creates an empty container covering the given area
func NewContainer(x, y, width, height float64) *Container {
	return &Container{Entity: *NewEntity(x, y, width, height)}
}

// AttachBody gives the container a body owned by the container itself
func (c *Container) AttachBody(shapes ...physics.Shape) (*physics.Body, error) {
	body, err := physics.NewBody(c, shapes...)
	if err != nil {
		return nil, err
	}
	c.body = body
	return body, nil
}

// AddChild appends o to the container
func (c *Container) AddChild(o physics.Object) {
	c.children = append(c.children, o)
}

// RemoveChild removes o from the container or any nested container and
// reports whether it was found.
func (c *Container) RemoveChild(o physics.Object) bool {
	if i := slices.Index(c.children, o); i >= 0 {
		c.children = slices.Delete(c.children, i, i+1)
		return true
	}
	for _, child := range c.children {
		if nested, ok := child.(*Container); ok && nested.RemoveChild(o) {
			return true
		}
	}
	return false
}

// Children returns the direct children in insertion order
func (c *Container) Children() []physics.Object { return c.children }

// Find returns the first descendant whose ID is id
func (c *Container) Find(id uint64) physics.Object {
	for _, child := range c.children {
		if physics.ObjectID(child) == id {
			return child
		}
		if nested, ok := child.(*Container); ok {
			if found := nested.Find(id); found != nil {
				return found
			}
		}
	}
	return nil
}

// Walk calls fn for every descendant, depth first in insertion order
func (c *Container) Walk(fn func(o physics.Object)) {
	for _, child := range c.children {
		fn(child)
		if nested, ok := child.(*Container); ok {
			nested.Walk(fn)
		}
	}
}
