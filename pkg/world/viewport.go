// pkg/world/viewport.go
package world

import "github.com/opd-ai/go-collide/pkg/physics"

// Camera is a viewport whose top-left corner sits at Pos in world space.
// Screen-space entities are placed relative to it.
type Camera struct {
	Pos physics.Vector2D
}

// LocalToWorld converts screen-space bounds to world coordinates
func (c *Camera) LocalToWorld(b physics.Bounds) physics.Bounds {
	return b.Translated(c.Pos)
}

// Move shifts the camera by v
func (c *Camera) Move(v physics.Vector2D) {
	c.Pos = c.Pos.Add(v)
}
