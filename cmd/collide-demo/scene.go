// cmd/collide-demo/scene.go
package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/opd-ai/go-collide/pkg/collision"
	"github.com/opd-ai/go-collide/pkg/config"
	"github.com/opd-ai/go-collide/pkg/physics"
	"github.com/opd-ai/go-collide/pkg/world"
)

const wallThickness = 10

// buildScene fills w with a closed arena and cfg.Simulation.Bodies movers
// placed from cfg.Simulation.Seed, so the same config gives the same run.
func buildScene(w *world.World, cfg *config.Config) error {
	width, height := cfg.World.Width, cfg.World.Height
	walls := []struct{ x, y, w, h float64 }{
		{0, 0, width, wallThickness},
		{0, height - wallThickness, width, wallThickness},
		{0, 0, wallThickness, height},
		{width - wallThickness, 0, wallThickness, height},
	}
	arena := world.NewContainer(0, 0, width, height)
	for _, wall := range walls {
		e := world.NewEntity(wall.x, wall.y, wall.w, wall.h)
		rect, err := physics.NewRect(0, 0, wall.w, wall.h)
		if err != nil {
			return fmt.Errorf("wall: %w", err)
		}
		body, err := e.AttachBody(rect)
		if err != nil {
			return fmt.Errorf("wall: %w", err)
		}
		body.Static = true
		body.SetCollisionType(collision.WorldShape)
		arena.AddChild(e)
	}
	w.Add(arena)

	rng := rand.New(rand.NewPCG(uint64(cfg.Simulation.Seed), 0x636f6c6c69646521))
	margin := float64(wallThickness + 20)
	for i := 0; i < cfg.Simulation.Bodies; i++ {
		size := 8 + rng.Float64()*12
		x := margin + rng.Float64()*(width-2*margin-size)
		y := margin + rng.Float64()*(height-2*margin-size)
		e := world.NewEntity(x, y, size, size)

		var shape physics.Shape
		var err error
		if i%2 == 0 {
			shape, err = physics.NewCircle(size/2, size/2, size/2)
		} else {
			var rect *physics.Polygon
			rect, err = physics.NewRect(0, 0, size, size)
			if err == nil {
				rect.Rotate(rng.Float64()*0.5, physics.Vector2D{X: size / 2, Y: size / 2})
			}
			shape = rect
		}
		if err != nil {
			return fmt.Errorf("body %d: %w", i, err)
		}

		body, err := e.AttachBody(shape)
		if err != nil {
			return fmt.Errorf("body %d: %w", i, err)
		}
		body.SetCollisionType(collision.NPCObject)
		body.SetVelocity(rng.Float64()*240-120, rng.Float64()*240-120)
		body.Bounce = 0.5
		w.Add(e)
	}
	return nil
}
