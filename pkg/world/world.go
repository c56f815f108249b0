// pkg/world/world.go
package world

import (
	"context"
	"errors"
	"fmt"

	"github.com/EngoEngine/ecs"
	"github.com/opd-ai/go-collide/pkg/collision"
	"github.com/opd-ai/go-collide/pkg/config"
	"github.com/opd-ai/go-collide/pkg/event"
	"github.com/opd-ai/go-collide/pkg/logging"
	"github.com/opd-ai/go-collide/pkg/physics"
	"github.com/opd-ai/go-collide/pkg/spatial"
)

// World owns the scene root, the broadphase and the detector. Every tick it
// rebuilds the quadtree from the scene, integrates the bodies and resolves
// their collisions. A World is not safe for concurrent use.
type World struct {
	root     *Container
	tree     *spatial.QuadTree
	detector *collision.Detector
	gravity  physics.Vector2D
	bus      *event.Bus
	logger   *logging.Logger
	viewport spatial.Viewport

	ecs    ecs.World
	system *CollisionSystem

	tick    uint64
	active  []physics.Object
	removed map[physics.Object]struct{}
	stepErr error
}

// Option configures a World
type Option func(*World)

// WithEventBus sets the bus collision, rebuild and entity events go to
func WithEventBus(bus *event.Bus) Option {
	return func(w *World) { w.bus = bus }
}

// WithLogger sets the world's logger
func WithLogger(logger *logging.Logger) Option {
	return func(w *World) { w.logger = logger }
}

// WithViewport sets the viewport used to place screen-space entities
func WithViewport(v spatial.Viewport) Option {
	return func(w *World) { w.viewport = v }
}

// NewWorld creates a world sized and tuned from cfg
func NewWorld(cfg *config.Config, opts ...Option) (*World, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &World{
		root:    NewContainer(0, 0, cfg.World.Width, cfg.World.Height),
		gravity: physics.Vector2D{X: cfg.World.Gravity.X, Y: cfg.World.Gravity.Y},
		removed: make(map[physics.Object]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.bus == nil {
		w.bus = event.NewEventBus()
	}
	if w.logger == nil {
		w.logger = logging.Discard()
	}

	treeOpts := []spatial.Option{
		spatial.WithMaxObjects(cfg.QuadTree.MaxObjects),
		spatial.WithMaxLevels(cfg.QuadTree.MaxLevels),
	}
	if w.viewport != nil {
		treeOpts = append(treeOpts, spatial.WithViewport(w.viewport))
	}
	tree, err := spatial.New(physics.BoundsFromRect(0, 0, cfg.World.Width, cfg.World.Height), treeOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create broadphase: %w", err)
	}
	w.tree = tree
	w.detector = collision.NewDetector(tree,
		collision.WithEventBus(w.bus),
		collision.WithLogger(w.logger),
	)

	w.system = &CollisionSystem{world: w}
	w.ecs.AddSystem(w.system)
	return w, nil
}

// Root returns the scene root
func (w *World) Root() *Container { return w.root }

// Detector returns the world's collision detector
func (w *World) Detector() *collision.Detector { return w.detector }

// Broadphase returns the quadtree rebuilt every tick
func (w *World) Broadphase() *spatial.QuadTree { return w.tree }

// Bus returns the world's event bus
func (w *World) Bus() *event.Bus { return w.bus }

// Tick returns the number of completed updates
func (w *World) Tick() uint64 { return w.tick }

// Gravity returns the gravity applied to non-static bodies
func (w *World) Gravity() physics.Vector2D { return w.gravity }

// SetGravity replaces the world gravity
func (w *World) SetGravity(g physics.Vector2D) { w.gravity = g }

// Add appends o to the scene root. It is indexed from the next update on.
func (w *World) Add(o physics.Object) {
	w.root.AddChild(o)
	w.publishEntityEvent(event.EntityAdded, o)
}

// Remove takes o out of the scene and the current index. Entities are
// removed through the ECS world so every registered system sees it. When
// called during an update, o is neither moved nor collided for the rest of
// that tick.
func (w *World) Remove(o physics.Object) {
	if face, ok := o.(ecs.BasicFace); ok {
		w.ecs.RemoveEntity(*face.GetBasicEntity())
		return
	}
	w.detach(o)
}

func (w *World) detach(o physics.Object) {
	if o == nil || !w.root.RemoveChild(o) {
		return
	}
	w.tree.Remove(o)
	w.removed[o] = struct{}{}
	w.publishEntityEvent(event.EntityRemoved, o)
}

func (w *World) publishEntityEvent(t event.Type, o physics.Object) {
	w.bus.Publish(event.NewEntityEvent(t, w, physics.ObjectID(o)))
}

// Resize changes the world area. The index is reset to the new bounds.
func (w *World) Resize(width, height float64) error {
	if !(width > 0) || !(height > 0) {
		return fmt.Errorf("%w: world size %vx%v", config.ErrInvalidConfig, width, height)
	}
	w.root.Resize(width, height)
	w.tree.Reset(physics.BoundsFromRect(0, 0, width, height))
	return nil
}

// RayCast returns the objects crossed by line, reusing result
func (w *World) RayCast(line *physics.Polygon, result []physics.Object) ([]physics.Object, error) {
	return w.detector.RayCast(line, result)
}

// Update advances the world by dt seconds. Errors from individual bodies
// are logged and returned together once the tick is complete.
func (w *World) Update(dt float64) error {
	w.stepErr = nil
	w.ecs.Update(float32(dt))
	return w.stepErr
}

// step runs one tick: rebuild the index, then move and collide every
// active body in scene order.
func (w *World) step(dt float64) {
	w.tick++
	clear(w.removed)
	ctx := logging.WithCorrelationID(context.Background(), fmt.Sprintf("tick-%d", w.tick))

	w.prepareBroadphase()
	w.populateBroadphase()
	w.bus.Publish(event.NewRebuildEvent(w, w.tick, w.tree.Len(), w.tree.NodeCount()))

	collisions := w.updateBodies(ctx, dt)
	w.logger.Debug(ctx, "tick complete",
		"bodies", len(w.active),
		"collisions", collisions,
		"nodes", w.tree.NodeCount(),
	)
}

func (w *World) prepareBroadphase() {
	w.tree.Clear()
}

func (w *World) populateBroadphase() {
	w.tree.InsertContainer(w.root)
	clear(w.active)
	w.active = w.active[:0]
	w.root.Walk(func(o physics.Object) {
		if o.Kinematic() {
			return
		}
		if body := o.Body(); body != nil && !body.Static && body.ShapeCount() > 0 {
			w.active = append(w.active, o)
		}
	})
}

func (w *World) updateBodies(ctx context.Context, dt float64) int {
	collisions := 0
	var errs []error
	for _, o := range w.active {
		if _, gone := w.removed[o]; gone {
			continue
		}
		body := o.Body()
		body.Update(w.gravity, dt)

		hit, err := w.detector.Collisions(o)
		if err != nil {
			w.logger.Warn(ctx, "skipping body after detector error",
				"entity", physics.ObjectID(o),
				"error", err.Error(),
			)
			errs = append(errs, fmt.Errorf("entity %d: %w", physics.ObjectID(o), err))
		}
		if hit {
			collisions++
		}
		body.Force = physics.Vector2D{}
	}
	w.stepErr = errors.Join(errs...)
	return collisions
}

// CollisionSystem is the ecs.System that drives a World's tick
type CollisionSystem struct {
	world *World
}

// Update implements ecs.System
func (s *CollisionSystem) Update(dt float32) {
	s.world.step(float64(dt))
}

// Remove implements ecs.System
func (s *CollisionSystem) Remove(e ecs.BasicEntity) {
	if o := s.world.root.Find(e.ID()); o != nil {
		s.world.detach(o)
	}
}
