// pkg/collision/detector.go
package collision

import (
	"context"
	"fmt"

	"github.com/opd-ai/go-collide/pkg/event"
	"github.com/opd-ai/go-collide/pkg/logging"
	"github.com/opd-ai/go-collide/pkg/physics"
	"github.com/opd-ai/go-collide/pkg/spatial"
)

// Collision type bits, re-exported so callers configuring masks only need
// this package.
const (
	NoObject          = physics.NoObject
	PlayerObject      = physics.PlayerObject
	NPCObject         = physics.NPCObject
	EnemyObject       = physics.EnemyObject
	CollectableObject = physics.CollectableObject
	ActionObject      = physics.ActionObject
	ProjectileObject  = physics.ProjectileObject
	WorldShape        = physics.WorldShape
	UserObject        = physics.UserObject
	AllObject         = physics.AllObject
)

// Broadphase finds collision candidates near an item
type Broadphase interface {
	Retrieve(item spatial.Item, dst []physics.Object, cmp func(a, b physics.Object) int) []physics.Object
}

var _ Broadphase = (*spatial.QuadTree)(nil)

// Detector runs broadphase queries followed by SAT tests and applies the
// resulting responses. Candidate buffers and responses are reused from a
// stack of frames, one per nested call, so collision handlers may call back
// into the detector. It must be driven from a single goroutine.
type Detector struct {
	index    Broadphase
	sat      *physics.SAT
	response *physics.Response
	frames   []frame
	depth    int
	order    func(a, b physics.Object) int
	bus      *event.Bus
	logger   *logging.Logger
}

// frame holds the state of one Collisions or RayCast call
type frame struct {
	candidates []physics.Object
	response   *physics.Response
}

// DetectorOption configures a Detector
type DetectorOption func(*Detector)

// WithEventBus publishes collision and ray hit events to bus
func WithEventBus(bus *event.Bus) DetectorOption {
	return func(d *Detector) { d.bus = bus }
}

// WithLogger sets the logger used for detector diagnostics
func WithLogger(logger *logging.Logger) DetectorOption {
	return func(d *Detector) { d.logger = logger }
}

// WithCandidateOrder sorts broadphase candidates with cmp before testing them
func WithCandidateOrder(cmp func(a, b physics.Object) int) DetectorOption {
	return func(d *Detector) { d.order = cmp }
}

// NewDetector creates a detector querying index
func NewDetector(index Broadphase, opts ...DetectorOption) *Detector {
	d := &Detector{
		index:    index,
		sat:      physics.NewSAT(),
		response: physics.NewResponse(),
	}
	d.frames = []frame{{response: d.response}}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logging.Discard()
	}
	return d
}

// Response returns the detector's shared response. It holds the result of
// the last hit found by an outermost Collisions call and is overwritten by
// the next one. Calls made from inside a handler use their own response.
func (d *Detector) Response() *physics.Response {
	return d.response
}

// SAT returns the narrow-phase tester owned by the detector
func (d *Detector) SAT() *physics.SAT {
	return d.sat
}

// SetBroadphase replaces the index queried by Collisions and RayCast
func (d *Detector) SetBroadphase(index Broadphase) {
	d.index = index
}

// push queries the broadphase into the next frame and returns its
// candidates and response. Every push must be paired with pop.
func (d *Detector) push(item spatial.Item) ([]physics.Object, *physics.Response) {
	if d.depth == len(d.frames) {
		d.frames = append(d.frames, frame{response: physics.NewResponse()})
	}
	f := &d.frames[d.depth]
	f.candidates = d.index.Retrieve(item, f.candidates[:0], d.order)
	d.depth++
	return f.candidates, f.response
}

func (d *Detector) pop(candidates []physics.Object) {
	clear(candidates)
	d.depth--
}

// ShouldCollide reports whether a and b are allowed to collide
func (d *Detector) ShouldCollide(a, b physics.Object) bool {
	if a == nil || b == nil || a == b {
		return false
	}
	if a.Kinematic() || b.Kinematic() {
		return false
	}
	ba, bb := a.Body(), b.Body()
	if ba == nil || bb == nil || ba.ShapeCount() == 0 || bb.ShapeCount() == 0 {
		return false
	}
	if ba.Static && bb.Static {
		return false
	}
	return ba.CollisionMask&bb.CollisionType != 0 && bb.CollisionMask&ba.CollisionType != 0
}

// Collides tests the shapes of a against the shapes of b, last shape first,
// and stops at the first intersecting pair. On a hit r holds the result and
// the indices of the two shapes. r may be nil.
func (d *Detector) Collides(a, b physics.Object, r *physics.Response) (bool, error) {
	ba, bb := a.Body(), b.Body()
	if ba == nil || ba.ShapeCount() == 0 {
		return false, fmt.Errorf("%w: object A", physics.ErrNoShapes)
	}
	if bb == nil || bb.ShapeCount() == 0 {
		return false, fmt.Errorf("%w: object B", physics.ErrNoShapes)
	}

	shapesA, shapesB := ba.Shapes(), bb.Shapes()
	for i := len(shapesA) - 1; i >= 0; i-- {
		for j := len(shapesB) - 1; j >= 0; j-- {
			if r != nil {
				r.Clear()
			}
			hit, err := d.sat.Test(a, shapesA[i], b, shapesB[j], r)
			if err != nil {
				return false, err
			}
			if hit {
				if r != nil {
					r.IndexShapeA = i
					r.IndexShapeB = j
				}
				return true, nil
			}
		}
	}
	return false, nil
}

// Collisions tests objA against every broadphase candidate and resolves
// each hit. Each side's CollisionHandler is called first; a handler that
// returns false, or a static body, keeps that side in place. It reports
// whether at least one collision happened.
func (d *Detector) Collisions(objA physics.Object) (bool, error) {
	bodyA := objA.Body()
	if bodyA == nil {
		return false, nil
	}

	candidates, r := d.push(objA)
	defer d.pop(candidates)

	hits := 0
	for _, objB := range candidates {
		if !d.ShouldCollide(objA, objB) {
			continue
		}
		if !aabb(objA).Overlaps(aabb(objB)) {
			continue
		}

		hit, err := d.Collides(objA, objB, r)
		if err != nil {
			return hits > 0, err
		}
		if !hit {
			continue
		}
		hits++

		if respond(objA, objB, r) {
			bodyA.RespondToCollision(r)
		}
		if respond(objB, objA, r) {
			objB.Body().RespondToCollision(r)
		}
		if d.bus != nil {
			d.bus.Publish(event.NewCollisionEvent(d, r))
		}
	}
	return hits > 0, nil
}

// respond runs self's handler, if any, and reports whether the response
// should be applied to self's body.
func respond(self, other physics.Object, r *physics.Response) bool {
	if h, ok := self.(physics.CollisionHandler); ok && !h.OnCollision(r, other) {
		return false
	}
	return !self.Body().Static
}

// aabb merges an object's own bounds with its body's world bounds
func aabb(o physics.Object) physics.Bounds {
	b := o.Bounds()
	if body := o.Body(); body != nil {
		b.AddBounds(body.WorldBounds())
	}
	return b
}

// rayItem lets a line be passed to the broadphase as a query item
type rayItem struct {
	bounds physics.Bounds
}

func (r rayItem) Bounds() physics.Bounds { return r.bounds }
func (r rayItem) Space() physics.Space   { return physics.WorldSpace }

// RayCast returns every object whose shapes intersect line. Hits are written
// into result starting at index 0 and the slice is truncated to the hit
// count, so a buffer passed back in is reused. No response is computed.
func (d *Detector) RayCast(line *physics.Polygon, result []physics.Object) ([]physics.Object, error) {
	result = result[:0]
	if line == nil {
		return result, nil
	}
	lineBounds := line.Bounds()
	candidates, _ := d.push(rayItem{bounds: lineBounds})
	defer d.pop(candidates)

	for _, objB := range candidates {
		body := objB.Body()
		if body == nil || body.ShapeCount() == 0 {
			continue
		}
		if !lineBounds.Overlaps(aabb(objB)) {
			continue
		}
		for _, shape := range body.Shapes() {
			hit, err := d.sat.Test(nil, line, objB, shape, nil)
			if err != nil {
				return result, err
			}
			if hit {
				result = append(result, objB)
				if d.bus != nil {
					d.bus.Publish(event.NewRayHitEvent(d, physics.ObjectID(objB)))
				}
				break
			}
		}
	}
	if len(result) > 0 {
		d.logger.Debug(context.Background(), "ray cast", "hits", len(result), "candidates", len(candidates))
	}
	return result, nil
}
