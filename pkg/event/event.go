// pkg/event/event.go
package event

import (
	"sync"

	"github.com/opd-ai/go-collide/pkg/physics"
)

// Type represents the type of event
type Type string

// Event types published by the collision core
const (
	CollisionDetected Type = "collision_detected"
	RayHit            Type = "ray_hit"
	BroadphaseRebuilt Type = "broadphase_rebuilt"
	EntityAdded       Type = "entity_added"
	EntityRemoved     Type = "entity_removed"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler
type Subscription struct {
	ID     uint64
	Type   Type
	Cancel func()
}

type registration struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously on the publishing goroutine, in subscription order.
type Bus struct {
	handlers map[Type][]registration
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]registration),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], registration{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Type:   eventType,
		Cancel: func() { b.Unsubscribe(eventType, id) },
	}
}

// Unsubscribe removes the handler registered under id
func (b *Bus) Unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	regs := b.handlers[eventType]
	for i, r := range regs {
		if r.id == id {
			// copy so a Publish iterating the old slice is unaffected
			next := make([]registration, 0, len(regs)-1)
			next = append(next, regs[:i]...)
			b.handlers[eventType] = append(next, regs[i+1:]...)
			return
		}
	}
}

// HasSubscribers reports whether anything listens for eventType
func (b *Bus) HasSubscribers(eventType Type) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType]) > 0
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	regs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, r := range regs {
		r.handler(event)
	}
}

// CollisionEvent describes a confirmed collision. It copies what it needs
// from the detector's response, which is reused for the next test.
type CollisionEvent struct {
	BaseEvent
	EntityA uint64
	EntityB uint64
	ShapeA  int
	ShapeB  int
	Overlap float64
	Normal  physics.Vector2D
	AInB    bool
	BInA    bool
}

// NewCollisionEvent creates a collision event from a filled response
func NewCollisionEvent(source interface{}, r *physics.Response) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent: BaseEvent{
			EventType: CollisionDetected,
			Source:    source,
		},
		EntityA: physics.ObjectID(r.A),
		EntityB: physics.ObjectID(r.B),
		ShapeA:  r.IndexShapeA,
		ShapeB:  r.IndexShapeB,
		Overlap: r.Overlap,
		Normal:  r.OverlapN,
		AInB:    r.AInB,
		BInA:    r.BInA,
	}
}

// RayHitEvent reports an object crossed by a ray cast
type RayHitEvent struct {
	BaseEvent
	EntityID uint64
}

// NewRayHitEvent creates a ray hit event
func NewRayHitEvent(source interface{}, entityID uint64) *RayHitEvent {
	return &RayHitEvent{
		BaseEvent: BaseEvent{
			EventType: RayHit,
			Source:    source,
		},
		EntityID: entityID,
	}
}

// RebuildEvent is published after the broadphase is rebuilt for a tick
type RebuildEvent struct {
	BaseEvent
	Tick    uint64
	Objects int
	Nodes   int
}

// NewRebuildEvent creates a rebuild event
func NewRebuildEvent(source interface{}, tick uint64, objects, nodes int) *RebuildEvent {
	return &RebuildEvent{
		BaseEvent: BaseEvent{
			EventType: BroadphaseRebuilt,
			Source:    source,
		},
		Tick:    tick,
		Objects: objects,
		Nodes:   nodes,
	}
}

// EntityEvent reports an entity joining or leaving the world
type EntityEvent struct {
	BaseEvent
	EntityID uint64
}

// NewEntityEvent creates an entity event
func NewEntityEvent(eventType Type, source interface{}, entityID uint64) *EntityEvent {
	return &EntityEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		EntityID: entityID,
	}
}
