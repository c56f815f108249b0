// Package journal records the contacts a world resolves so a run can be
// saved, diffed or replayed against a later build.
package journal

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/opd-ai/go-collide/pkg/event"
	"github.com/vmihailenco/msgpack/v5"
)

// FormatVersion is written at the head of every encoded journal
const FormatVersion = 1

// ErrVersion is returned when decoding a journal written in another format
var ErrVersion = errors.New("unsupported journal version")

// Contact is one resolved collision
type Contact struct {
	Tick    uint64  `msgpack:"tick"`
	A       uint64  `msgpack:"a"`
	B       uint64  `msgpack:"b"`
	ShapeA  int     `msgpack:"shapeA"`
	ShapeB  int     `msgpack:"shapeB"`
	Overlap float64 `msgpack:"overlap"`
	NormalX float64 `msgpack:"nx"`
	NormalY float64 `msgpack:"ny"`
}

type document struct {
	Version  int       `msgpack:"version"`
	Ticks    uint64    `msgpack:"ticks"`
	Dropped  uint64    `msgpack:"dropped"`
	Contacts []Contact `msgpack:"contacts"`
}

// Recorder collects contacts from an event bus. The current tick is taken
// from the most recent rebuild event.
type Recorder struct {
	mu       sync.Mutex
	tick     uint64
	limit    int
	dropped  uint64
	contacts []Contact
	subs     []*event.Subscription
}

// Option configures a Recorder
type Option func(*Recorder)

// WithLimit keeps at most n contacts, discarding the oldest ones first
func WithLimit(n int) Option {
	return func(r *Recorder) { r.limit = n }
}

// NewRecorder subscribes a recorder to bus
func NewRecorder(bus *event.Bus, opts ...Option) *Recorder {
	r := &Recorder{}
	for _, opt := range opts {
		opt(r)
	}
	r.subs = append(r.subs,
		bus.Subscribe(event.BroadphaseRebuilt, r.handleRebuild),
		bus.Subscribe(event.CollisionDetected, r.handleCollision),
	)
	return r
}

func (r *Recorder) handleRebuild(e event.Event) {
	rebuild, ok := e.(*event.RebuildEvent)
	if !ok {
		return
	}
	r.mu.Lock()
	r.tick = rebuild.Tick
	r.mu.Unlock()
}

func (r *Recorder) handleCollision(e event.Event) {
	ce, ok := e.(*event.CollisionEvent)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.limit > 0 && len(r.contacts) >= r.limit {
		n := len(r.contacts) - r.limit + 1
		r.contacts = append(r.contacts[:0], r.contacts[n:]...)
		r.dropped += uint64(n)
	}
	r.contacts = append(r.contacts, Contact{
		Tick:    r.tick,
		A:       ce.EntityA,
		B:       ce.EntityB,
		ShapeA:  ce.ShapeA,
		ShapeB:  ce.ShapeB,
		Overlap: ce.Overlap,
		NormalX: ce.Normal.X,
		NormalY: ce.Normal.Y,
	})
}

// Close stops recording
func (r *Recorder) Close() {
	for _, s := range r.subs {
		s.Cancel()
	}
	r.subs = nil
}

// Contacts returns a copy of the recorded contacts in arrival order
func (r *Recorder) Contacts() []Contact {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Contact(nil), r.contacts...)
}

// Dropped returns how many contacts were discarded because of the limit
func (r *Recorder) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Reset forgets everything recorded so far
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contacts = r.contacts[:0]
	r.dropped = 0
	r.tick = 0
}

// Encode writes the journal to w as msgpack
func (r *Recorder) Encode(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := document{
		Version:  FormatVersion,
		Ticks:    r.tick,
		Dropped:  r.dropped,
		Contacts: r.contacts,
	}

	if err := msgpack.NewEncoder(w).Encode(&doc); err != nil {
		return fmt.Errorf("failed to encode journal: %w", err)
	}
	return nil
}

// Journal is a decoded recording
type Journal struct {
	Ticks    uint64
	Dropped  uint64
	Contacts []Contact
}

// Decode reads a journal written by Recorder.Encode
func Decode(rd io.Reader) (*Journal, error) {
	var doc document
	if err := msgpack.NewDecoder(rd).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode journal: %w", err)
	}
	if doc.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, doc.Version)
	}
	return &Journal{Ticks: doc.Ticks, Dropped: doc.Dropped, Contacts: doc.Contacts}, nil
}

// Pairs counts contacts per unordered entity pair
func (j *Journal) Pairs() map[[2]uint64]int {
	pairs := make(map[[2]uint64]int)
	for _, c := range j.Contacts {
		key := [2]uint64{c.A, c.B}
		if c.B < c.A {
			key = [2]uint64{c.B, c.A}
		}
		pairs[key]++
	}
	return pairs
}
