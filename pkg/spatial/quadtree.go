// Package spatial provides the broadphase index used to find collision
// candidates: a bounded-depth quadtree rebuilt from the live scene each tick.
package spatial

import (
	"errors"
	"fmt"
	"slices"

	"github.com/opd-ai/go-collide/pkg/physics"
)

// Default tuning, matching what most scenes need
const (
	DefaultMaxObjects = 4
	DefaultMaxLevels  = 4
)

var (
	// ErrIndexOutOfRange is returned when a quadrant index does not exist on a node
	ErrIndexOutOfRange = errors.New("quadrant index out of range")
	// ErrInvalidNode is returned for handles that do not name a live node
	ErrInvalidNode = errors.New("invalid node")
	// ErrInvalidConfig is returned for unusable tuning values
	ErrInvalidConfig = errors.New("invalid quadtree configuration")
)

// Item is anything the tree can classify by its bounds
type Item interface {
	Bounds() physics.Bounds
	Space() physics.Space
}

// Container is a scene-graph node whose children can be bulk inserted
type Container interface {
	physics.Object
	Children() []physics.Object
}

// Viewport converts screen-space bounds to world coordinates
type Viewport interface {
	LocalToWorld(b physics.Bounds) physics.Bounds
}

// NodeID is a handle to a node in the tree's arena
type NodeID int32

// NoNode marks an empty child slot
const NoNode NodeID = -1

// Quadrant indices. Y grows downwards, so "top" is the smaller y.
const (
	NorthEast = iota
	NorthWest
	SouthWest
	SouthEast
)

type node struct {
	bounds   physics.Bounds
	level    int
	objects  []physics.Object
	children [4]NodeID
	split    bool
	inUse    bool
}

// QuadTree is a bounds quadtree. Nodes live in a flat arena and are recycled
// through a free list when the tree is cleared, so a steady-state rebuild
// does not allocate. A QuadTree is not safe for concurrent use.
type QuadTree struct {
	nodes      []node
	free       []NodeID
	root       NodeID
	maxObjects int
	maxLevels  int
	viewport   Viewport
}

// Option configures a QuadTree
type Option func(*QuadTree)

// WithMaxObjects sets how many objects a node holds before it splits
func WithMaxObjects(n int) Option {
	return func(q *QuadTree) { q.maxObjects = n }
}

// WithMaxLevels sets the maximum depth of the tree
func WithMaxLevels(n int) Option {
	return func(q *QuadTree) { q.maxLevels = n }
}

// WithViewport sets the viewport used to place screen-space items
func WithViewport(v Viewport) Option {
	return func(q *QuadTree) { q.viewport = v }
}

// New creates a quadtree covering bounds
func New(bounds physics.Bounds, opts ...Option) (*QuadTree, error) {
	q := &QuadTree{
		maxObjects: DefaultMaxObjects,
		maxLevels:  DefaultMaxLevels,
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.maxObjects < 1 {
		return nil, fmt.Errorf("%w: maxObjects %d", ErrInvalidConfig, q.maxObjects)
	}
	if q.maxLevels < 0 {
		return nil, fmt.Errorf("%w: maxLevels %d", ErrInvalidConfig, q.maxLevels)
	}
	if !bounds.IsFinite() {
		return nil, fmt.Errorf("%w: bounds must be finite", ErrInvalidConfig)
	}
	q.root = q.alloc(bounds, 0)
	return q, nil
}

// MaxObjects returns the split threshold
func (q *QuadTree) MaxObjects() int { return q.maxObjects }

// MaxLevels returns the depth limit
func (q *QuadTree) MaxLevels() int { return q.maxLevels }

// Bounds returns the root bounds
func (q *QuadTree) Bounds() physics.Bounds { return q.nodes[q.root].bounds }

// SetViewport replaces the viewport used for screen-space items
func (q *QuadTree) SetViewport(v Viewport) { q.viewport = v }

func (q *QuadTree) alloc(bounds physics.Bounds, level int) NodeID {
	var id NodeID
	if n := len(q.free); n > 0 {
		id = q.free[n-1]
		q.free = q.free[:n-1]
	} else {
		q.nodes = append(q.nodes, node{})
		id = NodeID(len(q.nodes) - 1)
	}
	n := &q.nodes[id]
	n.bounds = bounds
	n.level = level
	n.objects = n.objects[:0]
	n.children = [4]NodeID{NoNode, NoNode, NoNode, NoNode}
	n.split = false
	n.inUse = true
	return id
}

// release empties a node and its subtree and returns them to the free list
func (q *QuadTree) release(id NodeID) {
	q.empty(id)
	q.nodes[id].inUse = false
	q.free = append(q.free, id)
}

// empty drops a node's objects and releases its children, keeping the node itself
func (q *QuadTree) empty(id NodeID) {
	n := &q.nodes[id]
	clear(n.objects)
	n.objects = n.objects[:0]
	children := n.children
	n.children = [4]NodeID{NoNode, NoNode, NoNode, NoNode}
	n.split = false
	for _, c := range children {
		if c != NoNode {
			q.release(c)
		}
	}
}

func quadrantBounds(b physics.Bounds, quadrant int) physics.Bounds {
	subW := b.Width() / 2
	subH := b.Height() / 2
	left := b.Left()
	top := b.Top()
	switch quadrant {
	case NorthEast:
		return physics.BoundsFromRect(left+subW, top, subW, subH)
	case NorthWest:
		return physics.BoundsFromRect(left, top, subW, subH)
	case SouthWest:
		return physics.BoundsFromRect(left, top+subH, subW, subH)
	default:
		return physics.BoundsFromRect(left+subW, top+subH, subW, subH)
	}
}

// split turns a leaf into a node with four children
func (q *QuadTree) split(id NodeID) {
	for quadrant := 0; quadrant < 4; quadrant++ {
		q.child(id, quadrant)
	}
	q.nodes[id].split = true
}

// child returns the node in the given quadrant, acquiring one if the slot is empty
func (q *QuadTree) child(id NodeID, quadrant int) NodeID {
	if c := q.nodes[id].children[quadrant]; c != NoNode {
		return c
	}
	parent := q.nodes[id]
	c := q.alloc(quadrantBounds(parent.bounds, quadrant), parent.level+1)
	q.nodes[id].children[quadrant] = c
	return c
}

// itemBounds returns the item's bounds in world space
func (q *QuadTree) itemBounds(item Item) physics.Bounds {
	b := item.Bounds()
	switch item.Space() {
	case physics.ScreenSpace:
		if q.viewport != nil {
			return q.viewport.LocalToWorld(b)
		}
		return b
	default:
		return b
	}
}

// index returns the quadrant of node id that fully holds item, or -1 when
// the item straddles a midpoint.
func (q *QuadTree) index(id NodeID, item Item) int {
	b := q.itemBounds(item)
	nb := q.nodes[id].bounds

	verticalMid := nb.Left() + nb.Width()/2
	horizontalMid := nb.Top() + nb.Height()/2

	top := b.Top() < horizontalMid && b.Bottom() < horizontalMid
	bottom := b.Top() > horizontalMid

	switch {
	case b.Left() < verticalMid && b.Right() < verticalMid:
		if top {
			return NorthWest
		} else if bottom {
			return SouthWest
		}
	case b.Left() > verticalMid:
		if top {
			return NorthEast
		} else if bottom {
			return SouthEast
		}
	}
	return -1
}

// Insert adds an object to the tree
func (q *QuadTree) Insert(item physics.Object) {
	q.insert(q.root, item)
}

func (q *QuadTree) insert(id NodeID, item physics.Object) {
	for q.nodes[id].split {
		quadrant := q.index(id, item)
		if quadrant == -1 {
			break
		}
		id = q.child(id, quadrant)
	}

	n := &q.nodes[id]
	n.objects = append(n.objects, item)
	if len(n.objects) <= q.maxObjects || n.level >= q.maxLevels {
		return
	}

	if !n.split {
		q.split(id)
	}

	// push down whatever now fits a single child; the rest stays here
	// until the next rebuild
	i := 0
	for i < len(q.nodes[id].objects) {
		obj := q.nodes[id].objects[i]
		quadrant := q.index(id, obj)
		if quadrant == -1 {
			i++
			continue
		}
		q.nodes[id].objects = slices.Delete(q.nodes[id].objects, i, i+1)
		q.insert(q.child(id, quadrant), obj)
	}
}

// InsertContainer inserts every non-kinematic, shape-bearing descendant of
// root. The root itself is not inserted.
func (q *QuadTree) InsertContainer(root Container) {
	for _, child := range root.Children() {
		if child == nil || child.Kinematic() {
			continue
		}
		if hasShapes(child) {
			q.Insert(child)
		}
		if c, ok := child.(Container); ok {
			q.InsertContainer(c)
		}
	}
}

func hasShapes(o physics.Object) bool {
	b := o.Body()
	return b != nil && b.ShapeCount() > 0
}

// Retrieve appends to dst every object that may overlap item: the objects
// of each node on the way down, plus the subtree of every quadrant item
// touches. When cmp is non-nil the appended part is stably sorted with it.
func (q *QuadTree) Retrieve(item Item, dst []physics.Object, cmp func(a, b physics.Object) int) []physics.Object {
	start := len(dst)
	dst = q.retrieve(q.root, item, dst)
	if cmp != nil {
		slices.SortStableFunc(dst[start:], cmp)
	}
	return dst
}

func (q *QuadTree) retrieve(id NodeID, item Item, dst []physics.Object) []physics.Object {
	n := &q.nodes[id]
	dst = append(dst, n.objects...)
	if !n.split {
		return dst
	}
	children := n.children
	if quadrant := q.index(id, item); quadrant != -1 {
		if c := children[quadrant]; c != NoNode {
			dst = q.retrieve(c, item, dst)
		}
		return dst
	}
	for _, c := range children {
		if c != NoNode {
			dst = q.retrieve(c, item, dst)
		}
	}
	return dst
}

// Remove deletes item from the tree and reports whether it was found.
// Child nodes left empty and childless are recycled. An item that moved
// since it was inserted is no longer under the node its bounds point to;
// it is then looked up in every live node instead.
func (q *QuadTree) Remove(item physics.Object) bool {
	return q.remove(q.root, item) || q.removeAnywhere(item)
}

// removeAnywhere scans the arena for item. The node it leaves behind is not
// pruned; the next Clear recycles it.
func (q *QuadTree) removeAnywhere(item physics.Object) bool {
	for id := range q.nodes {
		n := &q.nodes[id]
		if !n.inUse {
			continue
		}
		if i := slices.Index(n.objects, item); i >= 0 {
			n.objects = slices.Delete(n.objects, i, i+1)
			return true
		}
	}
	return false
}

func (q *QuadTree) remove(id NodeID, item physics.Object) bool {
	found := false
	if q.nodes[id].split {
		if quadrant := q.index(id, item); quadrant != -1 {
			if c := q.nodes[id].children[quadrant]; c != NoNode && q.remove(c, item) {
				found = true
				if q.prunable(c) {
					q.release(c)
					q.nodes[id].children[quadrant] = NoNode
				}
			}
		}
	}
	if !found {
		n := &q.nodes[id]
		if i := slices.Index(n.objects, item); i >= 0 {
			n.objects = slices.Delete(n.objects, i, i+1)
			found = true
		}
	}
	return found
}

func (q *QuadTree) hasChildren(id NodeID) bool {
	for _, c := range q.nodes[id].children {
		if c != NoNode {
			return true
		}
	}
	return false
}

func (q *QuadTree) prunable(id NodeID) bool {
	return len(q.nodes[id].objects) == 0 && !q.hasChildren(id)
}

// Clear empties the tree and recycles every node below the root
func (q *QuadTree) Clear() {
	q.empty(q.root)
}

// Reset clears the tree and resizes the root to bounds
func (q *QuadTree) Reset(bounds physics.Bounds) {
	q.Clear()
	q.nodes[q.root].bounds = bounds
}

// Len returns the number of objects stored in the tree
func (q *QuadTree) Len() int {
	total := 0
	q.Walk(func(_ NodeID, _ int, _ physics.Bounds, objects []physics.Object) {
		total += len(objects)
	})
	return total
}

// NodeCount returns the number of live nodes, root included
func (q *QuadTree) NodeCount() int { return len(q.nodes) - len(q.free) }

// FreeNodes returns the number of recycled nodes waiting for reuse
func (q *QuadTree) FreeNodes() int { return len(q.free) }

// Walk visits every live node depth first, parents before children
func (q *QuadTree) Walk(fn func(id NodeID, level int, bounds physics.Bounds, objects []physics.Object)) {
	q.walk(q.root, fn)
}

func (q *QuadTree) walk(id NodeID, fn func(NodeID, int, physics.Bounds, []physics.Object)) {
	n := &q.nodes[id]
	fn(id, n.level, n.bounds, n.objects)
	for _, c := range q.nodes[id].children {
		if c != NoNode {
			q.walk(c, fn)
		}
	}
}

// Root returns the root node handle
func (q *QuadTree) Root() NodeID { return q.root }

func (q *QuadTree) lookup(id NodeID) (*node, error) {
	if id < 0 || int(id) >= len(q.nodes) || !q.nodes[id].inUse {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNode, id)
	}
	return &q.nodes[id], nil
}

// Child returns the node in the given quadrant. Leaves have no quadrants; a
// split node may return NoNode for a quadrant that was pruned.
func (q *QuadTree) Child(id NodeID, quadrant int) (NodeID, error) {
	n, err := q.lookup(id)
	if err != nil {
		return NoNode, err
	}
	if !n.split || quadrant < 0 || quadrant >= len(n.children) {
		return NoNode, fmt.Errorf("%w: quadrant %d of node %d", ErrIndexOutOfRange, quadrant, id)
	}
	return n.children[quadrant], nil
}

// NodeBounds returns a node's bounds
func (q *QuadTree) NodeBounds(id NodeID) (physics.Bounds, error) {
	n, err := q.lookup(id)
	if err != nil {
		return physics.Bounds{}, err
	}
	return n.bounds, nil
}

// NodeLevel returns a node's depth, the root being level 0
func (q *QuadTree) NodeLevel(id NodeID) (int, error) {
	n, err := q.lookup(id)
	if err != nil {
		return 0, err
	}
	return n.level, nil
}

// NodeObjects returns the objects held directly by a node. The slice is
// owned by the tree and is only valid until the next mutation.
func (q *QuadTree) NodeObjects(id NodeID) ([]physics.Object, error) {
	n, err := q.lookup(id)
	if err != nil {
		return nil, err
	}
	return n.objects, nil
}

// IsLeaf reports whether a node has never been split since the last clear
func (q *QuadTree) IsLeaf(id NodeID) (bool, error) {
	n, err := q.lookup(id)
	if err != nil {
		return false, err
	}
	return !n.split, nil
}
