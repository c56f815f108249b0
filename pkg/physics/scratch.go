// pkg/physics/scratch.go
package physics

// Range is a projected [Min, Max] interval on an axis
type Range struct {
	Min float64
	Max float64
}

// Mark records the scratch depth at the start of a scope
type Mark struct {
	vectors int
	ranges  int
}

// Scratch holds reusable vectors and ranges for the narrow phase. Slots are
// handed out in stack order and returned with Release; the pools grow on
// demand and never shrink. A Scratch is not safe for concurrent use.
type Scratch struct {
	vectors []*Vector2D
	vtop    int
	ranges  []*Range
	rtop    int
}

// NewScratch creates a scratch pool pre-sized like the narrow phase needs
func NewScratch() *Scratch {
	s := &Scratch{}
	s.grow(10, 5)
	return s
}

func (s *Scratch) grow(vectors, ranges int) {
	for i := 0; i < vectors; i++ {
		s.vectors = append(s.vectors, &Vector2D{})
	}
	for i := 0; i < ranges; i++ {
		s.ranges = append(s.ranges, &Range{})
	}
}

// Mark returns the current depth; pair it with Release
func (s *Scratch) Mark() Mark {
	return Mark{vectors: s.vtop, ranges: s.rtop}
}

// Vector acquires a zeroed vector slot
func (s *Scratch) Vector() *Vector2D {
	if s.vtop == len(s.vectors) {
		s.grow(len(s.vectors)/2+1, 0)
	}
	v := s.vectors[s.vtop]
	s.vtop++
	*v = Vector2D{}
	return v
}

// VectorOf acquires a vector slot initialised to v
func (s *Scratch) VectorOf(v Vector2D) *Vector2D {
	p := s.Vector()
	*p = v
	return p
}

// Range acquires a zeroed range slot
func (s *Scratch) Range() *Range {
	if s.rtop == len(s.ranges) {
		s.grow(0, len(s.ranges)/2+1)
	}
	r := s.ranges[s.rtop]
	s.rtop++
	*r = Range{}
	return r
}

// Release returns every slot acquired since m. Releasing a mark that is
// deeper than the current top means an inner scope was skipped and panics.
func (s *Scratch) Release(m Mark) {
	if m.vectors > s.vtop || m.ranges > s.rtop {
		panic(ErrScratchOrder)
	}
	s.vtop = m.vectors
	s.rtop = m.ranges
}

// InUse reports how many vector and range slots are currently acquired
func (s *Scratch) InUse() (vectors, ranges int) {
	return s.vtop, s.rtop
}

// Capacity reports the pool sizes
func (s *Scratch) Capacity() (vectors, ranges int) {
	return len(s.vectors), len(s.ranges)
}
