// pkg/physics/response.go
package physics

import "math"

// Response describes a confirmed overlap between two objects. A Detector
// owns a single Response and reuses it for every test, so its contents are
// only valid until the next call.
type Response struct {
	A Object
	B Object

	// Overlap is the penetration depth along OverlapN. It starts at +Inf
	// and only ever shrinks while axes are tested.
	Overlap  float64
	OverlapN Vector2D
	OverlapV Vector2D

	AInB bool
	BInA bool

	IndexShapeA int
	IndexShapeB int
}

// NewResponse returns a cleared response
func NewResponse() *Response {
	return (&Response{}).Clear()
}

// Clear resets the response so it can be passed to a new test
func (r *Response) Clear() *Response {
	r.A = nil
	r.B = nil
	r.Overlap = math.Inf(1)
	r.OverlapN = Vector2D{}
	r.OverlapV = Vector2D{}
	r.AInB = true
	r.BInA = true
	r.IndexShapeA = -1
	r.IndexShapeB = -1
	return r
}

// Swap flips the response to the other participant's point of view
func (r *Response) Swap() {
	r.A, r.B = r.B, r.A
	r.OverlapN = r.OverlapN.Negate()
	r.OverlapV = r.OverlapV.Negate()
	r.AInB, r.BInA = r.BInA, r.AInB
	r.IndexShapeA, r.IndexShapeB = r.IndexShapeB, r.IndexShapeA
}
