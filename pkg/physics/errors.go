// pkg/physics/errors.go
package physics

import "errors"

var (
	// ErrUnsupportedShapePair is returned when no narrow-phase test exists
	// for a combination of shape kinds.
	ErrUnsupportedShapePair = errors.New("unsupported shape pair")

	// ErrNoShapes is returned when a body without shapes reaches the narrow phase.
	ErrNoShapes = errors.New("body has no shapes")

	// ErrDegeneratePolygon is returned for polygons with fewer than two
	// points or with coincident consecutive vertices.
	ErrDegeneratePolygon = errors.New("degenerate polygon")

	// ErrInvalidRadius is returned for ellipses with a non-positive size.
	ErrInvalidRadius = errors.New("invalid ellipse radius")

	// ErrScratchOrder is the panic value raised when scratch slots are
	// released out of LIFO order.
	ErrScratchOrder = errors.New("scratch released out of order")
)
