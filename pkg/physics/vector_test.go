// pkg/physics/vector_test.go
package physics

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func vecNearlyEqual(a, b Vector2D) bool {
	return nearlyEqual(a.X, b.X) && nearlyEqual(a.Y, b.Y)
}

func TestVector2D_Arithmetic(t *testing.T) {
	tests := []struct {
		name     string
		op       func() Vector2D
		expected Vector2D
	}{
		{name: "add", op: func() Vector2D { return Vector2D{X: 3, Y: 4}.Add(Vector2D{X: 1, Y: 2}) }, expected: Vector2D{X: 4, Y: 6}},
		{name: "sub", op: func() Vector2D { return Vector2D{X: 2, Y: 3}.Sub(Vector2D{X: 5, Y: 7}) }, expected: Vector2D{X: -3, Y: -4}},
		{name: "scale", op: func() Vector2D { return Vector2D{X: 2, Y: -3}.Scale(-2) }, expected: Vector2D{X: -4, Y: 6}},
		{name: "negate", op: func() Vector2D { return Vector2D{X: 2, Y: -3}.Negate() }, expected: Vector2D{X: -2, Y: 3}},
		{name: "perp", op: func() Vector2D { return Vector2D{X: 2, Y: 3}.Perp() }, expected: Vector2D{X: 3, Y: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.op(); !result.Equals(tt.expected) {
				t.Errorf("got %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestVector2D_Length(t *testing.T) {
	tests := []struct {
		name     string
		v        Vector2D
		expected float64
	}{
		{name: "3_4_5_triangle", v: Vector2D{X: 3, Y: 4}, expected: 5},
		{name: "zero_vector", v: Vector2D{}, expected: 0},
		{name: "negative_components", v: Vector2D{X: -6, Y: -8}, expected: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Length(); !nearlyEqual(got, tt.expected) {
				t.Errorf("Length() = %v, expected %v", got, tt.expected)
			}
			if got := tt.v.LengthSquared(); !nearlyEqual(got, tt.expected*tt.expected) {
				t.Errorf("LengthSquared() = %v, expected %v", got, tt.expected*tt.expected)
			}
		})
	}
}

func TestVector2D_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		v        Vector2D
		expected Vector2D
	}{
		{name: "axis_aligned", v: Vector2D{X: 0, Y: -7}, expected: Vector2D{X: 0, Y: -1}},
		{name: "diagonal", v: Vector2D{X: 3, Y: 4}, expected: Vector2D{X: 0.6, Y: 0.8}},
		{name: "zero_stays_zero", v: Vector2D{}, expected: Vector2D{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Normalize(); !vecNearlyEqual(got, tt.expected) {
				t.Errorf("Normalize() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestVector2D_DotDistanceAngle(t *testing.T) {
	a := Vector2D{X: 1, Y: 2}
	b := Vector2D{X: 4, Y: 6}

	if got := a.Dot(b); got != 16 {
		t.Errorf("Dot() = %v, expected 16", got)
	}
	if got := a.Distance(b); !nearlyEqual(got, 5) {
		t.Errorf("Distance() = %v, expected 5", got)
	}
	if got := (Vector2D{X: 0, Y: 1}).Angle(); !nearlyEqual(got, math.Pi/2) {
		t.Errorf("Angle() = %v, expected pi/2", got)
	}
	if got := FromAngle(math.Pi, 2); !vecNearlyEqual(got, Vector2D{X: -2, Y: 0}) {
		t.Errorf("FromAngle() = %v, expected (-2, 0)", got)
	}
}

func TestVector2D_Rotate(t *testing.T) {
	tests := []struct {
		name     string
		v        Vector2D
		angle    float64
		pivot    Vector2D
		expected Vector2D
	}{
		{name: "quarter_turn", v: Vector2D{X: 1, Y: 0}, angle: math.Pi / 2, expected: Vector2D{X: 0, Y: 1}},
		{name: "half_turn", v: Vector2D{X: 2, Y: 3}, angle: math.Pi, expected: Vector2D{X: -2, Y: -3}},
		{name: "around_pivot", v: Vector2D{X: 2, Y: 1}, angle: math.Pi / 2, pivot: Vector2D{X: 1, Y: 1}, expected: Vector2D{X: 1, Y: 2}},
		{name: "no_rotation", v: Vector2D{X: 5, Y: -5}, angle: 0, expected: Vector2D{X: 5, Y: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.RotateAround(tt.angle, tt.pivot); !vecNearlyEqual(got, tt.expected) {
				t.Errorf("RotateAround() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestVector2D_Vec2RoundTrip(t *testing.T) {
	v := Vector2D{X: 1.5, Y: -2.25}
	if got := FromVec2(v.Vec2()); !got.Equals(v) {
		t.Errorf("FromVec2(Vec2()) = %v, expected %v", got, v)
	}
}
