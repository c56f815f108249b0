// Package render draws a world's bodies and broadphase partitions as ASCII,
// for debugging scenes in a terminal or in test failures.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/opd-ai/go-collide/pkg/physics"
	"github.com/opd-ai/go-collide/pkg/spatial"
	"github.com/opd-ai/go-collide/pkg/world"
)

// Cell symbols
const (
	SymbolEmpty     = ' '
	SymbolNode      = '.'
	SymbolBody      = '#'
	SymbolStatic    = '='
	SymbolKinematic = '~'
	SymbolPosition  = '@'
)

// TerminalRenderer rasterizes bounds onto a character grid
type TerminalRenderer struct {
	width     int
	height    int
	buffer    [][]rune
	scale     float64
	centerPos physics.Vector2D
}

// NewTerminalRenderer creates a renderer with the given grid size. One cell
// covers scale world units on each axis.
func NewTerminalRenderer(width, height int, scale float64) *TerminalRenderer {
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}

	r := &TerminalRenderer{
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
	}
	r.Clear()
	return r
}

// FitTerminalRenderer creates a renderer whose grid shows all of bounds
func FitTerminalRenderer(width, height int, bounds physics.Bounds) *TerminalRenderer {
	scale := math.Max(bounds.Width()/float64(width), bounds.Height()/float64(height))
	if !(scale > 0) {
		scale = 1
	}
	r := NewTerminalRenderer(width, height, scale)
	r.SetCenter(bounds.Center())
	return r
}

// SetCenter sets the world position shown in the middle of the grid
func (r *TerminalRenderer) SetCenter(pos physics.Vector2D) {
	r.centerPos = pos
}

// worldToScreen converts world coordinates to grid cells
func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	screenX := int(math.Floor((pos.X-r.centerPos.X)/r.scale + float64(r.width)/2))
	screenY := int(math.Floor((pos.Y-r.centerPos.Y)/r.scale + float64(r.height)/2))
	return screenX, screenY
}

// Clear blanks the grid
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = SymbolEmpty
		}
	}
}

func (r *TerminalRenderer) set(x, y int, symbol rune) {
	if x >= 0 && x < r.width && y >= 0 && y < r.height {
		r.buffer[y][x] = symbol
	}
}

// At returns the symbol in a cell, or 0 outside the grid
func (r *TerminalRenderer) At(x, y int) rune {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return 0
	}
	return r.buffer[y][x]
}

// DrawBounds outlines b with symbol
func (r *TerminalRenderer) DrawBounds(b physics.Bounds, symbol rune) {
	if !b.IsFinite() {
		return
	}
	x0, y0 := r.worldToScreen(b.Min)
	x1, y1 := r.worldToScreen(b.Max)
	for x := x0; x <= x1; x++ {
		r.set(x, y0, symbol)
		r.set(x, y1, symbol)
	}
	for y := y0; y <= y1; y++ {
		r.set(x0, y, symbol)
		r.set(x1, y, symbol)
	}
}

// DrawQuadTree outlines every node of tree
func (r *TerminalRenderer) DrawQuadTree(tree *spatial.QuadTree) {
	tree.Walk(func(_ spatial.NodeID, _ int, bounds physics.Bounds, _ []physics.Object) {
		r.DrawBounds(bounds, SymbolNode)
	})
}

// DrawObject outlines an object's body and marks its position
func (r *TerminalRenderer) DrawObject(o physics.Object) {
	body := o.Body()
	if body == nil || body.ShapeCount() == 0 {
		return
	}
	symbol := SymbolBody
	switch {
	case o.Kinematic():
		symbol = SymbolKinematic
	case body.Static:
		symbol = SymbolStatic
	}
	r.DrawBounds(body.WorldBounds(), symbol)
	x, y := r.worldToScreen(o.Position())
	r.set(x, y, SymbolPosition)
}

// Draw renders the world's broadphase partitions and every body in its scene
func (r *TerminalRenderer) Draw(w *world.World) {
	r.Clear()
	r.DrawQuadTree(w.Broadphase())
	w.Root().Walk(r.DrawObject)
}

// String returns the grid framed by a border
func (r *TerminalRenderer) String() string {
	var sb strings.Builder
	border := "+" + strings.Repeat("-", r.width) + "+\n"
	sb.WriteString(border)
	for y := range r.buffer {
		sb.WriteByte('|')
		sb.WriteString(string(r.buffer[y]))
		sb.WriteString("|\n")
	}
	sb.WriteString(border)
	return sb.String()
}

// Present clears the terminal and writes the grid to out
func (r *TerminalRenderer) Present(out io.Writer) error {
	if _, err := fmt.Fprint(out, "\033[H\033[2J", r.String()); err != nil {
		return fmt.Errorf("failed to present frame: %w", err)
	}
	return nil
}
