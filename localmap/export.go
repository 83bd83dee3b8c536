package localmap

import (
	"image"
	"image/color"
	"math"
	"strings"
)

// Block is the thresholded state of one grid cell, positioned at the cell's lower corner in
// world meters.
type Block struct {
	X, Y    float64
	Blocked bool
}

// Blocks exports every cell as occupied/free using the configured threshold. It does not modify
// the grid.
func (g *Grid) Blocks() []Block {
	g.mu.Lock()
	defer g.mu.Unlock()

	blocks := make([]Block, 0, len(g.cells))
	cell := float64(g.cellSizeMM)
	for y := 0; y < g.dimension; y++ {
		for x := 0; x < g.dimension; x++ {
			blocks = append(blocks, Block{
				X:       (float64(x)*cell - g.centerXMM) / 1000,
				Y:       (float64(y)*cell - g.centerYMM) / 1000,
				Blocked: int(g.cells[g.index(x, y)]) > g.cfg.Threshold,
			})
		}
	}
	return blocks
}

// Image renders the certainty of every cell as a 16 bit gray image, MaxCertainty being white.
// The image's y axis points down, so row 0 holds the grid's highest y.
func (g *Grid) Image() *image.Gray16 {
	g.mu.Lock()
	defer g.mu.Unlock()

	img := image.NewGray16(image.Rect(0, 0, g.dimension, g.dimension))
	scale := float64(math.MaxUint16) / float64(g.cfg.MaxCertainty)
	for y := 0; y < g.dimension; y++ {
		for x := 0; x < g.dimension; x++ {
			v := float64(g.cells[g.index(x, y)]) * scale
			img.SetGray16(x, g.dimension-1-y, color.Gray16{Y: uint16(math.Min(v, math.MaxUint16))})
		}
	}
	return img
}

// String draws the grid with the vehicle's last known cell as "o".
func (g *Grid) String() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	lx, ly, hasLocal := g.rawCellOf(g.local)
	var b strings.Builder
	for y := 0; y < g.dimension; y++ {
		for x := 0; x < g.dimension; x++ {
			switch {
			case hasLocal && x == lx && y == ly:
				b.WriteString("o ")
			case g.cells[g.index(x, y)] > 0:
				b.WriteString("X ")
			default:
				b.WriteString(". ")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
