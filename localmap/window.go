package localmap

import (
	"strings"

	"github.com/golang/geo/r3"
)

// Window is a square cutout of the grid centered on the vehicle's cell.
type Window struct {
	Dim        int
	CellSizeMM int
	// Cells[y*Dim+x]; cells outside the grid hold Unknown.
	Cells []int16
}

// NewWindow allocates an empty window.
func NewWindow(dim, cellSizeMM int) *Window {
	return &Window{Dim: dim, CellSizeMM: cellSizeMM, Cells: make([]int16, dim*dim)}
}

// At returns the value at window coordinates (x, y).
func (w *Window) At(x, y int) int16 {
	return w.Cells[y*w.Dim+x]
}

// Set writes the value at window coordinates (x, y).
func (w *Window) Set(x, y int, v int16) {
	w.Cells[y*w.Dim+x] = v
}

// Center is the index of the center cell along each axis.
func (w *Window) Center() int {
	return w.Dim / 2
}

func (w *Window) String() string {
	var b strings.Builder
	for y := 0; y < w.Dim; y++ {
		for x := 0; x < w.Dim; x++ {
			switch v := w.At(x, y); {
			case x == w.Center() && y == w.Center():
				b.WriteString("o ")
			case v == Unknown:
				b.WriteString("# ")
			case v > 0:
				b.WriteString("X ")
			default:
				b.WriteString(". ")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Window returns a newly allocated window centered on pos.
func (g *Grid) Window(pos r3.Vector) *Window {
	w := &Window{}
	g.WindowInto(pos, w)
	return w
}

// WindowInto fills dst with the window centered on pos, reusing its cell buffer when it already
// has the right size.
func (g *Grid) WindowInto(pos r3.Vector, dst *Window) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.windowIntoLocked(pos, dst)
}

func (g *Grid) windowIntoLocked(pos r3.Vector, dst *Window) {
	dim := g.windowDimension
	if dst.Dim != dim || len(dst.Cells) != dim*dim {
		dst.Dim = dim
		dst.Cells = make([]int16, dim*dim)
	}
	dst.CellSizeMM = g.cellSizeMM

	px, py, ok := g.rawCellOf(pos)
	if !ok {
		for i := range dst.Cells {
			dst.Cells[i] = Unknown
		}
		return
	}
	g.local = pos

	center := dim / 2
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			mx, my := x+px-center, y+py-center
			if g.inBounds(mx, my) {
				dst.Cells[y*dim+x] = g.cells[g.index(mx, my)]
			} else {
				dst.Cells[y*dim+x] = Unknown
			}
		}
	}
}
