package localmap

import (
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestWindowCentered(t *testing.T) {
	g, _ := newTestGrid(t, smallGridConfig())
	g.Update(r3.Vector{}, r3.Vector{X: 2, Y: -1})

	w := g.Window(r3.Vector{})
	test.That(t, w.Dim, test.ShouldEqual, 5)
	test.That(t, w.Center(), test.ShouldEqual, 2)
	test.That(t, w.CellSizeMM, test.ShouldEqual, 1000)
	test.That(t, w.At(4, 1), test.ShouldEqual, 20)
	for i, v := range w.Cells {
		if i == 1*w.Dim+4 {
			continue
		}
		test.That(t, v, test.ShouldEqual, 0)
	}

	// recentering moves the obstacle within the window
	g.WindowInto(r3.Vector{X: 1}, w)
	test.That(t, w.At(3, 1), test.ShouldEqual, 20)
}

func TestWindowSentinel(t *testing.T) {
	g, _ := newTestGrid(t, smallGridConfig())
	g.Update(r3.Vector{X: -5, Y: -5}, r3.Vector{X: -4, Y: -5})

	// vehicle in the south west corner cell (0, 0)
	w := g.Window(r3.Vector{X: -5, Y: -5})
	for y := 0; y < w.Dim; y++ {
		for x := 0; x < w.Dim; x++ {
			mapX, mapY := x-2, y-2
			if mapX < 0 || mapY < 0 {
				test.That(t, w.At(x, y), test.ShouldEqual, Unknown)
			} else {
				test.That(t, w.At(x, y), test.ShouldBeLessThan, Unknown)
			}
		}
	}
	test.That(t, w.At(3, 2), test.ShouldEqual, 20)

	// entirely off the map
	g.WindowInto(r3.Vector{X: 50, Y: 50}, w)
	for _, v := range w.Cells {
		test.That(t, v, test.ShouldEqual, Unknown)
	}
}

func TestWindowReusesBuffer(t *testing.T) {
	g, _ := newTestGrid(t, smallGridConfig())
	w := NewWindow(5, 1000)
	buf := w.Cells
	g.WindowInto(r3.Vector{}, w)
	test.That(t, &w.Cells[0], test.ShouldEqual, &buf[0])

	wrong := NewWindow(3, 1000)
	g.WindowInto(r3.Vector{}, wrong)
	test.That(t, wrong.Dim, test.ShouldEqual, 5)
	test.That(t, len(wrong.Cells), test.ShouldEqual, 25)
}

func TestWindowString(t *testing.T) {
	g, _ := newTestGrid(t, smallGridConfig())
	g.Update(r3.Vector{}, r3.Vector{X: 4})
	rows := strings.Split(strings.TrimSpace(g.Window(r3.Vector{X: 5}).String()), "\n")
	test.That(t, rows, test.ShouldHaveLength, 5)
	test.That(t, strings.TrimSpace(rows[2]), test.ShouldEqual, ". X o # #")
	test.That(t, strings.TrimSpace(rows[0]), test.ShouldEqual, ". . . # #")
}
