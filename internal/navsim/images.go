package navsim

import (
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"go.viam.com/localnav/localmap"
)

const obstacleOutlineSegments = 64

var (
	pathColor     = color.RGBA{B: 200, A: 255}
	obstacleColor = color.RGBA{R: 200, A: 255}
	startColor    = color.RGBA{G: 160, A: 255}
	goalColor     = color.RGBA{R: 220, G: 140, A: 255}
)

// SaveGridImage writes the grid's certainty image to path, each cell drawn as a scale x scale
// block. The format follows the file extension.
func SaveGridImage(grid *localmap.Grid, path string, scale int) error {
	if scale < 1 {
		scale = 1
	}
	img := grid.Image()
	b := img.Bounds()
	scaled := imaging.Resize(img, b.Dx()*scale, b.Dy()*scale, imaging.NearestNeighbor)
	if err := imaging.Save(scaled, path); err != nil {
		return errors.Wrapf(err, "saving grid image to %q", path)
	}
	return nil
}

// PlotTrajectory plots the run's path, the scenario's obstacles, start and goal to path.
func PlotTrajectory(run *Run, path string) error {
	p := plot.New()
	p.Title.Text = run.Scenario.Name
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.Add(plotter.NewGrid())

	if len(run.Path) > 0 {
		pts := make(plotter.XYs, 0, len(run.Path))
		for _, pos := range run.Path {
			pts = append(pts, plotter.XY{X: pos.X, Y: pos.Y})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = pathColor
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add("path", line)
	}

	for i, o := range run.Scenario.Obstacles {
		pts := make(plotter.XYs, 0, obstacleOutlineSegments+1)
		for s := 0; s <= obstacleOutlineSegments; s++ {
			a := 2 * math.Pi * float64(s) / obstacleOutlineSegments
			pts = append(pts, plotter.XY{X: o.X + o.RadiusM*math.Cos(a), Y: o.Y + o.RadiusM*math.Sin(a)})
		}
		outline, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		outline.Color = obstacleColor
		outline.Width = vg.Points(1)
		p.Add(outline)
		if i == 0 {
			p.Legend.Add("obstacle", outline)
		}
	}

	for _, marker := range []struct {
		name string
		x, y float64
		c    color.Color
	}{
		{"start", run.Scenario.Start.X, run.Scenario.Start.Y, startColor},
		{"goal", run.Scenario.Goal.X, run.Scenario.Goal.Y, goalColor},
	} {
		sc, err := plotter.NewScatter(plotter.XYs{{X: marker.x, Y: marker.y}})
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = marker.c
		sc.GlyphStyle.Radius = vg.Points(4)
		p.Add(sc)
		p.Legend.Add(marker.name, sc)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.Wrap(err, "creating plot directory")
	}
	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "saving trajectory plot to %q", path)
	}
	return nil
}
