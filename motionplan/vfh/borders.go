package vfh

import (
	"fmt"

	"github.com/samber/lo"

	"go.viam.com/localnav/utils"
)

// Border is a free run of the histogram in degrees, [Start, End). End exceeds 360 when the run
// wraps through 0.
type Border struct {
	Start float64
	End   float64
}

// Width is the angular width of the gap in degrees.
func (b Border) Width() float64 {
	return b.End - b.Start
}

func (b Border) String() string {
	return fmt.Sprintf("[%.0f, %.0f)", b.Start, b.End)
}

// Candidate is a heading offered by a gap.
type Candidate struct {
	// Angle in degrees in [0, 360).
	Angle float64
	Class SpeedClass
	// FullCost is false for the candidate placed exactly on the desired heading inside a wide gap.
	FullCost bool
	Cost     float64
}

// selectHeading searches the histogram for gaps and picks the cheapest heading they offer.
// It reports false when nothing is passable.
func (p *Planner) selectHeading(desiredDeg float64) bool {
	p.desiredHeading = desiredDeg
	p.borders = p.borders[:0]
	p.candidates = p.candidates[:0]

	start := -1
	for i, h := range p.hist {
		if h > p.cfg.Threshold {
			start = i
			break
		}
	}
	p.state = StateGapSearched
	if start < 0 {
		p.candidates = append(p.candidates, Candidate{Angle: desiredDeg, Class: SpeedFull, FullCost: true})
		p.choose(p.candidates[0])
		return true
	}

	p.findBorders(start)
	for _, b := range p.borders {
		p.addCandidates(b, desiredDeg)
	}
	if len(p.candidates) == 0 {
		return false
	}

	for i := range p.candidates {
		c := &p.candidates[i]
		c.Cost = p.cfg.DesiredWeight*utils.AngleDiffDeg(desiredDeg, c.Angle) +
			p.cfg.PreviousWeight*utils.AngleDiffDeg(p.lastSelectedHeading, c.Angle)
	}
	p.choose(lo.MinBy(p.candidates, func(a, b Candidate) bool {
		return a.Cost < b.Cost
	}))
	return true
}

// findBorders walks one full turn from a blocked bucket and records every free run.
func (p *Planner) findBorders(start int) {
	n := len(p.hist)
	alpha := float64(p.cfg.AlphaDeg)
	inside := false
	var from float64
	for i := start; i <= start+n; i++ {
		idx := i % n
		free := p.hist[idx] <= p.cfg.Threshold
		switch {
		case free && !inside:
			from = float64(idx) * alpha
			inside = true
		case !free && inside:
			to := float64(idx) * alpha
			if to < from {
				to += 360
			}
			p.borders = append(p.borders, Border{Start: from, End: to})
			inside = false
		}
	}
}

func (p *Planner) addCandidates(b Border, desiredDeg float64) {
	width := b.Width()
	if width <= p.cfg.MinGapWidthDeg {
		return
	}
	mid := b.Start + width/2
	if width < p.cfg.SMaxDeg {
		p.candidates = append(p.candidates, Candidate{Angle: utils.ModAngDeg(mid), Class: SpeedNarrow, FullCost: true})
		return
	}

	lower := b.Start + p.cfg.SMaxDeg/2
	upper := b.End - p.cfg.SMaxDeg/2
	p.candidates = append(p.candidates,
		Candidate{Angle: utils.ModAngDeg(mid), Class: SpeedWide, FullCost: true},
		Candidate{Angle: utils.ModAngDeg(lower), Class: SpeedWide, FullCost: true},
		Candidate{Angle: utils.ModAngDeg(upper), Class: SpeedWide, FullCost: true},
	)

	target := desiredDeg
	if target < b.Start {
		target += 360
	}
	if target > lower && target < upper {
		p.candidates = append(p.candidates, Candidate{Angle: desiredDeg, Class: SpeedFull})
	}
}

func (p *Planner) choose(c Candidate) {
	p.selectedHeading = c.Angle
	p.lastSelectedHeading = c.Angle
	p.selectedClass = c.Class
	p.maxSpeedForAngle = p.cfg.maxSpeed(c.Class)
	p.state = StateCandidateSelected
}
