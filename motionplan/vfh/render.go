package vfh

import (
	"fmt"
	"strings"
)

// String renders the histogram as one character per bucket: 'o' marks the selected sector,
// '.' a free bucket and 'X' a blocked one.
func (p *Planner) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%.0f,%.0f] ", p.desiredHeading, p.selectedHeading)
	selected := p.bucket(p.selectedHeading)
	for i, h := range p.hist {
		switch {
		case i == selected:
			b.WriteByte('o')
		case h <= p.cfg.Threshold:
			b.WriteByte('.')
		default:
			b.WriteByte('X')
		}
	}
	return b.String()
}
