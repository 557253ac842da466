package rope

import "math"

// relax runs one forward and one backward pass over the sticks. The two
// directions propagate correction toward both ends of the chain; a single
// direction would bias convergence toward one end.
func (r *Rope) relax() {
	for i := 0; i < len(r.Sticks); i++ {
		r.solve(&r.Sticks[i])
	}
	for i := len(r.Sticks) - 1; i >= 0; i-- {
		r.solve(&r.Sticks[i])
	}
}

// solve nudges a stick's endpoints toward its rest length. A pinned
// endpoint has no give: its partner absorbs the whole correction, and a
// stick between two pinned points is simply not enforced.
func (r *Rope) solve(s *Stick) {
	p1 := &r.Points[s.P1]
	p2 := &r.Points[s.P2]

	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		// no direction to correct along
		return
	}
	frac := (s.Length - dist) / dist / 2

	switch {
	case p1.Pinned && p2.Pinned:
	case p1.Pinned:
		p2.X += dx * frac * 2
		p2.Y += dy * frac * 2
	case p2.Pinned:
		p1.X -= dx * frac * 2
		p1.Y -= dy * frac * 2
	default:
		p1.X -= dx * frac
		p1.Y -= dy * frac
		p2.X += dx * frac
		p2.Y += dy * frac
	}
}
