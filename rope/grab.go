package rope

import (
	"math"

	"github.com/jbeda/geom"
)

// Pointer is the latest known pointer state, applied once per tick.
type Pointer struct {
	Pos  geom.Coord
	Down bool
}

// Controller is the mutation surface between the rope and whatever drives
// it. It applies at most one batch of edits per tick, before the rope
// integrates, so the solver only ever sees a settled configuration.
type Controller struct {
	rope     *Rope
	peg      geom.Coord
	hasPeg   bool
	dragging bool
	dragIdx  int
	prevDown bool
}

func NewController(r *Rope) *Controller {
	return &Controller{rope: r}
}

// SetPeg places the anchor the rope can snag on and lock to.
func (c *Controller) SetPeg(p geom.Coord) {
	c.peg = p
	c.hasPeg = true
}

func (c *Controller) Dragging() bool { return c.dragging }

// Secured reports whether the free end is locked to the peg.
func (c *Controller) Secured() bool {
	if !c.hasPeg || c.dragging {
		return false
	}
	end := c.rope.Points[c.rope.End()]
	return end.Pinned && end.X == c.peg.X && end.Y == c.peg.Y
}

// Pin anchors point i at its current position.
func (c *Controller) Pin(i int) {
	p := &c.rope.Points[i]
	p.OldX, p.OldY = p.X, p.Y
	p.Pinned = true
}

// Unpin frees point i; it re-enters integration with zero velocity.
func (c *Controller) Unpin(i int) {
	p := &c.rope.Points[i]
	p.OldX, p.OldY = p.X, p.Y
	p.Pinned = false
}

// Nearest returns the index of the closest point within radius of pos,
// or false if none qualifies.
func (c *Controller) Nearest(pos geom.Coord, radius float64) (int, bool) {
	best := -1
	bestDist := radius
	for i := range c.rope.Points {
		p := c.rope.Points[i]
		d := pos.DistanceFrom(geom.Coord{X: p.X, Y: p.Y})
		if d <= bestDist {
			best = i
			bestDist = d
		}
	}
	return best, best >= 0
}

// Apply consumes the latest pointer state for this tick: edge-detects
// grab and release, and while dragging re-winches the live sub-chain and
// runs snag detection. Call before Rope.Step.
func (c *Controller) Apply(in Pointer) {
	if in.Down && !c.prevDown {
		c.grab(in.Pos)
	}
	if !in.Down && c.prevDown {
		c.release()
	}
	c.prevDown = in.Down

	if c.dragging {
		c.winch(in.Pos)
		c.snag()
	}
}

// grab pins the free end if the pointer landed close enough to it.
func (c *Controller) grab(pos geom.Coord) {
	end := c.rope.End()
	p := c.rope.Points[end]
	if pos.DistanceFrom(geom.Coord{X: p.X, Y: p.Y}) > GrabRadius {
		return
	}
	c.Pin(end)
	c.dragging = true
	c.dragIdx = end
}

// winch retargets the rest length of every stick between the nearest
// pinned point below the dragged index and the dragged point, then lays
// those points out on the straight anchor→target line. Each moved point's
// old position is reset to its new one; skipping that would leave the
// teleport distance behind as velocity and the next integrate would
// launch the rope.
func (c *Controller) winch(target geom.Coord) {
	end := c.dragIdx
	anchor := 0
	for i := end - 1; i > 0; i-- {
		if c.rope.Points[i].Pinned {
			anchor = i
			break
		}
	}
	span := end - anchor
	if span == 0 {
		return
	}

	a := c.rope.Points[anchor]
	segLen := target.DistanceFrom(geom.Coord{X: a.X, Y: a.Y}) / float64(span)
	for i := anchor; i < end; i++ {
		c.rope.Sticks[i].Length = segLen
	}
	for i := anchor + 1; i <= end; i++ {
		f := float64(i-anchor) / float64(span)
		p := &c.rope.Points[i]
		p.X = a.X + (target.X-a.X)*f
		p.Y = a.Y + (target.Y-a.Y)*f
		p.OldX = p.X
		p.OldY = p.Y
	}
}

// snag pins any free point passing within SnagRadius of the peg, parking
// it exactly on the peg with zero velocity. Re-running on an already
// snagged point is a no-op since pinned points are skipped.
func (c *Controller) snag() {
	if !c.hasPeg {
		return
	}
	for i := range c.rope.Points {
		p := &c.rope.Points[i]
		if p.Pinned {
			continue
		}
		if math.Hypot(p.X-c.peg.X, p.Y-c.peg.Y) < SnagRadius {
			p.X = c.peg.X
			p.Y = c.peg.Y
			p.OldX = p.X
			p.OldY = p.Y
			p.Pinned = true
		}
	}
}

// release decides the dragged end's fate: close enough to the peg it
// locks on exactly, otherwise it is dropped and falls. SecureRadius is
// deliberately wider than SnagRadius; the two are tuned separately.
func (c *Controller) release() {
	if !c.dragging {
		return
	}
	c.dragging = false

	end := c.dragIdx
	p := &c.rope.Points[end]
	if c.hasPeg && math.Hypot(p.X-c.peg.X, p.Y-c.peg.Y) <= SecureRadius {
		p.X = c.peg.X
		p.Y = c.peg.Y
		p.OldX = p.X
		p.OldY = p.Y
		return
	}
	c.Unpin(end)
}
