package rope

import "fmt"

// Internal truth: the authoritative rope state. The rope exclusively owns
// its points and sticks; everything outside mutates through a Controller
// and reads back snapshots between steps.

type Rope struct {
	Points     []Point
	Sticks     []Stick
	Iterations int
}

// New builds a chain of points hanging straight down from (startX, startY)
// at segLen spacing, with point 0 pinned. points is the point count; the
// rope gets points-1 sticks. Bad construction parameters are a caller bug.
func New(startX, startY float64, points int, segLen float64) *Rope {
	if points < 2 {
		panic(fmt.Sprintf("rope: need at least 2 points, got %d", points))
	}
	if segLen <= 0 {
		panic(fmt.Sprintf("rope: segment length must be positive, got %f", segLen))
	}

	r := &Rope{
		Points:     make([]Point, points),
		Sticks:     make([]Stick, points-1),
		Iterations: RelaxIterations,
	}
	for i := range r.Points {
		y := startY + float64(i)*segLen
		r.Points[i] = Point{X: startX, Y: y, OldX: startX, OldY: y}
	}
	r.Points[0].Pinned = true
	for i := range r.Sticks {
		r.Sticks[i] = Stick{P1: i, P2: i + 1, Length: segLen}
	}
	return r
}

// End returns the index of the free end.
func (r *Rope) End() int {
	return len(r.Points) - 1
}

// Step advances the simulation one tick: integrate every free point, then
// relax all sticks Iterations times. endRadius is the collision radius of
// the last point (the bulb shell); every other point collides as a point.
// Step cannot fail; degenerate bounds just clamp degenerately.
func (r *Rope) Step(width, height, endRadius float64) {
	if len(r.Sticks) != len(r.Points)-1 {
		panic(fmt.Sprintf("rope: %d sticks for %d points", len(r.Sticks), len(r.Points)))
	}
	r.integrate(width, height, endRadius)
	for i := 0; i < r.Iterations; i++ {
		r.relax()
	}
}
