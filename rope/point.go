package rope

// Point is one simulated particle. Velocity is never stored; it is implied
// by the distance between the current and previous position.
type Point struct {
	X, Y       float64
	OldX, OldY float64
	Pinned     bool
}

// Stick is a distance constraint between two points, referenced by index
// into the rope's point slice. Stick i always joins points i and i+1.
type Stick struct {
	P1, P2 int
	Length float64
}
