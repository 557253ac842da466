package rope

const (
	Friction        = 0.99 // free-flight damping per tick
	Gravity         = 0.5  // downward units per tick²
	GroundFriction  = 0.5  // extra horizontal damping while resting on the floor
	Bounce          = 0.5  // wall restitution
	RelaxIterations = 600  // constraint passes per Step; drives the chain near-rigid
	GrabRadius      = 30.0 // pointer-down must land this close to the free end
	SnagRadius      = 25.0 // unpinned points this close to the peg catch on it
	SecureRadius    = 40.0 // looser than SnagRadius: easy to catch, harder to lock on release
)
