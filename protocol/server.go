package protocol

type Welcome struct {
	ClientID string `json:"clientId"`
	Room     string `json:"room"`
	TickHz   int    `json:"tickHz"`
}

type State struct {
	Tick     int             `json:"tick"`
	Points   []PointSnapshot `json:"points"`
	Peg      PegSnapshot     `json:"peg"`
	Dragging bool            `json:"dragging,omitempty"`
	Secured  bool            `json:"secured,omitempty"`
}

type PointSnapshot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Pinned bool    `json:"pinned,omitempty"`
}

type PegSnapshot struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
