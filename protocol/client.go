package protocol

//input structs coming in from the client.

type Hello struct {
	V    int     `json:"v"`              // version
	Name string  `json:"name,omitempty"` // optional name
	W    float64 `json:"w"`              // initial viewport width
	H    float64 `json:"h"`              // initial viewport height
}

type Input struct {
	X    float64 `json:"x"`              // pointer x in sim units
	Y    float64 `json:"y"`              // pointer y in sim units
	Down bool    `json:"down,omitempty"` // button / touch held
}

// Resize updates the simulation bounds when the client viewport changes.
type Resize struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}
