package room

import "dangle/protocol"

type Conn interface {
	Send([]byte) error
	Close() error
}

// Join: issued once after hello parsed
type Join struct {
	Conn  Conn
	Name  string
	W, H  float64 // client viewport, 0 means unknown
	Reply chan<- JoinResult
}

type JoinResult struct {
	ClientID string
}

// Input: latest pointer state from a client. The rope is shared; whoever
// moved last is driving.
type Input struct {
	ClientID string
	Input    protocol.Input
}

// Resize: the client viewport changed, update the simulation bounds
type Resize struct {
	ClientID string
	W, H     float64
}

// Leave: issued on disconnect
type Leave struct {
	ClientID string
}
