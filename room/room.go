package room

import (
	"fmt"
	"time"

	"github.com/jbeda/geom"

	"dangle/protocol"
	"dangle/rope"
)

// Layout of the toy inside the viewport. The rope hangs from the top and
// the peg sits across from it; both are placed when the rope is built.
const (
	RopePoints    = 12
	SegmentLength = 25.0
	BulbRadius    = 12.0 // collision radius of the free end
	RootXFrac     = 0.3  // rope root, fraction of viewport width
	PegXFrac      = 0.72
	PegYFrac      = 0.35

	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

type Room struct {
	Inbox          chan any
	tickHz         int
	broadcastEvery int

	tick    int
	width   float64
	height  float64
	line    *rope.Rope
	ctl     *rope.Controller
	peg     geom.Coord
	pointer rope.Pointer

	clients map[string]Conn
	nextID  int
	quit    chan struct{}

	Code    string            // room code (e.g. "ABC123")
	OnEmpty func(code string) // called when last client leaves
}

func New() *Room {
	broadcastEvery := protocol.SimTickHz / protocol.BroadcastHz
	if broadcastEvery <= 0 {
		broadcastEvery = 1
	}
	r := &Room{
		Inbox:          make(chan any, 256),
		tickHz:         protocol.SimTickHz,
		broadcastEvery: broadcastEvery,
		clients:        make(map[string]Conn),
		nextID:         1,
		quit:           make(chan struct{}),
	}
	r.reset(DefaultWidth, DefaultHeight)
	return r
}

// reset rebuilds the rope and peg for the given viewport. The old point
// collection is discarded wholesale; points are never replaced one by one.
func (r *Room) reset(w, h float64) {
	r.width = w
	r.height = h
	r.line = rope.New(w*RootXFrac, 0, RopePoints, SegmentLength)
	r.ctl = rope.NewController(r.line)
	r.peg = geom.Coord{X: w * PegXFrac, Y: h * PegYFrac}
	r.ctl.SetPeg(r.peg)
	r.pointer = rope.Pointer{}
}

func (r *Room) Stop() {
	close(r.quit)
}

// NumClients returns the current number of connected clients.
func (r *Room) NumClients() int {
	return len(r.clients)
}

func (r *Room) Run() {
	ticker := time.NewTicker(time.Second / time.Duration(r.tickHz))
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case cmd := <-r.Inbox:
			r.handleCommand(cmd)
		case <-ticker.C:
			r.step()
			if r.tick%r.broadcastEvery == 0 {
				r.broadcastState()
			}
		}
	}
}

// step is one full simulation tick: pending interaction edits first, then
// integration and relaxation. Snapshots are only taken between steps.
func (r *Room) step() {
	r.tick++
	r.ctl.Apply(r.pointer)
	r.line.Step(r.width, r.height, BulbRadius)
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Join:
		idNum := r.nextID
		clientID := fmt.Sprintf("c%d", idNum)
		r.nextID++
		if len(r.clients) == 0 && c.W > 0 && c.H > 0 {
			// First client in: size the toy to their viewport.
			r.reset(c.W, c.H)
		}
		r.clients[clientID] = c.Conn
		c.Reply <- JoinResult{ClientID: clientID}
	case Input:
		if _, ok := r.clients[c.ClientID]; !ok {
			return
		}
		r.pointer = rope.Pointer{
			Pos:  geom.Coord{X: c.Input.X, Y: c.Input.Y},
			Down: c.Input.Down,
		}
	case Resize:
		if _, ok := r.clients[c.ClientID]; !ok {
			return
		}
		if c.W > 0 && c.H > 0 {
			r.width = c.W
			r.height = c.H
		}
	case Leave:
		r.handleLeave(c.ClientID)
	}
}

func (r *Room) handleLeave(clientID string) {
	c, ok := r.clients[clientID]
	if ok {
		r.sendStateTo(c)
		_ = c.Close()
		delete(r.clients, clientID)
	}
	if len(r.clients) == 0 && r.OnEmpty != nil && r.Code != "" {
		r.OnEmpty(r.Code)
	}
}

func (r *Room) removeClient(clientID string) {
	if c, ok := r.clients[clientID]; ok {
		_ = c.Close()
	}
	delete(r.clients, clientID)
}

func (r *Room) broadcastState() {
	snapshot := r.buildSnapshot()
	b, err := protocol.Encode(protocol.MsgState, snapshot)
	if err != nil {
		return
	}

	var failed []string
	for id, c := range r.clients {
		if err := c.Send(b); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		r.removeClient(id)
	}
}

func (r *Room) sendStateTo(c Conn) {
	snapshot := r.buildSnapshot()
	b, err := protocol.Encode(protocol.MsgState, snapshot)
	if err != nil {
		return
	}
	_ = c.Send(b)
}

func (r *Room) buildSnapshot() protocol.State {
	snapshot := protocol.State{
		Tick:     r.tick,
		Points:   make([]protocol.PointSnapshot, 0, len(r.line.Points)),
		Peg:      protocol.PegSnapshot{X: r.peg.X, Y: r.peg.Y},
		Dragging: r.ctl.Dragging(),
		Secured:  r.ctl.Secured(),
	}
	for _, p := range r.line.Points {
		snapshot.Points = append(snapshot.Points, protocol.PointSnapshot{
			X:      p.X,
			Y:      p.Y,
			Pinned: p.Pinned,
		})
	}
	return snapshot
}
