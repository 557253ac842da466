package room

import (
	"testing"
	"time"

	"dangle/protocol"
)

type fakeConn struct {
	sendCh chan []byte
}

func (f *fakeConn) Send(b []byte) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	f.sendCh <- cp
	return nil
}

func (f *fakeConn) Close() error {
	return nil
}

// nextState pulls envelopes off a fake conn until a state message shows up.
func nextState(t *testing.T, fc *fakeConn, timeout time.Duration) protocol.State {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case b := <-fc.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil || env.T != protocol.MsgState {
				continue
			}
			st, err := protocol.DecodePayload[protocol.State](env)
			if err != nil {
				t.Fatalf("decode state: %v", err)
			}
			return st
		case <-deadline:
			t.Fatalf("timed out waiting for state broadcast")
			return protocol.State{}
		}
	}
}

func TestRoomJoinBroadcastContainsRope(t *testing.T) {
	r := New()
	go r.Run()
	defer r.Stop()

	fc := &fakeConn{sendCh: make(chan []byte, 8)}
	reply := make(chan JoinResult, 1)
	r.Inbox <- Join{Conn: fc, Name: "test", Reply: reply}
	res := <-reply
	if res.ClientID == "" {
		t.Fatalf("expected client id, got empty")
	}

	st := nextState(t, fc, time.Second)
	if len(st.Points) != RopePoints {
		t.Fatalf("snapshot has %d points, want %d", len(st.Points), RopePoints)
	}
	if !st.Points[0].Pinned {
		t.Fatalf("expected the root point pinned in the snapshot")
	}
	if st.Peg.X == 0 && st.Peg.Y == 0 {
		t.Fatalf("expected a placed peg in the snapshot")
	}
}

func TestRoomJoinSizesRopeToViewport(t *testing.T) {
	r := New()
	go r.Run()
	defer r.Stop()

	fc := &fakeConn{sendCh: make(chan []byte, 8)}
	reply := make(chan JoinResult, 1)
	r.Inbox <- Join{Conn: fc, Name: "test", W: 1000, H: 500, Reply: reply}
	<-reply

	st := nextState(t, fc, time.Second)
	if x := st.Points[0].X; x != 1000*RootXFrac {
		t.Fatalf("root x = %f, want %f", x, 1000*RootXFrac)
	}
	if st.Peg.X != 1000*PegXFrac || st.Peg.Y != 500*PegYFrac {
		t.Fatalf("peg at (%f, %f), want (%f, %f)",
			st.Peg.X, st.Peg.Y, 1000*PegXFrac, 500*PegYFrac)
	}
}

func TestRoomInputDragsFreeEnd(t *testing.T) {
	r := New()
	go r.Run()
	defer r.Stop()

	fc := &fakeConn{sendCh: make(chan []byte, 256)}
	reply := make(chan JoinResult, 1)
	r.Inbox <- Join{Conn: fc, Name: "dragger", Reply: reply}
	res := <-reply

	st := nextState(t, fc, time.Second)
	end := st.Points[len(st.Points)-1]

	// Pointer down right on the free end, then pull it aside.
	r.Inbox <- Input{ClientID: res.ClientID, Input: protocol.Input{X: end.X, Y: end.Y, Down: true}}
	waitDragging := time.After(time.Second)
	for !st.Dragging {
		select {
		case <-waitDragging:
			t.Fatalf("room never entered dragging after pointer-down on the free end")
		default:
		}
		st = nextState(t, fc, time.Second)
	}

	const targetX, targetY = 400.0, 300.0
	r.Inbox <- Input{ClientID: res.ClientID, Input: protocol.Input{X: targetX, Y: targetY, Down: true}}

	waitFollow := time.After(time.Second)
	for {
		st = nextState(t, fc, time.Second)
		p := st.Points[len(st.Points)-1]
		if p.X == targetX && p.Y == targetY && p.Pinned {
			return
		}
		select {
		case <-waitFollow:
			t.Fatalf("free end never followed the pointer: at (%f, %f)", p.X, p.Y)
		default:
		}
	}
}

func TestRoomIgnoresInputFromUnknownClient(t *testing.T) {
	r := New()
	go r.Run()
	defer r.Stop()

	fc := &fakeConn{sendCh: make(chan []byte, 64)}
	reply := make(chan JoinResult, 1)
	r.Inbox <- Join{Conn: fc, Name: "observer", Reply: reply}
	<-reply

	st := nextState(t, fc, time.Second)
	end := st.Points[len(st.Points)-1]
	r.Inbox <- Input{ClientID: "ghost", Input: protocol.Input{X: end.X, Y: end.Y, Down: true}}

	// Drain a few snapshots; the ghost's grab must never take.
	for i := 0; i < 5; i++ {
		st = nextState(t, fc, time.Second)
		if st.Dragging {
			t.Fatalf("input from an unknown client moved the rope")
		}
	}
}

func TestRoomLeaveLastClientFiresOnEmpty(t *testing.T) {
	r := New()
	r.Code = "TEST01"
	emptied := make(chan string, 1)
	r.OnEmpty = func(code string) { emptied <- code }
	go r.Run()
	defer r.Stop()

	fc := &fakeConn{sendCh: make(chan []byte, 256)}
	reply := make(chan JoinResult, 1)
	r.Inbox <- Join{Conn: fc, Name: "test", Reply: reply}
	res := <-reply

	// Keep the conn drained so the room loop never blocks on it.
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-fc.sendCh:
			case <-done:
				return
			}
		}
	}()

	r.Inbox <- Leave{ClientID: res.ClientID}

	select {
	case code := <-emptied:
		if code != "TEST01" {
			t.Fatalf("OnEmpty got code %q, want %q", code, "TEST01")
		}
	case <-time.After(time.Second):
		t.Fatalf("OnEmpty never fired after last client left")
	}
}

type slowConn struct {
	sendCh chan []byte
	block  chan struct{}
}

func (s *slowConn) Send(b []byte) error {
	cp := append([]byte(nil), b...)
	s.sendCh <- cp
	<-s.block // block until released
	return nil
}
func (s *slowConn) Close() error { return nil }

func TestRoomBroadcastDoesNotDeadlockOnSlowConn(t *testing.T) {
	r := New()
	go r.Run()
	defer r.Stop()

	// slow conn blocks on every Send
	sc := &slowConn{
		sendCh: make(chan []byte, 1),
		block:  make(chan struct{}),
	}
	reply := make(chan JoinResult, 1)
	r.Inbox <- Join{Conn: sc, Name: "slow", Reply: reply}
	<-reply

	select {
	case <-sc.sendCh:
		// release one send so the room can proceed
		close(sc.block)
	case <-time.After(1 * time.Second):
		t.Fatalf("expected at least one state send; possible deadlock")
	}
}

func TestRoomBroadcastRateRoughly20Hz(t *testing.T) {
	r := New()
	go r.Run()
	defer r.Stop()

	fc := &fakeConn{sendCh: make(chan []byte, 256)}
	reply := make(chan JoinResult, 1)
	r.Inbox <- Join{Conn: fc, Name: "rate", Reply: reply}
	<-reply

	// Count state messages for ~300ms.
	deadline := time.After(300 * time.Millisecond)
	count := 0

	for {
		select {
		case b := <-fc.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err == nil && env.T == protocol.MsgState {
				count++
			}
		case <-deadline:
			// 20Hz for 0.3s => ~6 msgs.
			// We accept a wide range to avoid flakes.
			if count < 2 || count > 12 {
				t.Fatalf("unexpected state broadcast count in 300ms: %d", count)
			}
			return
		}
	}
}

func TestManagerRemovesRoomWhenEmptied(t *testing.T) {
	m := NewManager()
	code := m.CreateRoom()
	r := m.GetOrCreateRoom(code)

	fc := &fakeConn{sendCh: make(chan []byte, 256)}
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-fc.sendCh:
			case <-done:
				return
			}
		}
	}()

	reply := make(chan JoinResult, 1)
	r.Inbox <- Join{Conn: fc, Name: "only", Reply: reply}
	res := <-reply

	r.Inbox <- Leave{ClientID: res.ClientID}

	deadline := time.After(time.Second)
	for {
		gone := true
		for _, info := range m.ListRooms() {
			if info.Code == code {
				gone = false
			}
		}
		if gone {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("room %q still listed after last client left", code)
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}
