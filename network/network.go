package network

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dangle/protocol"
	"dangle/room"
)

var upgrader = websocket.Upgrader{
	// For dev, allow all origins. Lock this down in prod.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn wraps a websocket connection as a room.Conn. Writes are
// serialized; the room broadcasts from its own goroutine while the ping
// loop writes from another.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// Handler returns the /ws endpoint. A client connects with ?room=CODE
// (or no code for the lobby room), sends a hello, gets a welcome, and
// then streams pointer input while state snapshots flow back.
func Handler(manager *room.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}

		// Basic timeouts + pong handling (keeps connections healthy)
		conn.SetReadLimit(1 << 20) // 1MB
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		code := r.URL.Query().Get("room")
		if code == "" {
			code = manager.CreateRoom()
		}
		rm := manager.GetOrCreateRoom(code)
		if rm == nil {
			_ = conn.Close()
			return
		}

		wc := &wsConn{conn: conn}
		hello, err := readHello(conn)
		if err != nil {
			log.Println("hello:", err)
			_ = conn.Close()
			return
		}

		reply := make(chan room.JoinResult, 1)
		rm.Inbox <- room.Join{Conn: wc, Name: hello.Name, W: hello.W, H: hello.H, Reply: reply}
		res := <-reply

		welcome, err := protocol.Encode(protocol.MsgWelcome, protocol.Welcome{
			ClientID: res.ClientID,
			Room:     code,
			TickHz:   protocol.SimTickHz,
		})
		if err == nil {
			_ = wc.Send(welcome)
		}

		done := make(chan struct{})
		go pingLoop(wc, done)

		readLoop(conn, rm, res.ClientID)
		close(done)
		rm.Inbox <- room.Leave{ClientID: res.ClientID}
	}
}

func readHello(conn *websocket.Conn) (protocol.Hello, error) {
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return protocol.Hello{}, err
	}
	env, err := protocol.DecodeEnvelope(msg)
	if err != nil {
		return protocol.Hello{}, err
	}
	return protocol.DecodePayload[protocol.Hello](env)
}

func readLoop(conn *websocket.Conn, rm *room.Room, clientID string) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			continue
		}
		switch env.T {
		case protocol.MsgInput:
			in, err := protocol.DecodePayload[protocol.Input](env)
			if err != nil {
				continue
			}
			rm.Inbox <- room.Input{ClientID: clientID, Input: in}
		case protocol.MsgResize:
			rs, err := protocol.DecodePayload[protocol.Resize](env)
			if err != nil {
				continue
			}
			rm.Inbox <- room.Resize{ClientID: clientID, W: rs.W, H: rs.H}
		}
	}
}

func pingLoop(wc *wsConn, done chan struct{}) {
	ticker := time.NewTicker(25 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := wc.ping(); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
