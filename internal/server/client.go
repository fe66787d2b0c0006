package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hailam/rankwar/internal/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Message types sent to WebSocket clients.
const (
	msgEvent = "event"
	msgState = "state"
	msgError = "error"
)

// wsMessage is what clients receive.
type wsMessage struct {
	Type  string          `json:"type"`
	Event *engine.Event   `json:"event,omitempty"`
	State engine.Snapshot `json:"state"`
	Error string          `json:"error,omitempty"`
}

// wsCommand is what clients send: {"type":"click","x":3,"y":4},
// {"type":"mode","mode":"attack"}, {"type":"end_turn"}, {"type":"reset"} or
// {"type":"state"}.
type wsCommand struct {
	Type string `json:"type"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Mode string `json:"mode"`
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	server *Server
	hub    *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte
}

// broadcastEvent is the engine listener. It runs while the engine lock is
// held, so it reads the engine directly.
func (s *Server) broadcastEvent(ev engine.Event) {
	data, err := json.Marshal(wsMessage{Type: msgEvent, Event: &ev, State: s.engine.Snapshot()})
	if err != nil {
		s.log.Errorw("encode event", "kind", ev.Kind, "error", err)
		return
	}
	s.hub.Broadcast(data)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	c := &Client{server: s, hub: s.hub, conn: conn, send: make(chan []byte, 16)}
	if !s.hub.add(c) {
		conn.Close()
		return
	}
	s.log.Infow("websocket connected", "remote", r.RemoteAddr)

	snap, _ := s.apply(func(*engine.Engine) error { return nil })
	c.reply(wsMessage{Type: msgState, State: snap})

	go c.writePump()
	go c.readPump()
}

// reply queues a message for this client only.
func (c *Client) reply(m wsMessage) {
	data, err := json.Marshal(m)
	if err != nil {
		c.server.log.Errorw("encode reply", "error", err)
		return
	}
	c.hub.sendTo(c, data)
}

// dispatch applies one command and answers the sender.
func (c *Client) dispatch(cmd wsCommand) {
	var act func(*engine.Engine) error
	switch cmd.Type {
	case "click":
		act = func(e *engine.Engine) error { return e.OnCellClicked(cmd.X, cmd.Y) }
	case "mode":
		m, err := engine.ParseMode(cmd.Mode)
		if err != nil {
			snap, _ := c.server.apply(func(*engine.Engine) error { return nil })
			c.reply(wsMessage{Type: msgError, State: snap, Error: engine.Describe(err)})
			return
		}
		act = func(e *engine.Engine) error { return e.OnModeSelected(m) }
	case "end_turn":
		act = func(e *engine.Engine) error { e.OnEndTurn(); return nil }
	case "reset":
		act = func(e *engine.Engine) error { e.Reset(); return nil }
	case "state":
		act = func(*engine.Engine) error { return nil }
	default:
		snap, _ := c.server.apply(func(*engine.Engine) error { return nil })
		c.reply(wsMessage{Type: msgError, State: snap, Error: "unknown command " + cmd.Type})
		return
	}

	snap, err := c.server.apply(act)
	if err != nil {
		c.reply(wsMessage{Type: msgError, State: snap, Error: engine.Describe(err)})
		return
	}
	if cmd.Type == "state" {
		c.reply(wsMessage{Type: msgState, State: snap})
	}
}

// readPump pumps commands from the websocket connection to the engine.
//
// The application runs readPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.log.Warnw("websocket read", "error", err)
			}
			return
		}
		var cmd wsCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			snap, _ := c.server.apply(func(*engine.Engine) error { return nil })
			c.reply(wsMessage{Type: msgError, State: snap, Error: "invalid message format"})
			continue
		}
		c.dispatch(cmd)
	}
}

// writePump pumps messages from the hub to the websocket connection.
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.server.log.Debugw("websocket write", "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
