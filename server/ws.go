package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"portfolio-arcade/server/rps"
	"portfolio-arcade/server/session"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
	wsReadLimit  = 4096
	wsSendBuffer = 256
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// wsIn is a client frame: {"type":"play","move":"paper"}, {"type":"reset"}
// or {"type":"state"}.
type wsIn struct {
	Type string `json:"type"`
	Move string `json:"move,omitempty"`
}

type wsOut struct {
	Type    string        `json:"type"`
	Round   *rps.Round    `json:"round,omitempty"`
	Session *session.View `json:"session,omitempty"`
	Error   string        `json:"error,omitempty"`
}

type wsConn struct {
	conn *websocket.Conn
	sess *session.Session
	send chan []byte
	log  *logrus.Entry
}

func (s *server) ws(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessionFrom(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the client.
		s.log.WithError(err).Debug("websocket upgrade")
		return
	}
	c := &wsConn{
		conn: conn,
		sess: sess,
		send: make(chan []byte, wsSendBuffer),
		log:  s.log.WithField("session", sess.ID),
	}
	c.log.Info("websocket connected")
	v := sess.View()
	c.push(wsOut{Type: "state", Session: &v})
	go c.writePump()
	c.readPump()
}

func (c *wsConn) push(m wsOut) {
	b, err := json.Marshal(m)
	if err != nil {
		c.log.WithError(err).Warn("websocket encode")
		return
	}
	select {
	case c.send <- b:
	default:
		c.log.Warn("websocket send buffer full, dropping frame")
	}
}

func (c *wsConn) handle(in wsIn) {
	switch in.Type {
	case "play":
		m, err := rps.ParseMove(in.Move)
		if err != nil {
			c.push(wsOut{Type: "error", Error: err.Error()})
			return
		}
		round := c.sess.Play(m)
		v := c.sess.View()
		c.push(wsOut{Type: "round", Round: &round, Session: &v})
	case "reset":
		v := c.sess.Reset()
		c.push(wsOut{Type: "state", Session: &v})
	case "state":
		v := c.sess.View()
		c.push(wsOut{Type: "state", Session: &v})
	default:
		c.push(wsOut{Type: "error", Error: "unknown message type " + in.Type})
	}
}

// readPump owns the read side and closes send when the peer goes away, which
// ends writePump.
func (c *wsConn) readPump() {
	defer close(c.send)

	c.conn.SetReadLimit(wsReadLimit)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("websocket read")
			}
			c.log.Info("websocket closed")
			return
		}
		var in wsIn
		if err := json.Unmarshal(message, &in); err != nil {
			c.push(wsOut{Type: "error", Error: "bad json"})
			continue
		}
		c.handle(in)
	}
}

func (c *wsConn) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
