package main

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 50
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	playerID   string
	remoteAddr string
	msgCount   int
	msgResetAt time.Time

	// Auth state
	authPlayerID int64  // 0 = unauthenticated/guest
	authUsername string // "" = unauthenticated
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.Warnf("ws error: %v", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			logrus.Warnf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
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
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// Send implements Sender: marshals an envelope and queues it, dropping
// the message when the client is too slow to keep up.
func (c *Client) Send(event string, payload interface{}) {
	data, err := json.Marshal(Envelope{T: event, Data: payload})
	if err != nil {
		logrus.Warnf("marshal error: %v", err)
		return
	}
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
	}
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope).
// Malformed payloads are dropped as validation rejections.
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logrus.Warnf("unmarshal error: %v", err)
		return
	}

	switch env.T {
	case EventJoin:
		c.handleJoin()
	case EventRegister:
		c.handleRegister(env.D)
	case EventLogin:
		c.handleLogin(env.D)
	case EventAuth:
		c.handleAuth(env.D)
	default:
		c.handleGameEvent(env.T, env.D)
	}
}

// handleGameEvent decodes a typed payload and enqueues the handler onto
// the game loop. Unknown event names are ignored.
func (c *Client) handleGameEvent(event string, data json.RawMessage) {
	if c.playerID == "" {
		return
	}
	id := c.playerID
	g := c.hub.game

	switch event {
	case EventControl:
		var msg ControlMsg
		if json.Unmarshal(data, &msg) != nil {
			return
		}
		g.Do(func() { g.handleControl(id, msg) })
	case EventFire:
		g.Do(func() { g.handleFire(id) })
	case EventRequestHyperjump:
		var msg JumpRequestMsg
		if json.Unmarshal(data, &msg) != nil {
			return
		}
		g.Do(func() { g.handleRequestJump(id, msg) })
	case EventCancelHyperjump:
		g.Do(func() { g.handleCancelJump(id) })
	case EventDock:
		var msg DockMsg
		if json.Unmarshal(data, &msg) != nil {
			return
		}
		g.Do(func() { g.handleDock(id, msg) })
	case EventUndock:
		g.Do(func() { g.handleUndock(id) })
	case EventBuyGood, EventSellGood:
		var msg TradeMsg
		if json.Unmarshal(data, &msg) != nil {
			return
		}
		action := event
		g.Do(func() { g.handleTrade(id, action, msg) })
	case EventEquipWeapon:
		var msg EquipWeaponMsg
		if json.Unmarshal(data, &msg) != nil {
			return
		}
		g.Do(func() { g.handleEquipWeapon(id, msg) })
	case EventBuyShip:
		var msg BuyShipMsg
		if json.Unmarshal(data, &msg) != nil {
			return
		}
		g.Do(func() { g.handleBuyShip(id, msg) })
	case EventRequestMissions:
		var msg RequestMissionsMsg
		if json.Unmarshal(data, &msg) != nil {
			return
		}
		g.Do(func() { g.handleRequestMissions(id, msg) })
	case EventAcceptMission:
		var msg AcceptMissionMsg
		if json.Unmarshal(data, &msg) != nil {
			return
		}
		g.Do(func() { g.handleAcceptMission(id, msg) })
	}
}

// handleJoin creates the in-game player. For authenticated accounts the
// saved snapshot is loaded here, off the game loop, before the join task.
func (c *Client) handleJoin() {
	if c.playerID != "" {
		return
	}
	c.playerID = uuid.NewString()

	var snap *PlayerSnapshot
	if c.authPlayerID != 0 && c.hub.db != nil {
		loaded, err := c.hub.db.LoadSnapshot(c.authPlayerID)
		if err != nil {
			logrus.WithFields(logrus.Fields{"account": c.authPlayerID}).Warnf("load save: %v", err)
		} else {
			snap = loaded
		}
	}

	id := c.playerID
	accountID := c.authPlayerID
	g := c.hub.game
	g.Do(func() { g.handleJoin(id, c, accountID, snap) })
}

func (c *Client) handleRegister(data json.RawMessage) {
	if c.hub.auth == nil {
		c.Send(EventError, ErrorMsg{Msg: "accounts unavailable"})
		return
	}
	var msg RegisterMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.Send(EventError, ErrorMsg{Msg: err.Error()})
		return
	}
	c.authPlayerID = id
	c.authUsername = msg.Username
	c.Send(EventAuthOK, AuthOKMsg{Token: token, Username: msg.Username, PlayerID: id})
}

func (c *Client) handleLogin(data json.RawMessage) {
	if c.hub.auth == nil {
		c.Send(EventError, ErrorMsg{Msg: "accounts unavailable"})
		return
	}
	var msg LoginMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.Send(EventError, ErrorMsg{Msg: err.Error()})
		return
	}
	c.authPlayerID = id
	c.authUsername = msg.Username
	c.Send(EventAuthOK, AuthOKMsg{Token: token, Username: msg.Username, PlayerID: id})
}

func (c *Client) handleAuth(data json.RawMessage) {
	if c.hub.auth == nil {
		c.Send(EventError, ErrorMsg{Msg: "accounts unavailable"})
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.Send(EventError, ErrorMsg{Msg: "invalid token"})
		return
	}
	c.authPlayerID = id
	c.authUsername = username
	c.Send(EventAuthOK, AuthOKMsg{Token: msg.Token, Username: username, PlayerID: id})
}
