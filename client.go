package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	requestTimeout = 2 * time.Second
	maxMessageSize = 4096
	sendBufSize    = 256
	maxNameLen     = 16
)

type outbound struct {
	binary bool
	data   []byte
}

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan outbound
	sendOnce   sync.Once
	connID     string
	remoteAddr string
	limiter    *rate.Limiter
	logger     *slog.Logger

	mu       sync.Mutex
	identity Identity
	guest    bool
	playerID string // set while the pilot has a ship in the world
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	connID := GenerateUUID()
	rl := hub.cfg.RateLimit
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan outbound, sendBufSize),
		connID:     connID,
		remoteAddr: remoteAddr,
		limiter:    rate.NewLimiter(rate.Limit(rl.MessagesPerSecond), rl.BurstSize),
		logger:     hub.logger.With("conn_id", connID, "remote_addr", remoteAddr),
	}
}

// PlayerID returns the id of the player this connection flies, if any
func (c *Client) PlayerID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID
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
				c.logger.Warn("WebSocket read failed", "error", err)
			}
			break
		}
		if !c.limiter.Allow() {
			c.logger.Warn("Rate limit exceeded, disconnecting",
				"messages_per_second", c.hub.cfg.RateLimit.MessagesPerSecond,
				"burst_size", c.hub.cfg.RateLimit.BurstSize,
			)
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
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			kind := websocket.TextMessage
			if msg.binary {
				kind = websocket.BinaryMessage
			}
			if err := c.conn.WriteMessage(kind, msg.data); err != nil {
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

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("Failed to marshal message", "error", err)
		return
	}
	c.enqueue(outbound{data: data})
}

// SendBinary sends pre-encoded bytes as a binary WebSocket message
func (c *Client) SendBinary(data []byte) {
	c.enqueue(outbound{binary: true, data: data})
}

func (c *Client) enqueue(msg outbound) {
	// send may already be closed by the hub
	defer func() { recover() }()
	select {
	case c.send <- msg:
	default:
		// Client too slow, drop message
	}
}

func (c *Client) closeSend() {
	c.sendOnce.Do(func() { close(c.send) })
}

func (c *Client) sendError(msg string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Debug("Failed to unmarshal message", "error", err)
		return
	}

	switch env.T {
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgInput:
		c.handleInput(env.D)
	case MsgLeave:
		c.handleLeave()
	case MsgLoadout:
		c.handleLoadout(env.D)
	}
}

func (c *Client) handleJoin(data json.RawMessage) {
	var msg JoinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if c.PlayerID() != "" {
		c.sendError("already joined")
		return
	}

	var id Identity
	guest := false
	switch {
	case msg.Token != "":
		var err error
		id, err = c.hub.auth.ValidateToken(msg.Token)
		if err != nil {
			c.logger.Info("Join rejected", "error", err)
			c.sendError("invalid token")
			return
		}
	case c.hub.cfg.Auth.AllowGuests:
		guest = true
		id = Identity{PlayerID: "guest-" + GenerateUUID(), Name: GenerateGuestName()}
	default:
		c.sendError("token required")
		return
	}
	if msg.Name != "" {
		id.Name = msg.Name
	}
	if id.Name == "" {
		id.Name = "Pilot"
	}
	if len(id.Name) > maxNameLen {
		id.Name = id.Name[:maxNameLen]
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	p, err := c.hub.game.Join(ctx, id, c)
	if err != nil {
		if errors.Is(err, ErrSectorFull) {
			c.sendError("sector full")
		} else {
			c.logger.Warn("Join failed", "player_id", id.PlayerID, "error", err)
			c.sendError("join failed")
		}
		return
	}

	c.mu.Lock()
	c.identity = id
	c.guest = guest
	c.playerID = p.ID
	c.mu.Unlock()

	c.SendJSON(Envelope{T: MsgWelcome, Data: WelcomeMsg{
		PlayerID: p.ID,
		ShipID:   p.ShipID,
		Sector:   p.Sector,
		Guest:    guest,
	}})
}

func (c *Client) handleInput(data json.RawMessage) {
	pid := c.PlayerID()
	if pid == "" {
		return
	}
	var input InputMsg
	if err := json.Unmarshal(data, &input); err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := c.hub.game.HandleInput(ctx, pid, input); err != nil {
		c.logger.Debug("Input rejected", "player_id", pid, "error", err)
	}
}

func (c *Client) handleLeave() {
	c.mu.Lock()
	pid := c.playerID
	c.playerID = ""
	c.mu.Unlock()
	if pid == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := c.hub.game.Leave(ctx, pid); err != nil {
		c.logger.Warn("Leave failed", "player_id", pid, "error", err)
	}
	c.SendJSON(Envelope{T: MsgLeft})
}

func (c *Client) handleLoadout(data json.RawMessage) {
	c.mu.Lock()
	id, guest := c.identity, c.guest
	c.mu.Unlock()
	if id.PlayerID == "" || guest {
		c.sendError("not authenticated")
		return
	}
	var msg LoadoutMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	if err := c.hub.game.SaveLoadout(id.PlayerID, msg); err != nil {
		c.sendError(err.Error())
	}
}
