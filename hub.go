package main

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const leaveTimeout = 5 * time.Second

// Hub tracks connected clients and removes their players on disconnect
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int

	game   *Game
	auth   *Auth
	cfg    *Config
	logger *slog.Logger
}

// NewHub creates a new Hub in front of game
func NewHub(game *Game, auth *Auth, cfg *Config, logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		ipConns:    make(map[string]int),
		game:       game,
		auth:       auth,
		cfg:        cfg,
		logger:     logger.With("component", "hub"),
	}
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= h.cfg.Server.MaxConns {
		return false
	}
	if h.ipConns[ip] >= h.cfg.Server.MaxConnsIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
			}
			h.mu.Unlock()
			if pid := client.PlayerID(); pid != "" {
				lctx, cancel := context.WithTimeout(ctx, leaveTimeout)
				if err := h.game.Leave(lctx, pid); err != nil {
					h.logger.Warn("Failed to remove player on disconnect", "player_id", pid, "error", err)
				}
				cancel()
			}
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
