package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// ---------- helpers ----------

var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

type testServer struct {
	*httptest.Server
	auth *Auth
	game *Game
	hub  *Hub
}

func newTestServer(t *testing.T, cfg *Config) *testServer {
	t.Helper()
	g := startTestGame(t, cfg, nil)
	auth, err := NewAuth(cfg.Auth, nil, testLogger())
	if err != nil {
		t.Fatalf("NewAuth: %v", err)
	}
	hub := NewHub(g, auth, cfg, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	srv := httptest.NewServer(SetupRoutes(hub))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return &testServer{Server: srv, auth: auth, game: g, hub: hub}
}

func (s *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(s.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendMsg(t *testing.T, conn *websocket.Conn, typ string, data interface{}) {
	t.Helper()
	raw, _ := json.Marshal(data)
	if err := conn.WriteJSON(InEnvelope{T: typ, D: raw}); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// readJSON skips binary frames until a text message arrives
func readJSON(t *testing.T, conn *websocket.Conn) InEnvelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if kind != websocket.TextMessage {
			continue
		}
		var env InEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		return env
	}
}

// ---------- UUID generation tests ----------

func TestGenerateUUIDFormat(t *testing.T) {
	for i := 0; i < 20; i++ {
		id := GenerateUUID()
		if !uuidRegex.MatchString(id) {
			t.Errorf("GenerateUUID() = %q, does not match UUID v4 format", id)
		}
	}
}

func TestGenerateUUIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateUUID()
		if seen[id] {
			t.Fatalf("duplicate UUID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestGenerateIDLength(t *testing.T) {
	for _, n := range []int{1, 3, 16} {
		if id := GenerateID(n); len(id) != 2*n {
			t.Errorf("GenerateID(%d) = %q, want %d hex chars", n, id, 2*n)
		}
	}
}

// ---------- join flow ----------

func TestWebSocketGuestJoin(t *testing.T) {
	cfg := testConfig()
	cfg.Replication.ResyncInterval = 10 * time.Millisecond
	cfg.Simulation.BroadcastInterval = 10 * time.Millisecond
	srv := newTestServer(t, cfg)
	conn := srv.dial(t)

	sendMsg(t, conn, MsgJoin, JoinMsg{Name: "a-very-long-pilot-name"})
	env := readJSON(t, conn)
	if env.T != MsgWelcome {
		t.Fatalf("expected welcome, got %s", env.T)
	}
	var welcome WelcomeMsg
	json.Unmarshal(env.D, &welcome)
	if !welcome.Guest || !uuidRegex.MatchString(strings.TrimPrefix(welcome.PlayerID, "guest-")) || welcome.ShipID == 0 {
		t.Errorf("unexpected welcome %+v", welcome)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("waiting for frame: %v", err)
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		var f StateFrame
		if err := msgpack.Unmarshal(data, &f); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		if f.Self != welcome.ShipID {
			t.Fatalf("frame for ship %d, want %d", f.Self, welcome.ShipID)
		}
		break
	}

	sendMsg(t, conn, MsgJoin, JoinMsg{})
	if env := readJSON(t, conn); env.T != MsgError {
		t.Errorf("expected error on second join, got %s", env.T)
	}
	sendMsg(t, conn, MsgLoadout, LoadoutMsg{})
	if env := readJSON(t, conn); env.T != MsgError {
		t.Errorf("guests may not store loadouts, got %s", env.T)
	}
	sendMsg(t, conn, MsgLeave, nil)
	if env := readJSON(t, conn); env.T != MsgLeft {
		t.Errorf("expected left, got %s", env.T)
	}
}

func TestWebSocketTokenJoin(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.AllowGuests = false
	srv := newTestServer(t, cfg)

	tok, err := srv.auth.IssueToken(Identity{PlayerID: "acct-7", Name: "Vega"})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	conn := srv.dial(t)
	sendMsg(t, conn, MsgJoin, JoinMsg{Token: tok})
	env := readJSON(t, conn)
	if env.T != MsgWelcome {
		t.Fatalf("expected welcome, got %s: %s", env.T, env.D)
	}
	var welcome WelcomeMsg
	json.Unmarshal(env.D, &welcome)
	if welcome.PlayerID != "acct-7" || welcome.Guest {
		t.Errorf("unexpected welcome %+v", welcome)
	}

	other := srv.dial(t)
	sendMsg(t, other, MsgJoin, JoinMsg{Token: "forged"})
	if env := readJSON(t, other); env.T != MsgError || !strings.Contains(string(env.D), "invalid token") {
		t.Errorf("expected invalid token error, got %s %s", env.T, env.D)
	}
	sendMsg(t, other, MsgJoin, JoinMsg{})
	if env := readJSON(t, other); env.T != MsgError || !strings.Contains(string(env.D), "token required") {
		t.Errorf("expected token required error, got %s %s", env.T, env.D)
	}
}

func TestWebSocketDisconnectRemovesPlayer(t *testing.T) {
	srv := newTestServer(t, testConfig())
	conn := srv.dial(t)
	sendMsg(t, conn, MsgJoin, JoinMsg{})
	if env := readJSON(t, conn); env.T != MsgWelcome {
		t.Fatalf("expected welcome, got %s", env.T)
	}
	conn.Close()

	waitFor(t, "player removal", func() bool {
		st, err := srv.game.Status(context.Background())
		return err == nil && st.Players == 0 && st.Connected == 0
	})
}

// ---------- HTTP routes ----------

func TestStatusEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig())
	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var st StatusMsg
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Objects != 5 || st.Players != 0 || len(st.Tasks) != 5 {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestConnectionLimitPerIP(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxConnsIP = 1
	srv := newTestServer(t, cfg)
	srv.dial(t)
	waitFor(t, "first connection to be tracked", func() bool { return srv.hub.TotalConns() == 1 })

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected second connection to be refused")
	}
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %v", resp)
	}
}
