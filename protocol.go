package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoin    = "join"
	MsgLeave   = "leave"
	MsgInput   = "input"
	MsgLoadout = "loadout"
)

// Server -> Client message types. State frames go out as binary msgpack.
const (
	MsgWelcome   = "welcome"
	MsgError     = "error"
	MsgDenied    = "denied"    // a fire action was refused
	MsgDestroyed = "destroyed" // the player's ship was destroyed
	MsgLeft      = "left"
)

// Envelope wraps all outgoing JSON messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages; json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// JoinMsg is sent when a pilot wants to enter the sector. Token is empty
// for guests.
type JoinMsg struct {
	Token string `json:"token"`
	Name  string `json:"name"`
}

// InputMsg carries a pilot's control intent. Fire flags are edge-triggered:
// they queue one shot each and are cleared once the combat pass handles them.
type InputMsg struct {
	Thrust  bool     `json:"thrust"`
	Turn    int      `json:"turn"` // -1, 0, +1
	Target  ObjectID `json:"target"`
	Fire    bool     `json:"fire"`
	Missile bool     `json:"missile"`
}

// LoadoutMsg updates the stored loadout used on the next join
type LoadoutMsg struct {
	Class   int    `json:"class"`
	Weapon  string `json:"weapon"`
	Missile string `json:"missile"`
}

// WelcomeMsg is sent to a pilot when they join
type WelcomeMsg struct {
	PlayerID string   `json:"pid"`
	ShipID   ObjectID `json:"ship"`
	Sector   SectorID `json:"sector"`
	Guest    bool     `json:"guest,omitempty"`
}

// ErrorMsg sends an error to the client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// DeniedMsg tells the pilot why a fire action did nothing
type DeniedMsg struct {
	Kind string `json:"kind"`
	Msg  string `json:"msg"`
}

// DestroyedMsg tells a pilot who destroyed their ship
type DestroyedMsg struct {
	Attacker ObjectID `json:"by"`
}

// ObjectState is one visible object in a state frame
type ObjectState struct {
	ID   ObjectID   `msgpack:"id"`
	Kind ObjectKind `msgpack:"k"`
	X    float64    `msgpack:"x"`
	Y    float64    `msgpack:"y"`
	R    float64    `msgpack:"r"`
}

// ShipStatus is the owning pilot's own ship readout
type ShipStatus struct {
	Energy     float64 `msgpack:"e"`
	MaxEnergy  float64 `msgpack:"me"`
	Shields    float64 `msgpack:"sh"`
	MaxShields float64 `msgpack:"msh"`
	Hull       float64 `msgpack:"h"`
	MaxHull    float64 `msgpack:"mh"`
}

// StateFrame is the per-player binary state broadcast. HiRes holds objects
// inside the player's window; LowRes holds the rest of the sector at the
// coarser refresh rate.
type StateFrame struct {
	Frame   uint64         `msgpack:"f"`
	Self    ObjectID       `msgpack:"self"`
	Ship    ShipStatus     `msgpack:"ship"`
	Window  [2]Vec2        `msgpack:"w"`
	HiRes   []ObjectState  `msgpack:"hi"`
	LowRes  []ObjectState  `msgpack:"lo"`
	Effects []VisualEffect `msgpack:"fx"`
}

// StatusMsg is the /status response
type StatusMsg struct {
	Connected int64                 `json:"connected"`
	Players   int                   `json:"players"`
	Objects   int                   `json:"objects"`
	Effects   int                   `json:"effects"`
	Frames    uint64                `json:"frames"`
	Tasks     map[string]TaskStatus `json:"tasks"`
	CombatLog *CombatLogStatus      `json:"combat_log,omitempty"`
}

// TaskStatus is the public view of a periodic task timer
type TaskStatus struct {
	IntervalMS int64  `json:"interval_ms"`
	Runs       uint64 `json:"runs"`
	Failures   uint64 `json:"failures"`
}

// CombatLogStatus reports combat log writer counters
type CombatLogStatus struct {
	Written uint64 `json:"written"`
	Dropped uint64 `json:"dropped"`
}
