package main

// Intent is the capability set shared by player and NPC controllers
type Intent interface {
	Target() (ObjectID, bool)
	ShouldFireWeapons() bool
	ResetFireWeapons()
	ShouldFireMissiles() bool
	ResetFireMissiles()
	Thrusting() bool
	TurnDir() int
}

// ControllerKind tags which variant of ShipController is active
type ControllerKind uint8

const (
	ControlledByPlayer ControllerKind = iota
	ControlledByNPC
)

// PlayerController holds intent submitted by a connected player
type PlayerController struct {
	PlayerID     string
	Thrust       bool
	Turn         int // -1, 0, +1
	FireWeapons  bool
	FireMissiles bool
	TargetID     ObjectID
}

func (c *PlayerController) Target() (ObjectID, bool) { return c.TargetID, c.TargetID != 0 }
func (c *PlayerController) ShouldFireWeapons() bool  { return c.FireWeapons }
func (c *PlayerController) ResetFireWeapons()        { c.FireWeapons = false }
func (c *PlayerController) ShouldFireMissiles() bool { return c.FireMissiles }
func (c *PlayerController) ResetFireMissiles()       { c.FireMissiles = false }
func (c *PlayerController) Thrusting() bool          { return c.Thrust }
func (c *PlayerController) TurnDir() int             { return c.Turn }

// NPCController holds intent written by the NPC behaviour layer, which lives
// outside this server. Heading steering is not interpreted by the integrator.
type NPCController struct {
	Behaviour    string
	Thrust       bool
	FireWeapons  bool
	FireMissiles bool
	TargetID     ObjectID
}

func (c *NPCController) Target() (ObjectID, bool) { return c.TargetID, c.TargetID != 0 }
func (c *NPCController) ShouldFireWeapons() bool  { return c.FireWeapons }
func (c *NPCController) ResetFireWeapons()        { c.FireWeapons = false }
func (c *NPCController) ShouldFireMissiles() bool { return c.FireMissiles }
func (c *NPCController) ResetFireMissiles()       { c.FireMissiles = false }
func (c *NPCController) Thrusting() bool          { return c.Thrust }
func (c *NPCController) TurnDir() int             { return 0 }

// ShipController is a tagged union over the two controller variants. It is
// stored by value; mutate a copy through Intent and write it back.
type ShipController struct {
	Kind   ControllerKind
	Player PlayerController
	NPC    NPCController
}

// NewPlayerControl returns a controller driven by the given player
func NewPlayerControl(playerID string) ShipController {
	return ShipController{Kind: ControlledByPlayer, Player: PlayerController{PlayerID: playerID}}
}

// NewNPCControl returns a controller driven by the named NPC behaviour
func NewNPCControl(behaviour string) ShipController {
	return ShipController{Kind: ControlledByNPC, NPC: NPCController{Behaviour: behaviour}}
}

// Intent returns the active variant
func (c *ShipController) Intent() Intent {
	if c.Kind == ControlledByNPC {
		return &c.NPC
	}
	return &c.Player
}
