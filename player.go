package main

import "time"

// JumpState is the hyperjump state machine phase
type JumpState string

const (
	JumpIdle     JumpState = "idle"
	JumpCharging JumpState = "charging"
)

// DockRef identifies the planet a player is docked at
type DockRef struct {
	System int `json:"systemIndex" msgpack:"sys"`
	Planet int `json:"planetIndex" msgpack:"pl"`
}

// Player is the canonical record for one connected pilot. It is owned by
// the PlayerStore and mutated only inside game-loop tasks.
type Player struct {
	ID    string
	Color string

	X, Y   float64
	VX, VY float64
	Angle  float64 // heading, wrapped to [0, 2*PI)

	ShipType  int
	Health    int
	MaxHealth int
	MaxCargo  float64

	Credits int
	Cargo   []int // one slot per trade good

	Weapons      []string
	ActiveWeapon string // "" = none; otherwise a member of Weapons

	Missions []*Mission

	System    int
	DockedAt  *DockRef
	Destroyed bool

	JumpState JumpState
	jumpSeq   int // charge generation, guards stale timer fires
	jumpTimer *time.Timer
	jumpTo    int

	AccountID int64 // 0 = guest
}

// Diff is a set of changed player fields, keyed by the wire field name.
// Only these fields are transmitted in the resulting state event.
type Diff map[string]interface{}

// HasWeapon reports whether the player owns the named weapon
func (p *Player) HasWeapon(name string) bool {
	for _, w := range p.Weapons {
		if w == name {
			return true
		}
	}
	return false
}

// CargoMass returns the total mass currently in the hold
func (p *Player) CargoMass(goods []TradeGood) float64 {
	total := 0.0
	for i, qty := range p.Cargo {
		if i < len(goods) {
			total += float64(qty) * goods[i].Mass
		}
	}
	return total
}

// AddCredits adjusts credits, clamping deductions at 0
func (p *Player) AddCredits(delta int) {
	p.Credits += delta
	if p.Credits < 0 {
		p.Credits = 0
	}
}

// ApplyDamage subtracts health with a floor of 0 and returns true if the
// player was destroyed by this hit
func (p *Player) ApplyDamage(dmg int) bool {
	if p.Destroyed {
		return false
	}
	p.Health -= dmg
	if p.Health <= 0 {
		p.Health = 0
		p.Destroyed = true
		return true
	}
	return false
}

// PlayerSnapshot is the persisted/loadable player shape exchanged with
// the persistence collaborator.
type PlayerSnapshot struct {
	X            float64    `json:"x" msgpack:"x"`
	Y            float64    `json:"y" msgpack:"y"`
	VX           float64    `json:"vx" msgpack:"vx"`
	VY           float64    `json:"vy" msgpack:"vy"`
	Angle        float64    `json:"angle" msgpack:"a"`
	ShipType     int        `json:"shipType" msgpack:"st"`
	Credits      int        `json:"credits" msgpack:"cr"`
	Cargo        []int      `json:"cargo" msgpack:"cg"`
	Weapons      []string   `json:"weapons" msgpack:"wp"`
	ActiveWeapon string     `json:"activeWeapon" msgpack:"aw"`
	Health       int        `json:"health" msgpack:"hp"`
	Missions     []*Mission `json:"activeMissions" msgpack:"ms"`
	System       int        `json:"systemIndex" msgpack:"sy"`
	DockedAt     *DockRef   `json:"dockedAt,omitempty" msgpack:"dk,omitempty"`
}

// Snapshot produces the saveable shape of the player
func (p *Player) Snapshot() *PlayerSnapshot {
	snap := &PlayerSnapshot{
		X:            p.X,
		Y:            p.Y,
		VX:           p.VX,
		VY:           p.VY,
		Angle:        p.Angle,
		ShipType:     p.ShipType,
		Credits:      p.Credits,
		Cargo:        append([]int(nil), p.Cargo...),
		Weapons:      append([]string(nil), p.Weapons...),
		ActiveWeapon: p.ActiveWeapon,
		Health:       p.Health,
		Missions:     append([]*Mission(nil), p.Missions...),
		System:       p.System,
	}
	if p.DockedAt != nil {
		d := *p.DockedAt
		snap.DockedAt = &d
	}
	return snap
}

// StateFields returns the full diff for this player, used for init sync
// and post-jump full broadcasts.
func (p *Player) StateFields() Diff {
	d := Diff{
		"color":        p.Color,
		"x":            p.X,
		"y":            p.Y,
		"vx":           p.VX,
		"vy":           p.VY,
		"angle":        p.Angle,
		"shipType":     p.ShipType,
		"health":       p.Health,
		"maxHealth":    p.MaxHealth,
		"maxCargo":     p.MaxCargo,
		"credits":      p.Credits,
		"cargo":        append([]int(nil), p.Cargo...),
		"weapons":      append([]string(nil), p.Weapons...),
		"activeWeapon": p.ActiveWeapon,
		"systemIndex":  p.System,
		"destroyed":    p.Destroyed,
		"jumpState":    p.JumpState,
	}
	if p.DockedAt != nil {
		d["dockedAt"] = *p.DockedAt
	} else {
		d["dockedAt"] = nil
	}
	return d
}
