package main

import "math"

// Combat resolves fire actions against players in the firing cone
type Combat struct {
	world    *World
	store    *PlayerStore
	missions *MissionEngine
	jumps    *JumpController
}

// NewCombat creates the combat resolver
func NewCombat(world *World, store *PlayerStore, missions *MissionEngine, jumps *JumpController) *Combat {
	return &Combat{world: world, store: store, missions: missions, jumps: jumps}
}

// Fire resolves a fire action for the attacker. Rejects silently when the
// attacker has no active weapon, is destroyed or is docked. Candidates are
// same-system, undocked, live players within weapon range whose bearing
// falls inside the forward cone; the first match in join order is hit.
// The cosmetic projectile event goes out regardless of hit outcome.
func (c *Combat) Fire(attacker *Player) {
	if attacker.Destroyed || attacker.DockedAt != nil || attacker.ActiveWeapon == "" {
		return
	}
	weapon, ok := c.world.WeaponByName(attacker.ActiveWeapon)
	if !ok {
		return
	}

	fx := math.Cos(attacker.Angle)
	fy := math.Sin(attacker.Angle)
	cosHalf := math.Cos(weapon.BeamAngle / 2)

	for _, target := range c.store.All() {
		if target.ID == attacker.ID || target.Destroyed || target.DockedAt != nil || target.System != attacker.System {
			continue
		}
		dx := target.X - attacker.X
		dy := target.Y - attacker.Y
		dist := math.Hypot(dx, dy)
		if dist == 0 || dist > weapon.Range {
			continue
		}
		if (dx*fx+dy*fy)/dist < cosHalf {
			continue
		}

		c.hit(attacker, target, weapon)
		break
	}

	c.store.Broadcast(EventProjectile, ProjectileMsg{
		Shooter: attacker.ID,
		System:  attacker.System,
		X:       attacker.X,
		Y:       attacker.Y,
		Angle:   attacker.Angle,
		Weapon:  weapon.Name,
	})
}

func (c *Combat) hit(attacker, target *Player, weapon WeaponDef) {
	destroyed := target.ApplyDamage(weapon.Damage)
	c.store.BroadcastState(target.ID, Diff{
		"health":    target.Health,
		"destroyed": target.Destroyed,
	})

	// Being shot interrupts a hyperjump charge, lethal or not
	if target.JumpState == JumpCharging {
		c.jumps.Cancel(target, cancelByEnemyFire)
	}

	if !destroyed {
		return
	}
	completed := c.missions.OnTargetDestroyed(attacker)
	for _, ms := range completed {
		c.store.SendTo(attacker.ID, EventMissionUpdate, MissionUpdateMsg{Mission: ms})
	}
	if len(completed) > 0 {
		c.store.BroadcastState(attacker.ID, Diff{"credits": attacker.Credits})
	}
}
