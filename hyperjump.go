package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

const (
	jumpChargeDuration = 5 * time.Second
	unsafePlanetRadius = 80.0 // multiplied by planet scale
	arrivalOffset      = 260.0
	arrivalJitter      = 40.0
)

// Jump denial reasons sent to the requester
const (
	denyDestroyed     = "ship destroyed"
	denyDocked        = "cannot jump while docked"
	denyCharging      = "already charging"
	denyNoTarget      = "no target system"
	denySameSystem    = "already in that system"
	denyNotConnected  = "no hyperlane to target system"
	cancelByRequest   = "cancelled"
	cancelByEnemyFire = "disrupted by enemy fire"
)

// JumpController runs the per-player charge/travel state machine. Charge
// timers fire on their own goroutines and re-enter through run, so the
// transition itself executes as a game-loop task.
type JumpController struct {
	world  *World
	store  *PlayerStore
	rng    *rand.Rand
	run    func(func())
	charge time.Duration
}

// NewJumpController creates the controller; run must enqueue onto the
// serialized game loop.
func NewJumpController(world *World, store *PlayerStore, rng *rand.Rand, run func(func())) *JumpController {
	return &JumpController{
		world:  world,
		store:  store,
		rng:    rng,
		run:    run,
		charge: jumpChargeDuration,
	}
}

// Request begins charging a jump to the target system. Every failed
// precondition denies with a reason and leaves the state untouched;
// requests while already charging are denied, never queued.
func (j *JumpController) Request(p *Player, target int) {
	deny := func(reason string) {
		j.store.SendTo(p.ID, EventHyperjumpDenied, JumpDeniedMsg{Reason: reason})
	}

	switch {
	case p.Destroyed:
		deny(denyDestroyed)
		return
	case p.DockedAt != nil:
		deny(denyDocked)
		return
	case p.JumpState == JumpCharging:
		deny(denyCharging)
		return
	}

	sys := j.world.GetSystem(p.System)
	tgt := j.world.GetSystem(target)
	switch {
	case tgt == nil:
		deny(denyNoTarget)
		return
	case target == p.System:
		deny(denySameSystem)
		return
	case sys == nil || !sys.Connections[target]:
		deny(denyNotConnected)
		return
	}
	for _, planet := range sys.Planets {
		if Distance(p.X, p.Y, planet.X, planet.Y) < unsafePlanetRadius*planet.Scale {
			deny(fmt.Sprintf("too close to %s", planet.Name))
			return
		}
	}

	p.JumpState = JumpCharging
	p.jumpTo = target
	p.jumpSeq++
	seq := p.jumpSeq
	id := p.ID
	p.jumpTimer = time.AfterFunc(j.charge, func() {
		j.run(func() { j.complete(id, seq) })
	})

	j.store.SendTo(p.ID, EventHyperjumpChargeStarted, JumpChargeMsg{
		Target:   target,
		ChargeMS: int(j.charge / time.Millisecond),
	})
	j.store.BroadcastState(p.ID, Diff{"jumpState": p.JumpState})
}

// Cancel aborts a pending charge with the given reason. Idempotent:
// cancelling an idle player, or cancelling twice, is a no-op.
func (j *JumpController) Cancel(p *Player, reason string) {
	if p.JumpState != JumpCharging {
		return
	}
	if p.jumpTimer != nil {
		p.jumpTimer.Stop()
		p.jumpTimer = nil
	}
	p.jumpSeq++ // invalidate any fired-but-unprocessed completion
	p.JumpState = JumpIdle

	j.store.SendTo(p.ID, EventHyperjumpCancelled, JumpCancelledMsg{Reason: reason})
	j.store.BroadcastState(p.ID, Diff{"jumpState": p.JumpState})
}

// complete finishes a charge. A stale sequence means the charge was
// cancelled or superseded and the fire is ignored; a destroyed player
// resets to idle without a completion event.
func (j *JumpController) complete(id string, seq int) {
	p, ok := j.store.Get(id)
	if !ok {
		return
	}
	if p.jumpSeq != seq || p.JumpState != JumpCharging {
		return
	}
	p.jumpTimer = nil
	if p.Destroyed {
		p.JumpState = JumpIdle
		return
	}

	origin := j.world.GetSystem(p.System)
	dest := j.world.GetSystem(p.jumpTo)
	if dest == nil {
		p.JumpState = JumpIdle
		return
	}

	p.X, p.Y = j.arrivalPosition(origin, dest)
	p.System = p.jumpTo
	p.VX, p.VY = 0, 0
	p.DockedAt = nil
	p.JumpState = JumpIdle

	j.store.SendTo(p.ID, EventHyperjumpComplete, JumpCompleteMsg{
		System: p.System,
		X:      p.X,
		Y:      p.Y,
		Angle:  p.Angle,
	})
	j.store.BroadcastState(p.ID, p.StateFields())
}

// arrivalPosition places the ship off the destination's first planet, on
// the side facing the origin system, with jitter so stacked arrivals
// don't overlap. Falls back to a fixed offset without coordinate data.
func (j *JumpController) arrivalPosition(origin, dest *System) (float64, float64) {
	planet := dest.Planets[0]
	dx, dy := 0.0, 0.0
	if origin != nil {
		dx = origin.X - dest.X
		dy = origin.Y - dest.Y
	}
	norm := math.Hypot(dx, dy)
	if norm == 0 {
		return planet.X + arrivalOffset, planet.Y
	}
	jx := (j.rng.Float64()*2 - 1) * arrivalJitter
	jy := (j.rng.Float64()*2 - 1) * arrivalJitter
	return planet.X + dx/norm*arrivalOffset + jx, planet.Y + dy/norm*arrivalOffset + jy
}
