package main

import (
	"math/rand"
	"strings"
	"testing"
)

func newTestJumps() (*JumpController, *World, *PlayerStore) {
	u := testUniverse()
	world := NewWorld(u)
	store := NewPlayerStore(world, u.Balance)
	// run synchronously so completion can be driven from the test
	j := NewJumpController(world, store, rand.New(rand.NewSource(1)), func(f func()) { f() })
	return j, world, store
}

func jumpingPlayer(store *PlayerStore, id string) (*Player, *fakeSender) {
	p := store.CreatePlayer(id)
	snd := &fakeSender{}
	store.SetSender(id, snd)
	return p, snd
}

func deniedReason(t *testing.T, snd *fakeSender) string {
	t.Helper()
	e, ok := snd.last(EventHyperjumpDenied)
	if !ok {
		t.Fatal("expected hyperjumpDenied")
	}
	return e.Data.(JumpDeniedMsg).Reason
}

func TestJumpDeniedPreconditions(t *testing.T) {
	j, _, store := newTestJumps()

	cases := []struct {
		name   string
		setup  func(p *Player)
		target int
		want   string
	}{
		{"destroyed", func(p *Player) { p.Destroyed = true }, 1, denyDestroyed},
		{"docked", func(p *Player) { p.DockedAt = &DockRef{} }, 1, denyDocked},
		{"unknown system", func(p *Player) {}, 99, denyNoTarget},
		{"same system", func(p *Player) {}, 0, denySameSystem},
		{"not connected", func(p *Player) {}, 2, denyNotConnected},
	}
	for i, tc := range cases {
		p, snd := jumpingPlayer(store, tc.name+string(rune('a'+i)))
		tc.setup(p)
		j.Request(p, tc.target)
		if got := deniedReason(t, snd); got != tc.want {
			t.Errorf("%s: reason = %q, want %q", tc.name, got, tc.want)
		}
		if p.JumpState != JumpIdle {
			t.Errorf("%s: state = %s, want idle after denial", tc.name, p.JumpState)
		}
	}
}

func TestJumpDeniedNearPlanet(t *testing.T) {
	j, world, store := newTestJumps()
	p, snd := jumpingPlayer(store, "p1")
	home := world.GetPlanet(0, 0)
	p.X, p.Y = home.X+10, home.Y

	j.Request(p, 1)
	if got := deniedReason(t, snd); !strings.Contains(got, home.Name) {
		t.Errorf("reason = %q, want mention of %s", got, home.Name)
	}
	if p.JumpState != JumpIdle {
		t.Error("state not idle after proximity denial")
	}
}

func TestJumpChargeStarts(t *testing.T) {
	j, _, store := newTestJumps()
	p, snd := jumpingPlayer(store, "p1")

	j.Request(p, 1)
	if p.JumpState != JumpCharging {
		t.Fatalf("state = %s, want charging", p.JumpState)
	}
	e, ok := snd.last(EventHyperjumpChargeStarted)
	if !ok {
		t.Fatal("expected hyperjumpChargeStarted")
	}
	msg := e.Data.(JumpChargeMsg)
	if msg.Target != 1 || msg.ChargeMS != 5000 {
		t.Errorf("charge msg = %+v, want target 1 chargeMS 5000", msg)
	}
	if snd.count(EventState) != 1 {
		t.Error("expected jumpState diff broadcast")
	}

	// A second request while charging is denied, never queued
	j.Request(p, 1)
	if got := deniedReason(t, snd); got != denyCharging {
		t.Errorf("reason = %q, want %q", got, denyCharging)
	}
	if p.JumpState != JumpCharging {
		t.Error("denial disturbed the pending charge")
	}
}

func TestJumpCompleteMovesPlayer(t *testing.T) {
	j, world, store := newTestJumps()
	p, snd := jumpingPlayer(store, "p1")
	p.VX, p.VY = 7, -3
	p.DockedAt = nil

	j.Request(p, 1)
	p.jumpTimer.Stop()
	j.complete(p.ID, p.jumpSeq)

	if p.System != 1 {
		t.Fatalf("system = %d, want 1", p.System)
	}
	if p.JumpState != JumpIdle {
		t.Error("state not idle after completion")
	}
	if p.VX != 0 || p.VY != 0 {
		t.Error("velocity not zeroed on arrival")
	}
	if p.DockedAt != nil {
		t.Error("dock reference survived the jump")
	}

	// Arrival is near the destination's first planet
	dest := world.GetPlanet(1, 0)
	if d := Distance(p.X, p.Y, dest.X, dest.Y); d > arrivalOffset+2*arrivalJitter {
		t.Errorf("arrival %f from planet, want within %f", d, arrivalOffset+2*arrivalJitter)
	}

	e, ok := snd.last(EventHyperjumpComplete)
	if !ok {
		t.Fatal("expected hyperjumpComplete")
	}
	if msg := e.Data.(JumpCompleteMsg); msg.System != 1 {
		t.Errorf("complete msg system = %d, want 1", msg.System)
	}
}

func TestJumpCancelIsIdempotent(t *testing.T) {
	j, _, store := newTestJumps()
	p, snd := jumpingPlayer(store, "p1")

	// Cancelling while idle is a no-op
	j.Cancel(p, cancelByRequest)
	if snd.count(EventHyperjumpCancelled) != 0 {
		t.Error("idle cancel emitted an event")
	}

	j.Request(p, 1)
	seq := p.jumpSeq
	j.Cancel(p, cancelByRequest)
	j.Cancel(p, cancelByRequest)

	if p.JumpState != JumpIdle {
		t.Error("state not idle after cancel")
	}
	if snd.count(EventHyperjumpCancelled) != 1 {
		t.Errorf("cancelled events = %d, want exactly 1", snd.count(EventHyperjumpCancelled))
	}

	// The stale timer fire must be ignored
	j.complete(p.ID, seq)
	if p.System != 0 {
		t.Error("cancelled charge still completed")
	}
	if _, ok := snd.last(EventHyperjumpComplete); ok {
		t.Error("completion event after cancel")
	}
}

func TestJumpRechargeAfterCancelUsesNewSeq(t *testing.T) {
	j, _, store := newTestJumps()
	p, _ := jumpingPlayer(store, "p1")

	j.Request(p, 1)
	stale := p.jumpSeq
	j.Cancel(p, cancelByRequest)
	j.Request(p, 1)
	p.jumpTimer.Stop()

	// The first charge's timer firing late must not complete the second
	j.complete(p.ID, stale)
	if p.System != 0 {
		t.Fatal("stale completion applied")
	}
	j.complete(p.ID, p.jumpSeq)
	if p.System != 1 {
		t.Fatal("current completion ignored")
	}
}

func TestJumpDestroyedDuringChargeResetsSilently(t *testing.T) {
	j, _, store := newTestJumps()
	p, snd := jumpingPlayer(store, "p1")

	j.Request(p, 1)
	p.jumpTimer.Stop()
	p.Destroyed = true
	j.complete(p.ID, p.jumpSeq)

	if p.JumpState != JumpIdle {
		t.Error("state not reset for destroyed player")
	}
	if p.System != 0 {
		t.Error("destroyed player jumped")
	}
	if _, ok := snd.last(EventHyperjumpComplete); ok {
		t.Error("completion event for destroyed player")
	}
}
