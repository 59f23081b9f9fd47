package main

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	economyTickInterval       = 30 * time.Second
	missionRepopulateInterval = 45 * time.Second
	missionSweepInterval      = 10 * time.Second
	taskQueueSize             = 256
)

// SnapshotStore is the persistence collaborator: it saves and restores
// the player snapshot shape for authenticated accounts.
type SnapshotStore interface {
	SaveSnapshot(accountID int64, snap *PlayerSnapshot) error
	LoadSnapshot(accountID int64) (*PlayerSnapshot, error)
}

// Game owns the shared world and runs every mutation on one goroutine.
// Inbound events and timer callbacks are enqueued as tasks and execute
// to completion in order, so the engines need no locking.
type Game struct {
	world    *World
	store    *PlayerStore
	economy  *Economy
	missions *MissionEngine
	combat   *Combat
	jumps    *JumpController

	saves SnapshotStore // nil disables persistence

	tasks chan func()
	stop  chan struct{}
}

// NewGame builds the world from static data, seeds the economy and
// stocks the initial mission boards.
func NewGame(u *Universe, saves SnapshotStore) *Game {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	world := NewWorld(u)
	store := NewPlayerStore(world, u.Balance)

	g := &Game{
		world: world,
		store: store,
		saves: saves,
		tasks: make(chan func(), taskQueueSize),
		stop:  make(chan struct{}),
	}
	g.economy = NewEconomy(world, store)
	g.missions = NewMissionEngine(world, store, rng)
	g.jumps = NewJumpController(world, store, rng, g.Do)
	g.combat = NewCombat(world, store, g.missions, g.jumps)

	g.economy.Seed()
	g.missions.Repopulate()
	return g
}

// Do enqueues a task onto the game loop. Safe from any goroutine.
func (g *Game) Do(f func()) {
	select {
	case g.tasks <- f:
	case <-g.stop:
	}
}

// Run processes tasks and periodic timers until Stop
func (g *Game) Run() {
	econ := time.NewTicker(economyTickInterval)
	repop := time.NewTicker(missionRepopulateInterval)
	sweep := time.NewTicker(missionSweepInterval)
	defer econ.Stop()
	defer repop.Stop()
	defer sweep.Stop()

	for {
		select {
		case f := <-g.tasks:
			f()
		case <-econ.C:
			g.economy.Tick()
		case <-repop.C:
			g.missions.Repopulate()
		case <-sweep.C:
			g.sweepMissionTimeouts()
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop
func (g *Game) Stop() {
	close(g.stop)
}

// sweepMissionTimeouts fails overdue missions for every player
func (g *Game) sweepMissionTimeouts() {
	for _, p := range g.store.All() {
		failed := g.missions.CheckTimeouts(p)
		for _, ms := range failed {
			g.store.SendTo(p.ID, EventMissionUpdate, MissionUpdateMsg{
				Mission: ms,
				Note:    "time limit exceeded",
			})
		}
		if len(failed) > 0 {
			g.store.BroadcastState(p.ID, Diff{"credits": p.Credits})
		}
	}
}

// handleJoin creates the player, rehydrates a saved snapshot for
// authenticated accounts, sends the bootstrap snapshot and announces the
// arrival. Runs on the game loop.
func (g *Game) handleJoin(id string, snd Sender, accountID int64, snap *PlayerSnapshot) {
	p := g.store.CreatePlayer(id)
	p.AccountID = accountID
	if snap != nil {
		g.applySnapshot(p, snap)
	}
	g.store.SetSender(id, snd)

	players := make(map[string]Diff, g.store.Count())
	for _, other := range g.store.All() {
		players[other.ID] = other.StateFields()
	}
	snd.Send(EventInit, InitMsg{
		ID:        id,
		Systems:   g.world.SystemsSnapshot(),
		Economies: g.world.EconomiesSnapshot(),
		Goods:     g.world.Goods,
		Ships:     g.world.Ships,
		Weapons:   g.world.Weapons,
		Players:   players,
	})
	g.store.Broadcast(EventPlayerJoined, PlayerJoinedMsg{ID: id, Fields: p.StateFields()})
}

// handleLeave tears the player down and returns the snapshot to persist,
// or nil for guests. Runs on the game loop; the caller does the I/O.
func (g *Game) handleLeave(id string) (int64, *PlayerSnapshot) {
	p, ok := g.store.Get(id)
	if !ok {
		return 0, nil
	}
	g.jumps.Cancel(p, cancelByRequest)
	var snap *PlayerSnapshot
	accountID := p.AccountID
	if accountID != 0 {
		snap = p.Snapshot()
	}
	g.store.RemovePlayer(id)
	return accountID, snap
}

// applySnapshot rehydrates a reconnecting player, sanitizing every field
// against the current static tables.
func (g *Game) applySnapshot(p *Player, snap *PlayerSnapshot) {
	ship, ok := g.world.ShipByIndex(snap.ShipType)
	if !ok {
		ship = g.world.Ships[g.store.balance.DefaultShip]
		snap.ShipType = g.store.balance.DefaultShip
	}
	p.ShipType = snap.ShipType
	p.MaxHealth = ship.MaxHealth
	p.MaxCargo = ship.MaxCargo
	p.Health = snap.Health
	if p.Health <= 0 || p.Health > p.MaxHealth {
		p.Health = p.MaxHealth
	}

	p.X, p.Y = snap.X, snap.Y
	p.VX, p.VY = snap.VX, snap.VY
	p.Angle = WrapAngle(snap.Angle)
	if snap.Credits >= 0 {
		p.Credits = snap.Credits
	}

	p.Cargo = make([]int, len(g.world.Goods))
	for i, qty := range snap.Cargo {
		if i < len(p.Cargo) && qty > 0 {
			p.Cargo[i] = qty
		}
	}

	p.Weapons = nil
	for _, name := range snap.Weapons {
		if _, ok := g.world.WeaponByName(name); ok {
			p.Weapons = append(p.Weapons, name)
		}
	}
	p.ActiveWeapon = ""
	if snap.ActiveWeapon != "" && p.HasWeapon(snap.ActiveWeapon) {
		p.ActiveWeapon = snap.ActiveWeapon
	}

	if g.world.GetSystem(snap.System) != nil {
		p.System = snap.System
	}
	if snap.DockedAt != nil && g.world.GetPlanet(snap.DockedAt.System, snap.DockedAt.Planet) != nil {
		d := *snap.DockedAt
		p.DockedAt = &d
	}

	p.Missions = nil
	for _, ms := range snap.Missions {
		if ms != nil && ms.Status == MissionAccepted && len(p.Missions) < maxActiveMissions {
			p.Missions = append(p.Missions, ms)
		}
	}
}

// handleControl applies client-submitted kinematics. Ignored while
// docked, charging or destroyed.
func (g *Game) handleControl(id string, msg ControlMsg) {
	p, ok := g.store.Get(id)
	if !ok || p.Destroyed || p.DockedAt != nil || p.JumpState == JumpCharging {
		return
	}
	p.X, p.Y = msg.X, msg.Y
	p.VX, p.VY = msg.VX, msg.VY
	p.Angle = WrapAngle(msg.Angle)
	g.store.BroadcastState(id, Diff{
		"x": p.X, "y": p.Y, "vx": p.VX, "vy": p.VY, "angle": p.Angle,
	})
}

func (g *Game) handleFire(id string) {
	if p, ok := g.store.Get(id); ok {
		g.combat.Fire(p)
	}
}

func (g *Game) handleDock(id string, msg DockMsg) {
	p, ok := g.store.Get(id)
	if !ok || p.Destroyed {
		return
	}
	fail := func(reason string) {
		g.store.SendTo(id, EventActionFailed, ActionFailedMsg{Action: EventDock, Reason: reason})
	}
	if p.JumpState == JumpCharging {
		fail("cannot dock while charging hyperjump")
		return
	}
	if p.DockedAt != nil {
		fail("already docked")
		return
	}
	if msg.SystemIndex != p.System {
		fail("planet is in another system")
		return
	}
	planet := g.world.GetPlanet(msg.SystemIndex, msg.PlanetIndex)
	if planet == nil {
		fail("no such planet")
		return
	}

	p.DockedAt = &DockRef{System: msg.SystemIndex, Planet: msg.PlanetIndex}
	p.VX, p.VY = 0, 0
	g.store.SendTo(id, EventDockConfirmed, DockConfirmedMsg{
		SystemIndex: msg.SystemIndex,
		PlanetIndex: msg.PlanetIndex,
		Planet:      planet.Name,
	})

	completed, short := g.missions.CompleteCargoOnDock(p, msg.SystemIndex, msg.PlanetIndex)
	for _, ms := range completed {
		g.store.SendTo(id, EventMissionUpdate, MissionUpdateMsg{Mission: ms, Note: "cargo delivered"})
	}
	for _, ms := range short {
		g.store.SendTo(id, EventMissionUpdate, MissionUpdateMsg{
			Mission: ms,
			Note:    "destination reached, cargo short",
		})
	}

	diff := Diff{"dockedAt": *p.DockedAt, "vx": 0.0, "vy": 0.0}
	if len(completed) > 0 {
		diff["credits"] = p.Credits
		diff["cargo"] = append([]int(nil), p.Cargo...)
	}
	g.store.BroadcastState(id, diff)
}

func (g *Game) handleUndock(id string) {
	p, ok := g.store.Get(id)
	if !ok || p.Destroyed {
		return
	}
	if p.DockedAt == nil {
		g.store.SendTo(id, EventActionFailed, ActionFailedMsg{Action: EventUndock, Reason: "not docked"})
		return
	}
	p.DockedAt = nil
	g.store.SendTo(id, EventUndockConfirmed, nil)
	g.store.BroadcastState(id, Diff{"dockedAt": nil})
}

func (g *Game) handleTrade(id, action string, msg TradeMsg) {
	p, ok := g.store.Get(id)
	if !ok || p.Destroyed {
		return
	}
	var res TradeResult
	var err error
	if action == EventBuyGood {
		res, err = g.economy.Buy(p, msg.SystemIndex, msg.PlanetIndex, msg.Good, msg.Quantity)
	} else {
		res, err = g.economy.Sell(p, msg.SystemIndex, msg.PlanetIndex, msg.Good, msg.Quantity)
	}
	if err != nil {
		g.store.SendTo(id, EventTradeError, TradeErrorMsg{Action: action, Reason: err.Error()})
		return
	}

	g.store.SendTo(id, EventTradeSuccess, TradeSuccessMsg{Action: action, Trade: res})
	g.store.BroadcastState(id, Diff{
		"credits": p.Credits,
		"cargo":   append([]int(nil), p.Cargo...),
	})

	planet := g.world.GetPlanet(msg.SystemIndex, msg.PlanetIndex)
	g.store.Broadcast(EventPlanetEconomyUpdate, PlanetEconomyMsg{
		SystemIndex: msg.SystemIndex,
		PlanetIndex: msg.PlanetIndex,
		Economy: PlanetEconomy{
			Stock:      copyIntMap(planet.Stock),
			BuyPrices:  copyIntMap(planet.BuyPrices),
			SellPrices: copyIntMap(planet.SellPrices),
		},
	})
}

// handleEquipWeapon has purchase-or-select semantics: an unowned weapon
// is bought first, then made active.
func (g *Game) handleEquipWeapon(id string, msg EquipWeaponMsg) {
	p, ok := g.store.Get(id)
	if !ok || p.Destroyed {
		return
	}
	fail := func(reason string) {
		g.store.SendTo(id, EventActionFailed, ActionFailedMsg{Action: EventEquipWeapon, Reason: reason})
	}
	weapon, ok := g.world.WeaponByName(msg.Weapon)
	if !ok {
		fail("unknown weapon")
		return
	}
	if !p.HasWeapon(weapon.Name) {
		if p.Credits < weapon.Price {
			fail("insufficient credits")
			return
		}
		p.Credits -= weapon.Price
		p.Weapons = append(p.Weapons, weapon.Name)
	}
	p.ActiveWeapon = weapon.Name

	g.store.SendTo(id, EventActionSuccess, ActionSuccessMsg{Action: EventEquipWeapon, Detail: weapon.Name})
	g.store.BroadcastState(id, Diff{
		"credits":      p.Credits,
		"weapons":      append([]string(nil), p.Weapons...),
		"activeWeapon": p.ActiveWeapon,
	})
}

func (g *Game) handleBuyShip(id string, msg BuyShipMsg) {
	p, ok := g.store.Get(id)
	if !ok || p.Destroyed {
		return
	}
	fail := func(reason string) {
		g.store.SendTo(id, EventActionFailed, ActionFailedMsg{Action: EventBuyShip, Reason: reason})
	}
	ship, ok := g.world.ShipByIndex(msg.ShipTypeIndex)
	if !ok {
		fail("invalid ship type")
		return
	}
	if msg.ShipTypeIndex == p.ShipType {
		fail("already flying this hull")
		return
	}
	if p.Credits < ship.Price {
		fail("insufficient credits")
		return
	}
	if p.CargoMass(g.world.Goods) > ship.MaxCargo {
		fail("cargo exceeds new hull capacity")
		return
	}

	p.Credits -= ship.Price
	p.ShipType = msg.ShipTypeIndex
	p.MaxHealth = ship.MaxHealth
	p.Health = ship.MaxHealth
	p.MaxCargo = ship.MaxCargo

	g.store.SendTo(id, EventActionSuccess, ActionSuccessMsg{Action: EventBuyShip, Detail: ship.Name})
	g.store.BroadcastState(id, Diff{
		"credits":   p.Credits,
		"shipType":  p.ShipType,
		"health":    p.Health,
		"maxHealth": p.MaxHealth,
		"maxCargo":  p.MaxCargo,
	})
}

func (g *Game) handleRequestMissions(id string, msg RequestMissionsMsg) {
	planet := g.world.GetPlanet(msg.SystemIndex, msg.PlanetIndex)
	if planet == nil {
		g.store.SendTo(id, EventActionFailed, ActionFailedMsg{Action: EventRequestMissions, Reason: "no such planet"})
		return
	}
	g.store.SendTo(id, EventAvailableMissionsList, MissionListMsg{
		SystemIndex: msg.SystemIndex,
		PlanetIndex: msg.PlanetIndex,
		Missions:    planet.AvailableMissions,
	})
}

func (g *Game) handleAcceptMission(id string, msg AcceptMissionMsg) {
	p, ok := g.store.Get(id)
	if !ok || p.Destroyed {
		return
	}
	ms, err := g.missions.Accept(p, msg.MissionID, msg.SystemIndex, msg.PlanetIndex)
	if err != nil {
		g.store.SendTo(id, EventActionFailed, ActionFailedMsg{Action: EventAcceptMission, Reason: err.Error()})
		return
	}
	g.store.SendTo(id, EventMissionAccepted, MissionAcceptedMsg{Mission: ms})
}

func (g *Game) handleRequestJump(id string, msg JumpRequestMsg) {
	if p, ok := g.store.Get(id); ok {
		g.jumps.Request(p, msg.TargetSystemIndex)
	}
}

func (g *Game) handleCancelJump(id string) {
	p, ok := g.store.Get(id)
	if !ok || p.JumpState != JumpCharging {
		return
	}
	g.jumps.Cancel(p, cancelByRequest)
}

// persistSnapshot writes a departing player's save off the game loop
func (g *Game) persistSnapshot(accountID int64, snap *PlayerSnapshot) {
	if g.saves == nil || snap == nil {
		return
	}
	if err := g.saves.SaveSnapshot(accountID, snap); err != nil {
		logrus.WithFields(logrus.Fields{"account": accountID}).Warnf("save failed: %v", err)
	}
}
