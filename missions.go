package main

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

const (
	maxMissionsPerPlanet = 4
	maxActiveMissions    = 5
	destPickAttempts     = 10
	missionBaseTime      = 5 * time.Minute
	missionTimePerJump   = 90 * time.Second
	cargoMissionWeight   = 0.7 // remainder are bounties
)

// MissionType distinguishes the two mission kinds
type MissionType string

const (
	MissionCargo  MissionType = "CargoDelivery"
	MissionBounty MissionType = "Bounty"
)

// MissionStatus is the lifecycle state of a mission
type MissionStatus string

const (
	MissionAvailable  MissionStatus = "AVAILABLE"
	MissionAccepted   MissionStatus = "ACCEPTED"
	MissionCompleted  MissionStatus = "COMPLETED"
	MissionFailedTime MissionStatus = "FAILED_TIME"
)

// Mission is a generated job. At any instant it lives in exactly one of
// a planet's available list or a player's active list; accepting is a
// transfer between the two, never a copy.
type Mission struct {
	ID     string        `json:"id" msgpack:"id"`
	Type   MissionType   `json:"type" msgpack:"t"`
	Status MissionStatus `json:"status" msgpack:"s"`

	OriginSystem int `json:"originSystem" msgpack:"os"`
	OriginPlanet int `json:"originPlanet" msgpack:"op"`

	// Cargo delivery fields
	DestSystem int    `json:"destSystem,omitempty" msgpack:"ds,omitempty"`
	DestPlanet int    `json:"destPlanet,omitempty" msgpack:"dp,omitempty"`
	Good       string `json:"good,omitempty" msgpack:"g,omitempty"`
	Quantity   int    `json:"quantity,omitempty" msgpack:"q,omitempty"`

	// Bounty fields
	TargetSystem int `json:"targetSystem,omitempty" msgpack:"ts,omitempty"`
	TargetCount  int `json:"targetCount,omitempty" msgpack:"tc,omitempty"`
	Progress     int `json:"progress,omitempty" msgpack:"pg,omitempty"`

	Reward   int       `json:"reward" msgpack:"r"`
	Penalty  int       `json:"penalty" msgpack:"p"`
	Deadline time.Time `json:"deadline" msgpack:"d"`
}

// Mission engine rejection reasons
var (
	ErrMissionNotFound = errors.New("mission not available at this planet")
	ErrMissionExpired  = errors.New("mission offer has expired")
	ErrMissionLimit    = errors.New("too many active missions")
)

// MissionEngine generates and manages the mission lifecycle
type MissionEngine struct {
	world  *World
	store  *PlayerStore
	rng    *rand.Rand
	now    func() time.Time
	nextID int64
}

// NewMissionEngine creates a mission engine over the given world and store
func NewMissionEngine(world *World, store *PlayerStore, rng *rand.Rand) *MissionEngine {
	return &MissionEngine{
		world: world,
		store: store,
		rng:   rng,
		now:   time.Now,
	}
}

func (m *MissionEngine) newID() string {
	m.nextID++
	return fmt.Sprintf("MSN-%06d", m.nextID)
}

// GenerateCargoDelivery creates a delivery job from the given planet, or
// returns nil when no distinct destination could be picked.
func (m *MissionEngine) GenerateCargoDelivery(originSystem, originPlanet int) *Mission {
	n := len(m.world.Systems)
	destSys, destPlanet := -1, -1
	for i := 0; i < destPickAttempts; i++ {
		ds := m.rng.Intn(n)
		dp := m.rng.Intn(len(m.world.Systems[ds].Planets))
		if ds == originSystem && dp == originPlanet {
			continue
		}
		destSys, destPlanet = ds, dp
		break
	}
	if destSys < 0 {
		return nil
	}

	good := m.world.Goods[m.rng.Intn(len(m.world.Goods))]
	qty := 2 + m.rng.Intn(5)
	dist := RingDistance(originSystem, destSys, n)
	reward := int(float64(good.BasePrice)*float64(qty)*1.5) + dist*150 + 100
	return &Mission{
		ID:           m.newID(),
		Type:         MissionCargo,
		Status:       MissionAvailable,
		OriginSystem: originSystem,
		OriginPlanet: originPlanet,
		DestSystem:   destSys,
		DestPlanet:   destPlanet,
		Good:         good.Name,
		Quantity:     qty,
		Reward:       reward,
		Penalty:      int(float64(reward) * 0.3),
		Deadline:     m.deadline(dist),
	}
}

// GenerateBounty creates a bounty job. The target system differs from the
// origin when the universe has more than one system.
func (m *MissionEngine) GenerateBounty(originSystem, originPlanet int) *Mission {
	n := len(m.world.Systems)
	target := originSystem
	for i := 0; i < destPickAttempts && n > 1; i++ {
		ts := m.rng.Intn(n)
		if ts != originSystem {
			target = ts
			break
		}
	}

	count := 1 + m.rng.Intn(2)
	dist := RingDistance(originSystem, target, n)
	reward := count*500 + dist*100
	return &Mission{
		ID:           m.newID(),
		Type:         MissionBounty,
		Status:       MissionAvailable,
		OriginSystem: originSystem,
		OriginPlanet: originPlanet,
		TargetSystem: target,
		TargetCount:  count,
		Reward:       reward,
		Penalty:      int(float64(reward) * 0.2),
		Deadline:     m.deadline(dist),
	}
}

// deadline computes the absolute time limit from ring distance.
// Distance over system indices, not the hyperlane graph — kept as the
// original balancing behaves, see DESIGN.md.
func (m *MissionEngine) deadline(dist int) time.Time {
	return m.now().Add(missionBaseTime + time.Duration(dist)*missionTimePerJump)
}

// Repopulate drops expired unaccepted offers and tops every planet back
// up to the configured maximum. Runs at startup and periodically.
func (m *MissionEngine) Repopulate() {
	now := m.now()
	for si, sys := range m.world.Systems {
		for pi, planet := range sys.Planets {
			kept := planet.AvailableMissions[:0]
			for _, ms := range planet.AvailableMissions {
				if ms.Status == MissionAvailable && now.After(ms.Deadline) {
					continue // silently expire unaccepted offers
				}
				kept = append(kept, ms)
			}
			planet.AvailableMissions = kept

			for len(planet.AvailableMissions) < maxMissionsPerPlanet {
				var ms *Mission
				if m.rng.Float64() < cargoMissionWeight {
					ms = m.GenerateCargoDelivery(si, pi)
				} else {
					ms = m.GenerateBounty(si, pi)
				}
				if ms == nil {
					break
				}
				planet.AvailableMissions = append(planet.AvailableMissions, ms)
			}
		}
	}
}

// Accept transfers an available mission from the planet to the player
func (m *MissionEngine) Accept(p *Player, missionID string, systemIndex, planetIndex int) (*Mission, error) {
	planet := m.world.GetPlanet(systemIndex, planetIndex)
	if planet == nil {
		return nil, ErrMissionNotFound
	}
	if len(p.Missions) >= maxActiveMissions {
		return nil, ErrMissionLimit
	}
	for i, ms := range planet.AvailableMissions {
		if ms.ID != missionID {
			continue
		}
		if m.now().After(ms.Deadline) {
			planet.AvailableMissions = append(planet.AvailableMissions[:i], planet.AvailableMissions[i+1:]...)
			return nil, ErrMissionExpired
		}
		planet.AvailableMissions = append(planet.AvailableMissions[:i], planet.AvailableMissions[i+1:]...)
		ms.Status = MissionAccepted
		p.Missions = append(p.Missions, ms)
		return ms, nil
	}
	return nil, ErrMissionNotFound
}

// CheckTimeouts fails every accepted mission past its limit, deducts the
// penalty (floored at 0 credits) and returns the failed missions.
func (m *MissionEngine) CheckTimeouts(p *Player) []*Mission {
	now := m.now()
	var failed []*Mission
	kept := p.Missions[:0]
	for _, ms := range p.Missions {
		if ms.Status == MissionAccepted && now.After(ms.Deadline) {
			ms.Status = MissionFailedTime
			p.AddCredits(-ms.Penalty)
			failed = append(failed, ms)
			continue
		}
		kept = append(kept, ms)
	}
	p.Missions = kept
	return failed
}

// CompleteCargoOnDock settles every deliverable cargo mission at the
// docked planet. Missions whose cargo is short stay accepted and are
// returned separately for an informational notice.
func (m *MissionEngine) CompleteCargoOnDock(p *Player, systemIndex, planetIndex int) (completed, short []*Mission) {
	kept := p.Missions[:0]
	for _, ms := range p.Missions {
		if ms.Type != MissionCargo || ms.Status != MissionAccepted ||
			ms.DestSystem != systemIndex || ms.DestPlanet != planetIndex {
			kept = append(kept, ms)
			continue
		}
		gi, ok := m.world.GoodIndex(ms.Good)
		if !ok || gi >= len(p.Cargo) || p.Cargo[gi] < ms.Quantity {
			short = append(short, ms)
			kept = append(kept, ms)
			continue
		}
		p.Cargo[gi] -= ms.Quantity
		p.AddCredits(ms.Reward)
		ms.Status = MissionCompleted
		completed = append(completed, ms)
	}
	p.Missions = kept
	return completed, short
}

// OnTargetDestroyed credits the attacker's bounty missions for a kill in
// the matching system and returns any missions completed by it.
func (m *MissionEngine) OnTargetDestroyed(attacker *Player) []*Mission {
	var completed []*Mission
	kept := attacker.Missions[:0]
	for _, ms := range attacker.Missions {
		if ms.Type != MissionBounty || ms.Status != MissionAccepted ||
			ms.TargetSystem != attacker.System {
			kept = append(kept, ms)
			continue
		}
		ms.Progress++
		if ms.Progress >= ms.TargetCount {
			attacker.AddCredits(ms.Reward)
			ms.Status = MissionCompleted
			completed = append(completed, ms)
			continue
		}
		kept = append(kept, ms)
	}
	attacker.Missions = kept
	return completed
}
