package main

import (
	"math/rand"
	"testing"
	"time"
)

func newTestMissions() (*MissionEngine, *World, *PlayerStore) {
	u := testUniverse()
	world := NewWorld(u)
	store := NewPlayerStore(world, u.Balance)
	eng := NewMissionEngine(world, store, rand.New(rand.NewSource(1)))
	return eng, world, store
}

func TestGenerateCargoDelivery(t *testing.T) {
	eng, world, _ := newTestMissions()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	eng.now = func() time.Time { return fixed }

	ms := eng.GenerateCargoDelivery(0, 0)
	if ms == nil {
		t.Fatal("no mission generated")
	}
	if ms.ID != "MSN-000001" {
		t.Errorf("id = %q, want MSN-000001", ms.ID)
	}
	if ms.Type != MissionCargo || ms.Status != MissionAvailable {
		t.Errorf("type/status = %s/%s", ms.Type, ms.Status)
	}
	if ms.DestSystem == 0 && ms.DestPlanet == 0 {
		t.Error("destination equals origin")
	}
	if ms.Quantity < 2 || ms.Quantity > 6 {
		t.Errorf("quantity = %d, want 2..6", ms.Quantity)
	}

	gi, ok := world.GoodIndex(ms.Good)
	if !ok {
		t.Fatalf("mission good %q not in trade table", ms.Good)
	}
	dist := RingDistance(0, ms.DestSystem, len(world.Systems))
	wantReward := int(float64(world.Goods[gi].BasePrice)*float64(ms.Quantity)*1.5) + dist*150 + 100
	if ms.Reward != wantReward {
		t.Errorf("reward = %d, want %d", ms.Reward, wantReward)
	}
	if ms.Penalty != int(float64(wantReward)*0.3) {
		t.Errorf("penalty = %d, want 30%% of reward", ms.Penalty)
	}
	wantDeadline := fixed.Add(missionBaseTime + time.Duration(dist)*missionTimePerJump)
	if !ms.Deadline.Equal(wantDeadline) {
		t.Errorf("deadline = %v, want %v", ms.Deadline, wantDeadline)
	}
}

func TestGenerateBounty(t *testing.T) {
	eng, world, _ := newTestMissions()

	ms := eng.GenerateBounty(0, 0)
	if ms == nil {
		t.Fatal("no mission generated")
	}
	if ms.Type != MissionBounty || ms.Status != MissionAvailable {
		t.Errorf("type/status = %s/%s", ms.Type, ms.Status)
	}
	if ms.TargetSystem == 0 {
		t.Error("bounty target should be another system")
	}
	if ms.TargetCount < 1 || ms.TargetCount > 2 {
		t.Errorf("target count = %d, want 1 or 2", ms.TargetCount)
	}
	dist := RingDistance(0, ms.TargetSystem, len(world.Systems))
	if want := ms.TargetCount*500 + dist*100; ms.Reward != want {
		t.Errorf("reward = %d, want %d", ms.Reward, want)
	}
	if ms.Penalty != int(float64(ms.Reward)*0.2) {
		t.Errorf("penalty = %d, want 20%% of reward", ms.Penalty)
	}
}

func TestRepopulateFillsEveryBoard(t *testing.T) {
	eng, world, _ := newTestMissions()
	eng.Repopulate()

	seen := make(map[string]bool)
	for _, sys := range world.Systems {
		for _, planet := range sys.Planets {
			if len(planet.AvailableMissions) != maxMissionsPerPlanet {
				t.Errorf("%s board = %d missions, want %d",
					planet.Name, len(planet.AvailableMissions), maxMissionsPerPlanet)
			}
			for _, ms := range planet.AvailableMissions {
				if ms.Status != MissionAvailable {
					t.Errorf("%s: status %s on the board", ms.ID, ms.Status)
				}
				if seen[ms.ID] {
					t.Errorf("duplicate mission id %s", ms.ID)
				}
				seen[ms.ID] = true
			}
		}
	}
}

func TestRepopulateDropsExpiredOffers(t *testing.T) {
	eng, world, _ := newTestMissions()
	eng.Repopulate()

	home := world.GetPlanet(0, 0)
	oldIDs := make(map[string]bool)
	for _, ms := range home.AvailableMissions {
		oldIDs[ms.ID] = true
	}

	// Jump the clock past every deadline
	eng.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	eng.Repopulate()

	if len(home.AvailableMissions) != maxMissionsPerPlanet {
		t.Fatalf("board = %d, want refilled to %d", len(home.AvailableMissions), maxMissionsPerPlanet)
	}
	for _, ms := range home.AvailableMissions {
		if oldIDs[ms.ID] {
			t.Errorf("expired offer %s survived repopulation", ms.ID)
		}
		if !ms.Deadline.After(eng.now()) {
			t.Errorf("fresh offer %s already expired", ms.ID)
		}
	}
}

func TestAcceptTransfersOwnership(t *testing.T) {
	eng, world, store := newTestMissions()
	eng.Repopulate()
	p := store.CreatePlayer("p1")
	home := world.GetPlanet(0, 0)
	target := home.AvailableMissions[0]

	ms, err := eng.Accept(p, target.ID, 0, 0)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if ms != target {
		t.Error("accept copied the mission instead of transferring it")
	}
	if ms.Status != MissionAccepted {
		t.Errorf("status = %s, want ACCEPTED", ms.Status)
	}
	if len(home.AvailableMissions) != maxMissionsPerPlanet-1 {
		t.Error("mission still on the board")
	}
	for _, left := range home.AvailableMissions {
		if left.ID == ms.ID {
			t.Error("mission present in both lists")
		}
	}
	if len(p.Missions) != 1 || p.Missions[0] != ms {
		t.Error("mission not in player's active list")
	}
}

func TestAcceptRejections(t *testing.T) {
	eng, world, store := newTestMissions()
	eng.Repopulate()
	p := store.CreatePlayer("p1")

	if _, err := eng.Accept(p, "MSN-999999", 0, 0); err != ErrMissionNotFound {
		t.Errorf("unknown id: err = %v, want ErrMissionNotFound", err)
	}
	if _, err := eng.Accept(p, "MSN-000001", 9, 0); err != ErrMissionNotFound {
		t.Errorf("bad planet: err = %v, want ErrMissionNotFound", err)
	}

	for i := 0; i < maxActiveMissions; i++ {
		p.Missions = append(p.Missions, &Mission{Status: MissionAccepted})
	}
	home := world.GetPlanet(0, 0)
	if _, err := eng.Accept(p, home.AvailableMissions[0].ID, 0, 0); err != ErrMissionLimit {
		t.Errorf("at limit: err = %v, want ErrMissionLimit", err)
	}
}

func TestAcceptExpiredOfferRemoved(t *testing.T) {
	eng, world, store := newTestMissions()
	eng.Repopulate()
	p := store.CreatePlayer("p1")
	home := world.GetPlanet(0, 0)
	ms := home.AvailableMissions[0]
	ms.Deadline = time.Now().Add(-time.Minute)

	if _, err := eng.Accept(p, ms.ID, 0, 0); err != ErrMissionExpired {
		t.Fatalf("err = %v, want ErrMissionExpired", err)
	}
	for _, left := range home.AvailableMissions {
		if left.ID == ms.ID {
			t.Error("expired offer still on the board")
		}
	}
	if len(p.Missions) != 0 {
		t.Error("expired mission handed to player")
	}
}

func TestCheckTimeoutsDeductsPenalty(t *testing.T) {
	eng, _, store := newTestMissions()
	p := store.CreatePlayer("p1")
	overdue := &Mission{
		ID: "MSN-000050", Type: MissionCargo, Status: MissionAccepted,
		Penalty: 150, Deadline: time.Now().Add(-time.Second),
	}
	live := &Mission{
		ID: "MSN-000051", Type: MissionCargo, Status: MissionAccepted,
		Penalty: 150, Deadline: time.Now().Add(time.Hour),
	}
	p.Missions = []*Mission{overdue, live}

	failed := eng.CheckTimeouts(p)
	if len(failed) != 1 || failed[0] != overdue {
		t.Fatalf("failed = %v, want just the overdue mission", failed)
	}
	if overdue.Status != MissionFailedTime {
		t.Errorf("status = %s, want FAILED_TIME", overdue.Status)
	}
	if p.Credits != 850 {
		t.Errorf("credits = %d, want 850", p.Credits)
	}
	if len(p.Missions) != 1 || p.Missions[0] != live {
		t.Error("live mission should survive the sweep")
	}
}

func TestCompleteCargoShortStaysAccepted(t *testing.T) {
	eng, world, store := newTestMissions()
	p := store.CreatePlayer("p1")
	ms := &Mission{
		ID: "MSN-000060", Type: MissionCargo, Status: MissionAccepted,
		DestSystem: 1, DestPlanet: 0, Good: "Ore", Quantity: 4,
		Reward: 400, Deadline: time.Now().Add(time.Hour),
	}
	p.Missions = []*Mission{ms}
	gi, _ := world.GoodIndex("Ore")
	p.Cargo[gi] = 2 // short by 2

	completed, short := eng.CompleteCargoOnDock(p, 1, 0)
	if len(completed) != 0 {
		t.Error("short delivery completed")
	}
	if len(short) != 1 || short[0] != ms {
		t.Error("short mission not reported")
	}
	if ms.Status != MissionAccepted || len(p.Missions) != 1 {
		t.Error("short mission should stay accepted")
	}
	if p.Cargo[gi] != 2 || p.Credits != 1000 {
		t.Error("short delivery mutated player state")
	}
}

func TestCompleteCargoIgnoresWrongPlanet(t *testing.T) {
	eng, world, store := newTestMissions()
	p := store.CreatePlayer("p1")
	ms := &Mission{
		ID: "MSN-000061", Type: MissionCargo, Status: MissionAccepted,
		DestSystem: 1, DestPlanet: 0, Good: "Ore", Quantity: 2,
		Reward: 400, Deadline: time.Now().Add(time.Hour),
	}
	p.Missions = []*Mission{ms}
	gi, _ := world.GoodIndex("Ore")
	p.Cargo[gi] = 5

	completed, short := eng.CompleteCargoOnDock(p, 0, 0)
	if len(completed) != 0 || len(short) != 0 {
		t.Error("docking elsewhere should not touch the mission")
	}
	if p.Cargo[gi] != 5 {
		t.Error("cargo deducted at the wrong planet")
	}
}

func TestBountyProgressAndCompletion(t *testing.T) {
	eng, _, store := newTestMissions()
	p := store.CreatePlayer("p1")
	p.System = 1
	two := &Mission{
		ID: "MSN-000070", Type: MissionBounty, Status: MissionAccepted,
		TargetSystem: 1, TargetCount: 2, Reward: 1100,
		Deadline: time.Now().Add(time.Hour),
	}
	elsewhere := &Mission{
		ID: "MSN-000071", Type: MissionBounty, Status: MissionAccepted,
		TargetSystem: 2, TargetCount: 1, Reward: 600,
		Deadline: time.Now().Add(time.Hour),
	}
	p.Missions = []*Mission{two, elsewhere}

	if completed := eng.OnTargetDestroyed(p); len(completed) != 0 {
		t.Fatal("one of two kills should not complete the bounty")
	}
	if two.Progress != 1 {
		t.Errorf("progress = %d, want 1", two.Progress)
	}
	if elsewhere.Progress != 0 {
		t.Error("kill counted for a bounty in another system")
	}
	if p.Credits != 1000 {
		t.Error("reward paid early")
	}

	completed := eng.OnTargetDestroyed(p)
	if len(completed) != 1 || completed[0] != two {
		t.Fatal("second kill should complete the bounty")
	}
	if two.Status != MissionCompleted {
		t.Errorf("status = %s, want COMPLETED", two.Status)
	}
	if p.Credits != 2100 {
		t.Errorf("credits = %d, want 2100", p.Credits)
	}
	if len(p.Missions) != 1 || p.Missions[0] != elsewhere {
		t.Error("completed bounty should leave the active list")
	}
}
