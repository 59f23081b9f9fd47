package main

// Sender delivers one named event to a single connection. The game loop
// calls it from its own goroutine; implementations must not block.
type Sender interface {
	Send(event string, payload interface{})
}

var playerColors = []string{
	"#ff5533", "#33cc88", "#3388ff", "#ffcc22",
	"#cc44ff", "#22dddd", "#ff8844", "#88ff44",
}

// PlayerStore is the canonical map of connected players and the single
// funnel for making player state visible to clients. It has no lock:
// every access happens inside a game-loop task.
type PlayerStore struct {
	world   *World
	balance GameBalance

	players map[string]*Player
	order   []string // join order, for stable iteration
	senders map[string]Sender

	colorSeq int
}

// NewPlayerStore creates an empty store over the given world
func NewPlayerStore(world *World, balance GameBalance) *PlayerStore {
	return &PlayerStore{
		world:   world,
		balance: balance,
		players: make(map[string]*Player),
		senders: make(map[string]Sender),
	}
}

// CreatePlayer adds a player with spawn defaults: configured spawn point,
// default hull, zero cargo sized to the trade-good count, default credits.
func (s *PlayerStore) CreatePlayer(id string) *Player {
	ship := s.world.Ships[s.balance.DefaultShip]
	p := &Player{
		ID:        id,
		Color:     playerColors[s.colorSeq%len(playerColors)],
		X:         s.balance.SpawnX,
		Y:         s.balance.SpawnY,
		ShipType:  s.balance.DefaultShip,
		Health:    ship.MaxHealth,
		MaxHealth: ship.MaxHealth,
		MaxCargo:  ship.MaxCargo,
		Credits:   s.balance.StartingCredits,
		Cargo:     make([]int, len(s.world.Goods)),
		JumpState: JumpIdle,
	}
	if s.balance.DefaultWeapon != "" {
		p.Weapons = []string{s.balance.DefaultWeapon}
		p.ActiveWeapon = s.balance.DefaultWeapon
	}
	s.colorSeq++
	s.players[id] = p
	s.order = append(s.order, id)
	return p
}

// Get returns the player record for an id
func (s *PlayerStore) Get(id string) (*Player, bool) {
	p, ok := s.players[id]
	return p, ok
}

// All returns every player in join order
func (s *PlayerStore) All() []*Player {
	out := make([]*Player, 0, len(s.players))
	for _, id := range s.order {
		if p, ok := s.players[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Count returns the number of connected players
func (s *PlayerStore) Count() int {
	return len(s.players)
}

// SetSender attaches the outbound connection for a player
func (s *PlayerStore) SetSender(id string, snd Sender) {
	s.senders[id] = snd
}

// SendTo emits an event to one player's connection, if still attached
func (s *PlayerStore) SendTo(id, event string, payload interface{}) {
	if snd, ok := s.senders[id]; ok {
		snd.Send(event, payload)
	}
}

// Broadcast emits an event to every connection, including the origin
func (s *PlayerStore) Broadcast(event string, payload interface{}) {
	for _, id := range s.order {
		if snd, ok := s.senders[id]; ok {
			snd.Send(event, payload)
		}
	}
}

// BroadcastState emits a state diff for one player to every connection.
// Only the named fields are transmitted.
func (s *PlayerStore) BroadcastState(id string, diff Diff) {
	if len(diff) == 0 {
		return
	}
	s.Broadcast(EventState, StateMsg{ID: id, Fields: diff})
}

// RemovePlayer deletes a player and announces their departure
func (s *PlayerStore) RemovePlayer(id string) {
	if _, ok := s.players[id]; !ok {
		return
	}
	delete(s.players, id)
	delete(s.senders, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.Broadcast(EventPlayerLeft, PlayerLeftMsg{ID: id})
}
