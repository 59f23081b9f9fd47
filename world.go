package main

// Planet is the live record for one planet: static placement plus the
// economic state owned by the economy and mission engines.
type Planet struct {
	Name     string
	X, Y     float64
	Scale    float64
	Produces map[string]bool
	Consumes map[string]bool

	Stock       map[string]int
	TargetStock map[string]int
	BuyPrices   map[string]int
	SellPrices  map[string]int

	AvailableMissions []*Mission
}

// System is the live record for one star system
type System struct {
	Index       int
	Name        string
	X, Y        float64
	Connections map[int]bool
	Planets     []*Planet
}

// World holds the live topology plus the static lookup tables. It is a
// process-wide singleton; every engine treats it as the source of truth.
type World struct {
	Systems []*System
	Goods   []TradeGood
	Ships   []ShipType
	Weapons []WeaponDef

	goodIndex   map[string]int
	weaponIndex map[string]WeaponDef
}

// NewWorld deep-copies the static topology and attaches empty economic
// sub-records. The economy engine seeds stock and prices afterwards.
func NewWorld(u *Universe) *World {
	w := &World{
		Goods:       append([]TradeGood(nil), u.Goods...),
		Ships:       append([]ShipType(nil), u.Ships...),
		Weapons:     append([]WeaponDef(nil), u.Weapons...),
		goodIndex:   make(map[string]int, len(u.Goods)),
		weaponIndex: make(map[string]WeaponDef, len(u.Weapons)),
	}
	for i, g := range u.Goods {
		w.goodIndex[g.Name] = i
	}
	for _, wd := range u.Weapons {
		w.weaponIndex[wd.Name] = wd
	}

	w.Systems = make([]*System, len(u.Systems))
	for si, sd := range u.Systems {
		sys := &System{
			Index:       si,
			Name:        sd.Name,
			X:           sd.X,
			Y:           sd.Y,
			Connections: make(map[int]bool, len(sd.Connections)),
			Planets:     make([]*Planet, len(sd.Planets)),
		}
		for _, c := range sd.Connections {
			sys.Connections[c] = true
		}
		for pi, pd := range sd.Planets {
			p := &Planet{
				Name:        pd.Name,
				X:           pd.X,
				Y:           pd.Y,
				Scale:       pd.Scale,
				Produces:    make(map[string]bool, len(pd.Produces)),
				Consumes:    make(map[string]bool, len(pd.Consumes)),
				Stock:       make(map[string]int, len(u.Goods)),
				TargetStock: make(map[string]int, len(u.Goods)),
				BuyPrices:   make(map[string]int, len(u.Goods)),
				SellPrices:  make(map[string]int, len(u.Goods)),
			}
			for _, g := range pd.Produces {
				p.Produces[g] = true
			}
			for _, g := range pd.Consumes {
				p.Consumes[g] = true
			}
			sys.Planets[pi] = p
		}
		w.Systems[si] = sys
	}
	return w
}

// GetSystem returns the live system record, or nil if out of range
func (w *World) GetSystem(index int) *System {
	if index < 0 || index >= len(w.Systems) {
		return nil
	}
	return w.Systems[index]
}

// GetPlanet returns the live planet record, or nil if either index is out of range
func (w *World) GetPlanet(systemIndex, planetIndex int) *Planet {
	sys := w.GetSystem(systemIndex)
	if sys == nil || planetIndex < 0 || planetIndex >= len(sys.Planets) {
		return nil
	}
	return sys.Planets[planetIndex]
}

// GoodIndex returns the cargo slot index for a trade good name
func (w *World) GoodIndex(name string) (int, bool) {
	i, ok := w.goodIndex[name]
	return i, ok
}

// WeaponByName returns the weapon definition for a name
func (w *World) WeaponByName(name string) (WeaponDef, bool) {
	wd, ok := w.weaponIndex[name]
	return wd, ok
}

// ShipByIndex returns the ship type for an index, or false if out of range
func (w *World) ShipByIndex(i int) (ShipType, bool) {
	if i < 0 || i >= len(w.Ships) {
		return ShipType{}, false
	}
	return w.Ships[i], true
}

// SystemInfo is the client-facing shape of a system: topology only,
// no stock, prices or missions.
type SystemInfo struct {
	Index       int          `json:"index"`
	Name        string       `json:"name"`
	X           float64      `json:"x"`
	Y           float64      `json:"y"`
	Connections []int        `json:"connections"`
	Planets     []PlanetInfo `json:"planets"`
}

// PlanetInfo is the client-facing shape of a planet
type PlanetInfo struct {
	Name     string   `json:"name"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Scale    float64  `json:"scale"`
	Produces []string `json:"produces"`
	Consumes []string `json:"consumes"`
}

// PlanetEconomy is the client-facing economic state of one planet
type PlanetEconomy struct {
	Stock      map[string]int `json:"stock"`
	BuyPrices  map[string]int `json:"buyPrices"`
	SellPrices map[string]int `json:"sellPrices"`
}

// SystemsSnapshot strips server-internal fields for the initial client sync
func (w *World) SystemsSnapshot() []SystemInfo {
	out := make([]SystemInfo, len(w.Systems))
	for si, sys := range w.Systems {
		info := SystemInfo{
			Index:       sys.Index,
			Name:        sys.Name,
			X:           sys.X,
			Y:           sys.Y,
			Connections: make([]int, 0, len(sys.Connections)),
			Planets:     make([]PlanetInfo, len(sys.Planets)),
		}
		for c := range sys.Connections {
			info.Connections = append(info.Connections, c)
		}
		for pi, p := range sys.Planets {
			info.Planets[pi] = PlanetInfo{
				Name:     p.Name,
				X:        p.X,
				Y:        p.Y,
				Scale:    p.Scale,
				Produces: setToList(p.Produces),
				Consumes: setToList(p.Consumes),
			}
		}
		out[si] = info
	}
	return out
}

// EconomiesSnapshot keeps stock and prices, strips names and connections
func (w *World) EconomiesSnapshot() [][]PlanetEconomy {
	out := make([][]PlanetEconomy, len(w.Systems))
	for si, sys := range w.Systems {
		out[si] = make([]PlanetEconomy, len(sys.Planets))
		for pi, p := range sys.Planets {
			out[si][pi] = PlanetEconomy{
				Stock:      copyIntMap(p.Stock),
				BuyPrices:  copyIntMap(p.BuyPrices),
				SellPrices: copyIntMap(p.SellPrices),
			}
		}
	}
	return out
}

func setToList(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

func copyIntMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
