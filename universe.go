package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TradeGood is a tradeable commodity. Static, loaded once at startup.
type TradeGood struct {
	Name      string  `yaml:"name" json:"name"`
	BasePrice int     `yaml:"base_price" json:"basePrice"`
	Mass      float64 `yaml:"mass" json:"mass"`
}

// ShipType holds the stats for a purchasable hull
type ShipType struct {
	Name      string  `yaml:"name" json:"name"`
	MaxHealth int     `yaml:"max_health" json:"maxHealth"`
	MaxCargo  float64 `yaml:"max_cargo" json:"maxCargo"`
	Price     int     `yaml:"price" json:"price"`
}

// WeaponDef holds the stats for a weapon. BeamAngle is the full cone
// width in radians; a target is hittable within half that angle of the
// ship's heading.
type WeaponDef struct {
	Name      string  `yaml:"name" json:"name"`
	Damage    int     `yaml:"damage" json:"damage"`
	Range     float64 `yaml:"range" json:"range"`
	BeamAngle float64 `yaml:"beam_angle" json:"beamAngle"`
	Price     int     `yaml:"price" json:"price"`
}

// PlanetDef is the static definition of a planet within a system
type PlanetDef struct {
	Name     string   `yaml:"name"`
	X        float64  `yaml:"x"`
	Y        float64  `yaml:"y"`
	Scale    float64  `yaml:"scale"`
	Produces []string `yaml:"produces"`
	Consumes []string `yaml:"consumes"`
}

// SystemDef is the static definition of a star system
type SystemDef struct {
	Name        string      `yaml:"name"`
	X           float64     `yaml:"x"`
	Y           float64     `yaml:"y"`
	Connections []int       `yaml:"connections"`
	Planets     []PlanetDef `yaml:"planets"`
}

// GameBalance stores global tuning loaded from universe.yaml
type GameBalance struct {
	StartingCredits int     `yaml:"starting_credits"`
	DefaultShip     int     `yaml:"default_ship"`
	DefaultWeapon   string  `yaml:"default_weapon"`
	SpawnX          float64 `yaml:"spawn_x"`
	SpawnY          float64 `yaml:"spawn_y"`
}

// Universe is the root schema for universe.yaml: every static table the
// engines need. The process must not start without a valid one.
type Universe struct {
	Balance GameBalance `yaml:"game_balance"`
	Goods   []TradeGood `yaml:"trade_goods"`
	Ships   []ShipType  `yaml:"ship_types"`
	Weapons []WeaponDef `yaml:"weapons"`
	Systems []SystemDef `yaml:"systems"`
}

// LoadUniverse reads and validates the static universe tables
func LoadUniverse(path string) (*Universe, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe: %w", err)
	}
	var u Universe
	if err := yaml.Unmarshal(f, &u); err != nil {
		return nil, fmt.Errorf("parse universe: %w", err)
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return &u, nil
}

// Validate checks cross-references between the static tables
func (u *Universe) Validate() error {
	if len(u.Goods) == 0 {
		return fmt.Errorf("universe has no trade goods")
	}
	if len(u.Ships) == 0 {
		return fmt.Errorf("universe has no ship types")
	}
	if len(u.Weapons) == 0 {
		return fmt.Errorf("universe has no weapons")
	}
	if len(u.Systems) == 0 {
		return fmt.Errorf("universe has no systems")
	}
	if u.Balance.DefaultShip < 0 || u.Balance.DefaultShip >= len(u.Ships) {
		return fmt.Errorf("default ship %d out of range", u.Balance.DefaultShip)
	}

	goods := make(map[string]bool, len(u.Goods))
	for _, g := range u.Goods {
		if g.BasePrice < 1 {
			return fmt.Errorf("trade good %q has base price < 1", g.Name)
		}
		goods[g.Name] = true
	}
	for _, w := range u.Weapons {
		if w.Damage <= 0 || w.Range <= 0 || w.BeamAngle <= 0 {
			return fmt.Errorf("weapon %q has non-positive stats", w.Name)
		}
	}
	if u.Balance.DefaultWeapon != "" {
		found := false
		for _, w := range u.Weapons {
			if w.Name == u.Balance.DefaultWeapon {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("default weapon %q not in weapon table", u.Balance.DefaultWeapon)
		}
	}
	for i, sys := range u.Systems {
		if len(sys.Planets) == 0 {
			return fmt.Errorf("system %d (%s) has no planets", i, sys.Name)
		}
		for _, c := range sys.Connections {
			if c < 0 || c >= len(u.Systems) {
				return fmt.Errorf("system %d (%s) connects to unknown system %d", i, sys.Name, c)
			}
			if c == i {
				return fmt.Errorf("system %d (%s) connects to itself", i, sys.Name)
			}
		}
		for _, p := range sys.Planets {
			for _, g := range p.Produces {
				if !goods[g] {
					return fmt.Errorf("planet %s produces unknown good %q", p.Name, g)
				}
			}
			for _, g := range p.Consumes {
				if !goods[g] {
					return fmt.Errorf("planet %s consumes unknown good %q", p.Name, g)
				}
			}
		}
	}
	return nil
}
