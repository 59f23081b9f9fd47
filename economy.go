package main

import (
	"errors"
	"math"
)

const (
	stockBaseline      = 100
	producedStockMult  = 3.0
	consumedStockMult  = 0.4
	producedPriceScale = 0.7
	consumedPriceScale = 1.5
	minStockEffect     = 0.3
	maxStockEffect     = 3.0
	emptyStockEffect   = 3.0 // stock-effect multiplier when a good is sold out
	priceMargin        = 0.08
	stockDriftRate     = 0.02
	maxStockFactor     = 5 // stock ceiling as a multiple of target
)

// Trade rejection reasons
var (
	ErrNotDocked            = errors.New("not docked at this planet")
	ErrUnknownGood          = errors.New("unknown trade good")
	ErrBadQuantity          = errors.New("quantity must be positive")
	ErrInsufficientCredits  = errors.New("insufficient credits")
	ErrInsufficientStock    = errors.New("planet has insufficient stock")
	ErrInsufficientCargo    = errors.New("insufficient cargo to sell")
	ErrCargoCapacityReached = errors.New("cargo capacity exceeded")
)

// TradeResult describes an applied buy or sell for the confirmation event
type TradeResult struct {
	Good      string `json:"good"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unitPrice"`
	Total     int    `json:"total"`
}

// Economy maintains believable, bounded-volatility prices per planet per
// good. Prices derive from the ratio of target to current stock; they are
// recomputed on demand and never cached between mutations.
type Economy struct {
	world *World
	store *PlayerStore
}

// NewEconomy creates the economy engine over the given world
func NewEconomy(world *World, store *PlayerStore) *Economy {
	return &Economy{world: world, store: store}
}

// Seed computes target stock for every planet/good pair and sets the
// starting stock and prices. Called once after world construction.
func (e *Economy) Seed() {
	for _, sys := range e.world.Systems {
		for _, planet := range sys.Planets {
			for _, good := range e.world.Goods {
				target := float64(stockBaseline)
				if planet.Produces[good.Name] {
					target *= producedStockMult
				}
				if planet.Consumes[good.Name] {
					target *= consumedStockMult
				}
				t := int(math.Round(target))
				if t < 1 {
					t = 1
				}
				planet.TargetStock[good.Name] = t

				stock := t
				if stock < 10 {
					stock = 10
				}
				planet.Stock[good.Name] = stock
				e.RecomputePrice(planet, good.Name)
			}
		}
	}
}

// PriceFor returns the current buy/sell price pair for a good at a planet
func (e *Economy) PriceFor(planet *Planet, goodName string) (buy, sell int) {
	gi, ok := e.world.GoodIndex(goodName)
	if !ok {
		return 0, 0
	}
	good := e.world.Goods[gi]

	base := float64(good.BasePrice)
	if planet.Produces[goodName] {
		base *= producedPriceScale
	}
	if planet.Consumes[goodName] {
		base *= consumedPriceScale
	}

	effect := emptyStockEffect
	if stock := planet.Stock[goodName]; stock > 0 {
		effect = float64(planet.TargetStock[goodName]) / float64(stock)
	}
	effect = Clamp(effect, minStockEffect, maxStockEffect)

	value := math.Round(base * effect)
	buy = int(math.Round(value * (1 + priceMargin)))
	sell = int(math.Round(value * (1 - priceMargin)))
	if sell < 1 {
		sell = 1
	}
	if buy <= sell {
		buy = sell + 1
	}
	return buy, sell
}

// RecomputePrice refreshes the stored price pair for one good
func (e *Economy) RecomputePrice(planet *Planet, goodName string) {
	buy, sell := e.PriceFor(planet, goodName)
	planet.BuyPrices[goodName] = buy
	planet.SellPrices[goodName] = sell
}

// Tick nudges every stock 2% of the way toward its target and recomputes
// prices, then broadcasts the refreshed economy snapshot. The step rounds
// away from zero whenever a gap exists, so drift converges instead of
// freezing one unit short.
func (e *Economy) Tick() {
	for _, sys := range e.world.Systems {
		for _, planet := range sys.Planets {
			for _, good := range e.world.Goods {
				target := planet.TargetStock[good.Name]
				stock := planet.Stock[good.Name]
				gap := target - stock
				if gap != 0 {
					step := int(float64(gap) * stockDriftRate)
					if step == 0 {
						if gap > 0 {
							step = 1
						} else {
							step = -1
						}
					}
					stock += step
				}
				if stock < 0 {
					stock = 0
				}
				if max := target * maxStockFactor; stock > max {
					stock = max
				}
				planet.Stock[good.Name] = stock
				e.RecomputePrice(planet, good.Name)
			}
		}
	}
	e.store.Broadcast(EventUpdateEconomies, e.world.EconomiesSnapshot())
}

// Buy purchases goods from the docked planet. Validation happens before
// any mutation; a rejection leaves player and planet untouched.
func (e *Economy) Buy(p *Player, systemIndex, planetIndex int, goodName string, qty int) (TradeResult, error) {
	planet := e.world.GetPlanet(systemIndex, planetIndex)
	if planet == nil || p.DockedAt == nil || p.DockedAt.System != systemIndex || p.DockedAt.Planet != planetIndex {
		return TradeResult{}, ErrNotDocked
	}
	gi, ok := e.world.GoodIndex(goodName)
	if !ok {
		return TradeResult{}, ErrUnknownGood
	}
	if qty <= 0 {
		return TradeResult{}, ErrBadQuantity
	}

	price := planet.BuyPrices[goodName]
	cost := price * qty
	if p.Credits < cost {
		return TradeResult{}, ErrInsufficientCredits
	}
	if planet.Stock[goodName] < qty {
		return TradeResult{}, ErrInsufficientStock
	}
	good := e.world.Goods[gi]
	if p.CargoMass(e.world.Goods)+float64(qty)*good.Mass > p.MaxCargo {
		return TradeResult{}, ErrCargoCapacityReached
	}

	p.Credits -= cost
	p.Cargo[gi] += qty
	planet.Stock[goodName] -= qty
	e.RecomputePrice(planet, goodName)
	return TradeResult{Good: goodName, Quantity: qty, UnitPrice: price, Total: cost}, nil
}

// Sell sells goods to the docked planet
func (e *Economy) Sell(p *Player, systemIndex, planetIndex int, goodName string, qty int) (TradeResult, error) {
	planet := e.world.GetPlanet(systemIndex, planetIndex)
	if planet == nil || p.DockedAt == nil || p.DockedAt.System != systemIndex || p.DockedAt.Planet != planetIndex {
		return TradeResult{}, ErrNotDocked
	}
	gi, ok := e.world.GoodIndex(goodName)
	if !ok {
		return TradeResult{}, ErrUnknownGood
	}
	if qty <= 0 {
		return TradeResult{}, ErrBadQuantity
	}
	if gi >= len(p.Cargo) || p.Cargo[gi] < qty {
		return TradeResult{}, ErrInsufficientCargo
	}

	price := planet.SellPrices[goodName]
	total := price * qty
	p.Cargo[gi] -= qty
	p.Credits += total
	planet.Stock[goodName] += qty
	e.RecomputePrice(planet, goodName)
	return TradeResult{Good: goodName, Quantity: qty, UnitPrice: price, Total: total}, nil
}
