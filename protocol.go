package main

import "encoding/json"

// Client -> Server event names
const (
	EventJoin             = "join"
	EventControl          = "control"
	EventFire             = "fire"
	EventRequestHyperjump = "requestHyperjump"
	EventCancelHyperjump  = "cancelHyperjump"
	EventDock             = "dock"
	EventUndock           = "undock"
	EventBuyGood          = "buyGood"
	EventSellGood         = "sellGood"
	EventEquipWeapon      = "equipWeapon"
	EventBuyShip          = "buyShip"
	EventRequestMissions  = "requestMissions"
	EventAcceptMission    = "acceptMission"
	EventRegister         = "register"
	EventLogin            = "login"
	EventAuth             = "auth"
)

// Server -> Client event names
const (
	EventInit                   = "init"
	EventState                  = "state"
	EventPlayerJoined           = "playerJoined"
	EventPlayerLeft             = "playerLeft"
	EventProjectile             = "projectile"
	EventDockConfirmed          = "dockConfirmed"
	EventUndockConfirmed        = "undockConfirmed"
	EventTradeError             = "tradeError"
	EventTradeSuccess           = "tradeSuccess"
	EventActionFailed           = "actionFailed"
	EventActionSuccess          = "actionSuccess"
	EventUpdateEconomies        = "updatePlanetEconomies"
	EventPlanetEconomyUpdate    = "planetEconomyUpdate"
	EventAvailableMissionsList  = "availableMissionsList"
	EventMissionAccepted        = "missionAccepted"
	EventMissionUpdate          = "missionUpdate"
	EventHyperjumpChargeStarted = "hyperjumpChargeStarted"
	EventHyperjumpDenied        = "hyperjumpDenied"
	EventHyperjumpCancelled     = "hyperjumpCancelled"
	EventHyperjumpComplete      = "hyperjumpComplete"
	EventAuthOK                 = "authOk"
	EventError                  = "error"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages — json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// ControlMsg carries client-submitted kinematics (trusted as-is)
type ControlMsg struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Angle float64 `json:"angle"`
}

// DockMsg requests docking at a planet
type DockMsg struct {
	SystemIndex int `json:"systemIndex"`
	PlanetIndex int `json:"planetIndex"`
}

// TradeMsg requests a buy or sell at the docked planet
type TradeMsg struct {
	Good        string `json:"goodName"`
	Quantity    int    `json:"quantity"`
	SystemIndex int    `json:"systemIndex"`
	PlanetIndex int    `json:"planetIndex"`
}

// EquipWeaponMsg selects an owned weapon, buying it first if needed
type EquipWeaponMsg struct {
	Weapon string `json:"weapon"`
}

// BuyShipMsg requests a hull purchase
type BuyShipMsg struct {
	ShipTypeIndex int `json:"shipTypeIndex"`
}

// RequestMissionsMsg asks for a planet's mission board
type RequestMissionsMsg struct {
	SystemIndex int `json:"systemIndex"`
	PlanetIndex int `json:"planetIndex"`
}

// AcceptMissionMsg accepts a mission from a planet's board
type AcceptMissionMsg struct {
	MissionID   string `json:"missionId"`
	SystemIndex int    `json:"systemIndex"`
	PlanetIndex int    `json:"planetIndex"`
}

// JumpRequestMsg asks to start charging a hyperjump
type JumpRequestMsg struct {
	TargetSystemIndex int `json:"targetSystemIndex"`
}

// InitMsg is the full bootstrap snapshot for a newly joined connection
type InitMsg struct {
	ID        string            `json:"id"`
	Systems   []SystemInfo      `json:"systems"`
	Economies [][]PlanetEconomy `json:"economies"`
	Goods     []TradeGood       `json:"tradeGoods"`
	Ships     []ShipType        `json:"shipTypes"`
	Weapons   []WeaponDef       `json:"weapons"`
	Players   map[string]Diff   `json:"players"`
}

// StateMsg is a player state diff, broadcast to everyone
type StateMsg struct {
	ID     string `json:"id"`
	Fields Diff   `json:"fields"`
}

// PlayerJoinedMsg announces a new player with their full state
type PlayerJoinedMsg struct {
	ID     string `json:"id"`
	Fields Diff   `json:"fields"`
}

// PlayerLeftMsg announces a departure
type PlayerLeftMsg struct {
	ID string `json:"id"`
}

// ProjectileMsg is the cosmetic weapon-fire event
type ProjectileMsg struct {
	Shooter string  `json:"shooter"`
	System  int     `json:"systemIndex"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Angle   float64 `json:"angle"`
	Weapon  string  `json:"weapon"`
}

// DockConfirmedMsg confirms a dock
type DockConfirmedMsg struct {
	SystemIndex int    `json:"systemIndex"`
	PlanetIndex int    `json:"planetIndex"`
	Planet      string `json:"planet"`
}

// ActionFailedMsg is the typed rejection for non-trade actions
type ActionFailedMsg struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// ActionSuccessMsg confirms a non-trade action
type ActionSuccessMsg struct {
	Action string `json:"action"`
	Detail string `json:"detail,omitempty"`
}

// TradeErrorMsg is the typed rejection for buy/sell
type TradeErrorMsg struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// TradeSuccessMsg confirms an applied trade
type TradeSuccessMsg struct {
	Action string      `json:"action"`
	Trade  TradeResult `json:"trade"`
}

// PlanetEconomyMsg is the single-planet economy refresh after a trade
type PlanetEconomyMsg struct {
	SystemIndex int           `json:"systemIndex"`
	PlanetIndex int           `json:"planetIndex"`
	Economy     PlanetEconomy `json:"economy"`
}

// MissionListMsg is a planet's current mission board
type MissionListMsg struct {
	SystemIndex int        `json:"systemIndex"`
	PlanetIndex int        `json:"planetIndex"`
	Missions    []*Mission `json:"missions"`
}

// MissionAcceptedMsg confirms a mission transfer to the player
type MissionAcceptedMsg struct {
	Mission *Mission `json:"mission"`
}

// MissionUpdateMsg reports a mission lifecycle change
type MissionUpdateMsg struct {
	Mission *Mission `json:"mission"`
	Note    string   `json:"note,omitempty"`
}

// JumpChargeMsg notifies the requester that charging has begun
type JumpChargeMsg struct {
	Target   int `json:"targetSystemIndex"`
	ChargeMS int `json:"chargeMs"`
}

// JumpDeniedMsg carries the denial reason
type JumpDeniedMsg struct {
	Reason string `json:"reason"`
}

// JumpCancelledMsg carries the cancellation reason
type JumpCancelledMsg struct {
	Reason string `json:"reason"`
}

// JumpCompleteMsg reports arrival in the target system
type JumpCompleteMsg struct {
	System int     `json:"systemIndex"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Angle  float64 `json:"angle"`
}

// RegisterMsg creates an account
type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginMsg authenticates by password
type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthMsg authenticates by token
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms authentication
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"playerId"`
}

// ErrorMsg sends an error to the client
type ErrorMsg struct {
	Msg string `json:"msg"`
}
