// Package constants holds the canonical tuning values for world size, tick
// and broadcast rates, player physics, food/powerup spawning, and racing,
// grouped by concern the way a single constants.go tends to grow.
package constants

import "time"

// World constants
const (
	WorldWidth  = 4000.0
	WorldHeight = 4000.0
)

// Tick/broadcast rates.
const (
	TickRate            = 30
	TickInterval        = time.Second / TickRate
	BroadcastRate       = 15
	BroadcastInterval   = time.Second / BroadcastRate
	LeaderboardInterval = 1 * time.Second
	SharkVisionInterval = 500 * time.Millisecond
)

// Player size/speed
const (
	InitialSize = 20.0
	MinSize     = 10.0
	MaxSize     = 200.0

	PlayerSpeed       = 200.0
	BoostMultiplier   = 2.0
	BoostCostPerSec   = 3.0
	VelocityLerp      = 0.1
	SizeMultiplier    = 1.1 // eat threshold
	RespawnDelay      = 3 * time.Second
	RespawnMargin     = 100.0
	MaxNameLen        = 20
	DefaultName       = "Fish"
)

// View/interest
const (
	ViewDistance = 600.0
)

// Food
const (
	MaxFoodCount   = 300
	FoodValue      = 2.0
	MinFoodRadius  = 3.0
	MaxFoodRadius  = 10.0
	FoodSpawnRate  = 5 // items spawned per tick while under cap
)

// Powerups
const (
	MaxPowerupCount = 15
	PowerupDuration = 5 * time.Second
	PowerupRadius   = 15.0
)

// Bounce
const (
	BounceStrength = 150.0
)

// Racing
const (
	RaceMaxPlayers  = 8
	LobbyWaitTime   = 10 * time.Second
	CountdownTime   = 3 * time.Second
	CyclesPerRace   = 50
	CycleProgress   = 0.02
	RaceTickInterval = 100 * time.Millisecond
	StallTimeout    = 3 * time.Second
	StallProgress   = 0.96
)
