package game

// Arena geometry and gameplay tuning. Times are seconds, distances pixels.
const (
	ArenaWidth  = 800.0
	ArenaHeight = 600.0

	PlayerBaseSpeed = 250.0
	PlayerMinX      = 30.0
	PlayerMaxX      = ArenaWidth - 30.0
	PlayerTimeout   = 30.0
	PlaceCooldown   = 0.6

	BalloonRadius         = 18.0
	BalloonMinSpeed       = 40.0
	BalloonMaxSpeed       = 90.0
	BalloonSpawnBase      = 0.6
	BalloonSpawnPerPlayer = 0.25

	BalloonFuse       = 2.4
	BaseBlastRadius   = 70.0
	ExplosionLifetime = 0.4

	PowerupSpawnInterval = 12.0
	BananaSpawnInterval  = 10.0
	BananaReadyWindow    = 10.0
	BananaSlowDuration   = 3.0
	SlowSpeedMult        = 0.45

	SpeedPowerupBonus    = 0.15
	StrengthPowerupBonus = 12.0

	PickupRadius       = 26.0
	BananaPickupRadius = 22.0

	// Ground-level y coordinates for placement and pickup tests.
	PlacementY = ArenaHeight - 45.0
	PowerupY   = ArenaHeight - 55.0
	PickupY    = ArenaHeight - 34.0

	// Elapsed time per advance is capped: long poll gaps slow the game
	// down instead of triggering a giant catch-up step.
	MaxStepDelta = 0.05
)

// PowerupSpeed et al. are the wire values of Powerup.Type.
const (
	PowerupSpeed    = "speed"
	PowerupCapacity = "capacity"
	PowerupStrength = "strength"
	PowerupBanana   = "banana"
)

var colorPool = []string{
	"#ff5d5d",
	"#ffb347",
	"#f9e65c",
	"#6bd4ff",
	"#8b6bff",
	"#6bff95",
}

var powerupTypes = []string{PowerupSpeed, PowerupCapacity, PowerupStrength}
