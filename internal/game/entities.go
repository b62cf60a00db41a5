package game

// Player is one participant inside a room. IDs are session-scoped; UserID
// references the external account the player belongs to.
type Player struct {
	ID     string  `json:"id"`
	UserID int64   `json:"userId"`
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	X      float64 `json:"x"`
	VX     float64 `json:"vx"`
	Score  int     `json:"score"`

	SpeedMult       float64 `json:"speedMult"`
	BalloonCapacity int     `json:"balloonCapacity"`
	BlastRadius     float64 `json:"blastRadius"`
	HasBanana       bool    `json:"hasBanana"`

	BananaReadyUntil float64 `json:"bananaReadyUntil"`
	SlowUntil        float64 `json:"slowUntil"`
	LastSeen         float64 `json:"-"`
	LastShot         float64 `json:"-"`
}

// EffectiveSpeed is the player's horizontal speed in px/s at time now.
func (p *Player) EffectiveSpeed(now float64) float64 {
	slow := 1.0
	if now < p.SlowUntil {
		slow = SlowSpeedMult
	}
	return PlayerBaseSpeed * p.SpeedMult * slow
}

// FallingBalloon is a target drifting toward the top of the arena.
type FallingBalloon struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VY     float64 `json:"vy"`
	Radius float64 `json:"radius"`
	Color  string  `json:"color"`
}

// PlacedBalloon is a timed charge. Radius is snapshotted from the owner's
// blast radius at placement time.
type PlacedBalloon struct {
	ID       string  `json:"id"`
	PlayerID string  `json:"playerId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	PlacedAt float64 `json:"placedAt"`
	Fuse     float64 `json:"fuse"`
	Radius   float64 `json:"radius"`
}

type Explosion struct {
	ID        string  `json:"id"`
	PlayerID  string  `json:"playerId"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"radius"`
	ExpiresAt float64 `json:"expiresAt"`
}

type Powerup struct {
	ID   string  `json:"id"`
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Banana is a dropped slow trap. It never affects its own placer.
type Banana struct {
	ID       string  `json:"id"`
	PlayerID string  `json:"playerId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// Snapshot is the complete authoritative room state returned to clients.
// The boundary is full-state replace, not a delta stream.
type Snapshot struct {
	RoomID         string            `json:"roomId"`
	Width          float64           `json:"width"`
	Height         float64           `json:"height"`
	Players        []*Player         `json:"players"`
	Balloons       []*FallingBalloon `json:"balloons"`
	PlacedBalloons []*PlacedBalloon  `json:"placedBalloons"`
	Explosions     []*Explosion      `json:"explosions"`
	Powerups       []*Powerup        `json:"powerups"`
	Bananas        []*Banana         `json:"bananas"`
	ServerTime     float64           `json:"serverTime"`
}

// UserIdentity is the slice of the external account the room needs.
type UserIdentity struct {
	ID       int64
	Username string
}

// StatsSink receives fire-and-forget per-user counters. Implementations must
// never fail the caller; persistence errors are logged and swallowed.
type StatsSink interface {
	CreditScore(userID int64, delta int)
	CreditPowerupCollected(userID int64)
	CreditBalloonPlaced(userID int64)
}
