package game

import (
	"crypto/rand"
	"encoding/hex"
	mrand "math/rand"
)

// Room is one isolated simulation instance. It carries no lock of its own:
// the arena service serializes every access, so all methods here assume the
// caller holds that lock.
type Room struct {
	ID             string
	Players        map[string]*Player
	Balloons       []*FallingBalloon
	PlacedBalloons []*PlacedBalloon
	Explosions     []*Explosion
	Powerups       []*Powerup
	Bananas        []*Banana

	LastUpdate   float64
	SpawnAccum   float64
	PowerupTimer float64
	BananaTimer  float64
}

func NewRoom(id string, now float64) *Room {
	return &Room{
		ID:         id,
		Players:    make(map[string]*Player),
		LastUpdate: now,
	}
}

// AddPlayer registers a fresh player for the given account and returns its
// session-scoped id. The id is guaranteed unique among the room's live
// players; reuse after eviction is acceptable.
func (r *Room) AddPlayer(user UserIdentity, rng *mrand.Rand, now float64) string {
	id := newID(10)
	for {
		if _, taken := r.Players[id]; !taken {
			break
		}
		id = newID(10)
	}
	r.Players[id] = &Player{
		ID:              id,
		UserID:          user.ID,
		Name:            user.Username,
		Color:           colorPool[rng.Intn(len(colorPool))],
		X:               ArenaWidth / 2,
		SpeedMult:       1.0,
		BalloonCapacity: 1,
		BlastRadius:     BaseBlastRadius,
		LastSeen:        now,
	}
	return id
}

// EvictStale drops every player that has not issued a request within the
// timeout window. Runs before Advance so a timed-out player can no longer be
// credited mid-step.
func (r *Room) EvictStale(now float64) {
	for id, p := range r.Players {
		if now-p.LastSeen > PlayerTimeout {
			delete(r.Players, id)
		}
	}
}

// ApplyInput stores the player's movement intent and, when resource policy
// allows, appends a placed balloon and/or a banana trap. Rejected placements
// are silent no-ops: cooldowns and capacity are rate limits, not errors.
func (r *Room) ApplyInput(p *Player, move float64, placeBalloon, placeBanana bool, now float64, sink StatsSink) {
	p.LastSeen = now
	p.VX = clamp(move, -1, 1)

	if placeBalloon && now-p.LastShot >= PlaceCooldown && r.activePlaced(p.ID) < p.BalloonCapacity {
		p.LastShot = now
		r.PlacedBalloons = append(r.PlacedBalloons, &PlacedBalloon{
			ID:       newID(8),
			PlayerID: p.ID,
			X:        p.X,
			Y:        PlacementY,
			PlacedAt: now,
			Fuse:     BalloonFuse,
			Radius:   p.BlastRadius,
		})
		sink.CreditBalloonPlaced(p.UserID)
	}

	if placeBanana && p.HasBanana && now <= p.BananaReadyUntil {
		r.Bananas = append(r.Bananas, &Banana{
			ID:       newID(8),
			PlayerID: p.ID,
			X:        p.X,
			Y:        PlacementY,
		})
		p.HasBanana = false
	}
}

func (r *Room) activePlaced(playerID string) int {
	n := 0
	for _, b := range r.PlacedBalloons {
		if b.PlayerID == playerID {
			n++
		}
	}
	return n
}

// Snapshot deep-copies the room into the wire representation. Callers
// serialize the result after the arena lock is released, so the snapshot
// must not alias any live entity.
func (r *Room) Snapshot(now float64) Snapshot {
	players := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		cp := *p
		players = append(players, &cp)
	}
	return Snapshot{
		RoomID:         r.ID,
		Width:          ArenaWidth,
		Height:         ArenaHeight,
		Players:        players,
		Balloons:       copyEntities(r.Balloons),
		PlacedBalloons: copyEntities(r.PlacedBalloons),
		Explosions:     copyEntities(r.Explosions),
		Powerups:       copyEntities(r.Powerups),
		Bananas:        copyEntities(r.Bananas),
		ServerTime:     now,
	}
}

func copyEntities[T any](src []*T) []*T {
	out := make([]*T, 0, len(src))
	for _, e := range src {
		cp := *e
		out = append(out, &cp)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func newID(n int) string {
	b := make([]byte, (n+1)/2)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)[:n]
}
