package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPlayerStartsWithDefaults(t *testing.T) {
	r := NewRoom("t", 5)
	id := r.AddPlayer(UserIdentity{ID: 42, Username: "alice"}, testRNG(), 5)

	p, ok := r.Players[id]
	require.True(t, ok)
	assert.Equal(t, int64(42), p.UserID)
	assert.Equal(t, "alice", p.Name)
	assert.Equal(t, ArenaWidth/2, p.X)
	assert.Equal(t, 1.0, p.SpeedMult)
	assert.Equal(t, 1, p.BalloonCapacity)
	assert.Equal(t, BaseBlastRadius, p.BlastRadius)
	assert.False(t, p.HasBanana)
	assert.Equal(t, 5.0, p.LastSeen)
	assert.NotEmpty(t, p.Color)
}

func TestAddPlayerIDsAreUniqueInRoom(t *testing.T) {
	r := NewRoom("t", 0)
	rng := testRNG()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := r.AddPlayer(UserIdentity{ID: int64(i), Username: "u"}, rng, 0)
		require.False(t, seen[id])
		seen[id] = true
	}
}

func TestEvictStaleRemovesTimedOutPlayers(t *testing.T) {
	r := NewRoom("t", 0)
	stale := addTestPlayer(r, "stale", 1, 400)
	stale.LastSeen = 0
	fresh := addTestPlayer(r, "fresh", 2, 400)
	fresh.LastSeen = 20

	r.EvictStale(31)

	assert.NotContains(t, r.Players, "stale")
	assert.Contains(t, r.Players, "fresh")
}

func TestEvictStaleKeepsPlayerAtExactTimeout(t *testing.T) {
	r := NewRoom("t", 0)
	p := addTestPlayer(r, "p1", 1, 400)
	p.LastSeen = 0

	r.EvictStale(PlayerTimeout)

	assert.Contains(t, r.Players, "p1")
}

func TestApplyInputClampsMoveIntent(t *testing.T) {
	r := NewRoom("t", 0)
	p := addTestPlayer(r, "p1", 1, 400)
	sink := newFakeSink()

	r.ApplyInput(p, 5, false, false, 1, sink)
	assert.Equal(t, 1.0, p.VX)

	r.ApplyInput(p, -3, false, false, 2, sink)
	assert.Equal(t, -1.0, p.VX)
	assert.Equal(t, 2.0, p.LastSeen)
}

func TestApplyInputPlacesBalloonWithSnapshottedStats(t *testing.T) {
	r := NewRoom("t", 0)
	p := addTestPlayer(r, "p1", 7, 312)
	p.BlastRadius = 94
	sink := newFakeSink()

	r.ApplyInput(p, 0, true, false, 10, sink)

	require.Len(t, r.PlacedBalloons, 1)
	pb := r.PlacedBalloons[0]
	assert.Equal(t, "p1", pb.PlayerID)
	assert.Equal(t, 312.0, pb.X)
	assert.Equal(t, PlacementY, pb.Y)
	assert.Equal(t, 10.0, pb.PlacedAt)
	assert.Equal(t, BalloonFuse, pb.Fuse)
	assert.Equal(t, 94.0, pb.Radius)
	assert.Equal(t, 10.0, p.LastShot)
	assert.Equal(t, 1, sink.balloons[7])
}

func TestApplyInputBalloonCooldown(t *testing.T) {
	r := NewRoom("t", 0)
	p := addTestPlayer(r, "p1", 7, 400)
	p.BalloonCapacity = 3
	sink := newFakeSink()

	r.ApplyInput(p, 0, true, false, 10, sink)
	r.ApplyInput(p, 0, true, false, 10.3, sink) // inside cooldown: silent no-op
	assert.Len(t, r.PlacedBalloons, 1)

	r.ApplyInput(p, 0, true, false, 11, sink)
	assert.Len(t, r.PlacedBalloons, 2)
	assert.Equal(t, 2, sink.balloons[7])
}

func TestApplyInputBalloonCapacity(t *testing.T) {
	r := NewRoom("t", 0)
	p := addTestPlayer(r, "p1", 7, 400)
	sink := newFakeSink()

	r.ApplyInput(p, 0, true, false, 10, sink)
	r.ApplyInput(p, 0, true, false, 20, sink) // capacity 1 exhausted
	assert.Len(t, r.PlacedBalloons, 1)

	p.BalloonCapacity = 2
	r.ApplyInput(p, 0, true, false, 30, sink)
	assert.Len(t, r.PlacedBalloons, 2)
}

func TestApplyInputCapacityCountsOnlyOwnBalloons(t *testing.T) {
	r := NewRoom("t", 0)
	other := addTestPlayer(r, "p2", 2, 100)
	r.ApplyInput(other, 0, true, false, 5, newFakeSink())

	p := addTestPlayer(r, "p1", 1, 400)
	r.ApplyInput(p, 0, true, false, 10, newFakeSink())

	assert.Len(t, r.PlacedBalloons, 2)
}

func TestApplyInputBananaPlacement(t *testing.T) {
	r := NewRoom("t", 0)
	p := addTestPlayer(r, "p1", 1, 400)
	sink := newFakeSink()

	// Without a held banana nothing happens.
	r.ApplyInput(p, 0, false, true, 1, sink)
	assert.Empty(t, r.Bananas)

	p.HasBanana = true
	p.BananaReadyUntil = 10
	r.ApplyInput(p, 0, false, true, 5, sink)
	require.Len(t, r.Bananas, 1)
	assert.Equal(t, "p1", r.Bananas[0].PlayerID)
	assert.Equal(t, 400.0, r.Bananas[0].X)
	assert.False(t, p.HasBanana, "banana is single use")

	// Past the ready window the held banana is unusable.
	p.HasBanana = true
	p.BananaReadyUntil = 6
	r.ApplyInput(p, 0, false, true, 7, sink)
	assert.Len(t, r.Bananas, 1)
}

func TestSnapshotDoesNotAliasLiveState(t *testing.T) {
	r := NewRoom("t", 0)
	p := addTestPlayer(r, "p1", 1, 400)
	r.Balloons = append(r.Balloons, &FallingBalloon{ID: "b", X: 100, Y: 300, VY: 60, Radius: BalloonRadius})
	r.Powerups = append(r.Powerups, &Powerup{ID: "pw", Type: PowerupSpeed, X: 200, Y: PowerupY})

	snap := r.Snapshot(1)

	// Mutations after the snapshot must not show through it.
	p.X = 700
	p.Score = 9
	r.Balloons[0].Y = -100
	r.Powerups[0].X = 650

	require.Len(t, snap.Players, 1)
	assert.Equal(t, 400.0, snap.Players[0].X)
	assert.Zero(t, snap.Players[0].Score)
	assert.Equal(t, 300.0, snap.Balloons[0].Y)
	assert.Equal(t, 200.0, snap.Powerups[0].X)
}

func TestSnapshotContainsAllEntities(t *testing.T) {
	r := NewRoom("lobby", 0)
	addTestPlayer(r, "p1", 1, 400)
	r.Balloons = append(r.Balloons, &FallingBalloon{ID: "b"})
	r.PlacedBalloons = append(r.PlacedBalloons, &PlacedBalloon{ID: "pb"})
	r.Explosions = append(r.Explosions, &Explosion{ID: "e"})
	r.Powerups = append(r.Powerups, &Powerup{ID: "pw"})
	r.Bananas = append(r.Bananas, &Banana{ID: "bn"})

	snap := r.Snapshot(12.5)

	assert.Equal(t, "lobby", snap.RoomID)
	assert.Equal(t, ArenaWidth, snap.Width)
	assert.Equal(t, ArenaHeight, snap.Height)
	assert.Len(t, snap.Players, 1)
	assert.Len(t, snap.Balloons, 1)
	assert.Len(t, snap.PlacedBalloons, 1)
	assert.Len(t, snap.Explosions, 1)
	assert.Len(t, snap.Powerups, 1)
	assert.Len(t, snap.Bananas, 1)
	assert.Equal(t, 12.5, snap.ServerTime)
}
