package arena

import (
	"encoding/json"
	mrand "math/rand"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PrometheusPrograms/balloono/internal/game"
)

type fakeSink struct {
	score    map[int64]int
	balloons map[int64]int
	powerups map[int64]int
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		score:    make(map[int64]int),
		balloons: make(map[int64]int),
		powerups: make(map[int64]int),
	}
}

func (f *fakeSink) CreditScore(userID int64, delta int) { f.score[userID] += delta }
func (f *fakeSink) CreditPowerupCollected(userID int64) { f.powerups[userID]++ }
func (f *fakeSink) CreditBalloonPlaced(userID int64)    { f.balloons[userID]++ }

// fakeClock lets tests drive simulation time explicitly.
type fakeClock struct{ t float64 }

func (c *fakeClock) now() float64 { return c.t }

func newTestService(sink game.StatsSink) (*arenaService, *fakeClock) {
	clock := &fakeClock{}
	svc := newArenaService(sink, clock.now, mrand.New(mrand.NewSource(1)))
	return svc, clock
}

func TestJoinCreatesRoomOnFirstUse(t *testing.T) {
	svc, _ := newTestService(newFakeSink())

	p1, snap := svc.Join("lobby", game.UserIdentity{ID: 1, Username: "alice"})
	require.NotEmpty(t, p1)
	assert.Equal(t, "lobby", snap.RoomID)
	assert.Len(t, snap.Players, 1)

	p2, snap := svc.Join("lobby", game.UserIdentity{ID: 2, Username: "bob"})
	assert.NotEqual(t, p1, p2)
	assert.Len(t, snap.Players, 2, "second join reuses the room")
}

func TestJoinNormalizesRoomID(t *testing.T) {
	svc, _ := newTestService(newFakeSink())

	p1, snap := svc.Join("  Lobby ", game.UserIdentity{ID: 1, Username: "alice"})
	assert.Equal(t, "lobby", snap.RoomID)

	// A spelled-differently join must land in the same room.
	_, snap = svc.Join("lobby", game.UserIdentity{ID: 2, Username: "bob"})
	assert.Len(t, snap.Players, 2)
	require.Len(t, svc.rooms, 1)

	// Input and poll resolve the canonical room too.
	require.NoError(t, svc.Input("LOBBY", p1, 1, false, false))
	_, err := svc.Poll(" lobby", p1)
	require.NoError(t, err)
}

func TestNormalizeRoomID(t *testing.T) {
	assert.Equal(t, "lobby", NormalizeRoomID(""))
	assert.Equal(t, "lobby", NormalizeRoomID("  \t"))
	assert.Equal(t, "arena-7", NormalizeRoomID(" Arena-7 "))

	long := strings.Repeat("ü", 40)
	got := NormalizeRoomID(long)
	assert.Equal(t, strings.Repeat("ü", 32), got)
	assert.True(t, utf8.ValidString(got))
}

func TestInputUnknownRoomAndPlayer(t *testing.T) {
	svc, _ := newTestService(newFakeSink())

	err := svc.Input("nope", "p1", 1, false, false)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	svc.Join("lobby", game.UserIdentity{ID: 1, Username: "alice"})
	err = svc.Input("lobby", "ghost", 1, false, false)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestPollUnknownRoomAndPlayer(t *testing.T) {
	svc, _ := newTestService(newFakeSink())

	_, err := svc.Poll("nope", "p1")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	svc.Join("lobby", game.UserIdentity{ID: 1, Username: "alice"})
	_, err = svc.Poll("lobby", "ghost")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestPollAppliesMovement(t *testing.T) {
	svc, clock := newTestService(newFakeSink())

	playerID, _ := svc.Join("lobby", game.UserIdentity{ID: 1, Username: "alice"})
	require.NoError(t, svc.Input("lobby", playerID, 1, false, false))

	clock.t = 0.05
	snap, err := svc.Poll("lobby", playerID)
	require.NoError(t, err)

	require.Len(t, snap.Players, 1)
	assert.InDelta(t, game.ArenaWidth/2+game.PlayerBaseSpeed*0.05, snap.Players[0].X, 1e-9)
}

func TestPollEvictsStalePlayersFirst(t *testing.T) {
	svc, clock := newTestService(newFakeSink())

	stale, _ := svc.Join("lobby", game.UserIdentity{ID: 1, Username: "alice"})
	clock.t = 31
	fresh, _ := svc.Join("lobby", game.UserIdentity{ID: 2, Username: "bob"})

	snap, err := svc.Poll("lobby", fresh)
	require.NoError(t, err)

	require.Len(t, snap.Players, 1)
	assert.NotEqual(t, stale, snap.Players[0].ID)

	// The evicted player can no longer poll.
	_, err = svc.Poll("lobby", stale)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestPollRefreshesLiveness(t *testing.T) {
	svc, clock := newTestService(newFakeSink())

	playerID, _ := svc.Join("lobby", game.UserIdentity{ID: 1, Username: "alice"})
	for _, at := range []float64{20, 40, 60} {
		clock.t = at
		_, err := svc.Poll("lobby", playerID)
		require.NoError(t, err, "regular polling keeps the player alive at t=%v", at)
	}
}

func TestPlacedBalloonDetonatesAndScores(t *testing.T) {
	sink := newFakeSink()
	svc, clock := newTestService(sink)

	playerID, _ := svc.Join("lobby", game.UserIdentity{ID: 7, Username: "alice"})
	clock.t = 1
	require.NoError(t, svc.Input("lobby", playerID, 0, true, false))
	assert.Equal(t, 1, sink.balloons[7])

	// Drop a target right on top of the pending charge.
	svc.rooms["lobby"].Balloons = append(svc.rooms["lobby"].Balloons, &game.FallingBalloon{
		ID: "target", X: game.ArenaWidth / 2, Y: game.PlacementY - 60, VY: 0, Radius: game.BalloonRadius,
	})

	clock.t = 1 + game.BalloonFuse
	snap, err := svc.Poll("lobby", playerID)
	require.NoError(t, err)

	assert.Empty(t, snap.PlacedBalloons)
	require.Len(t, snap.Explosions, 1)
	assert.Equal(t, game.BaseBlastRadius, snap.Explosions[0].Radius)
	assert.Empty(t, snap.Balloons)
	assert.Equal(t, 1, snap.Players[0].Score)
	assert.Equal(t, 1, sink.score[7])
}

// Handlers serialize snapshots after the service lock is released, so a
// snapshot must be safe to marshal while other requests mutate the room.
func TestSnapshotMarshalsSafelyDuringConcurrentInput(t *testing.T) {
	svc, _ := newTestService(newFakeSink())

	reader, _ := svc.Join("lobby", game.UserIdentity{ID: 1, Username: "alice"})
	writer, _ := svc.Join("lobby", game.UserIdentity{ID: 2, Username: "bob"})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			snap, err := svc.Poll("lobby", reader)
			if err != nil {
				return
			}
			_, _ = json.Marshal(snap)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			move := float64(i%3 - 1)
			_ = svc.Input("lobby", writer, move, i%5 == 0, false)
			_, _ = svc.Poll("lobby", writer)
		}
	}()
	wg.Wait()
}

func TestConcurrentPollsDoNotRace(t *testing.T) {
	svc, _ := newTestService(newFakeSink())

	ids := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		id, _ := svc.Join("lobby", game.UserIdentity{ID: int64(i), Username: "u"})
		ids = append(ids, id)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(playerID string) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_, _ = svc.Poll("lobby", playerID)
				_ = svc.Input("lobby", playerID, 1, true, false)
			}
		}(id)
	}
	wg.Wait()
}
