package arena

import (
	"errors"
	mrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/PrometheusPrograms/balloono/internal/game"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found")
)

// IArenaService is the session boundary over the room registry. Every call
// runs under one exclusive lock: simplicity over throughput, so concurrent
// join/input/poll requests can never race a room mid-mutation.
type IArenaService interface {
	Join(roomID string, user game.UserIdentity) (playerID string, snap game.Snapshot)
	Input(roomID, playerID string, move float64, placeBalloon, placeBanana bool) error
	Poll(roomID, playerID string) (game.Snapshot, error)
}

type arenaService struct {
	mu    sync.Mutex
	rooms map[string]*game.Room
	rng   *mrand.Rand
	sink  game.StatsSink
	now   func() float64
}

func NewArenaService(sink game.StatsSink) IArenaService {
	return newArenaService(sink, monotonicClock(), mrand.New(mrand.NewSource(time.Now().UnixNano())))
}

// newArenaService lets tests inject a fixed clock and a seeded rng.
func newArenaService(sink game.StatsSink, now func() float64, rng *mrand.Rand) *arenaService {
	return &arenaService{
		rooms: make(map[string]*game.Room),
		rng:   rng,
		sink:  sink,
		now:   now,
	}
}

// monotonicClock reports seconds elapsed since service start. Room timestamps
// are process-relative, never wall-clock, so clock adjustments cannot skew
// fuses or timeouts.
func monotonicClock() func() float64 {
	start := time.Now()
	return func() float64 { return time.Since(start).Seconds() }
}

// NormalizeRoomID canonicalizes a client-supplied room id so that every
// transport resolves the same room: whitespace trimmed, lowercased, capped at
// 32 characters, empty falls back to the default lobby.
func NormalizeRoomID(roomID string) string {
	roomID = strings.ToLower(strings.TrimSpace(roomID))
	if roomID == "" {
		return "lobby"
	}
	if r := []rune(roomID); len(r) > 32 {
		roomID = string(r[:32])
	}
	return roomID
}

// Join creates the room on first use, registers a player and returns the
// player id plus a full snapshot. Rooms are never destroyed; an empty room
// just waits for its next player.
func (s *arenaService) Join(roomID string, user game.UserIdentity) (string, game.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID = NormalizeRoomID(roomID)
	now := s.now()
	room, ok := s.rooms[roomID]
	if !ok {
		room = game.NewRoom(roomID, now)
		s.rooms[roomID] = room
	}
	playerID := room.AddPlayer(user, s.rng, now)
	return playerID, room.Snapshot(now)
}

// Input applies one input batch. Placement rejections (cooldown, capacity,
// banana window) are policy outcomes, not errors: the call still succeeds.
func (s *arenaService) Input(roomID, playerID string, move float64, placeBalloon, placeBanana bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, player, err := s.find(roomID, playerID)
	if err != nil {
		return err
	}
	room.ApplyInput(player, move, placeBalloon, placeBanana, s.now(), s.sink)
	return nil
}

// Poll is the only trigger that advances simulation time. It refreshes the
// caller's liveness, evicts stale players, steps the room and returns the
// authoritative snapshot.
func (s *arenaService) Poll(roomID, playerID string) (game.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, player, err := s.find(roomID, playerID)
	if err != nil {
		return game.Snapshot{}, err
	}
	now := s.now()
	player.LastSeen = now
	room.EvictStale(now)
	room.Advance(now, s.rng, s.sink)
	return room.Snapshot(now), nil
}

// find must be called with s.mu held.
func (s *arenaService) find(roomID, playerID string) (*game.Room, *game.Player, error) {
	room, ok := s.rooms[NormalizeRoomID(roomID)]
	if !ok {
		return nil, nil, ErrRoomNotFound
	}
	player, ok := room.Players[playerID]
	if !ok {
		return nil, nil, ErrPlayerNotFound
	}
	return room, player, nil
}
