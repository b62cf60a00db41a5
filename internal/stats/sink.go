// Package stats implements the statistics sink on Redis: cheap counter
// increments on the hot path, persisted to Postgres out-of-band by the
// syncstats worker. Every call is best-effort; a Redis hiccup is logged and
// gameplay continues.
package stats

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// HashPrefix keys one counter hash per user, e.g. "stats:42".
	HashPrefix = "stats:"
	// DirtySet tracks which counter hashes have unflushed increments.
	DirtySet = "stats:dirty"
	// ScoreStream receives one entry per score credit for the audit tail.
	ScoreStream = "score_stream"

	// Counter hash fields, mirrored 1:1 onto users table columns.
	FieldScore    = "total_score"
	FieldBalloons = "balloons_placed"
	FieldPowerups = "powerups_collected"

	opTimeout = 500 * time.Millisecond
)

type RedisSink struct {
	rdc *redis.Client
}

func NewRedisSink(rdc *redis.Client) *RedisSink {
	return &RedisSink{rdc: rdc}
}

func (s *RedisSink) CreditScore(userID int64, delta int) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	key := HashPrefix + strconv.FormatInt(userID, 10)
	pipe := s.rdc.Pipeline()
	pipe.HIncrBy(ctx, key, FieldScore, int64(delta))
	pipe.SAdd(ctx, DirtySet, key)
	pipe.XAdd(ctx, &redis.XAddArgs{
		Stream: ScoreStream,
		Values: map[string]any{
			"uid":   strconv.FormatInt(userID, 10),
			"delta": strconv.Itoa(delta),
			"at":    strconv.FormatInt(time.Now().Unix(), 10),
		},
	})
	if _, err := pipe.Exec(ctx); err != nil {
		zap.L().Warn("stats.credit_score", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func (s *RedisSink) CreditPowerupCollected(userID int64) {
	s.bump(userID, FieldPowerups, "stats.credit_powerup")
}

func (s *RedisSink) CreditBalloonPlaced(userID int64) {
	s.bump(userID, FieldBalloons, "stats.credit_balloon")
}

func (s *RedisSink) bump(userID int64, field, op string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	key := HashPrefix + strconv.FormatInt(userID, 10)
	pipe := s.rdc.Pipeline()
	pipe.HIncrBy(ctx, key, field, 1)
	pipe.SAdd(ctx, DirtySet, key)
	if _, err := pipe.Exec(ctx); err != nil {
		zap.L().Warn(op, zap.Int64("user_id", userID), zap.Error(err))
	}
}
