package syncstats

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/PrometheusPrograms/balloono/internal/stats"
)

const flushInterval = 10 * time.Second

// Run mirrors dirty Redis counter hashes into the users table every 10 s.
// Counters in Redis are deltas since the last flush, so each hash is drained
// (GETDEL-style) after a successful commit.
func Run(ctx context.Context, rdc *redis.Client, db *sql.DB) {
	tk := time.NewTicker(flushInterval)
	go func() {
		defer tk.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-tk.C:
				flushOnce(ctx, rdc, db)
			}
		}
	}()
}

func flushOnce(ctx context.Context, rdc *redis.Client, db *sql.DB) {
	keys, err := rdc.SMembers(ctx, stats.DirtySet).Result()
	if err != nil || len(keys) == 0 {
		return
	}

	// 1. fetch all counter hashes in one pipelined round-trip
	pipe := rdc.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.HGetAll(ctx, k)
	}
	if _, err = pipe.Exec(ctx); err != nil {
		zap.L().Error("syncstats.pipeline", zap.Error(err))
		return
	}

	// 2. apply the deltas to Postgres
	const upd = `
	UPDATE users
	   SET total_score        = total_score        + $2,
	       balloons_placed    = balloons_placed    + $3,
	       powerups_collected = powerups_collected + $4
	 WHERE id = $1`

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		zap.L().Error("syncstats.tx_begin", zap.Error(err))
		return
	}
	defer tx.Rollback()

	flushed := keys[:0]
	for i, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil || len(data) == 0 {
			continue // hash drained between SMEMBERS and HGETALL
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(keys[i], stats.HashPrefix), 10, 64)
		if err != nil {
			continue
		}
		if _, err := tx.ExecContext(ctx, upd, id,
			atoi(data[stats.FieldScore]),
			atoi(data[stats.FieldBalloons]),
			atoi(data[stats.FieldPowerups])); err != nil {
			zap.L().Error("syncstats.update", zap.Int64("user_id", id), zap.Error(err))
			continue
		}
		flushed = append(flushed, keys[i])
	}

	if err = tx.Commit(); err != nil {
		zap.L().Error("syncstats.commit", zap.Error(err))
		return
	}

	// 3. drain only what was committed
	if len(flushed) > 0 {
		drain := rdc.Pipeline()
		for _, k := range flushed {
			drain.Del(ctx, k)
		}
		drain.SRem(ctx, stats.DirtySet, toAny(flushed)...)
		if _, err := drain.Exec(ctx); err != nil {
			zap.L().Warn("syncstats.drain", zap.Error(err))
		}
	}
}

func atoi(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
