package syncevents

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/PrometheusPrograms/balloono/internal/stats"
)

// Run tails the score stream and persists every scoring event. The stream is
// an audit trail; the cumulative users counters are handled by syncstats.
func Run(ctx context.Context, rdc *redis.Client, db *sql.DB) {
	go func() {
		lastID := "0-0"
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			// block up to 2 s for new entries
			res, err := rdc.XRead(ctx, &redis.XReadArgs{
				Streams: []string{stats.ScoreStream, lastID},
				Count:   100,
				Block:   2000 * time.Millisecond,
			}).Result()
			if err != nil && err != redis.Nil {
				zap.L().Warn("syncevents.xread", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}
			if len(res) == 0 {
				continue
			}
			entries := res[0].Messages
			if err := persist(ctx, db, entries); err != nil {
				zap.L().Error("syncevents.persist", zap.Error(err))
			}
			lastID = entries[len(entries)-1].ID
		}
	}()
}

func persist(ctx context.Context, db *sql.DB, msgs []redis.XMessage) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	const ins = `INSERT INTO score_events (user_id, delta, scored_at)
	             VALUES ($1, $2, to_timestamp($3))`
	for _, m := range msgs {
		uid, _ := m.Values["uid"].(string)
		delta, _ := m.Values["delta"].(string)
		at, _ := m.Values["at"].(string)

		userID, _ := strconv.ParseInt(uid, 10, 64)
		d, _ := strconv.ParseInt(delta, 10, 64)
		ts, _ := strconv.ParseInt(at, 10, 64)
		if _, err := tx.ExecContext(ctx, ins, userID, d, ts); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
