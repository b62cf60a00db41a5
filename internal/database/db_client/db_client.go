package db_client

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func Open(host, port, user, pass, database string) (*sql.DB, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		user, pass, host, port, database,
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Traffic is the 10 s stats flusher plus occasional auth requests, so a
	// small pool is plenty.
	db.SetMaxOpenConns(16)
	db.SetConnMaxIdleTime(time.Minute)
	return db, db.Ping()
}
