package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/PrometheusPrograms/balloono/internal/config"
	"github.com/PrometheusPrograms/balloono/internal/database/db_client"
	"github.com/PrometheusPrograms/balloono/internal/http/http_server"
	"github.com/PrometheusPrograms/balloono/internal/redis/redis_client"
	"github.com/PrometheusPrograms/balloono/internal/services/arena"
	"github.com/PrometheusPrograms/balloono/internal/services/user"
	"github.com/PrometheusPrograms/balloono/internal/session"
	"github.com/PrometheusPrograms/balloono/internal/stats"
	"github.com/PrometheusPrograms/balloono/internal/syncevents"
	"github.com/PrometheusPrograms/balloono/internal/syncstats"
	"github.com/PrometheusPrograms/balloono/internal/ws"
)

var (
	Log, _ = zap.NewDevelopment()
)

func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	var err error
	var cfg *config.Config
	var redisClient *redis.Client

	// 1. Load configuration
	cfg, err = config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Redis (sessions, stats counters, score stream)
	redisClient, err = redis_client.NewRedisClient(cfg.RedisHost, int(cfg.RedisPort))
	if err != nil {
		Log.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()
	Log.Debug("Redis client created successfully")

	// 4. Postgres (accounts + cumulative stats)
	pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDb)
	if err != nil {
		Log.Fatal("pg-open", zap.Error(err))
	}
	defer pgDb.Close()

	if err := user.EnsureSchema(ctx, pgDb); err != nil {
		Log.Fatal("pg-schema", zap.Error(err))
	}

	// 5. Services
	userService := user.NewUserService(pgDb)
	sink := stats.NewRedisSink(redisClient)
	arenaService := arena.NewArenaService(sink)
	sessions := session.NewStore(redisClient, time.Duration(cfg.SessionTTLHours)*time.Hour)

	// 6. Background: 10 s stats flusher + score-event stream tail
	syncstats.Run(ctx, redisClient, pgDb)
	syncevents.Run(ctx, redisClient, pgDb)

	// 7. WebSocket transport over the same arena operations
	wsSrv := ws.NewWsServer(arenaService, userService, sessions)

	// 8. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, wsSrv, arenaService, userService, sessions)
	if err := httpServer.Start(); err != nil {
		Log.Fatal("Failed to start HTTP server", zap.Error(err))
	}
}
