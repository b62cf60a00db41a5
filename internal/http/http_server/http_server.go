package http_server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PrometheusPrograms/balloono/internal/http/arenahandler"
	"github.com/PrometheusPrograms/balloono/internal/http/authhandler"
	"github.com/PrometheusPrograms/balloono/internal/services/arena"
	"github.com/PrometheusPrograms/balloono/internal/services/user"
	"github.com/PrometheusPrograms/balloono/internal/session"
	"github.com/PrometheusPrograms/balloono/internal/ws"
)

type httpServer struct {
	listenPort uint16
	srv        http.Server
	ln         net.Listener
	arenaSvc   arena.IArenaService
	userSvc    user.IUserService
	sessions   *session.Store
	wsSrv      *ws.WsServer
	ctx        context.Context
}

func NewHttpServer(ctx context.Context, listenPort uint16, wsSrv *ws.WsServer,
	arenaSvc arena.IArenaService, userSvc user.IUserService, sessions *session.Store) *httpServer {
	return &httpServer{
		listenPort: listenPort,
		wsSrv:      wsSrv,
		arenaSvc:   arenaSvc,
		userSvc:    userSvc,
		sessions:   sessions,
		ctx:        ctx,
	}
}

func (h *httpServer) Start() error {
	var err error
	listenAddr := fmt.Sprintf(":%d", h.listenPort)
	h.ln, err = net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	routerEngine := gin.New()
	routerEngine.Use(ginzap.RecoveryWithZap(zap.L(), true))

	// websocket endpoint
	routerEngine.GET("/ws", h.wsSrv.Handle)

	// REST API
	auth := authhandler.New(h.userSvc, h.sessions)
	auth.Register(routerEngine)

	ah := arenahandler.New(h.arenaSvc, h.userSvc)
	ah.Register(routerEngine, auth.RequireAuth())

	h.srv = http.Server{
		Handler: routerEngine,
	}

	return h.srv.Serve(h.ln)
}

// Dispose gracefully shuts the HTTP server down.
// It waits up to 10 s for in-flight requests to finish.
func (h *httpServer) Dispose() error {
	// Create a context that times-out after 10 s.
	ctx, cancel := context.WithTimeout(h.ctx, 10*time.Second)
	defer cancel()

	// Ask the server to shut down.
	if err := h.srv.Shutdown(ctx); err != nil {
		zap.L().Error("http_dispose", zap.Error(err))
		return err // e.g. active conns didn't finish in time
	}

	// If the context's deadline expired, log it for observability.
	if ctx.Err() == context.DeadlineExceeded {
		zap.L().Error("http_dispose", zap.Error(errors.New("shutdown timed out")))
		log.Println("shutdown timeout (10 s)")
	}

	return nil
}
