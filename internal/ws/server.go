package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/PrometheusPrograms/balloono/internal/game"
	"github.com/PrometheusPrograms/balloono/internal/services/arena"
	"github.com/PrometheusPrograms/balloono/internal/services/user"
	"github.com/PrometheusPrograms/balloono/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 20 * time.Second // must be < pongWait

	sessionCookie = "balloono_session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true }, // dev-only
}

// WsServer carries the same three arena operations as the REST boundary over
// a websocket. Frames are strictly request/response: a poll frame is still
// what advances the room, so the pull-driven stepping contract is unchanged.
type WsServer struct {
	router   *Router
	arenaSvc arena.IArenaService
	userSvc  user.IUserService
	sessions *session.Store
}

func NewWsServer(arenaSvc arena.IArenaService, userSvc user.IUserService, sessions *session.Store) *WsServer {
	srv := &WsServer{
		router:   NewRouter(),
		arenaSvc: arenaSvc,
		userSvc:  userSvc,
		sessions: sessions,
	}
	srv.registerHandlers() // ← all WS endpoints configured here
	return srv
}

// ---------------------------------------------------------------------------
//  Public: Gin entry-point
// ---------------------------------------------------------------------------

func (s *WsServer) Handle(ginCtx *gin.Context) {
	token, err := ginCtx.Cookie(sessionCookie)
	if err != nil {
		ginCtx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	userID, err := s.sessions.Lookup(ginCtx.Request.Context(), token)
	if err != nil {
		ginCtx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	rawConn, err := upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.accept", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(512)

	wsConn := &clientConn{rawConn: rawConn}
	go s.reader(userID, wsConn)
	go s.pinger(wsConn)
}

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *WsServer) registerHandlers() {
	// 🔹 arena/join -----------------------------------------------------------
	Register(
		s.router,
		"arena/join",
		func(ctx context.Context, cc *ConnContext, req JoinRequest) (JoinBody, error) {
			dto, err := s.userSvc.GetUser(ctx, cc.UserID)
			if err != nil {
				return JoinBody{}, errors.New("unauthorized")
			}
			if err := s.userSvc.IncrementGamesPlayed(ctx, cc.UserID); err != nil {
				zap.L().Warn("ws.games_played", zap.Int64("user_id", cc.UserID), zap.Error(err))
			}
			// Keep the stored room id in the same canonical form the
			// service resolves, so later input/poll frames hit the room
			// this connection actually joined.
			roomID := arena.NormalizeRoomID(req.Room)
			playerID, snap := s.arenaSvc.Join(roomID, game.UserIdentity{ID: dto.ID, Username: dto.Username})
			cc.RoomID = roomID
			cc.PlayerID = playerID
			return JoinBody{PlayerID: playerID, State: snap}, nil
		},
	)

	// 🔹 arena/input ----------------------------------------------------------
	Register(
		s.router,
		"arena/input",
		func(_ context.Context, cc *ConnContext, req InputRequest) (AckBody, error) {
			err := s.arenaSvc.Input(cc.RoomID, cc.PlayerID, req.Move, req.PlaceBalloon, req.PlaceBanana)
			return AckBody{}, err
		},
	)

	// 🔹 arena/poll -----------------------------------------------------------
	Register(
		s.router,
		"arena/poll",
		func(_ context.Context, cc *ConnContext, _ AckBody) (game.Snapshot, error) {
			return s.arenaSvc.Poll(cc.RoomID, cc.PlayerID)
		},
	)
}

func (s *WsServer) reader(userID int64, conn *clientConn) {
	defer conn.rawConn.Close()

	_ = conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	cc := &ConnContext{UserID: userID}

	for {
		var env Envelope
		if err := conn.rawConn.ReadJSON(&env); err != nil {
			return // client closed or errored
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1900*time.Millisecond)
		res, err := s.router.dispatch(ctx, cc, env)
		cancel()

		// ---- error -> {"event":"error", "body":{...}} ---------------
		if err != nil {
			_ = conn.writeJSON(map[string]any{
				"event": "error",
				"body":  ErrorBody{Error: err.Error()},
			})
			continue
		}

		// ---- success -> {"event":"<evt>-ack", "body":{...}} --------
		reply := map[string]any{"event": env.Event + "-ack"}
		if res != nil {
			reply["body"] = res
		}
		_ = conn.writeJSON(reply)
	}
}

func (s *WsServer) pinger(conn *clientConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.ping(); err != nil {
			_ = conn.rawConn.Close()
			return
		}
	}
}
