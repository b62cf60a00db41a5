package arenahandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/PrometheusPrograms/balloono/internal/game"
	"github.com/PrometheusPrograms/balloono/internal/services/arena"
	"github.com/PrometheusPrograms/balloono/internal/services/user"
)

type Handler struct {
	svc     arena.IArenaService
	userSvc user.IUserService
}

func New(svc arena.IArenaService, userSvc user.IUserService) *Handler {
	return &Handler{svc: svc, userSvc: userSvc}
}

// Register wires the arena routes. Only join needs a session: input and poll
// authenticate by the session-scoped player id they carry.
func (h *Handler) Register(r gin.IRoutes, requireAuth gin.HandlerFunc) {
	r.POST("/api/join", requireAuth, h.join)
	r.POST("/api/input", h.input)
	r.GET("/api/poll", h.poll)
}

// @Summary		Join a room
// @Description	Creates the room on first use and registers a player.
// @Tags			Arena
// @Param			body	body	JoinBody	true	"Room to join"
// @Success		200	{object}	JoinResponse
// @Failure		401	{object}	ErrorResponse
// @Router			/api/join [post]
func (h *Handler) join(ginCtx *gin.Context) {
	var body JoinBody
	// Body is optional: an empty join lands in the lobby.
	_ = ginCtx.ShouldBindJSON(&body)

	userID := ginCtx.GetInt64("user_id")
	dto, err := h.userSvc.GetUser(ginCtx.Request.Context(), userID)
	if err != nil {
		ginCtx.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}
	if err := h.userSvc.IncrementGamesPlayed(ginCtx.Request.Context(), userID); err != nil {
		zap.L().Warn("arena.games_played", zap.Int64("user_id", userID), zap.Error(err))
	}

	playerID, snap := h.svc.Join(body.Room, game.UserIdentity{ID: dto.ID, Username: dto.Username})
	ginCtx.JSON(http.StatusOK, JoinResponse{PlayerID: playerID, State: snap})
}

// @Summary		Apply an input batch
// @Description	Stores movement intent and optional balloon/banana placement.
// @Tags			Arena
// @Param			body	body	InputBody	true	"Input batch"
// @Success		200	{object}	OkResponse
// @Failure		404	{object}	ErrorResponse
// @Router			/api/input [post]
func (h *Handler) input(ginCtx *gin.Context) {
	var body InputBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	err := h.svc.Input(body.RoomID, body.PlayerID, body.Move, body.PlaceBalloon, body.PlaceBanana)
	if err != nil {
		ginCtx.JSON(http.StatusNotFound, ErrorResponse{Error: notFoundCode(err)})
		return
	}
	ginCtx.JSON(http.StatusOK, OkResponse{Ok: true})
}

// @Summary		Poll the room
// @Description	Advances the simulation and returns the full room snapshot.
// @Tags			Arena
// @Param			roomId		query	string	true	"Room ID"
// @Param			playerId	query	string	true	"Player ID"
// @Success		200	{object}	game.Snapshot
// @Failure		404	{object}	ErrorResponse
// @Router			/api/poll [get]
func (h *Handler) poll(ginCtx *gin.Context) {
	var q PollQuery
	if err := ginCtx.ShouldBindQuery(&q); err != nil {
		ginCtx.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	snap, err := h.svc.Poll(q.RoomID, q.PlayerID)
	if err != nil {
		ginCtx.JSON(http.StatusNotFound, ErrorResponse{Error: notFoundCode(err)})
		return
	}
	ginCtx.JSON(http.StatusOK, snap)
}

func notFoundCode(err error) string {
	if errors.Is(err, arena.ErrPlayerNotFound) {
		return "player_not_found"
	}
	return "room_not_found"
}
