package arenahandler

import "github.com/PrometheusPrograms/balloono/internal/game"

type JoinBody struct {
	Room string `json:"room" example:"lobby"`
} // @name JoinRequest

type InputBody struct {
	RoomID       string  `json:"roomId"   binding:"required" example:"lobby"`
	PlayerID     string  `json:"playerId" binding:"required" example:"4f3a2b1c0d"`
	Move         float64 `json:"move"     example:"1"`
	PlaceBalloon bool    `json:"placeBalloon"`
	PlaceBanana  bool    `json:"placeBanana"`
} // @name InputRequest

type PollQuery struct {
	RoomID   string `form:"roomId"   binding:"required"`
	PlayerID string `form:"playerId" binding:"required"`
} // @name PollQuery

type JoinResponse struct {
	PlayerID string        `json:"playerId"`
	State    game.Snapshot `json:"state"`
} // @name JoinResponse

type OkResponse struct {
	Ok bool `json:"ok"`
} // @name OkResponse

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse
