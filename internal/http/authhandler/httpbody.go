package authhandler

import "github.com/PrometheusPrograms/balloono/internal/services/user"

type CredentialsBody struct {
	Username string `json:"username" binding:"required" example:"player1"`
	Password string `json:"password" binding:"required" example:"hunter22"`
} // @name CredentialsRequest

type ErrorResponse struct {
	Error string `json:"error"`
} // @name ErrorResponse

type OkResponse struct {
	Ok bool `json:"ok"`
} // @name OkResponse

type MeResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *user.UserDTO `json:"user,omitempty"`
} // @name MeResponse
