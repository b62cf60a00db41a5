package authhandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PrometheusPrograms/balloono/internal/services/user"
	"github.com/PrometheusPrograms/balloono/internal/session"
)

const sessionCookie = "balloono_session"

type Handler struct {
	svc      user.IUserService
	sessions *session.Store
}

func New(svc user.IUserService, sessions *session.Store) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/api/register", h.register)
	r.POST("/api/login", h.login)
	r.POST("/api/logout", h.logout)
	r.GET("/api/me", h.me)
}

// RequireAuth resolves the session cookie and stores the user id in the gin
// context under "user_id". Rejects with 401 when there is no live session.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}
		userID, err := h.sessions.Lookup(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}

// @Summary		Register an account
// @Description	Creates a user and opens a session.
// @Tags			Auth
// @Param			body	body	CredentialsBody	true	"Credentials"
// @Success		200	{object}	user.UserDTO
// @Failure		400	{object}	ErrorResponse
// @Failure		409	{object}	ErrorResponse
// @Router			/api/register [post]
func (h *Handler) register(ginCtx *gin.Context) {
	var body CredentialsBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	dto, err := h.svc.Register(ginCtx.Request.Context(), body.Username, body.Password)
	if errors.Is(err, user.ErrInvalidCredentials) {
		ginCtx.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_credentials"})
		return
	}
	if errors.Is(err, user.ErrUserExists) {
		ginCtx.JSON(http.StatusConflict, ErrorResponse{Error: "user_exists"})
		return
	}
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	h.openSession(ginCtx, dto)
}

// @Summary		Log in
// @Tags			Auth
// @Param			body	body	CredentialsBody	true	"Credentials"
// @Success		200	{object}	user.UserDTO
// @Failure		401	{object}	ErrorResponse
// @Router			/api/login [post]
func (h *Handler) login(ginCtx *gin.Context) {
	var body CredentialsBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	dto, err := h.svc.Authenticate(ginCtx.Request.Context(), body.Username, body.Password)
	if errors.Is(err, user.ErrInvalidLogin) {
		ginCtx.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid_login"})
		return
	}
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	h.openSession(ginCtx, dto)
}

// @Summary		Log out
// @Tags			Auth
// @Success		200	{object}	OkResponse
// @Router			/api/logout [post]
func (h *Handler) logout(ginCtx *gin.Context) {
	if token, err := ginCtx.Cookie(sessionCookie); err == nil {
		_ = h.sessions.Destroy(ginCtx.Request.Context(), token)
	}
	ginCtx.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	ginCtx.JSON(http.StatusOK, OkResponse{Ok: true})
}

// @Summary		Current account
// @Description	Returns the logged-in user's profile and cumulative stats.
// @Tags			Auth
// @Success		200	{object}	MeResponse
// @Router			/api/me [get]
func (h *Handler) me(ginCtx *gin.Context) {
	token, err := ginCtx.Cookie(sessionCookie)
	if err != nil {
		ginCtx.JSON(http.StatusOK, MeResponse{Authenticated: false})
		return
	}
	userID, err := h.sessions.Lookup(ginCtx.Request.Context(), token)
	if err != nil {
		ginCtx.JSON(http.StatusOK, MeResponse{Authenticated: false})
		return
	}
	dto, err := h.svc.GetUser(ginCtx.Request.Context(), userID)
	if err != nil {
		ginCtx.JSON(http.StatusOK, MeResponse{Authenticated: false})
		return
	}
	ginCtx.JSON(http.StatusOK, MeResponse{Authenticated: true, User: dto})
}

func (h *Handler) openSession(ginCtx *gin.Context, dto *user.UserDTO) {
	token, err := h.sessions.Create(ginCtx.Request.Context(), dto.ID)
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.SetCookie(sessionCookie, token, 0, "/", "", false, true)
	ginCtx.JSON(http.StatusOK, dto)
}
