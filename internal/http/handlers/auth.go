package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/listinghub/internal/apperr"
	"github.com/geocoder89/listinghub/internal/config"
	"github.com/geocoder89/listinghub/internal/domain/user"
	"github.com/geocoder89/listinghub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

const authTimeout = 3 * time.Second

type Accounts interface {
	Register(ctx context.Context, name, email, password string) (user.User, error)
	VerifyLogin(ctx context.Context, email, password string) (user.User, error)
	Profile(ctx context.Context, id int64) (user.User, error)
}

type TokenIssuer interface {
	Issue(u user.User) (string, error)
}

// AuthObserver counts register/login outcomes.
type AuthObserver interface {
	ObserveAuth(event, result string)
}

type AuthHandler struct {
	accounts Accounts
	tokens   TokenIssuer
	observer AuthObserver
}

func NewAuthHandler(accounts Accounts, tokens TokenIssuer, observer AuthObserver) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens, observer: observer}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  user.Summary `json:"user"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), authTimeout)
	defer cancel()

	u, err := h.accounts.Register(cctx, req.Name, req.Email, req.Password)
	if err != nil {
		h.observe("register", err)
		RespondErr(ctx, err, "Failed to register user")
		return
	}

	h.respondWithToken(ctx, http.StatusCreated, "register", u, "Failed to register user")
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), authTimeout)
	defer cancel()

	u, err := h.accounts.VerifyLogin(cctx, req.Email, req.Password)
	if err != nil {
		h.observe("login", err)
		RespondErr(ctx, err, "Login failed")
		return
	}

	h.respondWithToken(ctx, http.StatusOK, "login", u, "Login failed")
}

func (h *AuthHandler) Profile(ctx *gin.Context) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondError(ctx, http.StatusUnauthorized, "Authorization required", nil)
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), authTimeout)
	defer cancel()

	u, err := h.accounts.Profile(cctx, id)
	if err != nil {
		RespondErr(ctx, err, "Failed to load profile")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *AuthHandler) respondWithToken(ctx *gin.Context, status int, event string, u user.User, fallback string) {
	token, err := h.tokens.Issue(u)
	if err != nil {
		h.observe(event, err)
		RespondErr(ctx, err, fallback)
		return
	}

	h.observe(event, nil)

	ctx.JSON(status, AuthResponse{Token: token, User: u.Summary()})
}

func (h *AuthHandler) observe(event string, err error) {
	if h.observer == nil {
		return
	}
	h.observer.ObserveAuth(event, authResult(err))
}

func authResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, user.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, user.ErrEmailTaken):
		return "email_taken"
	default:
		return apperr.KindOf(err).String()
	}
}
