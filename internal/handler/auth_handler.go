package handler

import (
	"errors"
	"net/http"
	"strings"

	"thundergames/backend/internal/auth"
	"thundergames/backend/internal/logger"
	"thundergames/backend/internal/service"
	"thundergames/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	LoginPath         = "/login/"
	DefaultLoginRedir = "/admin_dashboard/"
)

// CookieConfig describes the browser session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// LoginRequest is the body accepted by the token endpoint.
type LoginRequest struct {
	Username string `json:"username" example:"admin"`
	Password string `json:"password" example:"secret"`
}

// TokenResponse carries a session token for API clients.
type TokenResponse struct {
	Token string `json:"token"`
}

type AuthHandler struct {
	users   service.AuthService
	tokens  *jwt.Manager
	limiter *auth.LoginLimiter
	cookie  CookieConfig
	log     *zap.Logger
}

func NewAuthHandler(users service.AuthService, tokens *jwt.Manager, limiter *auth.LoginLimiter, cookie CookieConfig, log *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, limiter: limiter, cookie: cookie, log: log}
}

func (h *AuthHandler) RegisterRoutes(api *gin.RouterGroup, pages gin.IRoutes) {
	api.POST("/auth/login/", h.Login)

	pages.GET(LoginPath, h.LoginPage)
	pages.GET("/login.html", h.LoginPage)
	pages.POST(LoginPath, h.LoginSubmit)
	pages.POST("/logout/", h.Logout)
}

// Login godoc
// @Summary      Obtain a session token
// @Description  Exchanges credentials for a bearer token. Privileges are checked per request.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body      LoginRequest true "Credentials"
// @Success      200   {object}  TokenResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      429   {object}  ErrorResponse
// @Router       /auth/login/ [post]
func (h *AuthHandler) Login(c *gin.Context) {
	if !h.limiter.Allow(c.ClientIP()) {
		abortJSON(c, http.StatusTooManyRequests, "Too many login attempts")
		return
	}

	var input LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		abortJSON(c, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		writeServiceError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	h.renderLogin(c, http.StatusOK, "", "", c.Query("next"))
}

func (h *AuthHandler) LoginSubmit(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")
	next := c.PostForm("next")

	if !h.limiter.Allow(c.ClientIP()) {
		h.renderLogin(c, http.StatusTooManyRequests, "Too many login attempts. Please try again later.", username, next)
		return
	}
	if username == "" || password == "" {
		h.renderLogin(c, http.StatusOK, "Both username and password are required.", username, next)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), username, password)
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		h.renderLogin(c, http.StatusOK, "Invalid username or password.", username, next)
		return
	case err != nil:
		h.log.Error("login failed", zap.String("request_id", logger.RequestID(c)), zap.Error(err))
		h.renderLogin(c, http.StatusInternalServerError, "Something went wrong. Please try again.", username, next)
		return
	case !user.IsSuperuser:
		h.renderLogin(c, http.StatusOK, "Only superusers can sign in here.", username, next)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		h.log.Error("issue session token", zap.String("request_id", logger.RequestID(c)), zap.Error(err))
		h.renderLogin(c, http.StatusInternalServerError, "Something went wrong. Please try again.", username, next)
		return
	}

	h.setSessionCookie(c, token, int(h.tokens.TTL().Seconds()))
	c.Redirect(http.StatusFound, safeRedirect(next, DefaultLoginRedir))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	c.Redirect(http.StatusFound, LoginPath)
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, msg, username, next string) {
	render(c, status, "login.html", gin.H{
		"Title":    "Login",
		"Error":    msg,
		"Username": username,
		"Next":     next,
	})
}
