package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Sebas91ts/inmueble-panel-api/config"
	"github.com/Sebas91ts/inmueble-panel-api/middleware"
	"github.com/Sebas91ts/inmueble-panel-api/pkg/logger"
)

// AuthHandler signs panel users in against the config-declared user list.
// Each user belongs to one agencia; the claim scopes everything downstream
// (rate limits, export prefixes, log fields).
type AuthHandler struct {
	config *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{config: cfg}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	Username  string `json:"username"`
	Agencia   string `json:"agencia"`
}

// Login validates credentials and issues the panel session token. Failed
// attempts are logged with the username but answered identically, whether
// the user exists or not.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Usuario y contraseña requeridos"})
		return
	}

	user := h.config.FindUser(req.Username)
	if user == nil || subtle.ConstantTimeCompare([]byte(user.Password), []byte(req.Password)) != 1 {
		logger.Warn(c.Request.Context(), "intento de login fallido",
			"username", req.Username,
			"client_ip", c.ClientIP(),
		)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Credenciales inválidas"})
		return
	}

	token, expiresAt, err := middleware.GenerateToken(user.Username, user.Agencia, &h.config.Auth)
	if err != nil {
		logger.Error(c.Request.Context(), "no se pudo firmar el token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo iniciar la sesión"})
		return
	}

	logger.Info(c.Request.Context(), "sesión iniciada",
		"username", user.Username,
		"agencia", user.Agencia,
	)

	c.JSON(http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z07:00"),
		Username:  user.Username,
		Agencia:   user.Agencia,
	})
}

// GetCurrentUser returns the session's identity as the panel header shows it.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"username": middleware.GetUsername(c),
		"agencia":  middleware.GetAgencia(c),
	})
}
