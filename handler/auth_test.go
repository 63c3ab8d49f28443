package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Sebas91ts/inmueble-panel-api/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authRouter() *gin.Engine {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:        "test-secret",
			TokenExpireHours: 24,
		},
		Users: []config.User{
			{Username: "ana", Password: "clave123", Agencia: "inmosur"},
		},
	}
	h := NewAuthHandler(cfg)

	router := gin.New()
	router.POST("/login", h.Login)
	router.GET("/me", func(c *gin.Context) {
		c.Set("username", "ana")
		c.Set("agencia", "inmosur")
		h.GetCurrentUser(c)
	})
	return router
}

func postLogin(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginEmiteTokenConAgencia(t *testing.T) {
	router := authRouter()

	w := postLogin(router, `{"username": "ana", "password": "clave123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Token == "" {
		t.Error("Expected token in response")
	}
	if response.Agencia != "inmosur" {
		t.Errorf("Expected agencia 'inmosur', got %q", response.Agencia)
	}
	if response.ExpiresAt == "" {
		t.Error("Expected expires_at in response")
	}
}

func TestLoginCredencialesInvalidas(t *testing.T) {
	router := authRouter()

	malUsuario := postLogin(router, `{"username": "nadie", "password": "clave123"}`)
	malClave := postLogin(router, `{"username": "ana", "password": "otra"}`)

	if malUsuario.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 para usuario inexistente, got %d", malUsuario.Code)
	}
	if malClave.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 para contraseña incorrecta, got %d", malClave.Code)
	}
	// A probing client must not be able to tell which field was wrong.
	if malUsuario.Body.String() != malClave.Body.String() {
		t.Errorf("Expected identical error bodies, got %q vs %q",
			malUsuario.Body.String(), malClave.Body.String())
	}
}

func TestLoginCamposFaltantes(t *testing.T) {
	router := authRouter()

	for _, body := range []string{
		`{"username": "ana"}`,
		`{"password": "clave123"}`,
		`no es json`,
	} {
		if w := postLogin(router, body); w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for %q, got %d", body, w.Code)
		}
	}
}

func TestGetCurrentUser(t *testing.T) {
	router := authRouter()

	req := httptest.NewRequest("GET", "/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var response map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["username"] != "ana" || response["agencia"] != "inmosur" {
		t.Errorf("Unexpected identity: %v", response)
	}
}
