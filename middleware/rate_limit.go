package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sebas91ts/inmueble-panel-api/pkg/logger"
)

// RateLimiter counts requests per caller over fixed windows. Authenticated
// panel traffic is keyed by agencia, so every browser tab of an agency
// shares one budget; unauthenticated traffic (login) falls back to the
// client IP. Windows expire per key, not globally.
type RateLimiter struct {
	mu      sync.Mutex
	ventana time.Duration
	limite  int
	cupos   map[string]*cupo
}

type cupo struct {
	usados int
	desde  time.Time
}

// NewRateLimiter creates a limiter allowing limite requests per ventana.
func NewRateLimiter(limite int, ventana time.Duration) *RateLimiter {
	return &RateLimiter{
		ventana: ventana,
		limite:  limite,
		cupos:   make(map[string]*cupo),
	}
}

// Permitir consumes one request from the key's window, reporting whether
// it still fits. Expired windows for other keys are pruned on the way.
func (rl *RateLimiter) Permitir(clave string) bool {
	ahora := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for k, c := range rl.cupos {
		if ahora.Sub(c.desde) > rl.ventana {
			delete(rl.cupos, k)
		}
	}

	c, ok := rl.cupos[clave]
	if !ok {
		rl.cupos[clave] = &cupo{usados: 1, desde: ahora}
		return true
	}
	if c.usados >= rl.limite {
		return false
	}
	c.usados++
	return true
}

// RateLimit rejects callers that exceed their request budget with a 429.
func RateLimit(limite int, ventana time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(limite, ventana)

	return func(c *gin.Context) {
		clave := GetAgencia(c)
		if clave == "" {
			clave = "ip:" + c.ClientIP()
		}

		if !limiter.Permitir(clave) {
			logger.Warn(c.Request.Context(), "límite de peticiones excedido",
				"clave", clave,
				"client_ip", c.ClientIP(),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Demasiadas peticiones. Intente de nuevo en unos momentos.",
			})
			return
		}

		c.Next()
	}
}
