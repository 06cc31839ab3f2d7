package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// authMiddleware checks for a valid bearer token
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if auth == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authorization required"})
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
		}

		var userID string
		var expiresAt time.Time
		err := s.db.QueryRow(`
			SELECT user_id, expires_at FROM auth_tokens WHERE token = $1`,
			token,
		).Scan(&userID, &expiresAt)

		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		}

		if time.Now().After(expiresAt) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "token expired"})
		}

		c.Set("user_id", userID)
		return next(c)
	}
}

// visitorLimiter tracks a rate limiter per client IP
type visitorLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newVisitorLimiter() *visitorLimiter {
	v := &visitorLimiter{visitors: make(map[string]*visitor)}
	go v.cleanup()
	return v
}

func (v *visitorLimiter) get(ip string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()

	vis, ok := v.visitors[ip]
	if !ok {
		// 1 request per 2 seconds with a burst of 5
		vis = &visitor{limiter: rate.NewLimiter(rate.Every(2*time.Second), 5)}
		v.visitors[ip] = vis
	}
	vis.lastSeen = time.Now()
	return vis.limiter
}

func (v *visitorLimiter) cleanup() {
	for range time.Tick(time.Minute) {
		v.mu.Lock()
		for ip, vis := range v.visitors {
			if time.Since(vis.lastSeen) > 10*time.Minute {
				delete(v.visitors, ip)
			}
		}
		v.mu.Unlock()
	}
}

// rateLimitMiddleware throttles credential guessing on the auth endpoints
func (s *Server) rateLimitMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.visitors.get(c.RealIP()).Allow() {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		}
		return next(c)
	}
}
