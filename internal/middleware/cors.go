package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CORSConfig lists the browser origins allowed to call the API. Localhost
// origins are always allowed outside production.
type CORSConfig struct {
	AllowedOrigins []string
	IsProduction   bool
}

// CORS answers preflights and sets CORS headers for allowed origins.
// Requests without an Origin header pass through untouched.
func CORS(cfg CORSConfig) fiber.Handler {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	wildcard := false
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			wildcard = true
		}
		allowed[strings.TrimRight(strings.ToLower(o), "/")] = struct{}{}
	}
	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		if origin == "" {
			return c.Next()
		}
		_, ok := allowed[strings.ToLower(origin)]
		if !ok && !wildcard && !(!cfg.IsProduction && isLocalOrigin(origin)) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Not allowed by CORS"})
		}
		setCORSHeaders(c, origin)
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func isLocalOrigin(origin string) bool {
	return strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")
}

func setCORSHeaders(c *fiber.Ctx, origin string) {
	c.Set("Access-Control-Allow-Origin", origin)
	c.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
	c.Set("Access-Control-Allow-Headers", "Content-Type, Accept, X-Trace-Id")
	c.Set("Access-Control-Expose-Headers", "X-Trace-Id")
	c.Set("Vary", "Origin")
}
