package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	corsAllowHeaders = "authorization, x-client-info, apikey, content-type"
	corsAllowMethods = "GET,POST,DELETE,OPTIONS"
)

// ResolveOrigin picks the Access-Control-Allow-Origin value for a request.
// allowed is the parsed allow-list; nil means any origin.
func ResolveOrigin(requestOrigin string, allowed []string) string {
	if len(allowed) == 0 {
		if requestOrigin == "" {
			return "*"
		}
		return requestOrigin
	}

	if requestOrigin != "" {
		for _, o := range allowed {
			if o == requestOrigin {
				return requestOrigin
			}
		}
		// A localhost-only list is a dev default; deployed frontends still get through.
		if isProductionOrigin(requestOrigin) && onlyLocalhost(allowed) {
			return requestOrigin
		}
	}

	if allowed[0] == "" {
		return "*"
	}
	return allowed[0]
}

func isProductionOrigin(origin string) bool {
	return strings.HasPrefix(origin, "https://") ||
		strings.Contains(origin, "vercel.app") ||
		strings.Contains(origin, "netlify.app") ||
		strings.Contains(origin, "github.io")
}

func onlyLocalhost(allowed []string) bool {
	for _, o := range allowed {
		if !strings.Contains(o, "localhost") && !strings.Contains(o, "127.0.0.1") {
			return false
		}
	}
	return true
}

// corsMiddleware decorates every response and answers preflights without
// touching auth or routing.
func corsMiddleware(allowed []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, ResolveOrigin(c.Get(fiber.HeaderOrigin), allowed))
		c.Set(fiber.HeaderAccessControlAllowHeaders, corsAllowHeaders)
		c.Set(fiber.HeaderAccessControlAllowMethods, corsAllowMethods)
		if c.Method() == fiber.MethodOptions {
			return c.Status(fiber.StatusOK).SendString("ok")
		}
		return c.Next()
	}
}
