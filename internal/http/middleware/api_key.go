package middleware

import (
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"
)

// APIKeyFromCtx extracts the authenticated key set by APIKeyMiddleware.
func APIKeyFromCtx(c echo.Context) (string, bool) {
	v := c.Get("api_key")
	key, ok := v.(string)
	return key, ok
}

// APIKeyMiddleware authenticates requests using the X-API-Key header against
// a static allow-list. An empty list disables the check (local development;
// token decoding and role checks belong to the upstream gateway).
func APIKeyMiddleware(keys []string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			allowed[k] = struct{}{}
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if len(allowed) == 0 {
				return next(c)
			}
			key := strings.TrimSpace(c.Request().Header.Get("X-API-Key"))
			if key == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing api key"})
			}
			if _, ok := allowed[key]; !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
			}
			c.Set("api_key", key)
			return next(c)
		}
	}
}
