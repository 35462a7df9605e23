package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"pilketos/internal/auth"
	"pilketos/internal/model"
)

const (
	// UserIDLocalKey holds the authenticated user's id in Fiber's context locals.
	UserIDLocalKey = "user_id"
	// RoleLocalKey holds the authenticated user's model.Role.
	RoleLocalKey = "role"
)

// TokenVerifier validates a bearer token.
type TokenVerifier interface {
	Parse(raw string) (*auth.Claims, error)
}

// StreamTokenParam is the query parameter AuthenticateStream reads the token from.
const StreamTokenParam = "access_token"

// Authenticate requires a valid "Authorization: Bearer <token>" header and stores
// the subject and role in locals.
func Authenticate(v TokenVerifier) fiber.Handler {
	return authenticate(v, false)
}

// AuthenticateStream is Authenticate for EventSource routes. EventSource cannot
// set headers, so the token may also come from the access_token query parameter.
func AuthenticateStream(v TokenVerifier) fiber.Handler {
	return authenticate(v, true)
}

func authenticate(v TokenVerifier, allowQuery bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := bearerToken(c.Get(fiber.HeaderAuthorization))
		if raw == "" && allowQuery {
			raw = c.Query(StreamTokenParam)
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}
		claims, err := v.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}
		c.Locals(UserIDLocalKey, claims.Subject)
		c.Locals(RoleLocalKey, claims.Role)
		return c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireRole lets the request through only when Authenticate stored one of roles.
func RequireRole(roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(RoleLocalKey).(model.Role)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "insufficient role")
	}
}

// UserID returns the authenticated user's id.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDLocalKey).(string)
	return id
}
