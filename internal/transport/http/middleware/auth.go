package middleware

import (
	"net/http"
	"strings"

	"bug-lifecycle-tracker/internal/entities"
	"bug-lifecycle-tracker/internal/transport/http/dto"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const principalKey = "principal"

// TokenAuthenticator resolves a bearer token to the calling user.
type TokenAuthenticator interface {
	Authenticate(token string) (entities.Principal, error)
}

// Auth rejects requests without a valid bearer token and stores the caller
// for handlers.
func Auth(log *zap.SugaredLogger, authn TokenAuthenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return unauthorized(c, "missing bearer token")
		}

		principal, err := authn.Authenticate(strings.TrimSpace(token))
		if err != nil {
			log.Debugw("token rejected", "error", err, "path", c.Path())
			return unauthorized(c, "invalid or expired token")
		}
		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// Principal returns the caller stored by Auth. The zero value means no caller.
func Principal(c *fiber.Ctx) entities.Principal {
	p, _ := c.Locals(principalKey).(entities.Principal)
	return p
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusUnauthorized).JSON(dto.ErrorResponse{
		Success:    false,
		StatusCode: http.StatusUnauthorized,
		Message:    msg,
		Errors:     []string{dto.CodeUnauthenticated},
	})
}
