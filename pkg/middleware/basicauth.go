package middleware

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	authentication "github.com/Alwanly/attribute-poll/pkg/auth"
	"github.com/Alwanly/attribute-poll/pkg/wrapper"
)

type IAuthMiddleware interface {
	BasicAuthAdmin() fiber.Handler
}

type AuthMiddleware struct {
	Basic authentication.IBasicAuthService
}

var _ IAuthMiddleware = (*AuthMiddleware)(nil)

// mockery:ignore
type AuthConfig func(*AuthOpts)

type AuthOpts struct {
	*authentication.BasicAuthTConfig
}

func SetBasicAuth(basicAuthConfig *authentication.BasicAuthTConfig) AuthConfig {
	return func(o *AuthOpts) {
		o.BasicAuthTConfig = basicAuthConfig
	}
}

func NewAuthMiddleware(opts ...AuthConfig) *AuthMiddleware {
	var o AuthOpts
	for _, opt := range opts {
		opt(&o)
	}

	return &AuthMiddleware{
		Basic: authentication.NewBasicAuthService(o.BasicAuthTConfig),
	}
}

func (a *AuthMiddleware) BasicAuthAdmin() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		username, password := a.Basic.DecodeFromHeader(ctx.Get(fiber.HeaderAuthorization))
		if !a.Basic.ValidateAdmin(username, password) {
			return responseUnauthorized(ctx)
		}
		return ctx.Next()
	}
}

func responseUnauthorized(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="attribute-poll"`)
	return c.Status(http.StatusUnauthorized).JSON(wrapper.ResponseFailed(http.StatusUnauthorized, "invalid auth", nil))
}
