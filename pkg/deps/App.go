package deps

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Alwanly/attribute-poll/pkg/attribute"
	"github.com/Alwanly/attribute-poll/pkg/logger"
	"github.com/Alwanly/attribute-poll/pkg/middleware"
	"github.com/Alwanly/attribute-poll/pkg/poll"
)

// App carries the shared services handed to HTTP handlers.
type App struct {
	Fiber      *fiber.App
	Logger     *logger.CanonicalLogger
	Middleware *middleware.AuthMiddleware
	Store      attribute.Store
	Poller     poll.Poller
}
