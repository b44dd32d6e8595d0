package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Alwanly/attribute-poll/internal/server/poll/dto"
	"github.com/Alwanly/attribute-poll/internal/server/poll/repository"
	"github.com/Alwanly/attribute-poll/internal/server/poll/usecase"
	"github.com/Alwanly/attribute-poll/pkg/attribute"
	"github.com/Alwanly/attribute-poll/pkg/deps"
	"github.com/Alwanly/attribute-poll/pkg/logger"
	"github.com/Alwanly/attribute-poll/pkg/poll"
	"github.com/Alwanly/attribute-poll/pkg/validator"
	"github.com/Alwanly/attribute-poll/pkg/wrapper"
)

type Handler struct {
	Logger  *logger.CanonicalLogger
	UseCase usecase.UseCaseInterface
}

func NewHandler(d deps.App) *Handler {
	repo := repository.NewRepository(d.Store, d.Poller)

	uc := usecase.NewUseCase(usecase.UseCase{
		Repo:   repo,
		Logger: d.Logger,
	})

	h := &Handler{
		Logger:  d.Logger,
		UseCase: uc,
	}

	d.Fiber.Get("/health", h.health)

	// Poll engine commands (admin only)
	pollRoutes := d.Fiber.Group("/poll", d.Middleware.BasicAuthAdmin())
	pollRoutes.Post("/register", h.register)
	pollRoutes.Post("/enable", h.enable)
	pollRoutes.Post("/disable", h.disable)
	pollRoutes.Post("/print", h.printQueue)
	pollRoutes.Post("/:id/schedule", h.schedule)
	pollRoutes.Post("/:id/restart", h.restart)
	pollRoutes.Delete("/:id", h.deregister)

	d.Fiber.Post("/attributes", d.Middleware.BasicAuthAdmin(), h.createAttribute)
	d.Fiber.Get("/attributes/:id", h.getAttribute)
	d.Fiber.Delete("/attributes/:id", d.Middleware.BasicAuthAdmin(), h.deleteAttribute)

	return h
}

func respond(c *fiber.Ctx, res wrapper.JSONResult) error {
	return c.Status(res.Code).JSON(res)
}

func badRequest(c *fiber.Ctx, message string, data interface{}) error {
	return respond(c, wrapper.ResponseFailed(fiber.StatusBadRequest, message, data))
}

func attributeParam(c *fiber.Ctx) (attribute.ID, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		logger.AddToContext(c.UserContext(), logger.String("id_param", c.Params("id")))
		return attribute.InvalidID, false
	}
	return attribute.ID(id), true
}

// health godoc
// @Summary      Health check
// @Description  Reports service health and the number of commands waiting for the poll engine
// @Tags         health
// @Produce      json
// @Success      200 {object} wrapper.JSONResult{data=dto.HealthResponse}
// @Router       /health [get]
func (h *Handler) health(c *fiber.Ctx) error {
	return respond(c, h.UseCase.Health(c.UserContext()))
}

// register godoc
// @Summary      Register an attribute for polling
// @Description  Adds the attribute to the poll queue or updates its interval. An interval of 0 selects the default.
// @Tags         poll
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterPollRequest true "Attribute and interval"
// @Success      202 {object} wrapper.JSONResult{data=dto.CommandAcceptedResponse}
// @Failure      400 {object} wrapper.JSONResult "Invalid request body or validation error"
// @Router       /poll/register [post]
// @Security     BasicAuth
func (h *Handler) register(c *fiber.Ctx) error {
	logger.AddToContext(c.UserContext(), logger.String(logger.FieldOperation, "register_poll"))

	req := new(dto.RegisterPollRequest)
	if err := c.BodyParser(req); err != nil {
		logger.AddToContext(c.UserContext(), logger.Err(err))
		return badRequest(c, "invalid request body", nil)
	}
	if err := validator.ValidateStruct(req); err != nil {
		logger.AddToContext(c.UserContext(), logger.Err(err))
		return badRequest(c, "validation failed", validator.TranslateError(err))
	}

	return respond(c, h.UseCase.Command(c.UserContext(), poll.RegisterCommand{
		Attribute: attribute.ID(req.Attribute),
		Interval:  req.IntervalSeconds,
	}))
}

// deregister godoc
// @Summary      Stop polling an attribute
// @Tags         poll
// @Produce      json
// @Param        id path int true "Attribute ID"
// @Success      202 {object} wrapper.JSONResult{data=dto.CommandAcceptedResponse}
// @Failure      400 {object} wrapper.JSONResult "Invalid attribute id"
// @Router       /poll/{id} [delete]
// @Security     BasicAuth
func (h *Handler) deregister(c *fiber.Ctx) error {
	id, ok := attributeParam(c)
	if !ok {
		return badRequest(c, "invalid attribute id", nil)
	}
	return respond(c, h.UseCase.Command(c.UserContext(), poll.DeregisterCommand{Attribute: id}))
}

// schedule godoc
// @Summary      Poll an attribute as soon as possible
// @Description  Moves the attribute to the front of the queue; the backoff still applies
// @Tags         poll
// @Produce      json
// @Param        id path int true "Attribute ID"
// @Success      202 {object} wrapper.JSONResult{data=dto.CommandAcceptedResponse}
// @Failure      400 {object} wrapper.JSONResult "Invalid attribute id"
// @Router       /poll/{id}/schedule [post]
// @Security     BasicAuth
func (h *Handler) schedule(c *fiber.Ctx) error {
	id, ok := attributeParam(c)
	if !ok {
		return badRequest(c, "invalid attribute id", nil)
	}
	return respond(c, h.UseCase.Command(c.UserContext(), poll.ScheduleCommand{Attribute: id}))
}

// restart godoc
// @Summary      Restart an attribute's poll interval from now
// @Tags         poll
// @Produce      json
// @Param        id path int true "Attribute ID"
// @Success      202 {object} wrapper.JSONResult{data=dto.CommandAcceptedResponse}
// @Failure      400 {object} wrapper.JSONResult "Invalid attribute id"
// @Router       /poll/{id}/restart [post]
// @Security     BasicAuth
func (h *Handler) restart(c *fiber.Ctx) error {
	id, ok := attributeParam(c)
	if !ok {
		return badRequest(c, "invalid attribute id", nil)
	}
	return respond(c, h.UseCase.Command(c.UserContext(), poll.RestartCommand{Attribute: id}))
}

// enable godoc
// @Summary      Resume polling
// @Tags         poll
// @Produce      json
// @Success      202 {object} wrapper.JSONResult{data=dto.CommandAcceptedResponse}
// @Router       /poll/enable [post]
// @Security     BasicAuth
func (h *Handler) enable(c *fiber.Ctx) error {
	return respond(c, h.UseCase.Command(c.UserContext(), poll.EnableCommand{}))
}

// disable godoc
// @Summary      Pause polling
// @Description  The queue is kept; commands are still applied while paused
// @Tags         poll
// @Produce      json
// @Success      202 {object} wrapper.JSONResult{data=dto.CommandAcceptedResponse}
// @Router       /poll/disable [post]
// @Security     BasicAuth
func (h *Handler) disable(c *fiber.Ctx) error {
	return respond(c, h.UseCase.Command(c.UserContext(), poll.DisableCommand{}))
}

// printQueue godoc
// @Summary      Dump the poll queue to the service output
// @Tags         poll
// @Produce      json
// @Success      202 {object} wrapper.JSONResult{data=dto.CommandAcceptedResponse}
// @Router       /poll/print [post]
// @Security     BasicAuth
func (h *Handler) printQueue(c *fiber.Ctx) error {
	return respond(c, h.UseCase.Command(c.UserContext(), poll.PrintQueueCommand{}))
}

// createAttribute godoc
// @Summary      Create an attribute
// @Description  Adds a node with unset values under parent (0 selects the root)
// @Tags         attributes
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateAttributeRequest true "Parent and type"
// @Success      201 {object} wrapper.JSONResult{data=dto.AttributeResponse}
// @Failure      400 {object} wrapper.JSONResult "Invalid request or reserved type"
// @Failure      404 {object} wrapper.JSONResult "Parent not found"
// @Router       /attributes [post]
// @Security     BasicAuth
func (h *Handler) createAttribute(c *fiber.Ctx) error {
	logger.AddToContext(c.UserContext(), logger.String(logger.FieldOperation, "create_attribute"))

	req := new(dto.CreateAttributeRequest)
	if err := c.BodyParser(req); err != nil {
		logger.AddToContext(c.UserContext(), logger.Err(err))
		return badRequest(c, "invalid request body", nil)
	}
	if err := validator.ValidateStruct(req); err != nil {
		logger.AddToContext(c.UserContext(), logger.Err(err))
		return badRequest(c, "validation failed", validator.TranslateError(err))
	}
	return respond(c, h.UseCase.CreateAttribute(c.UserContext(), req))
}

// getAttribute godoc
// @Summary      Describe an attribute
// @Tags         attributes
// @Produce      json
// @Param        id path int true "Attribute ID"
// @Success      200 {object} wrapper.JSONResult{data=dto.AttributeResponse}
// @Failure      404 {object} wrapper.JSONResult "Attribute not found"
// @Router       /attributes/{id} [get]
func (h *Handler) getAttribute(c *fiber.Ctx) error {
	id, ok := attributeParam(c)
	if !ok {
		return badRequest(c, "invalid attribute id", nil)
	}
	return respond(c, h.UseCase.GetAttribute(c.UserContext(), id))
}

// deleteAttribute godoc
// @Summary      Delete an attribute and its children
// @Tags         attributes
// @Produce      json
// @Param        id path int true "Attribute ID"
// @Success      200 {object} wrapper.JSONResult
// @Failure      400 {object} wrapper.JSONResult "Root cannot be deleted"
// @Failure      404 {object} wrapper.JSONResult "Attribute not found"
// @Router       /attributes/{id} [delete]
// @Security     BasicAuth
func (h *Handler) deleteAttribute(c *fiber.Ctx) error {
	id, ok := attributeParam(c)
	if !ok {
		return badRequest(c, "invalid attribute id", nil)
	}
	return respond(c, h.UseCase.DeleteAttribute(c.UserContext(), id))
}
