package usecase

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/Alwanly/attribute-poll/internal/server/poll/dto"
	"github.com/Alwanly/attribute-poll/internal/server/poll/repository"
	"github.com/Alwanly/attribute-poll/pkg/attribute"
	"github.com/Alwanly/attribute-poll/pkg/logger"
	"github.com/Alwanly/attribute-poll/pkg/poll"
	"github.com/Alwanly/attribute-poll/pkg/wrapper"
)

const serviceName = "attribute-poll"

type UseCase struct {
	Repo   repository.IRepository
	Logger *logger.CanonicalLogger
}

type UseCaseInterface interface {
	Health(ctx context.Context) wrapper.JSONResult
	Command(ctx context.Context, cmd poll.Command) wrapper.JSONResult
	GetAttribute(ctx context.Context, id attribute.ID) wrapper.JSONResult
	CreateAttribute(ctx context.Context, req *dto.CreateAttributeRequest) wrapper.JSONResult
	DeleteAttribute(ctx context.Context, id attribute.ID) wrapper.JSONResult
}

var _ UseCaseInterface = (*UseCase)(nil)

func NewUseCase(uc UseCase) *UseCase {
	return &uc
}

func (uc *UseCase) Health(_ context.Context) wrapper.JSONResult {
	return wrapper.ResponseSuccess(http.StatusOK, dto.HealthResponse{
		Status:          "healthy",
		Service:         serviceName,
		PendingCommands: uc.Repo.PendingCommands(),
	})
}

// Command queues cmd for the engine. The engine validates attributes itself,
// so acceptance only means the command was queued.
func (uc *UseCase) Command(ctx context.Context, cmd poll.Command) wrapper.JSONResult {
	correlationID := uuid.NewString()
	logger.AddToContext(ctx,
		logger.String(logger.FieldCommand, cmd.Kind()),
		logger.String(logger.FieldCorrelationID, correlationID),
	)

	uc.Repo.SendCommand(cmd)

	return wrapper.ResponseSuccess(http.StatusAccepted, dto.CommandAcceptedResponse{
		Command:       cmd.Kind(),
		Attribute:     uint64(commandAttribute(cmd)),
		CorrelationID: correlationID,
	})
}

func commandAttribute(cmd poll.Command) attribute.ID {
	switch c := cmd.(type) {
	case poll.RegisterCommand:
		return c.Attribute
	case poll.DeregisterCommand:
		return c.Attribute
	case poll.ScheduleCommand:
		return c.Attribute
	case poll.RestartCommand:
		return c.Attribute
	default:
		return attribute.InvalidID
	}
}

func (uc *UseCase) GetAttribute(ctx context.Context, id attribute.ID) wrapper.JSONResult {
	logger.AddToContext(ctx, logger.Attribute(uint64(id)))
	res, err := uc.Repo.GetAttribute(id)
	if err != nil {
		return uc.failed(ctx, err)
	}
	return wrapper.ResponseSuccess(http.StatusOK, res)
}

func (uc *UseCase) CreateAttribute(ctx context.Context, req *dto.CreateAttributeRequest) wrapper.JSONResult {
	parent := attribute.ID(req.Parent)
	if parent == attribute.InvalidID {
		parent = uc.Repo.Root()
	}

	id, err := uc.Repo.CreateAttribute(parent, attribute.Type(req.Type))
	if err != nil {
		return uc.failed(ctx, err)
	}
	logger.AddToContext(ctx, logger.Attribute(uint64(id)), logger.AttributeType(req.Type))

	res, err := uc.Repo.GetAttribute(id)
	if err != nil {
		return uc.failed(ctx, err)
	}
	return wrapper.ResponseSuccess(http.StatusCreated, res)
}

func (uc *UseCase) DeleteAttribute(ctx context.Context, id attribute.ID) wrapper.JSONResult {
	logger.AddToContext(ctx, logger.Attribute(uint64(id)))
	if err := uc.Repo.DeleteAttribute(id); err != nil {
		return uc.failed(ctx, err)
	}
	return wrapper.ResponseSuccess(http.StatusOK, nil)
}

func (uc *UseCase) failed(ctx context.Context, err error) wrapper.JSONResult {
	logger.AddToContext(ctx, logger.Err(err))

	switch {
	case errors.Is(err, attribute.ErrStaleOrNonExisting):
		return wrapper.ResponseFailed(http.StatusNotFound, "attribute not found", nil)
	case errors.Is(err, attribute.ErrReservedType),
		errors.Is(err, attribute.ErrRootDelete),
		errors.Is(err, attribute.ErrInvalidStorageType):
		return wrapper.ResponseFailed(http.StatusBadRequest, err.Error(), nil)
	default:
		uc.Logger.WithError(err).Error("attribute store operation failed")
		return wrapper.ResponseFailed(http.StatusInternalServerError, "internal error", nil)
	}
}
