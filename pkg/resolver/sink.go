package resolver

import (
	"context"

	"github.com/Alwanly/attribute-poll/pkg/logger"
)

// LogSink records requests without forwarding them. Used when no device
// transport is configured.
type LogSink struct {
	Logger *logger.CanonicalLogger
}

func (s LogSink) Submit(_ context.Context, req Request) error {
	s.Logger.Info("resolve request",
		logger.Attribute(uint64(req.Attribute)),
		logger.AttributeType(uint32(req.Type)),
		logger.Int("frame_bytes", len(req.Frame)),
	)
	return nil
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, req Request) error

func (f SinkFunc) Submit(ctx context.Context, req Request) error {
	return f(ctx, req)
}
