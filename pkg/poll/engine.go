package poll

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Alwanly/attribute-poll/pkg/attribute"
	"github.com/Alwanly/attribute-poll/pkg/logger"
	"github.com/Alwanly/attribute-poll/pkg/resolver"
)

// Engine decides when each queued attribute is polled. All state is owned by
// the goroutine executing Run.
type Engine struct {
	platform Platform
	queue    Queue
	store    attribute.Store
	cfg      Config
	log      *logger.CanonicalLogger
	out      io.Writer
	observer Observer

	lastPoll uint64
	running  bool
}

// NewEngine registers the poll mark rule with registry and returns an engine
// that starts enabled.
func NewEngine(platform Platform, queue Queue, store attribute.Store, registry resolver.Registry, cfg Config, opts ...Option) *Engine {
	o := buildOptions(opts)
	e := &Engine{
		platform: platform,
		queue:    queue,
		store:    store,
		cfg:      cfg,
		log:      o.log.Component("poll_engine"),
		out:      o.out,
		observer: o.observer,
		running:  true,
	}

	if cfg.PollMarkType.Reserved() {
		e.log.Error("poll mark attribute type is reserved, polling will have no effect",
			logger.AttributeType(uint32(cfg.PollMarkType)))
	}

	registry.RegisterRule(cfg.PollMarkType, nil, markRule(store, e.log))
	return e
}

// sources are the engine's inputs; a closed input is set to nil so it is never selected again.
type sources struct {
	commands <-chan Command
	changes  <-chan attribute.Event
}

// Run multiplexes commands, store changes and the poll timer until ctx is
// cancelled. Exactly one input is dispatched per iteration.
func (e *Engine) Run(ctx context.Context, watcher Watcher, commands <-chan Command) error {
	src := &sources{commands: commands, changes: watcher.Changes()}
	e.log.Info("poll engine started",
		logger.Uint32("backoff_seconds", e.cfg.Backoff),
		logger.Uint32("default_interval_seconds", e.cfg.DefaultInterval),
		logger.AttributeType(uint32(e.cfg.PollMarkType)),
	)

	for {
		if err := e.iterate(ctx, src); err != nil {
			e.log.Info("poll engine stopped")
			return err
		}
		e.observer.QueueLength(e.queue.Len())
	}
}

func (e *Engine) iterate(ctx context.Context, src *sources) error {
	timer := e.platform.NewTimer()
	defer timer.Stop()
	timeout := e.arm(timer)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case cmd, ok := <-src.commands:
			if !ok {
				e.log.Warn("command channel closed")
				src.commands = nil
				continue
			}
			e.onHandleCommand(cmd)
			return nil

		case ev, ok := <-src.changes:
			if !ok {
				e.log.Warn("attribute watcher closed")
				src.changes = nil
				continue
			}
			if !e.queue.Contains(ev.Attribute) {
				continue
			}
			e.onHandleAttributeUpdate(ev)
			return nil

		case <-timeout:
			e.doPoll()
			return nil
		}
	}
}

// arm starts timer for the earliest queued deadline. The returned channel is
// nil, and so never ready, while the engine is disabled or the queue is empty.
func (e *Engine) arm(timer Timer) <-chan struct{} {
	if !e.running {
		return nil
	}
	_, upcoming, ok := e.queue.Upcoming()
	if !ok {
		return nil
	}
	wait := calculatePollTime(uint64(e.cfg.Backoff), upcoming, e.platform.ClockSeconds(), e.lastPoll)
	e.log.Debug("poll timer armed", logger.Uint64(logger.FieldTimeout, wait))
	return timer.OnTimeout(time.Duration(wait) * time.Second)
}

// calculatePollTime returns the seconds until the next poll may run: the later
// of the upcoming deadline and lastPoll+backoff, or 1 when that is already past.
func calculatePollTime(backoff, upcoming, now, lastPoll uint64) uint64 {
	if lastPoll > now {
		panic(fmt.Sprintf("poll: last poll %d is ahead of clock %d", lastPoll, now))
	}
	deadline := max(upcoming, lastPoll+backoff)
	if deadline < now {
		return 1
	}
	return deadline - now
}

func (e *Engine) doPoll() {
	a, interval, ok := e.queue.PopNext()
	if !ok {
		e.log.Error("poll timer fired but the queue is empty")
		e.observer.PollCompleted(PollQueueEmpty)
		return
	}
	log := e.log.WithAttribute(uint64(a))

	mark, err := e.store.ChildByType(a, e.cfg.PollMarkType)
	if err != nil {
		log.WithError(err).Warn("failed to look up poll mark, attribute dropped from queue")
		e.observer.PollCompleted(PollMarkFailed)
		return
	}
	if mark == attribute.InvalidID {
		if _, err := e.store.Add(a, e.cfg.PollMarkType, nil, nil); err != nil {
			log.WithError(err).Warn("failed to create poll mark, attribute dropped from queue")
			e.observer.PollCompleted(PollMarkFailed)
			return
		}
	} else if err := e.store.SetReported(mark, nil); err != nil {
		log.WithError(err).Warn("failed to clear poll mark, attribute dropped from queue")
		e.observer.PollCompleted(PollMarkFailed)
		return
	}

	now := e.platform.ClockSeconds()
	e.lastPoll = now
	e.queue.Queue(a, interval, now)
	e.observer.PollCompleted(PollMarked)
	log.Debug("attribute polled", logger.Uint32(logger.FieldInterval, interval))
}

func (e *Engine) onHandleCommand(cmd Command) {
	now := e.platform.ClockSeconds()
	e.observer.CommandHandled(cmd.Kind())

	switch c := cmd.(type) {
	case RegisterCommand:
		interval := defaultIfZero(e.cfg, c.Interval)
		e.queue.Queue(c.Attribute, interval, now)
		e.log.Debug("attribute registered", logger.Attribute(uint64(c.Attribute)), logger.Uint32(logger.FieldInterval, interval))
	case DeregisterCommand:
		if !e.queue.Remove(c.Attribute) {
			e.log.Warn("deregister of an attribute that is not queued", logger.Attribute(uint64(c.Attribute)))
		}
	case ScheduleCommand:
		e.queue.Queue(c.Attribute, 0, now)
		e.log.Debug("attribute scheduled", logger.Attribute(uint64(c.Attribute)))
	case RestartCommand:
		if !e.queue.Requeue(c.Attribute, now) {
			e.log.Warn("restart of an attribute that is not queued", logger.Attribute(uint64(c.Attribute)))
		}
	case EnableCommand:
		e.running = true
		e.log.Info("polling enabled")
	case DisableCommand:
		e.running = false
		e.log.Info("polling disabled")
	case PrintQueueCommand:
		dump := e.queue.String()
		fmt.Fprintln(e.out, dump)
		e.log.Debug("poll queue", logger.String("queue", dump))
	default:
		e.log.Error("unknown poll command", logger.String(logger.FieldCommand, fmt.Sprintf("%T", cmd)))
	}
}

func (e *Engine) onHandleAttributeUpdate(ev attribute.Event) {
	e.observer.EventHandled(ev.EventType)

	switch ev.EventType {
	case attribute.Deleted:
		if !e.queue.Remove(ev.Attribute) {
			e.log.Warn("deleted attribute was not queued", logger.Attribute(uint64(ev.Attribute)))
		}
	case attribute.Updated:
		e.queue.Requeue(ev.Attribute, e.platform.ClockSeconds())
	default:
		e.log.Error("unexpected attribute event",
			logger.Attribute(uint64(ev.Attribute)),
			logger.String(logger.FieldEventType, ev.EventType.String()))
	}
}
