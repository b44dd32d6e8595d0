package poll

import (
	"context"
	"errors"
	"sync"

	"github.com/Alwanly/attribute-poll/pkg/attribute"
	"github.com/Alwanly/attribute-poll/pkg/logger"
	"github.com/Alwanly/attribute-poll/pkg/mailbox"
	"github.com/Alwanly/attribute-poll/pkg/resolver"
)

var ErrAlreadyStarted = errors.New("poll: already started")

// AttributePoll implements the Poller interface. It owns the command mailbox
// and runs the engine against a subscription on the attribute store.
type AttributePoll struct {
	engine   *Engine
	store    attribute.Store
	commands *mailbox.Mailbox[Command]
	logger   *logger.CanonicalLogger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan error
	sub    *attribute.Subscription
}

var _ Poller = (*AttributePoll)(nil)

// New creates an AttributePoll. Commands sent before Start are kept and
// processed in order once the engine runs.
func New(store attribute.Store, registry resolver.Registry, cfg Config, opts ...Option) *AttributePoll {
	o := buildOptions(opts)
	if o.platform == nil {
		o.platform = SystemPlatform()
	}
	if o.queue == nil {
		o.queue = NewEntries()
	}
	return &AttributePoll{
		engine:   NewEngine(o.platform, o.queue, store, registry, cfg, opts...),
		store:    store,
		commands: mailbox.New[Command](),
		logger:   o.log.Component("attribute_poll"),
	}
}

// Start begins processing commands and store changes in the background
func (p *AttributePoll) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return ErrAlreadyStarted
	}

	p.sub = p.store.Subscribe(attribute.EventTypes(attribute.Updated, attribute.Deleted))
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan error, 1)

	go func(sub *attribute.Subscription, done chan<- error) {
		done <- p.engine.Run(runCtx, sub, p.commands.Out())
	}(p.sub, p.done)

	p.logger.Info("attribute poll started")
	return nil
}

// Stop gracefully stops the engine. Commands still queued are kept for a later Start.
func (p *AttributePoll) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel == nil {
		return nil
	}

	p.cancel()
	err := <-p.done
	p.sub.Close()
	p.cancel, p.done, p.sub = nil, nil, nil

	p.logger.Info("attribute poll stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close stops the engine and releases the command mailbox.
func (p *AttributePoll) Close() error {
	err := p.Stop()
	p.commands.Close()
	return err
}

func (p *AttributePoll) Send(cmd Command) {
	if !p.commands.Push(cmd) {
		p.logger.Warn("command dropped, poller closed", logger.String(logger.FieldCommand, cmd.Kind()))
	}
}

// Pending reports how many commands wait for the engine.
func (p *AttributePoll) Pending() int {
	return p.commands.Len()
}

func (p *AttributePoll) Register(a attribute.ID, interval uint32) {
	p.Send(RegisterCommand{Attribute: a, Interval: interval})
}

func (p *AttributePoll) Deregister(a attribute.ID) {
	p.Send(DeregisterCommand{Attribute: a})
}

func (p *AttributePoll) Schedule(a attribute.ID) {
	p.Send(ScheduleCommand{Attribute: a})
}

func (p *AttributePoll) Restart(a attribute.ID) {
	p.Send(RestartCommand{Attribute: a})
}

func (p *AttributePoll) Enable() {
	p.Send(EnableCommand{})
}

func (p *AttributePoll) Disable() {
	p.Send(DisableCommand{})
}

func (p *AttributePoll) PrintQueue() {
	p.Send(PrintQueueCommand{})
}
