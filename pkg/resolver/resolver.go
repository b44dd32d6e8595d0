// Package resolver turns "this attribute needs a value" into work: it runs
// registered per-type rules and forwards device read requests to a Sink.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Alwanly/attribute-poll/pkg/attribute"
	"github.com/Alwanly/attribute-poll/pkg/logger"
)

type Status int

const (
	StatusOK Status = iota
	// StatusAlreadyExists means the rule handled the attribute without producing a frame.
	StatusAlreadyExists
	StatusFail
	StatusNotSupported
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusAlreadyExists:
		return "already_exists"
	case StatusFail:
		return "fail"
	case StatusNotSupported:
		return "not_supported"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Rule is invoked with the attribute being resolved. The payload is a frame
// to send to the device, if any.
type Rule func(a attribute.ID) (Status, []byte, error)

// Registry accepts rules keyed by attribute type.
type Registry interface {
	RegisterRule(t attribute.Type, set, get Rule)
}

var ErrNoRule = errors.New("resolver: no rule registered for attribute type")

// Request is handed to the Sink when an attribute needs a device transaction.
type Request struct {
	Attribute attribute.ID   `json:"attribute"`
	Type      attribute.Type `json:"type"`
	Frame     []byte         `json:"frame,omitempty"`
}

type Sink interface {
	Submit(ctx context.Context, req Request) error
}

// Observer receives rule outcomes. Implementations must not block.
type Observer interface {
	RuleExecuted(t attribute.Type, status Status)
	RequestSubmitted(err error)
}

type rulePair struct {
	set Rule
	get Rule
}

type Resolver struct {
	store    attribute.Store
	sink     Sink
	log      *logger.CanonicalLogger
	observer Observer

	mu    sync.RWMutex
	rules map[attribute.Type]rulePair
}

var _ Registry = (*Resolver)(nil)

type Option func(*Resolver)

func WithLogger(log *logger.CanonicalLogger) Option {
	return func(r *Resolver) { r.log = log }
}

func WithObserver(o Observer) Option {
	return func(r *Resolver) { r.observer = o }
}

func New(store attribute.Store, sink Sink, opts ...Option) *Resolver {
	r := &Resolver{
		store:    store,
		sink:     sink,
		log:      logger.NewNop(),
		observer: nopObserver{},
		rules:    make(map[attribute.Type]rulePair),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.Component("resolver")
	return r
}

// RegisterRule replaces any rules previously registered for t.
func (r *Resolver) RegisterRule(t attribute.Type, set, get Rule) {
	r.mu.Lock()
	r.rules[t] = rulePair{set: set, get: get}
	r.mu.Unlock()
	r.log.Debug("rule registered", logger.AttributeType(uint32(t)))
}

func (r *Resolver) rule(t attribute.Type) (rulePair, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.rules[t]
	return p, ok
}

// Resolve runs the get rule for a's type.
func (r *Resolver) Resolve(a attribute.ID) (Status, []byte, error) {
	t, err := r.store.TypeOf(a)
	if err != nil {
		return StatusFail, nil, err
	}
	p, ok := r.rule(t)
	if !ok || p.get == nil {
		return StatusNotSupported, nil, fmt.Errorf("%w: %s", ErrNoRule, t)
	}
	status, frame, err := p.get(a)
	r.observer.RuleExecuted(t, status)
	return status, frame, err
}

// Apply runs the set rule for a's type.
func (r *Resolver) Apply(a attribute.ID) (Status, []byte, error) {
	t, err := r.store.TypeOf(a)
	if err != nil {
		return StatusFail, nil, err
	}
	p, ok := r.rule(t)
	if !ok || p.set == nil {
		return StatusNotSupported, nil, fmt.Errorf("%w: %s", ErrNoRule, t)
	}
	status, frame, err := p.set(a)
	r.observer.RuleExecuted(t, status)
	return status, frame, err
}

// Run resolves attributes as their reported values become unset, until ctx is done.
// Attributes left unresolved by a previous process are picked up first.
func (r *Resolver) Run(ctx context.Context) error {
	sub := r.store.Subscribe(Triggers)
	defer sub.Close()
	if err := r.Recover(ctx); err != nil {
		return err
	}
	return r.Serve(ctx, sub.Changes())
}

// Recover walks the tree from the root and handles every node whose reported
// value is unset as if it had just been created. Pending poll marks written
// before a restart run their rule here. Subscribe before calling it so that
// changes made during the walk are not lost.
func (r *Resolver) Recover(ctx context.Context) error {
	pending := 0
	stack := []attribute.ID{r.store.Root()}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := r.store.Children(id)
		if err != nil {
			// removed while walking
			continue
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
		if id == r.store.Root() {
			continue
		}

		set, err := r.store.IsReportedSet(id)
		if err != nil || set {
			continue
		}
		t, err := r.store.TypeOf(id)
		if err != nil {
			continue
		}
		pending++
		r.handle(ctx, attribute.Event{
			Attribute:  id,
			Type:       t,
			EventType:  attribute.Created,
			ValueState: attribute.DesiredOrReported,
		})
	}
	r.log.Info("recovered unresolved attributes", logger.Int("count", pending))
	return nil
}

// Triggers selects the store events Serve reacts to.
var Triggers = attribute.EventTypes(attribute.Created, attribute.Updated)

// Serve consumes already subscribed store events.
func (r *Resolver) Serve(ctx context.Context, changes <-chan attribute.Event) error {
	r.log.Info("resolver started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info("resolver stopped")
			return ctx.Err()
		case ev, ok := <-changes:
			if !ok {
				return nil
			}
			r.handle(ctx, ev)
		}
	}
}

func (r *Resolver) handle(ctx context.Context, ev attribute.Event) {
	if ev.ValueState == attribute.Desired {
		return
	}
	set, err := r.store.IsReportedSet(ev.Attribute)
	if err != nil || set {
		// deleted since the event was published, or nothing to resolve
		return
	}

	log := r.log.WithAttribute(uint64(ev.Attribute))
	if p, ok := r.rule(ev.Type); ok && p.get != nil {
		status, frame, err := r.Resolve(ev.Attribute)
		if err != nil {
			log.WithError(err).Warn("get rule failed", logger.String("status", status.String()))
			return
		}
		log.Debug("get rule executed", logger.String("status", status.String()))
		if status == StatusOK && len(frame) > 0 {
			r.submit(ctx, log, Request{Attribute: ev.Attribute, Type: ev.Type, Frame: frame})
		}
		return
	}

	// Nodes without a rule only need a read once an existing value is invalidated.
	if ev.EventType == attribute.Updated {
		r.submit(ctx, log, Request{Attribute: ev.Attribute, Type: ev.Type})
	}
}

func (r *Resolver) submit(ctx context.Context, log *logger.CanonicalLogger, req Request) {
	err := r.sink.Submit(ctx, req)
	r.observer.RequestSubmitted(err)
	if err != nil {
		log.WithError(err).Warn("failed to submit resolve request")
	}
}

type nopObserver struct{}

func (nopObserver) RuleExecuted(attribute.Type, Status) {}
func (nopObserver) RequestSubmitted(error)              {}
