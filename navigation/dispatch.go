package navigation

import (
	"context"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// MessageKind identifies a decoded inbound message.
type MessageKind uint8

// Inbound message kinds.
const (
	MessagePose MessageKind = iota
	MessageObstacle
	MessageGoal
	MessageAbort
)

func (k MessageKind) String() string {
	switch k {
	case MessagePose:
		return "pose"
	case MessageObstacle:
		return "obstacle"
	case MessageGoal:
		return "goal"
	case MessageAbort:
		return "abort"
	}
	return "unknown"
}

// Message is a decoded inbound message. Which fields are meaningful depends on Kind.
type Message struct {
	Kind MessageKind
	// Position is the vehicle position for pose messages, the obstacle for obstacle messages and
	// the target for goal messages.
	Position r3.Vector
	Heading  float64
	Speed    float64
}

// Handler processes one message.
type Handler func(ctx context.Context, msg Message) error

// Dispatcher routes messages to the handler registered for their kind.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[MessageKind]Handler
}

// NewDispatcher returns a dispatcher with no handlers.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: map[MessageKind]Handler{}}
}

// NewNavigatorDispatcher returns a dispatcher feeding poses, obstacles, goals and aborts to n.
func NewNavigatorDispatcher(n *Navigator) *Dispatcher {
	d := NewDispatcher()
	d.Register(MessagePose, func(ctx context.Context, msg Message) error {
		n.UpdatePose(msg.Position, msg.Heading, msg.Speed)
		return nil
	})
	d.Register(MessageObstacle, func(ctx context.Context, msg Message) error {
		if !n.Observe(msg.Position) {
			return errors.Errorf("obstacle %v could not be placed on the map", msg.Position)
		}
		return nil
	})
	d.Register(MessageGoal, func(ctx context.Context, msg Message) error {
		n.SetGoal(msg.Position)
		return nil
	})
	d.Register(MessageAbort, func(ctx context.Context, msg Message) error {
		return n.Abort(ctx)
	})
	return d
}

// Register installs h for kind, replacing any previous handler.
func (d *Dispatcher) Register(kind MessageKind, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = h
}

// Dispatch hands msg to its handler.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) error {
	d.mu.RLock()
	h, ok := d.handlers[msg.Kind]
	d.mu.RUnlock()
	if !ok {
		return errors.Errorf("no handler for %s message", msg.Kind)
	}
	return errors.Wrapf(h(ctx, msg), "handling %s message", msg.Kind)
}
