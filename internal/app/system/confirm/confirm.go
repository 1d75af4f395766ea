// Package confirm holds the single pending confirmable action per actor.
//
// A delete request never runs directly. It is parked here with a token and a
// human-readable prompt; only a later confirm call carrying that token runs
// it. Parking a new action for the same actor replaces the old one.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/pastoralhub/internal/app/policy/deletionpolicy"
	"github.com/google/uuid"
)

var (
	// ErrNoPending is returned when the actor has nothing awaiting confirmation.
	ErrNoPending = errors.New("no action awaiting confirmation")
	// ErrTokenMismatch is returned when the token does not match the pending
	// action; the pending action is left in place.
	ErrTokenMismatch = errors.New("confirmation token does not match the pending action")
	// ErrNoExecutor is returned when no executor handles the action's kind.
	ErrNoExecutor = errors.New("no executor for action kind")
	// ErrRefused is wrapped by executors that re-check a guard at execution
	// time and find it no longer holds.
	ErrRefused = errors.New("action refused")
)

// Refuse returns an error wrapping ErrRefused with reason as its message.
func Refuse(reason string) error {
	return &refusal{reason: reason}
}

type refusal struct{ reason string }

func (e *refusal) Error() string        { return e.reason }
func (e *refusal) Is(target error) bool { return target == ErrRefused }

// Action is a parked request.
type Action struct {
	Token     string              `json:"token"`
	ActorID   string              `json:"actor_id"`
	Kind      deletionpolicy.Kind `json:"kind"`
	TargetID  string              `json:"target_id"`
	Tier      deletionpolicy.Tier `json:"tier"`
	Message   string              `json:"message"`
	CreatedAt time.Time           `json:"created_at"`
	ExpiresAt time.Time           `json:"expires_at"`
}

// Store keeps at most one Action per actor.
type Store interface {
	// Put replaces whatever the actor had pending.
	Put(ctx context.Context, a Action, ttl time.Duration) error
	// Peek returns the pending action without removing it.
	Peek(ctx context.Context, actorID string) (Action, error)
	// Take removes and returns the pending action if token matches.
	Take(ctx context.Context, actorID, token string) (Action, error)
	// Cancel drops the pending action. No error when nothing is pending.
	Cancel(ctx context.Context, actorID string) error
}

// Queue issues tokens and parks actions in a Store.
type Queue struct {
	store Store
	ttl   time.Duration
}

// NewQueue returns a Queue whose actions expire after ttl.
func NewQueue(store Store, ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Queue{store: store, ttl: ttl}
}

// Offer parks a new action for actorID and returns it with a fresh token.
func (q *Queue) Offer(ctx context.Context, actorID string, kind deletionpolicy.Kind, targetID string, tier deletionpolicy.Tier, message string) (Action, error) {
	now := time.Now().UTC()
	a := Action{
		Token:     uuid.NewString(),
		ActorID:   actorID,
		Kind:      kind,
		TargetID:  targetID,
		Tier:      tier,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(q.ttl),
	}
	if err := q.store.Put(ctx, a, q.ttl); err != nil {
		return Action{}, fmt.Errorf("park action: %w", err)
	}
	return a, nil
}

func (q *Queue) Peek(ctx context.Context, actorID string) (Action, error) {
	return q.store.Peek(ctx, actorID)
}

func (q *Queue) Take(ctx context.Context, actorID, token string) (Action, error) {
	return q.store.Take(ctx, actorID, token)
}

func (q *Queue) Cancel(ctx context.Context, actorID string) error {
	return q.store.Cancel(ctx, actorID)
}

// Executor performs a confirmed action.
type Executor func(ctx context.Context, a Action) error

// Dispatcher routes confirmed actions to the executor registered for their kind.
type Dispatcher struct {
	executors map[deletionpolicy.Kind]Executor
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{executors: make(map[deletionpolicy.Kind]Executor)}
}

// Register installs ex for kind, replacing any earlier registration.
func (d *Dispatcher) Register(kind deletionpolicy.Kind, ex Executor) {
	d.executors[kind] = ex
}

// Handles reports whether an executor is registered for kind.
func (d *Dispatcher) Handles(kind deletionpolicy.Kind) bool {
	_, ok := d.executors[kind]
	return ok
}

// Execute runs the executor for a.Kind.
func (d *Dispatcher) Execute(ctx context.Context, a Action) error {
	ex, ok := d.executors[a.Kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoExecutor, a.Kind)
	}
	return ex(ctx, a)
}
