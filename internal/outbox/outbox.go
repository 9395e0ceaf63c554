// Package outbox decouples best-effort side effects (email, notifications)
// from the primary mutation path. Services emit events; a background worker
// drains the queue and talks to the providers. Emit failures are logged by
// callers and never abort the mutation that triggered them.
package outbox

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/summitprep/satprep-backend/internal/config"
)

// EventType names the kinds of side effects the platform emits.
type EventType string

const (
	EventWelcome          EventType = "welcome"
	EventParentalApproval EventType = "parental_approval"
	EventApprovalResult   EventType = "approval_result"
	EventPasswordReset    EventType = "password_reset"
	EventPaymentReceipt   EventType = "payment_receipt"
)

// Event is one queued side effect.
type Event struct {
	Type EventType         `json:"type"`
	To   string            `json:"to"`
	Name string            `json:"name"`
	Data map[string]string `json:"data,omitempty"`
}

// Emitter enqueues events for asynchronous delivery.
type Emitter interface {
	Emit(ctx context.Context, ev Event) error
}

// RedisEmitter pushes events onto the email outbox queue.
type RedisEmitter struct {
	rdb *redis.Client
}

// NewRedisEmitter creates a RedisEmitter.
func NewRedisEmitter(rdb *redis.Client) *RedisEmitter {
	return &RedisEmitter{rdb: rdb}
}

// Emit serializes the event and LPUSHes it onto the outbox queue.
func (e *RedisEmitter) Emit(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return e.rdb.LPush(ctx, config.WorkerKey.EmailOutboxQueue, payload).Err()
}
