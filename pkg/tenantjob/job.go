package tenantjob

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Job is the envelope stored for a queued unit of work. The tenant that
// was current at enqueue time travels with the payload, so execution can
// restore it no matter which process picks the job up.
type Job struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	TenantID   *int64          `json:"tenant_id,omitempty"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Handler processes one job kind.
type Handler interface {
	Name() string
	Handle(ctx context.Context, payload json.RawMessage) error
}

// HandlerFunc is the typed function a handler wraps.
type HandlerFunc[T any] func(ctx context.Context, payload T) error

// NewHandler builds a Handler that unmarshals the payload into T. The
// job name is derived from the payload type.
func NewHandler[T any](fn HandlerFunc[T]) Handler {
	var payload T
	return &typedHandler[T]{
		name: qualifiedStructName(payload),
		fn:   fn,
	}
}

type typedHandler[T any] struct {
	name string
	fn   HandlerFunc[T]
}

func (h *typedHandler[T]) Name() string {
	return h.name
}

func (h *typedHandler[T]) Handle(ctx context.Context, payload json.RawMessage) error {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return fmt.Errorf("unmarshal %s payload: %w", h.name, err)
	}
	return h.fn(ctx, t)
}

// qualifiedStructName returns the payload type name without pointer
// markers, e.g. "email.SendWelcome".
func qualifiedStructName(v any) string {
	return strings.ReplaceAll(fmt.Sprintf("%T", v), "*", "")
}
