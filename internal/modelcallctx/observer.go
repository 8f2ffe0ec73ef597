// Package modelcallctx carries an optional call-observation hook through
// context so LLM provider clients can report request/response snapshots to
// whatever is listening (structured logging, usage accounting) without the
// provider package knowing about the listener's concrete type.
package modelcallctx

import (
	"context"
	"time"

	"github.com/viant/carecore/genai/llm"
)

// Info carries a single model-call snapshot.
type Info struct {
	Provider     string
	Model        string
	ModelKind    string
	RequestJSON  []byte
	ResponseJSON []byte
	Payload      []byte
	LLMRequest   *llm.GenerateRequest
	LLMResponse  *llm.GenerateResponse
	Usage        *llm.Usage
	StartedAt    time.Time
	CompletedAt  time.Time
	Err          string
	ErrorCode    string
	FinishReason string
}

// Observer exposes OnCallStart/OnCallEnd used by providers to report a call's
// lifecycle. Implementations typically log the snapshot or feed it into a
// usage aggregator.
type Observer interface {
	OnCallStart(ctx context.Context, info Info) (context.Context, error)
	OnCallEnd(ctx context.Context, info Info) error
}

type observerKeyT struct{}

var observerKey = observerKeyT{}

// WithObserver stores a concrete Observer in context so providers can call it directly.
func WithObserver(ctx context.Context, ob Observer) context.Context {
	return context.WithValue(ctx, observerKey, ob)
}

// ObserverFromContext returns the explicitly injected Observer stored in ctx (or nil).
// Callers must inject an Observer (for example via WithObserver) before
// invoking LLM providers so that OnCallStart/OnCallEnd are delivered.
func ObserverFromContext(ctx context.Context) Observer {
	if ctx == nil {
		return nil
	}
	if v := ctx.Value(observerKey); v != nil {
		if ob, ok := v.(Observer); ok {
			return ob
		}
	}
	return nil
}
