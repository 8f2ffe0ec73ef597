package logging

import (
	"context"

	"github.com/viant/carecore/internal/modelcallctx"
)

// CallObserver adapts a Logger into a modelcallctx.Observer so LLM provider
// calls are reported through the same leveled logger as the rest of the
// core, without the provider package depending on *Logger directly.
type CallObserver struct {
	log *Logger
}

// NewCallObserver returns an Observer that logs every model call start/end.
func NewCallObserver(l *Logger) *CallObserver {
	return &CallObserver{log: l}
}

func (o *CallObserver) OnCallStart(ctx context.Context, info modelcallctx.Info) (context.Context, error) {
	o.log.Debugf("model call start provider=%s model=%s kind=%s", info.Provider, info.Model, info.ModelKind)
	return ctx, nil
}

func (o *CallObserver) OnCallEnd(ctx context.Context, info modelcallctx.Info) error {
	if info.Err != "" {
		o.log.Warnf("model call failed provider=%s model=%s err=%s", info.Provider, info.Model, info.Err)
		return nil
	}
	usage := 0
	if info.Usage != nil {
		usage = info.Usage.TotalTokens
	}
	o.log.Debugf("model call end provider=%s model=%s finish=%s tokens=%d", info.Provider, info.Model, info.FinishReason, usage)
	return nil
}

var _ modelcallctx.Observer = (*CallObserver)(nil)
