// FILE: lixenwraith/propbind/bind/handler.go
package bind

import (
	"go.uber.org/zap"

	"github.com/lixenwraith/propbind/name"
)

// Handler observes and adjusts every bind step, nested ones included.
type Handler interface {
	// OnStart may replace the target; returning false skips the name
	OnStart(n name.Name, target Bindable, ctx *Context) (Bindable, bool)

	// OnSuccess may replace a bound result
	OnSuccess(n name.Name, target Bindable, ctx *Context, result any) (any, error)

	// OnFailure may recover from err by returning a value, or nil for absent
	OnFailure(n name.Name, target Bindable, ctx *Context, err error) (any, error)

	// OnFinish runs last, bound reports whether result holds a bound value
	OnFinish(n name.Name, target Bindable, ctx *Context, result any, bound bool) error
}

// NoopHandler passes everything through. Embed it to override single hooks.
type NoopHandler struct{}

func (NoopHandler) OnStart(_ name.Name, target Bindable, _ *Context) (Bindable, bool) {
	return target, true
}

func (NoopHandler) OnSuccess(_ name.Name, _ Bindable, _ *Context, result any) (any, error) {
	return result, nil
}

func (NoopHandler) OnFailure(_ name.Name, _ Bindable, _ *Context, err error) (any, error) {
	return nil, err
}

func (NoopHandler) OnFinish(name.Name, Bindable, *Context, any, bool) error {
	return nil
}

// IgnoreErrorsHandler turns every failure into absence.
type IgnoreErrorsHandler struct {
	NoopHandler
}

func (IgnoreErrorsHandler) OnFailure(name.Name, Bindable, *Context, error) (any, error) {
	return nil, nil
}

// LogHandler logs results and failures.
type LogHandler struct {
	NoopHandler
	Logger *zap.Logger
}

// NewLogHandler creates a handler logging to logger; nil disables output.
func NewLogHandler(logger *zap.Logger) *LogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogHandler{Logger: logger}
}

func (h *LogHandler) OnSuccess(n name.Name, target Bindable, ctx *Context, result any) (any, error) {
	fields := []zap.Field{zap.Stringer("name", n), zap.Stringer("target", target.Type)}
	if p, ok := ctx.Property(); ok && p.Name.Equal(n) {
		fields = append(fields, zap.String("origin", p.Origin))
	}
	h.Logger.Debug("bound", fields...)
	return result, nil
}

func (h *LogHandler) OnFailure(n name.Name, target Bindable, _ *Context, err error) (any, error) {
	h.Logger.Warn("bind failed", zap.Stringer("name", n), zap.Stringer("target", target.Type), zap.Error(err))
	return nil, err
}

// Chain runs handlers in order. OnStart stops at the first skip, OnFailure at
// the first handler that recovers.
func Chain(handlers ...Handler) Handler {
	return chain(handlers)
}

type chain []Handler

func (c chain) OnStart(n name.Name, target Bindable, ctx *Context) (Bindable, bool) {
	for _, h := range c {
		var ok bool
		if target, ok = h.OnStart(n, target, ctx); !ok {
			return target, false
		}
	}
	return target, true
}

func (c chain) OnSuccess(n name.Name, target Bindable, ctx *Context, result any) (any, error) {
	var err error
	for _, h := range c {
		if result, err = h.OnSuccess(n, target, ctx, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (c chain) OnFailure(n name.Name, target Bindable, ctx *Context, err error) (any, error) {
	for _, h := range c {
		v, herr := h.OnFailure(n, target, ctx, err)
		if herr == nil {
			return v, nil
		}
		err = herr
	}
	return nil, err
}

func (c chain) OnFinish(n name.Name, target Bindable, ctx *Context, result any, bound bool) error {
	for _, h := range c {
		if err := h.OnFinish(n, target, ctx, result, bound); err != nil {
			return err
		}
	}
	return nil
}
