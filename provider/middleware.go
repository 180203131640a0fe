package provider

import (
	"github.com/kbukum/snapstudy/logger"
	"github.com/kbukum/snapstudy/observability"
)

// Middleware transforms a RequestResponse provider by wrapping it.
type Middleware[I, O any] func(RequestResponse[I, O]) RequestResponse[I, O]

// Chain composes multiple middlewares into one. The first middleware is
// outermost: Chain(a, b, c)(p) is a(b(c(p))).
func Chain[I, O any](middlewares ...Middleware[I, O]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		for i := len(middlewares) - 1; i >= 0; i-- {
			if middlewares[i] == nil {
				continue
			}
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// Observe wraps p with tracing, metrics and logging, in that order from the
// outside in. A nil log or metrics skips that layer.
func Observe[I, O any](p RequestResponse[I, O], log *logger.Logger, metrics *observability.Metrics) RequestResponse[I, O] {
	mws := []Middleware[I, O]{WithTracing[I, O]()}
	if metrics != nil {
		mws = append(mws, WithMetrics[I, O](metrics))
	}
	if log != nil {
		mws = append(mws, WithLogging[I, O](log))
	}
	return Chain(mws...)(p)
}
