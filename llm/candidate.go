package llm

import (
	"context"
	"fmt"

	"github.com/kbukum/snapstudy/capability"
)

// Builder constructs a backend when a capability slot tries the candidate.
type Builder func(ctx context.Context) (Provider, error)

// Candidate turns an LLM backend into a capability candidate. Construction
// builds the backend and wraps it into the capability handle; the smoke test
// sends SmokePrompt to the backend itself.
func Candidate[T any](id string, build Builder, wrap func(Provider) T) capability.Candidate[T] {
	var backend Provider
	return capability.Candidate[T]{
		ID: id,
		Construct: func(ctx context.Context) (T, error) {
			var zero T
			if build == nil {
				return zero, fmt.Errorf("%s: no backend builder", id)
			}
			p, err := build(ctx)
			if err != nil {
				return zero, err
			}
			backend = p
			return wrap(p), nil
		},
		Smoke: func(ctx context.Context, _ T) error {
			return Smoke(ctx, backend)
		},
	}
}

// FromRegistry returns a Builder that creates the named backend from reg.
func FromRegistry(reg *Registry, name string, cfg Config) Builder {
	return func(_ context.Context) (Provider, error) {
		return reg.Create(name, cfg)
	}
}
