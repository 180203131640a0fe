package stream

import (
	"context"
	"time"
)

// Settle holds each value until no newer value with the same key has
// arrived for the quiet period, then emits the latest value for that key
// once. Keys settle independently. When the source is exhausted, pending
// values are flushed without waiting.
func Settle[T any](p *Pipeline[T], quiet time.Duration, key func(T) string) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			source := p.create(ctx)
			setCtx, cancel := context.WithCancel(ctx)
			return &settleIter[T]{
				ch:      pump(setCtx, source, 1),
				quiet:   quiet,
				key:     key,
				pending: make(map[string]*pendingValue[T]),
				cancel:  cancel,
				closer:  source.Close,
			}
		},
	}
}

type pendingValue[T any] struct {
	val T
	due time.Time
}

type settleIter[T any] struct {
	ch      <-chan result[T]
	quiet   time.Duration
	key     func(T) string
	pending map[string]*pendingValue[T]
	order   []string // keys by ascending due time
	done    bool
	cancel  context.CancelFunc
	closer  func() error
}

func (it *settleIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, false, err
		}
		if len(it.order) > 0 {
			wait := time.Until(it.pending[it.order[0]].due)
			if wait <= 0 || it.done {
				return it.pop(), true, nil
			}
		} else if it.done {
			var zero T
			return zero, false, nil
		}

		var timeout <-chan time.Time
		var timer *time.Timer
		if len(it.order) > 0 {
			timer = time.NewTimer(time.Until(it.pending[it.order[0]].due))
			timeout = timer.C
		}

		select {
		case r, open := <-it.ch:
			if !open {
				it.done = true
			} else if r.err != nil {
				stopTimer(timer)
				var zero T
				return zero, false, r.err
			} else {
				it.add(r.val)
			}
		case <-timeout:
		case <-ctx.Done():
			stopTimer(timer)
			var zero T
			return zero, false, ctx.Err()
		}
		stopTimer(timer)
	}
}

func (it *settleIter[T]) add(v T) {
	k := it.key(v)
	if _, exists := it.pending[k]; exists {
		for i, o := range it.order {
			if o == k {
				it.order = append(it.order[:i], it.order[i+1:]...)
				break
			}
		}
	}
	it.pending[k] = &pendingValue[T]{val: v, due: time.Now().Add(it.quiet)}
	it.order = append(it.order, k)
}

func (it *settleIter[T]) pop() T {
	k := it.order[0]
	it.order = it.order[1:]
	v := it.pending[k].val
	delete(it.pending, k)
	return v
}

func (it *settleIter[T]) Close() error {
	it.cancel()
	return it.closer()
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}
