package dag

import (
	"context"

	"github.com/kbukum/snapstudy/stage"
)

// Node is the execution unit in a graph. Run receives the outcome of the
// node's data dependency, or the engine seed for root nodes.
type Node interface {
	Name() string
	Run(ctx context.Context, upstream stage.Outcome) stage.Outcome
}

// NodeFunc adapts a function to a Node.
func NodeFunc(name string, fn func(ctx context.Context, upstream stage.Outcome) stage.Outcome) Node {
	return &funcNode{name: name, fn: fn}
}

type funcNode struct {
	name string
	fn   func(ctx context.Context, upstream stage.Outcome) stage.Outcome
}

func (n *funcNode) Name() string { return n.name }

func (n *funcNode) Run(ctx context.Context, upstream stage.Outcome) stage.Outcome {
	return n.fn(ctx, upstream)
}

// StageNode runs work through a stage.Executor, which handles gating,
// timeouts and logging.
func StageNode(name string, exec *stage.Executor, work stage.Work) Node {
	return NodeFunc(name, func(ctx context.Context, upstream stage.Outcome) stage.Outcome {
		return exec.Run(ctx, name, upstream, work)
	})
}
