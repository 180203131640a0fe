package dag

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/snapstudy/errors"
	"github.com/kbukum/snapstudy/resilience"
	"github.com/kbukum/snapstudy/stage"
)

// Engine executes a graph in dependency order.
type Engine struct {
	// MaxParallel limits concurrent nodes per level (0 = unlimited).
	MaxParallel int
}

// Execute runs every node once. Root nodes receive seed; other nodes receive
// the outcome of their data dependency. Every node ends with exactly one
// outcome, including when a node panics outside its own guards. The only
// error is an invalid graph.
func (e *Engine) Execute(ctx context.Context, g *Graph, seed stage.Outcome) (*Result, error) {
	start := time.Now()

	levels, err := BuildLevels(g)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]Node, len(g.Nodes))
	for _, n := range g.Nodes {
		byName[n.Name()] = n
	}

	state := NewState()
	for _, level := range levels {
		e.executeLevel(ctx, g, byName, state, level, seed)
	}

	result := &Result{Outcomes: make([]stage.Outcome, 0, len(g.Nodes))}
	for _, n := range g.Nodes {
		o, _ := state.Get(n.Name())
		result.Outcomes = append(result.Outcomes, o)
	}
	result.Duration = time.Since(start)
	return result, nil
}

func (e *Engine) executeLevel(ctx context.Context, g *Graph, byName map[string]Node, state *State, names []string, seed stage.Outcome) {
	if len(names) == 1 {
		e.executeNode(ctx, g, byName[names[0]], state, seed)
		return
	}

	bh := resilience.NewBulkhead(resilience.BulkheadConfig{
		Name:          "dag-level",
		MaxConcurrent: e.concurrency(len(names)),
		MaxWait:       resilience.WaitForever,
	})

	var wg sync.WaitGroup
	for _, name := range names {
		wg.Add(1)
		go func(node Node) {
			defer wg.Done()
			err := bh.Execute(ctx, func() error {
				e.executeNode(ctx, g, node, state, seed)
				return nil
			})
			if err != nil {
				state.Set(node.Name(), stage.Failed(node.Name(), err))
			}
		}(byName[name])
	}
	wg.Wait()
}

func (e *Engine) executeNode(ctx context.Context, g *Graph, node Node, state *State, seed stage.Outcome) {
	upstream := seed
	if from, ok := g.Upstream(node.Name()); ok {
		upstream, _ = state.Get(from)
	}

	defer func() {
		if r := recover(); r != nil {
			state.Set(node.Name(), stage.Failed(node.Name(), errors.Internal(fmt.Errorf("node %s panicked: %v", node.Name(), r))))
		}
	}()

	o := node.Run(ctx, upstream)
	if o.Status == "" {
		o = stage.Failed(node.Name(), errors.Internal(fmt.Errorf("node %s returned no outcome", node.Name())))
	}
	o.Stage = node.Name()
	state.Set(node.Name(), o)
}

func (e *Engine) concurrency(levelSize int) int {
	if e.MaxParallel <= 0 || e.MaxParallel > levelSize {
		return levelSize
	}
	return e.MaxParallel
}
