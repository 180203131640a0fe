package dag

import "fmt"

// Graph declares nodes in order and the edges between them.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Edge is a dependency: To runs after From. A data edge also hands From's
// outcome to To; a node has at most one data edge.
type Edge struct {
	From      string
	To        string
	OrderOnly bool
}

// DependsOn declares a data edge.
func DependsOn(to, from string) Edge {
	return Edge{From: from, To: to}
}

// After declares an ordering-only edge.
func After(to, from string) Edge {
	return Edge{From: from, To: to, OrderOnly: true}
}

// Upstream returns the data dependency of name.
func (g *Graph) Upstream(name string) (string, bool) {
	for _, e := range g.Edges {
		if e.To == name && !e.OrderOnly {
			return e.From, true
		}
	}
	return "", false
}

// Names returns node names in declaration order.
func (g *Graph) Names() []string {
	names := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		names[i] = n.Name()
	}
	return names
}

// Validate checks for duplicate nodes, unknown edge endpoints and nodes with
// more than one data edge.
func (g *Graph) Validate() error {
	index := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if index[n.Name()] {
			return fmt.Errorf("dag: duplicate node %q", n.Name())
		}
		index[n.Name()] = true
	}
	data := make(map[string]string)
	for _, e := range g.Edges {
		if !index[e.From] {
			return fmt.Errorf("dag: edge references unknown node %q", e.From)
		}
		if !index[e.To] {
			return fmt.Errorf("dag: edge references unknown node %q", e.To)
		}
		if e.OrderOnly {
			continue
		}
		if prev, ok := data[e.To]; ok {
			return fmt.Errorf("dag: node %q has two data dependencies (%q, %q)", e.To, prev, e.From)
		}
		data[e.To] = e.From
	}
	return nil
}

// BuildLevels uses Kahn's algorithm to group nodes by dependency level.
// Nodes within a level can run in parallel and are listed in declaration
// order. Returns an error if the graph is invalid or cyclic.
func BuildLevels(g *Graph) ([][]string, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	order := make(map[string]int, len(g.Nodes))
	inDegree := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		order[n.Name()] = i
		inDegree[n.Name()] = 0
	}
	dependents := make(map[string][]string)
	for _, e := range g.Edges {
		inDegree[e.To]++
		dependents[e.From] = append(dependents[e.From], e.To)
	}

	var levels [][]string
	visited := 0
	queue := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if inDegree[n.Name()] == 0 {
			queue = append(queue, n.Name())
		}
	}

	for len(queue) > 0 {
		levels = append(levels, queue)
		visited += len(queue)

		next := make([]bool, len(g.Nodes))
		for _, name := range queue {
			for _, dep := range dependents[name] {
				inDegree[dep]--
				if inDegree[dep] == 0 {
					next[order[dep]] = true
				}
			}
		}
		queue = nil
		for i, ok := range next {
			if ok {
				queue = append(queue, g.Nodes[i].Name())
			}
		}
	}

	if visited != len(g.Nodes) {
		return nil, fmt.Errorf("dag: cycle detected, processed %d of %d nodes", visited, len(g.Nodes))
	}
	return levels, nil
}
