package engine

import (
	"fmt"

	"github.com/flowgrid/flowgrid/pkg/models"
)

// buildLevels computes the leveled execution order for a graph: a list of
// node-id batches such that nodes in level k only depend on nodes in levels
// below k. Nodes in the same batch are safe to run concurrently.
//
// The traversal is sink oriented: starting from the trigger nodes it walks
// forward edges (dependents) depth first, assigning each node a depth of one
// more than the deepest dependent path it feeds. Levels are then the depths
// inverted, so the deepest producers run first and every edge u->v satisfies
// level(u) < level(v). Edges referencing unknown node ids are skipped; any
// node unreachable from a trigger is visited afterwards so disconnected
// components still get scheduled.
func buildLevels(graph *models.WorkflowGraph) ([][]string, error) {
	const op = "engine.buildLevels"

	nodes := make(map[string]*models.Node, len(graph.Nodes))
	for _, node := range graph.Nodes {
		nodes[node.ID] = node
	}

	dependents := make(map[string][]string)

	for _, edge := range graph.Edges {
		if _, ok := nodes[edge.Source]; !ok {
			continue
		}

		if _, ok := nodes[edge.Target]; !ok {
			continue
		}

		dependents[edge.Source] = append(dependents[edge.Source], edge.Target)
	}

	const (
		stateUnvisited = iota
		stateInProgress
		stateDone
	)

	state := make(map[string]int, len(nodes))
	depth := make(map[string]int, len(nodes))

	var visit func(id string) (int, error)

	visit = func(id string) (int, error) {
		switch state[id] {
		case stateInProgress:
			return 0, newError(op, "CYCLE_DETECTED",
				fmt.Sprintf("cycle detected at node %s", id), ErrCycleDetected)
		case stateDone:
			return depth[id], nil
		}

		state[id] = stateInProgress

		maxDependent := 0

		for _, dep := range dependents[id] {
			d, err := visit(dep)
			if err != nil {
				return 0, err
			}

			if d > maxDependent {
				maxDependent = d
			}
		}

		state[id] = stateDone
		depth[id] = maxDependent + 1

		return depth[id], nil
	}

	for _, node := range graph.Nodes {
		if !node.IsTrigger() {
			continue
		}

		if _, err := visit(node.ID); err != nil {
			return nil, err
		}
	}

	// Disconnected components: anything a trigger never reached.
	for _, node := range graph.Nodes {
		if state[node.ID] == stateUnvisited {
			if _, err := visit(node.ID); err != nil {
				return nil, err
			}
		}
	}

	maxDepth := 0
	for _, d := range depth {
		if d > maxDepth {
			maxDepth = d
		}
	}

	levels := make([][]string, maxDepth)
	for _, node := range graph.Nodes {
		level := maxDepth - depth[node.ID]
		levels[level] = append(levels[level], node.ID)
	}

	// Drop empty buckets so callers can iterate without nil checks.
	out := levels[:0]

	for _, bucket := range levels {
		if len(bucket) > 0 {
			out = append(out, bucket)
		}
	}

	return out, nil
}
