package dataflow

import (
	"github.com/aretw0/agentscene/pkg/catalog"
	"github.com/aretw0/agentscene/pkg/domain"
)

// Result maps node ids to the values on their output ports.
type Result map[string]map[string]any

// Output returns one port's value.
func (r Result) Output(nodeID, port string) (any, bool) {
	outs, ok := r[nodeID]
	if !ok {
		return nil, false
	}
	v, ok := outs[port]
	return v, ok
}

// Evaluate runs every node of the snapshot once, producers before consumers.
func Evaluate(reg *catalog.Registry, snap *domain.GraphSnapshot) (Result, error) {
	indegree := make(map[string]int, len(snap.Nodes))
	downstream := make(map[string][]domain.Connection, len(snap.Nodes))
	for _, n := range snap.Nodes {
		indegree[n.ID] = 0
	}
	for _, c := range snap.Connections {
		if _, ok := indegree[c.TargetNodeID]; !ok {
			continue
		}
		if _, ok := indegree[c.SourceNodeID]; !ok {
			continue
		}
		indegree[c.TargetNodeID]++
		downstream[c.SourceNodeID] = append(downstream[c.SourceNodeID], c)
	}

	// Seed in snapshot order so results are reproducible.
	queue := make([]*domain.NodeInstance, 0, len(snap.Nodes))
	for _, n := range snap.Nodes {
		if indegree[n.ID] == 0 {
			queue = append(queue, n)
		}
	}

	inputs := make(map[string]map[string][]any, len(snap.Nodes))
	result := make(Result, len(snap.Nodes))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		outs, err := reg.Evaluate(n, inputs[n.ID])
		if err != nil {
			return nil, err
		}
		result[n.ID] = outs

		for _, c := range downstream[n.ID] {
			if v, ok := outs[c.SourcePort]; ok {
				if inputs[c.TargetNodeID] == nil {
					inputs[c.TargetNodeID] = make(map[string][]any)
				}
				inputs[c.TargetNodeID][c.TargetPort] = append(inputs[c.TargetNodeID][c.TargetPort], v)
			}
			indegree[c.TargetNodeID]--
			if indegree[c.TargetNodeID] == 0 {
				queue = append(queue, snap.Node(c.TargetNodeID))
			}
		}
	}

	if len(result) < len(snap.Nodes) {
		var stuck []string
		for _, n := range snap.Nodes {
			if _, done := result[n.ID]; !done {
				stuck = append(stuck, n.ID)
			}
		}
		return nil, &domain.CyclicGraphError{Nodes: stuck}
	}
	return result, nil
}
