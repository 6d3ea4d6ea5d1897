package catalog

import (
	"fmt"

	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/google/uuid"
)

func newNodeID() string {
	return uuid.NewString()
}

// CreateNode builds a node of the given kind with ports copied from the kind's spec.
// Params never change the port layout; they only feed controls and the display name.
func (r *Registry) CreateNode(kind domain.NodeKind, params map[string]any) (*domain.NodeInstance, error) {
	spec, err := r.Spec(kind)
	if err != nil {
		return nil, err
	}

	controls, name, err := spec.Decode(params)
	if err != nil {
		return nil, fmt.Errorf("create %s node: %w", kind, err)
	}

	return &domain.NodeInstance{
		ID:          r.newID(),
		Kind:        kind,
		DisplayName: name,
		Controls:    controls,
		Inputs:      append([]domain.PortSpec(nil), spec.Inputs...),
		Outputs:     append([]domain.PortSpec(nil), spec.Outputs...),
		Visible:     true,
	}, nil
}

// Evaluate applies the kind's rule to the node. Missing input ports are passed as empty lists.
func (r *Registry) Evaluate(node *domain.NodeInstance, inputs map[string][]any) (map[string]any, error) {
	spec, err := r.Spec(node.Kind)
	if err != nil {
		return nil, err
	}

	full := make(map[string][]any, len(spec.Inputs))
	for _, p := range spec.Inputs {
		full[p.Name] = inputs[p.Name]
	}
	return spec.Rule(node, full), nil
}
