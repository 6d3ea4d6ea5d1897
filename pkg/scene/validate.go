package scene

import (
	"errors"
	"fmt"

	"github.com/aretw0/agentscene/pkg/catalog"
	"github.com/aretw0/agentscene/pkg/domain"
)

// Problem is one authoring mistake found by Validate.
type Problem struct {
	Editor string
	Scene  int // 0 for book-level problems
	Err    error
}

func (p *Problem) Error() string {
	if p.Scene == 0 {
		return fmt.Sprintf("%s: %v", p.Editor, p.Err)
	}
	return fmt.Sprintf("%s scene %d: %v", p.Editor, p.Scene, p.Err)
}

func (p *Problem) Unwrap() error {
	return p.Err
}

// Validate checks the book against the catalog and returns every problem found,
// joined. A book that validates loads without InvalidConnectionError.
func (b *Book) Validate(reg *catalog.Registry) error {
	var problems []error
	report := func(scene int, err error) {
		problems = append(problems, &Problem{Editor: b.Editor, Scene: scene, Err: err})
	}

	if b.Editor == "" {
		report(0, errors.New("editor name is required"))
	}

	specs := make(map[string]*catalog.KindSpec, len(b.Nodes))
	for _, n := range b.Nodes {
		if n.Ref == "" {
			report(0, errors.New("node without ref"))
			continue
		}
		if _, dup := specs[n.Ref]; dup {
			report(0, fmt.Errorf("node ref %q declared twice", n.Ref))
			continue
		}
		spec, err := reg.Spec(n.Kind)
		if err != nil {
			report(0, fmt.Errorf("node %q: %w", n.Ref, err))
			continue
		}
		if _, err := reg.CreateNode(n.Kind, n.Params); err != nil {
			report(0, fmt.Errorf("node %q: %w", n.Ref, err))
		}
		specs[n.Ref] = spec
	}

	if len(b.Scenes) == 0 {
		report(0, errors.New("book defines no scenes"))
	}
	for i, s := range b.Scenes {
		if s.Index != i+1 {
			report(s.Index, fmt.Errorf("scene indices must run 1..%d in order, found %d at position %d", len(b.Scenes), s.Index, i+1))
		}
		if s.Name == "" {
			report(s.Index, errors.New("scene name is required"))
		}
		for _, c := range s.Connections {
			if err := checkRef(specs, c); err != nil {
				report(s.Index, err)
			}
		}
		for ref := range s.Positions {
			if _, ok := specs[ref]; !ok {
				report(s.Index, fmt.Errorf("position for undeclared node %q", ref))
			}
		}
		for _, ref := range s.Hidden {
			if _, ok := specs[ref]; !ok {
				report(s.Index, fmt.Errorf("hidden node %q is not declared", ref))
			}
		}
	}

	return errors.Join(problems...)
}

func checkRef(specs map[string]*catalog.KindSpec, c domain.ConnectionRef) error {
	from, ok := specs[c.FromNode]
	if !ok {
		return fmt.Errorf("connection from undeclared node %q", c.FromNode)
	}
	to, ok := specs[c.ToNode]
	if !ok {
		return fmt.Errorf("connection to undeclared node %q", c.ToNode)
	}

	out, ok := findPort(from.Outputs, c.FromPort)
	if !ok {
		return fmt.Errorf("%s.%s is not an output of %s", c.FromNode, c.FromPort, from.Kind)
	}
	in, ok := findPort(to.Inputs, c.ToPort)
	if !ok {
		return fmt.Errorf("%s.%s is not an input of %s", c.ToNode, c.ToPort, to.Kind)
	}
	if !catalog.Compatible(out.Socket, in.Socket) {
		return fmt.Errorf("%s.%s cannot feed %s.%s", c.FromNode, c.FromPort, c.ToNode, c.ToPort)
	}
	return nil
}

func findPort(ports []domain.PortSpec, name string) (domain.PortSpec, bool) {
	for _, p := range ports {
		if p.Name == name {
			return p, true
		}
	}
	return domain.PortSpec{}, false
}
