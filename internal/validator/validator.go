// Package validator lints scene books beyond the structural checks done at load time.
package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/agentscene/pkg/catalog"
	"github.com/aretw0/agentscene/pkg/domain"
	"github.com/aretw0/agentscene/pkg/scene"
)

// Report collects the findings for one editor.
// Errors make the book unusable. Warnings flag likely authoring slips.
type Report struct {
	Editor   string
	Errors   []error
	Warnings []string
}

// OK reports whether the book has no errors.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// Err joins every error of the report, or returns nil.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return fmt.Errorf("found %d errors:\n- %s", len(r.Errors), strings.Join(msgs, "\n- "))
}

// ValidateLibrary lints every book of the library in editor order.
func ValidateLibrary(lib *scene.Library, reg *catalog.Registry) ([]*Report, error) {
	var (
		reports []*Report
		failed  []string
	)
	for _, name := range lib.Editors() {
		book, err := lib.Get(name)
		if err != nil {
			return nil, err
		}
		r := ValidateBook(book, reg)
		if !r.OK() {
			failed = append(failed, name)
		}
		reports = append(reports, r)
	}
	if len(failed) > 0 {
		return reports, fmt.Errorf("invalid books: %s", strings.Join(failed, ", "))
	}
	return reports, nil
}

// ValidateBook checks the book against the catalog, then looks for cycles and unused nodes.
func ValidateBook(book *scene.Book, reg *catalog.Registry) *Report {
	if reg == nil {
		reg = catalog.New()
	}
	r := &Report{Editor: book.Editor}

	if err := book.Validate(reg); err != nil {
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			r.Errors = append(r.Errors, joined.Unwrap()...)
		} else {
			r.Errors = append(r.Errors, err)
		}
		// Cycle and usage checks assume refs resolve.
		return r
	}

	used := make(map[string]bool, len(book.Nodes))
	for i := range book.Scenes {
		p := &book.Scenes[i]
		if cycle := findCycle(p.Connections); len(cycle) > 0 {
			r.Errors = append(r.Errors, &scene.Problem{
				Editor: book.Editor,
				Scene:  p.Index,
				Err:    &domain.CyclicGraphError{Nodes: cycle},
			})
		}
		for _, c := range p.Connections {
			used[c.FromNode] = true
			used[c.ToNode] = true
			if p.IsHidden(c.FromNode) || p.IsHidden(c.ToNode) {
				r.Warnings = append(r.Warnings, fmt.Sprintf("scene %d: connection %s.%s -> %s.%s touches a hidden node",
					p.Index, c.FromNode, c.FromPort, c.ToNode, c.ToPort))
			}
		}
	}
	for _, n := range book.Nodes {
		if !used[n.Ref] {
			r.Warnings = append(r.Warnings, fmt.Sprintf("node %q is not connected in any scene", n.Ref))
		}
	}
	return r
}

// findCycle returns the refs left over after removing every node with no
// remaining incoming edges. An empty result means the scene is acyclic.
func findCycle(conns []domain.ConnectionRef) []string {
	indegree := make(map[string]int)
	edges := make(map[string][]string)
	for _, c := range conns {
		if _, ok := indegree[c.FromNode]; !ok {
			indegree[c.FromNode] = 0
		}
		indegree[c.ToNode]++
		edges[c.FromNode] = append(edges[c.FromNode], c.ToNode)
	}

	var queue []string
	for ref, d := range indegree {
		if d == 0 {
			queue = append(queue, ref)
		}
	}
	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		delete(indegree, ref)
		for _, next := range edges[ref] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	left := make([]string, 0, len(indegree))
	for ref := range indegree {
		left = append(left, ref)
	}
	sort.Strings(left)
	return left
}
