package domain

import "sort"

// GraphDiff represents the changes between two snapshots.
// Connections are compared by endpoints, so a rebuilt but identical link is not a change.
type GraphDiff struct {
	// ActiveScene is set only when the scene changed.
	ActiveScene *int `json:"active_scene,omitempty"`

	Added   []ConnectionSpec `json:"added,omitempty"`
	Removed []ConnectionSpec `json:"removed,omitempty"`

	// Moved maps node ids to their new position.
	Moved map[string]Vec3 `json:"moved,omitempty"`

	Shown  []string `json:"shown,omitempty"`
	Hidden []string `json:"hidden,omitempty"`

	// Deleted lists nodes present only in the old snapshot.
	Deleted []string `json:"deleted,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, the whole of newSnap is reported. It returns nil when nothing changed.
func Diff(oldSnap, newSnap *GraphSnapshot) *GraphDiff {
	if newSnap == nil {
		return nil
	}
	if oldSnap == nil {
		oldSnap = &GraphSnapshot{}
	}

	diff := &GraphDiff{}
	if oldSnap.ActiveScene != newSnap.ActiveScene {
		scene := newSnap.ActiveScene
		diff.ActiveScene = &scene
	}

	diff.Added, diff.Removed = diffConnections(oldSnap.Connections, newSnap.Connections)
	diffNodes(diff, oldSnap, newSnap)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffConnections(old, new []Connection) (added, removed []ConnectionSpec) {
	// Multiset counts keep duplicate links honest.
	counts := make(map[ConnectionSpec]int)
	for _, c := range old {
		counts[c.ConnectionSpec]--
	}
	for _, c := range new {
		counts[c.ConnectionSpec]++
	}

	for spec, n := range counts {
		for ; n > 0; n-- {
			added = append(added, spec)
		}
		for ; n < 0; n++ {
			removed = append(removed, spec)
		}
	}
	sortSpecs(added)
	sortSpecs(removed)
	return added, removed
}

func diffNodes(diff *GraphDiff, oldSnap, newSnap *GraphSnapshot) {
	for _, n := range newSnap.Nodes {
		prev := oldSnap.Node(n.ID)
		if prev == nil || prev.Position != n.Position {
			if diff.Moved == nil {
				diff.Moved = make(map[string]Vec3)
			}
			diff.Moved[n.ID] = n.Position
		}
		switch {
		case n.Visible && (prev == nil || !prev.Visible):
			diff.Shown = append(diff.Shown, n.ID)
		case !n.Visible && prev != nil && prev.Visible:
			diff.Hidden = append(diff.Hidden, n.ID)
		}
	}
	for _, n := range oldSnap.Nodes {
		if newSnap.Node(n.ID) == nil {
			diff.Deleted = append(diff.Deleted, n.ID)
		}
	}
}

func sortSpecs(specs []ConnectionSpec) {
	sort.Slice(specs, func(i, j int) bool {
		return specs[i].String() < specs[j].String()
	})
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *GraphDiff) IsEmpty() bool {
	return d.ActiveScene == nil &&
		len(d.Added) == 0 &&
		len(d.Removed) == 0 &&
		len(d.Moved) == 0 &&
		len(d.Shown) == 0 &&
		len(d.Hidden) == 0 &&
		len(d.Deleted) == 0
}
