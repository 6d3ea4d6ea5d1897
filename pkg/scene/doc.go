// Package scene loads and validates scene books.
//
// A book belongs to one editor. It declares the nodes the editor starts with,
// addressed by short refs, and an ordered list of presets that say which
// connections exist, where each node sits, which nodes are hidden and,
// optionally, where the camera goes. Books are plain YAML; the two shipped with
// the module are embedded.
package scene
