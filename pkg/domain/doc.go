/*
Package domain contains the core types of the agent architecture graph.

It describes what a graph is made of and which shapes of it are legal, and nothing
about how it is stored, evaluated or drawn. The package has no dependencies
beyond the standard library.

# Key Entities

  - NodeKind and PortSpec: the fixed categories of nodes and their directional ports.
  - NodeInstance: a live node with typed controls, a position and a visibility flag.
  - Connection: a directed link from an output port to an input port.
  - ScenePreset: a static, named layout with its own connection set.
  - GraphSnapshot: an immutable copy of the graph handed to readers.
  - GraphEvent: a change notification emitted for every mutation.
*/
package domain
