/*
Package ports defines the driven ports (interfaces) of the scene editor.

These interfaces decouple the scene controller from the collaborators it drives,
so the same controller works with an in-process camera, a rendering front end, or
a lock shared by several replicas.

# Key Interfaces

  - Camera: Places the camera explicitly or frames the visible nodes.
  - DistributedLocker: Serializes scene transitions across processes.
*/
package ports
