// Package controller runs scene transitions.
//
// A transition clears the connection set, builds the preset's connections,
// lays out and shows or hides nodes, frames the camera and records the new
// active scene. All of it happens inside one store transaction, and
// transitions on the same editor never interleave.
package controller
