// Package catalog declares the node kinds of the agent architecture graph:
// their ports, the sockets those ports carry, how nodes are created from
// loosely typed parameters, and the pure evaluation rule of each kind.
package catalog
