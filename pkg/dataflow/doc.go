// Package dataflow evaluates node outputs in topological order.
//
// Every pass starts from scratch: outputs of the previous pass are dropped, each
// node runs once its producers have run, and values arriving on an input port
// are gathered in connection order. Graphs with feedback loops are rejected
// with a CyclicGraphError.
package dataflow
