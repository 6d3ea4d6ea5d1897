/*
Package agentscene is a typed node-graph editor model with scene presets, built to
explain AI-agent architectures one view at a time.

A graph holds typed nodes (tool sources, knowledge and memory sources, models,
agents, documents) whose ports are joined by connections. A scene book declares the
nodes of an editor once and a numbered list of scenes, each a named set of
connections with a layout. Loading a scene tears the connections down, rebuilds
them, lays the nodes out, decides visibility and frames the camera, all as one
atomic step for readers of the graph.

# Concept

The Editor is the entry point. It wires the node catalog, the graph store, the scene
controller and a dataflow evaluator that re-runs after every connection change.
Adapters expose it over HTTP, MCP and a terminal runner.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/agentscene"
	)

	func main() {
		ed, err := agentscene.New("architecture")
		if err != nil {
			log.Fatal(err)
		}
		defer ed.Close()

		res, err := ed.LoadScene(context.Background(), 2)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(res.Name, len(res.Connections))
	}
*/
package agentscene
