package agentscene

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/agentscene/internal/presentation/graph"
	"github.com/aretw0/agentscene/internal/presentation/tui"
)

// Runner is an interactive scene selector reading commands line by line.
// This allows for easy testing and integration with different frontends.
//
// Commands:
//
//	1..N      load scene N
//	scene N   load scene N
//	list      list scenes
//	graph     print the graph as Mermaid
//	state     print the active scene
//	quit      leave (also "exit" and EOF)
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer transforms markdown before it is written.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner. Input and Output must be set before Run.
func NewRunner() *Runner {
	return &Runner{}
}

// Run processes commands until quit, EOF or ctx ends.
func (r *Runner) Run(ctx context.Context, ed *Editor) error {
	if r.Input == nil {
		return errors.New("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return errors.New("output writer must be set (use os.Stdout)")
	}
	w := r.Output
	scanner := bufio.NewScanner(r.Input)

	if !r.Headless {
		fmt.Fprintf(w, "--- %s ---\n", ed.Book().Title)
		tui.PrintScenes(w, ed.Scenes(), ed.ActiveScene())
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.Headless {
			fmt.Fprint(w, "> ")
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			return nil
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch cmd := strings.ToLower(fields[0]); cmd {
		case "quit", "exit":
			if !r.Headless {
				fmt.Fprintln(w, "Bye!")
			}
			return nil
		case "list", "ls":
			tui.PrintScenes(w, ed.Scenes(), ed.ActiveScene())
		case "graph":
			fmt.Fprint(w, graph.GenerateMermaid(ed.Snapshot(), &graph.GraphOverlay{
				Title: ed.State(),
				Refs:  ed.Refs(),
			}))
		case "state":
			fmt.Fprintln(w, ed.State())
		case "scene":
			if len(fields) < 2 {
				fmt.Fprintln(w, "usage: scene N")
				continue
			}
			r.load(ctx, ed, fields[1])
		default:
			r.load(ctx, ed, cmd)
		}
	}
}

func (r *Runner) load(ctx context.Context, ed *Editor, arg string) {
	w := r.Output
	n, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Fprintf(w, "unknown command %q (try: 1..%d, list, graph, quit)\n", arg, len(ed.Scenes()))
		return
	}
	res, err := ed.LoadScene(ctx, n)
	if err != nil {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}
	fmt.Fprintf(w, "Loaded scene %d: %s (%d connections)\n", res.Scene, res.Name, len(res.Connections))

	if r.Renderer == nil {
		return
	}
	preset, err := ed.Book().Scene(n)
	if err != nil {
		return
	}
	md := tui.SceneMarkdown(preset, nil)
	if out, err := r.Renderer(md); err == nil {
		fmt.Fprintln(w, strings.TrimSpace(out))
	}
}
