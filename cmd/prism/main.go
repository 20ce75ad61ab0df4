// Package main is the entry point for the prism demo, a small todo
// list that drives the reactive renderer through the terminal host.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"github.com/dshills/prism/internal/component"
	"github.com/dshills/prism/internal/config"
	"github.com/dshills/prism/internal/engine"
	"github.com/dshills/prism/internal/state"
	"github.com/dshills/prism/internal/vdom"
	"github.com/dshills/prism/internal/vdom/host/terminal"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

type options struct {
	ConfigPath string
	LogLevel   string
	LogFile    string
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return 1
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogFile != "" {
		cfg.Log.File = opts.LogFile
	}

	term, err := terminal.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}
	defer term.Fini()

	eng, err := engine.New(engine.Options{
		Adapter: term,
		Config:  cfg,
		Initial: state.State{
			"todos": []any{
				newTodo("read the manual"),
				newTodo("write a component"),
				newTodo("ship it"),
			},
			"selected": 0,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer eng.Close()

	app := todoApp{store: eng.Store(), term: term}
	if _, err := eng.Mount(component.Component{
		Paths:  []string{"todos", "selected"},
		Render: app.render,
	}, term.Root()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to mount: %v\n", err)
		return 1
	}

	// Batched flushes run on a timer, not an input event, so the
	// screen has to be woken for the new tree to paint.
	redraw := eng.Store().Subscribe(func(_, _ state.State) { term.Wake() })
	defer redraw.Unsubscribe()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		term.Stop()
	}()

	term.Run()
	return 0
}

func newTodo(text string) map[string]any {
	return map[string]any{
		"id":   uuid.NewString(),
		"text": text,
		"done": false,
	}
}

// todoApp holds the handlers and render function for the demo UI. The
// key handler is a single stable value so reconciliation never needs
// to re-register it.
type todoApp struct {
	store *state.Store
	term  *terminal.Terminal
}

func (a *todoApp) render(s state.State) *vdom.Node {
	todos, _ := s["todos"].([]any)
	selected, _ := s["selected"].(int)

	children := []any{
		vdom.New("header", map[string]any{"bold": true}, "prism todos"),
	}
	for i, raw := range todos {
		todo, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		marker := "[ ]"
		if done, _ := todo["done"].(bool); done {
			marker = "[x]"
		}
		cursor := " "
		if i == selected {
			cursor = ">"
		}
		props := map[string]any{"key": todo["id"]}
		if i == selected {
			props["bold"] = true
		}
		children = append(children, vdom.New("item", props,
			cursor, marker, todo["text"]))
	}
	children = append(children,
		vdom.New("footer", nil, "j/k move  space toggle  q quit"))

	return vdom.New("screen", map[string]any{
		"onKey": vdom.EventHandler(a.handleKey),
	}, children...)
}

func (a *todoApp) handleKey(payload any) {
	ev, ok := payload.(terminal.Event)
	if !ok {
		return
	}
	if ev.Key == tcell.KeyEscape || ev.Rune == 'q' {
		a.term.Stop()
		return
	}

	switch ev.Rune {
	case 'j':
		a.move(1)
	case 'k':
		a.move(-1)
	case ' ':
		a.toggle()
	}
}

func (a *todoApp) move(delta int) {
	a.store.UpdateBatched(func(prev state.State) state.State {
		todos, _ := prev["todos"].([]any)
		selected, _ := prev["selected"].(int)
		selected += delta
		if selected < 0 {
			selected = 0
		}
		if selected >= len(todos) {
			selected = len(todos) - 1
		}
		next := cloneTop(prev)
		next["selected"] = selected
		return next
	})
}

func (a *todoApp) toggle() {
	a.store.UpdateBatched(func(prev state.State) state.State {
		todos, _ := prev["todos"].([]any)
		selected, _ := prev["selected"].(int)
		if selected < 0 || selected >= len(todos) {
			return prev
		}
		items := make([]any, len(todos))
		copy(items, todos)
		todo, _ := items[selected].(map[string]any)
		updated := make(map[string]any, len(todo))
		for k, v := range todo {
			updated[k] = v
		}
		done, _ := updated["done"].(bool)
		updated["done"] = !done
		items[selected] = updated

		next := cloneTop(prev)
		next["todos"] = items
		return next
	})
}

func cloneTop(s state.State) state.State {
	next := make(state.State, len(s))
	for k, v := range s {
		next[k] = v
	}
	return next
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.StringVar(&opts.LogFile, "log-file", "", "Log file path")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Prism - reactive terminal rendering demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: prism [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Prism %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" {
		switch opts.LogLevel {
		case "debug", "info", "warn", "error":
		default:
			fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
			os.Exit(1)
		}
	}

	return opts
}
