// Package dispatch maps command names to the handlers that carry them out.
package dispatch

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/shintoio/ama/pkg/config"
	"github.com/shintoio/ama/pkg/logger"
)

// Handler runs one command.
type Handler interface {
	Handle() error
}

// Factory builds a Handler from the invocation arguments.
type Factory func(args Args) (Handler, error)

// Args is everything a command may need from its invocation.
type Args struct {
	// Path is the repository argument. Empty means the working directory.
	Path string
	// JobName overrides the job name written by init.
	JobName string
	// AssumeYes accepts the author identity without asking.
	AssumeYes bool

	Config *config.Config
	In     io.Reader
	Out    io.Writer
}

func (a Args) withDefaults() Args {
	if a.Config == nil {
		a.Config = config.Default()
	}
	if a.In == nil {
		a.In = os.Stdin
	}
	if a.Out == nil {
		a.Out = os.Stdout
	}
	return a
}

// UnsupportedCommandError is returned for a name nothing is registered under.
type UnsupportedCommandError struct {
	Name string
}

func (e *UnsupportedCommandError) Error() string {
	return fmt.Sprintf("unsupported command %q", e.Name)
}

// Dispatcher holds the registered commands.
type Dispatcher struct {
	factories map[string]Factory
}

// New returns an empty Dispatcher.
func New() *Dispatcher {
	return &Dispatcher{factories: make(map[string]Factory)}
}

// Default returns a Dispatcher with init, update and run registered.
func Default() *Dispatcher {
	d := New()
	_ = d.Register(CommandInit, newInit)
	_ = d.Register(CommandUpdate, newUpdate)
	_ = d.Register(CommandRun, newRun)
	return d
}

// Register adds a command. Names are unique.
func (d *Dispatcher) Register(name string, factory Factory) error {
	if _, exists := d.factories[name]; exists {
		return fmt.Errorf("command %s already registered", name)
	}
	d.factories[name] = factory
	return nil
}

// Commands lists the registered names, sorted.
func (d *Dispatcher) Commands() []string {
	names := make([]string, 0, len(d.factories))
	for name := range d.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch builds the handler registered under name and runs it.
func (d *Dispatcher) Dispatch(name string, args Args) error {
	factory, ok := d.factories[name]
	if !ok {
		return &UnsupportedCommandError{Name: name}
	}
	logger.Debug("Dispatching command", logger.String("command", name), logger.String("path", args.Path))

	handler, err := factory(args.withDefaults())
	if err != nil {
		return err
	}
	return handler.Handle()
}
