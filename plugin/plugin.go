// Package plugin defines the capability contract between the dispatch
// core and the independently developed plugins it multiplexes.
//
// A plugin owns a namespaced subtree of the URL space and declares, at
// construction time, its routes and how its frontend is loaded. The
// contract is a fixed capability set: optional capabilities are separate
// interfaces discovered by type assertion, never by runtime probing of
// arbitrary methods.
package plugin

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Handler handles a request dispatched to a plugin route. A returned
// httperror value is translated to the corresponding HTTP response by the
// dispatcher; any other non-nil error surfaces as a server fault.
type Handler func(http.ResponseWriter, *http.Request) error

// Plugin is implemented by every unit registered with the dispatcher.
// Implementations must be safe for concurrent handler invocation; the
// core itself serves all registered state read-only.
type Plugin interface {

	// Name returns the plugin identifier. It must be unique across the
	// registry and match [A-Za-z0-9_-]+.
	Name() string

	// Routes returns the plugin-local route patterns mapped to their
	// handlers. A pattern either matches exactly, or ends in /* and
	// matches any longer path under its prefix.
	Routes() map[string]Handler

	// IsActive reports whether the plugin currently has content worth
	// surfacing. It may panic; callers treat a panicking plugin as
	// inactive.
	IsActive() bool

	// FrontendMetadata describes how the plugin's UI is loaded.
	FrontendMetadata() FrontendMetadata
}

// DataPluginNamer is an optional capability. A plugin that implements it
// declares the names of the data plugins it reads from; one without it
// depends on data stored under its own name.
type DataPluginNamer interface {
	DataPluginNames() []string
}

// DataProvider reports which plugin names currently have data for an
// experiment. It is an external collaborator; the activity resolver
// consults it once per listing request.
type DataProvider interface {
	ActivePlugins(ctx context.Context, experimentID string) ([]string, error)
}

// Context is the immutable value handed to every Loader during
// construction. Instances maps plugin names to the instances constructed
// so far; it is populated while loading proceeds and must only be read
// after construction completes.
type Context struct {
	DataProvider DataProvider
	PathPrefix   string

	// Logger for construction time diagnostics. Never nil when the
	// context comes from the loading machinery.
	Logger logrus.FieldLogger

	Instances map[string]Plugin
}

// Loader constructs a plugin from the construction context. It replaces
// constructor side effects: anything a plugin needs to observe at
// construction time is on the context, explicitly.
type Loader interface {
	Load(Context) (Plugin, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(Context) (Plugin, error)

func (f LoaderFunc) Load(c Context) (Plugin, error) { return f(c) }

// BasicLoader wraps an already constructed plugin into a Loader that
// ignores the context.
func BasicLoader(p Plugin) Loader {
	return LoaderFunc(func(Context) (Plugin, error) { return p, nil })
}
