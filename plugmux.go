/*
Package plugmux implements a plugin based HTTP request dispatcher. It
loads a set of plugins, indexes the routes they declare under a shared
namespace, and serves them with exact-match-wins, longest-prefix-wins
dispatch, together with a machine readable listing of the loaded
plugins for frontend consumption.

Run assembles all the pieces, for a custom setup the subpackages can be
used directly.
*/
package plugmux

import (
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/plugmux/plugmux/logging"
	"github.com/plugmux/plugmux/metrics"
	"github.com/plugmux/plugmux/plugin"
	"github.com/plugmux/plugmux/server"
)

// Options to start a dispatcher instance with Run.
type Options struct {

	// Network address that the dispatcher should listen on.
	Address string

	// Loaders construct the plugin instances to serve. They are run
	// in order over a shared plugin.Context, so later loaders can
	// see the instances created by earlier ones.
	Loaders []plugin.Loader

	// DataProvider reports which plugins have data for an
	// experiment. Optional, when nil no plugin is considered active
	// on the basis of data.
	DataProvider plugin.DataProvider

	// PathPrefix is an optional path under which the whole route
	// table is mounted, e.g. when serving behind a reverse proxy.
	// Must be empty or start with a slash and not end with one.
	PathPrefix string

	// ExperimentalPlugins lists plugin names that are hidden from
	// the listing unless the client requests them explicitly.
	ExperimentalPlugins []string

	// MetricsListener is a separate network address to expose
	// Prometheus metrics on. When empty, metrics collection is
	// disabled.
	MetricsListener string

	// ApplicationLogOutput is the target of the application log.
	// Defaults to stderr.
	ApplicationLogOutput io.Writer

	// ApplicationLogPrefix is prepended to each application log
	// entry.
	ApplicationLogPrefix string

	// ApplicationLogLevel sets the logrus level of the application
	// log.
	ApplicationLogLevel string

	// AccessLogOutput is the target of the access log. Defaults to
	// stderr.
	AccessLogOutput io.Writer

	// AccessLogDisabled turns off access logging.
	AccessLogDisabled bool

	// AccessLogJSONEnabled writes access log entries as JSON
	// instead of the combined log format.
	AccessLogJSONEnabled bool
}

func (o Options) loggingOptions() logging.Options {
	return logging.Options{
		ApplicationLogPrefix: o.ApplicationLogPrefix,
		ApplicationLogOutput: o.ApplicationLogOutput,
		ApplicationLogLevel:  o.ApplicationLogLevel,
		AccessLogOutput:      o.AccessLogOutput,
		AccessLogDisabled:    o.AccessLogDisabled,
		AccessLogJSONEnabled: o.AccessLogJSONEnabled,
	}
}

// LoadPlugins runs the loaders in order over a shared context and
// returns the constructed plugin instances. Each loaded instance is
// registered in ctx.Instances under its name before the next loader
// runs.
func LoadPlugins(loaders []plugin.Loader, ctx plugin.Context) ([]plugin.Plugin, error) {
	if ctx.Logger == nil {
		ctx.Logger = log.StandardLogger()
	}

	if ctx.Instances == nil {
		ctx.Instances = make(map[string]plugin.Plugin)
	}

	plugins := make([]plugin.Plugin, 0, len(loaders))
	for i, l := range loaders {
		p, err := l.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading plugin %d: %w", i, err)
		}

		plugins = append(plugins, p)
		ctx.Instances[p.Name()] = p
	}

	return plugins, nil
}

// Run starts a dispatcher instance with the given options and blocks
// serving HTTP until the listener fails.
func Run(o Options) error {
	if err := logging.Init(o.loggingOptions()); err != nil {
		return err
	}

	m := metrics.Default
	if o.MetricsListener != "" {
		prom := metrics.NewPrometheus()
		m = prom

		mux := http.NewServeMux()
		mux.Handle("/metrics", prom.Handler())
		go func() {
			log.Infof("metrics listener on %s", o.MetricsListener)
			if err := http.ListenAndServe(o.MetricsListener, mux); err != nil {
				log.Errorf("metrics listener failed: %v", err)
			}
		}()
	}

	plugins, err := LoadPlugins(o.Loaders, plugin.Context{
		DataProvider: o.DataProvider,
		PathPrefix:   o.PathPrefix,
	})
	if err != nil {
		return err
	}

	s, err := server.New(server.Options{
		Plugins:             plugins,
		DataProvider:        o.DataProvider,
		PathPrefix:          o.PathPrefix,
		ExperimentalPlugins: o.ExperimentalPlugins,
		Metrics:             m,
	})
	if err != nil {
		return err
	}

	log.Infof("dispatcher listener on %s", o.Address)
	return http.ListenAndServe(o.Address, logging.NewHandler(s))
}
