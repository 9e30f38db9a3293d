// Package server implements the request dispatcher of the plugin
// multiplexing core.
//
// A Server is assembled once from the full plugin list and is immutable
// afterwards; every request is a lock-free read over the route index.
// Dispatch precedence is fixed: exact routes always win, among matching
// wildcard prefixes the longest wins.
package server

import (
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/plugmux/plugmux/httperror"
	"github.com/plugmux/plugmux/metrics"
	"github.com/plugmux/plugmux/pathutil"
	"github.com/plugmux/plugmux/plugin"
	"github.com/plugmux/plugmux/routing"
)

const (
	listingRoute = "/data/plugins_listing"
	entryRoute   = "/data/plugin_entry.html"
)

// Options to assemble a Server.
type Options struct {

	// Plugins is the full, already constructed plugin list.
	Plugins []plugin.Plugin

	// DataProvider reports which plugins have data for an experiment.
	// Optional; without it only the plugins' own activity checks feed the
	// listing.
	DataProvider plugin.DataProvider

	// PathPrefix under which the whole URL space is mounted. Empty, or
	// starting with a slash and not ending with one.
	PathPrefix string

	// ExperimentalPlugins are omitted from the plugins listing unless a
	// caller requests them by name. Their routes stay dispatchable.
	ExperimentalPlugins []string

	// Metrics defaults to metrics.Default.
	Metrics metrics.Metrics
}

// Server dispatches requests over the registered plugins. It owns the
// route index exclusively and never mutates it after construction.
type Server struct {
	index        *routing.Index
	dataProvider plugin.DataProvider
	pathPrefix   string
	experimental map[string]bool
	metrics      metrics.Metrics
}

// New validates the plugin list, builds the route index and returns the
// assembled dispatcher. Any configuration error is fatal and identifies
// the offending plugin.
func New(o Options) (*Server, error) {
	if o.Metrics == nil {
		o.Metrics = metrics.Default
	}

	s := &Server{
		dataProvider: o.DataProvider,
		pathPrefix:   o.PathPrefix,
		experimental: make(map[string]bool),
		metrics:      o.Metrics,
	}

	for _, name := range o.ExperimentalPlugins {
		s.experimental[name] = true
	}

	index, err := routing.Build(o.Plugins, routing.Options{
		PathPrefix: o.PathPrefix,
		CoreRoutes: map[string]plugin.Handler{
			listingRoute: s.pluginsListing,
			entryRoute:   s.pluginEntry,
		},
	})
	if err != nil {
		return nil, err
	}

	s.index = index
	return s, nil
}

// Index exposes the global route index, read-only.
func (s *Server) Index() *routing.Index {
	return s.index
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// An empty path, or exactly the configured prefix, redirects to the
	// slash terminated form so that relative asset links keep working.
	if raw := r.URL.Path; raw == "" || s.pathPrefix != "" && raw == s.pathPrefix {
		http.Redirect(w, r, raw+"/", http.StatusMovedPermanently)
		return
	}

	// The experiment segment is stripped from the request path itself, so
	// that handlers parsing their subpath from the URL see the same path
	// with and without an experiment id.
	if id, rest := pathutil.StripExperimentID(r.URL.Path); id != "" {
		u := *r.URL
		u.Path = rest
		u.RawPath = ""

		r = r.WithContext(pathutil.WithExperimentID(r.Context(), id))
		r.URL = &u
	}

	path := pathutil.Clean(r.URL.Path)

	if s.pathPrefix != "" {
		if _, under := pathutil.StripPrefix(path, s.pathPrefix); !under {
			s.notFound(w, path)
			return
		}
	}

	if h, ok := s.index.LookupExact(path); ok {
		owner, _ := s.index.ExactOwner(path)
		s.dispatch(w, r, h, owner)
		return
	}

	if h, prefix, ok := s.index.LookupPrefix(path); ok {
		owner, _ := s.index.PrefixOwner(prefix)
		s.dispatch(w, r, h, owner)
		return
	}

	s.notFound(w, path)
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, h plugin.Handler, owner string) {
	defer s.metrics.MeasureDispatch(owner, time.Now())
	httperror.Translate(h).ServeHTTP(w, r)
}

func (s *Server) notFound(w http.ResponseWriter, path string) {
	log.Debugf("path %s not found", path)
	s.metrics.IncNotFound()
	http.Error(w, "Not found", http.StatusNotFound)
}
