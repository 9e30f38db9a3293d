// Package routing builds the immutable route index of the dispatch core.
//
// Registration happens once, at startup: every plugin's name and declared
// routes are validated, fully qualified under the plugin namespace and
// inserted into an exact route table and a longest-prefix tree. Any
// syntax violation or collision aborts construction with an error naming
// the offending plugin; nothing is ever silently overwritten. The
// resulting Index is read-only for the process lifetime and safe for
// unsynchronized concurrent lookups.
package routing

import (
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/plugmux/plugmux/pathmux"
	"github.com/plugmux/plugmux/pathutil"
	"github.com/plugmux/plugmux/plugin"
)

// NamespaceRoot is the fixed root under which every plugin owns its
// subtree: {path prefix}/data/plugin/{plugin name}{route}.
const NamespaceRoot = "/data/plugin"

// Options for building a route index.
type Options struct {

	// PathPrefix is prepended to every route. Empty, or starting with a
	// slash and not ending with one.
	PathPrefix string

	// CoreRoutes are exact routes owned by the dispatch core itself, not
	// by any plugin, e.g. the plugins listing. Keys are paths relative to
	// the path prefix.
	CoreRoutes map[string]plugin.Handler
}

// Index is the global route index: the union over all plugins of their
// exact and wildcard-prefix route tables.
type Index struct {
	pathPrefix  string
	exact       map[string]plugin.Handler
	exactOwner  map[string]string
	prefixes    *pathmux.Tree
	prefixOwner map[string]string
	plugins     []plugin.Plugin
	byName      map[string]plugin.Plugin
}

// Build constructs the route index from the full plugin list. It is the
// single write of the index's lifetime.
func Build(plugins []plugin.Plugin, o Options) (*Index, error) {
	if err := validatePathPrefix(o.PathPrefix); err != nil {
		return nil, err
	}

	ix := &Index{
		pathPrefix:  o.PathPrefix,
		exact:       make(map[string]plugin.Handler),
		exactOwner:  make(map[string]string),
		prefixes:    &pathmux.Tree{},
		prefixOwner: make(map[string]string),
		plugins:     plugins,
		byName:      make(map[string]plugin.Plugin),
	}

	for path, h := range o.CoreRoutes {
		if err := ix.addExact(o.PathPrefix+path, h, "core"); err != nil {
			return nil, err
		}
	}

	for i, p := range plugins {
		name := p.Name()
		if err := ValidateName(name); err != nil {
			return nil, fmt.Errorf("plugin %d: %w", i, err)
		}

		if _, ok := ix.byName[name]; ok {
			return nil, fmt.Errorf("%w %q: claimed by two plugins", ErrDuplicateName, name)
		}

		ix.byName[name] = p

		base := pathutil.Canonical(o.PathPrefix + NamespaceRoot + "/" + name)
		routes := p.Routes()
		for _, route := range sortedRoutes(routes) {
			if err := ValidateRoute(route); err != nil {
				return nil, fmt.Errorf("plugin %q: %w", name, err)
			}

			fq := base + route
			if strings.HasSuffix(route, "/*") {
				err := ix.addPrefix(strings.TrimSuffix(fq, "/*"), routes[route], name)
				if err != nil {
					return nil, err
				}
			} else if err := ix.addExact(fq, routes[route], name); err != nil {
				return nil, err
			}

			log.Debugf("registered route %s for plugin %s", fq, name)
		}
	}

	return ix, nil
}

func validatePathPrefix(prefix string) error {
	if prefix == "" {
		return nil
	}

	if prefix[0] != '/' || strings.HasSuffix(prefix, "/") {
		return fmt.Errorf(
			"path prefix %q must start with a slash and must not end with one",
			prefix)
	}

	return nil
}

func (ix *Index) addExact(path string, h plugin.Handler, owner string) error {
	if other, ok := ix.exactOwner[path]; ok {
		return fmt.Errorf(
			"%w: exact path %s claimed by both %q and %q",
			ErrDuplicateRoute, path, other, owner)
	}

	ix.exact[path] = h
	ix.exactOwner[path] = owner
	return nil
}

func (ix *Index) addPrefix(prefix string, h plugin.Handler, owner string) error {
	if other, ok := ix.prefixOwner[prefix]; ok {
		return fmt.Errorf(
			"%w: prefix %s/* claimed by both %q and %q",
			ErrDuplicateRoute, prefix, other, owner)
	}

	if err := ix.prefixes.Add(prefix, h); err != nil {
		return fmt.Errorf("plugin %q: %w", owner, err)
	}

	ix.prefixOwner[prefix] = owner
	return nil
}

// LookupExact returns the handler registered for exactly this path.
func (ix *Index) LookupExact(path string) (plugin.Handler, bool) {
	h, ok := ix.exact[path]
	return h, ok
}

// LookupPrefix returns the handler of the longest registered wildcard
// prefix that the path continues past with at least one more segment,
// together with the matched prefix.
func (ix *Index) LookupPrefix(path string) (plugin.Handler, string, bool) {
	value, prefix, found := ix.prefixes.Lookup(path)
	if !found {
		return nil, "", false
	}

	return value.(plugin.Handler), prefix, true
}

// ExactOwner returns the name of the plugin owning an exact route, or
// "core" for routes owned by the dispatch core itself.
func (ix *Index) ExactOwner(path string) (string, bool) {
	owner, ok := ix.exactOwner[path]
	return owner, ok
}

// PrefixOwner returns the name of the plugin owning a wildcard prefix.
func (ix *Index) PrefixOwner(prefix string) (string, bool) {
	owner, ok := ix.prefixOwner[prefix]
	return owner, ok
}

// PathPrefix returns the configured path prefix the index was built with.
func (ix *Index) PathPrefix() string {
	return ix.pathPrefix
}

// ExactRoutes returns the sorted fully qualified exact paths.
func (ix *Index) ExactRoutes() []string {
	paths := make([]string, 0, len(ix.exact))
	for path := range ix.exact {
		paths = append(paths, path)
	}

	sort.Strings(paths)
	return paths
}

// PrefixRoutes returns the sorted fully qualified wildcard prefixes,
// without their trailing /*.
func (ix *Index) PrefixRoutes() []string {
	prefixes := make([]string, 0, len(ix.prefixOwner))
	for prefix := range ix.prefixOwner {
		prefixes = append(prefixes, prefix)
	}

	sort.Strings(prefixes)
	return prefixes
}

// Plugins returns the registered plugins in registration order.
func (ix *Index) Plugins() []plugin.Plugin {
	return ix.plugins
}

// Plugin returns the registered plugin with the given name.
func (ix *Index) Plugin(name string) (plugin.Plugin, bool) {
	p, ok := ix.byName[name]
	return p, ok
}

func sortedRoutes(routes map[string]plugin.Handler) []string {
	keys := make([]string, 0, len(routes))
	for route := range routes {
		keys = append(keys, route)
	}

	sort.Strings(keys)
	return keys
}
