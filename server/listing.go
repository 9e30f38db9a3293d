package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/plugmux/plugmux/pathutil"
	"github.com/plugmux/plugmux/plugin"
	"github.com/plugmux/plugmux/routing"
)

type listingEntry struct {
	Enabled          bool                    `json:"enabled"`
	LoadingMechanism plugin.LoadingMechanism `json:"loading_mechanism"`
	TabName          string                  `json:"tab_name"`
	RemoveDOM        bool                    `json:"remove_dom"`
	DisableReload    bool                    `json:"disable_reload"`
}

// pluginsListing reports, for every listed plugin, whether it currently
// has content worth surfacing and how its frontend is loaded. Plugins are
// evaluated independently: one plugin's failing activity check never
// aborts the listing for the others.
func (s *Server) pluginsListing(w http.ResponseWriter, r *http.Request) error {
	requested := make(map[string]bool)
	for _, name := range r.URL.Query()["experimentalPlugin"] {
		requested[name] = true
	}

	dataActive := s.pluginsWithData(r)

	listing := make(map[string]listingEntry)
	for _, p := range s.index.Plugins() {
		name := p.Name()
		if s.experimental[name] && !requested[name] {
			continue
		}

		enabled := s.safeIsActive(p)
		if !enabled && dataActive != nil {
			for _, dep := range dataPluginNames(p) {
				if dataActive[dep] {
					enabled = true
					break
				}
			}
		}

		mechanism, err := s.loadingMechanism(p)
		if err != nil {
			return err
		}

		md := p.FrontendMetadata()
		tabName := md.TabName
		if tabName == "" {
			tabName = name
		}

		listing[name] = listingEntry{
			Enabled:          enabled,
			LoadingMechanism: mechanism,
			TabName:          tabName,
			RemoveDOM:        md.RemoveDOM,
			DisableReload:    md.DisableReload,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(listing)
}

// pluginsWithData queries the data provider once per listing request and
// returns the set of plugin names with data, or nil when no provider is
// configured. Provider failures downgrade to "no data", they are not the
// plugins' fault.
func (s *Server) pluginsWithData(r *http.Request) map[string]bool {
	if s.dataProvider == nil {
		return nil
	}

	experimentID := pathutil.ExperimentIDFrom(r.Context())
	names, err := s.dataProvider.ActivePlugins(r.Context(), experimentID)
	if err != nil {
		log.Errorf("listing plugins with data for experiment %q: %v", experimentID, err)
		return map[string]bool{}
	}

	active := make(map[string]bool, len(names))
	for _, name := range names {
		active[name] = true
	}

	return active
}

// safeIsActive queries a plugin's own activity predicate, treating a
// panicking plugin as inactive.
func (s *Server) safeIsActive(p plugin.Plugin) (active bool) {
	defer func() {
		if v := recover(); v != nil {
			log.Warnf("activity check of plugin %q failed: %v", p.Name(), v)
			s.metrics.IncActivityCheckFailure(p.Name())
			active = false
		}
	}()

	return p.IsActive()
}

// dataPluginNames returns the plugin's effective dependency set: its
// explicit declaration when the capability is present, the plugin's own
// name otherwise. A declared empty set stays empty.
func dataPluginNames(p plugin.Plugin) []string {
	if namer, ok := p.(plugin.DataPluginNamer); ok {
		return namer.DataPluginNames()
	}

	return []string{p.Name()}
}

// loadingMechanism derives the frontend loading descriptor from a
// plugin's metadata. Incompatible declarations are configuration errors
// that name the plugin; they surface on the listing request as a fault.
func (s *Server) loadingMechanism(p plugin.Plugin) (plugin.LoadingMechanism, error) {
	md := p.FrontendMetadata()
	name := p.Name()

	if md.IsNgComponent {
		if md.ElementName != "" {
			return plugin.LoadingMechanism{}, fmt.Errorf(
				"plugin %q declared itself as both a framework component and a legacy element %q",
				name, md.ElementName)
		}

		if md.ESModulePath != "" {
			return plugin.LoadingMechanism{}, fmt.Errorf(
				"plugin %q declared itself as both a framework component and an iframed module %q",
				name, md.ESModulePath)
		}

		return plugin.LoadingMechanism{Type: plugin.MechanismNgComponent}, nil
	}

	if md.ESModulePath != "" {
		modulePath, err := s.modulePath(name, md.ESModulePath)
		if err != nil {
			return plugin.LoadingMechanism{}, err
		}

		return plugin.LoadingMechanism{
			Type:       plugin.MechanismIFrame,
			ModulePath: modulePath,
		}, nil
	}

	if md.ElementName != "" {
		return plugin.LoadingMechanism{
			Type:        plugin.MechanismCustomElement,
			ElementName: md.ElementName,
		}, nil
	}

	return plugin.LoadingMechanism{Type: plugin.MechanismNone}, nil
}

// modulePath fully qualifies a plugin's ES module path and validates it:
// the module must be served same-origin by one of the plugin's own exact
// routes.
func (s *Server) modulePath(name, esModulePath string) (string, error) {
	if strings.HasPrefix(esModulePath, "//") {
		return "", fmt.Errorf(
			"plugin %q: expected module path %q to be a non-absolute path",
			name, esModulePath)
	}

	fq := s.pathPrefix + routing.NamespaceRoot + "/" + name + esModulePath
	if owner, ok := s.index.ExactOwner(fq); !ok || owner != name {
		return "", fmt.Errorf(
			"plugin %q: module path %q is not one of the plugin's exact routes",
			name, esModulePath)
	}

	return fq, nil
}
