package server

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugmux/plugmux/plugin"
)

func newListingServer(t *testing.T, pathPrefix string) *Server {
	return newTestServer(t, Options{
		PathPrefix: pathPrefix,
		Plugins: []plugin.Plugin{
			&fakePlugin{name: "foo"},
			&fakePlugin{
				name:   "bar",
				active: inactive,
				md:     plugin.FrontendMetadata{ElementName: "tf-bar-dashboard"},
			},
			&fakePlugin{
				name:   "baz",
				routes: map[string]plugin.Handler{"/esmodule": textHandler(200, "")},
				md:     plugin.FrontendMetadata{ESModulePath: "/esmodule"},
			},
			&fakePlugin{
				name:   "qux",
				active: inactive,
				md:     plugin.FrontendMetadata{IsNgComponent: true},
			},
		},
	})
}

func TestPluginsListing(t *testing.T) {
	s := newListingServer(t, "")

	parsed := getJSON(t, s, "/data/plugins_listing")
	expected := map[string]map[string]any{
		"foo": {
			"enabled":           true,
			"loading_mechanism": map[string]any{"type": "NONE"},
			"tab_name":          "foo",
			"remove_dom":        false,
			"disable_reload":    false,
		},
		"bar": {
			"enabled": false,
			"loading_mechanism": map[string]any{
				"type":         "CUSTOM_ELEMENT",
				"element_name": "tf-bar-dashboard",
			},
			"tab_name":       "bar",
			"remove_dom":     false,
			"disable_reload": false,
		},
		"baz": {
			"enabled": true,
			"loading_mechanism": map[string]any{
				"type":        "IFRAME",
				"module_path": "/data/plugin/baz/esmodule",
			},
			"tab_name":       "baz",
			"remove_dom":     false,
			"disable_reload": false,
		},
		"qux": {
			"enabled":           false,
			"loading_mechanism": map[string]any{"type": "NG_COMPONENT"},
			"tab_name":          "qux",
			"remove_dom":        false,
			"disable_reload":    false,
		},
	}

	if d := cmp.Diff(expected, parsed); d != "" {
		t.Error("listing mismatch:", d)
	}
}

func TestPluginsListingWithPathPrefix(t *testing.T) {
	s := newListingServer(t, "/test")

	parsed := getJSON(t, s, "/test/data/plugins_listing")
	assert.Equal(
		t,
		map[string]any{
			"type":        "IFRAME",
			"module_path": "/test/data/plugin/baz/esmodule",
		},
		parsed["baz"]["loading_mechanism"],
	)
}

func TestPluginsListingWithDataProvider(t *testing.T) {
	prov := &fakeDataProvider{names: []string{"foo", "bar"}}

	s := newTestServer(t, Options{
		DataProvider: prov,
		Plugins: []plugin.Plugin{
			&fakePlugin{name: "foo", active: inactive},
			&fakeDataPlugin{fakePlugin{name: "bar", active: inactive}, []string{}},
			&fakePlugin{name: "baz", active: inactive},
			&fakeDataPlugin{fakePlugin{name: "quux", active: inactive}, []string{"bar", "baz"}},
			&fakeDataPlugin{fakePlugin{name: "zod"}, []string{"none_but_should_fall_back"}},
		},
	})

	parsed := getJSON(t, s, "/data/plugins_listing")
	actives := make(map[string]any)
	for name, entry := range parsed {
		actives[name] = entry["enabled"]
	}

	assert.Equal(t, map[string]any{
		"foo":  true,  // directly has data
		"bar":  false, // has data, but does not depend on itself
		"baz":  false, // no data, and no dependencies
		"quux": true,  // no data, but depends on "bar"
		"zod":  true,  // no data, but IsActive returns true
	}, actives)
}

func TestPluginsListingDataProviderGetsExperimentID(t *testing.T) {
	prov := &fakeDataProvider{}
	s := newTestServer(t, Options{
		DataProvider: prov,
		Plugins:      []plugin.Plugin{&fakePlugin{name: "foo"}},
	})

	getJSON(t, s, "/experiment/exp1/data/plugins_listing")
	assert.Equal(t, []string{"exp1"}, prov.experimentIDs)
}

func TestPluginsListingDataProviderFailure(t *testing.T) {
	prov := &fakeDataProvider{err: errors.New("backend down")}
	s := newTestServer(t, Options{
		DataProvider: prov,
		Plugins: []plugin.Plugin{
			&fakePlugin{name: "foo", active: inactive},
			&fakePlugin{name: "bar"},
		},
	})

	parsed := getJSON(t, s, "/data/plugins_listing")
	assert.Equal(t, false, parsed["foo"]["enabled"])
	assert.Equal(t, true, parsed["bar"]["enabled"])
}

func TestPluginsListingRobustToIsActiveFailures(t *testing.T) {
	m := &countingMetrics{}
	s := newTestServer(t, Options{
		Metrics: m,
		Plugins: []plugin.Plugin{
			&fakePlugin{
				name:   "foo",
				active: func() bool { panic("this plugin is actually radioactive") },
			},
			&fakePlugin{name: "baz"},
		},
	})

	parsed := getJSON(t, s, "/data/plugins_listing")
	assert.Equal(t, false, parsed["foo"]["enabled"])
	assert.Equal(t, true, parsed["baz"]["enabled"])
	assert.Equal(t, []string{"foo"}, m.failures)
}

func TestPluginsListingWithExperimentalPlugin(t *testing.T) {
	s := newTestServer(t, Options{
		ExperimentalPlugins: []string{"foo"},
		Plugins: []plugin.Plugin{
			&fakePlugin{name: "bar"},
			&fakePlugin{name: "foo"},
			&fakePlugin{name: "bazz"},
		},
	})

	withoutFlag := getJSON(t, s, "/data/plugins_listing")
	assert.Contains(t, withoutFlag, "bar")
	assert.NotContains(t, withoutFlag, "foo")
	assert.Contains(t, withoutFlag, "bazz")

	withFlag := getJSON(t, s, "/data/plugins_listing?experimentalPlugin=foo")
	assert.Contains(t, withFlag, "bar")
	assert.Contains(t, withFlag, "foo")
	assert.Contains(t, withFlag, "bazz")

	withUselessFlag := getJSON(t, s, "/data/plugins_listing?experimentalPlugin=bar")
	assert.Contains(t, withUselessFlag, "bar")
	assert.NotContains(t, withUselessFlag, "foo")
	assert.Contains(t, withUselessFlag, "bazz")
}

func TestPluginsListingWithMultipleExperimentalPlugins(t *testing.T) {
	s := newTestServer(t, Options{
		ExperimentalPlugins: []string{"bar", "bazz"},
		Plugins: []plugin.Plugin{
			&fakePlugin{name: "bar"},
			&fakePlugin{name: "foo"},
			&fakePlugin{name: "bazz"},
		},
	})

	withoutFlag := getJSON(t, s, "/data/plugins_listing")
	assert.NotContains(t, withoutFlag, "bar")
	assert.Contains(t, withoutFlag, "foo")
	assert.NotContains(t, withoutFlag, "bazz")

	withOneFlag := getJSON(t, s, "/data/plugins_listing?experimentalPlugin=bar")
	assert.Contains(t, withOneFlag, "bar")
	assert.Contains(t, withOneFlag, "foo")
	assert.NotContains(t, withOneFlag, "bazz")

	withBothFlags := getJSON(t, s,
		"/data/plugins_listing?experimentalPlugin=bar&experimentalPlugin=bazz")
	assert.Contains(t, withBothFlags, "bar")
	assert.Contains(t, withBothFlags, "foo")
	assert.Contains(t, withBothFlags, "bazz")
}

func TestExperimentalPluginRoutesStayDispatchable(t *testing.T) {
	s := newTestServer(t, Options{
		ExperimentalPlugins: []string{"foo"},
		Plugins: []plugin.Plugin{&fakePlugin{
			name:   "foo",
			routes: map[string]plugin.Handler{"/foo_route": textHandler(200, "ok")},
		}},
	})

	assert.Equal(t, 200, get(s, "/data/plugin/foo/foo_route").Code)
}

func TestNgComponentConflicts(t *testing.T) {
	for _, test := range []struct {
		name string
		md   plugin.FrontendMetadata
	}{
		{"element name", plugin.FrontendMetadata{IsNgComponent: true, ElementName: "incompatible"}},
		{"module path", plugin.FrontendMetadata{IsNgComponent: true, ESModulePath: "//incompatible"}},
	} {
		t.Run(test.name, func(t *testing.T) {
			s := newTestServer(t, Options{
				Plugins: []plugin.Plugin{&fakePlugin{name: "quux", md: test.md}},
			})

			defer func() {
				v := recover()
				require.NotNil(t, v)
				assert.Contains(t, v.(error).Error(), "quux")
			}()

			getJSON(t, s, "/data/plugins_listing")
		})
	}
}

func TestTabNameOverride(t *testing.T) {
	s := newTestServer(t, Options{
		Plugins: []plugin.Plugin{&fakePlugin{
			name: "foo",
			md:   plugin.FrontendMetadata{TabName: "Foo Dashboard", RemoveDOM: true, DisableReload: true},
		}},
	})

	parsed := getJSON(t, s, "/data/plugins_listing")
	assert.Equal(t, "Foo Dashboard", parsed["foo"]["tab_name"])
	assert.Equal(t, true, parsed["foo"]["remove_dom"])
	assert.Equal(t, true, parsed["foo"]["disable_reload"])
}
