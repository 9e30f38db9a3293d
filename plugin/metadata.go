package plugin

// FrontendMetadata describes how a plugin's UI is surfaced to the
// frontend. The zero value is valid and means: no frontend, tab named
// after the plugin, DOM kept, reload enabled.
type FrontendMetadata struct {

	// ElementName is the custom element registered by the plugin's
	// frontend bundle, when the plugin renders as a custom element.
	ElementName string

	// ESModulePath is the plugin-local path of the ES module that renders
	// the plugin in an iframe. It must name one of the plugin's exact
	// routes and must be a same-origin relative path.
	ESModulePath string

	// IsNgComponent marks plugins built into the frontend framework
	// itself. Incompatible with ElementName and ESModulePath.
	IsNgComponent bool

	// TabName overrides the name shown on the plugin's tab. Empty means
	// the plugin name.
	TabName string

	// RemoveDOM requests the frontend to remove the plugin's DOM when it
	// is not the active tab.
	RemoveDOM bool

	// DisableReload excludes the plugin from the frontend's periodic data
	// reload.
	DisableReload bool
}

// Loading mechanism variants reported by the plugins listing.
const (
	MechanismNone          = "NONE"
	MechanismCustomElement = "CUSTOM_ELEMENT"
	MechanismIFrame        = "IFRAME"
	MechanismNgComponent   = "NG_COMPONENT"
)

// LoadingMechanism is the tagged variant describing the frontend loading
// strategy of a plugin, as serialized into the plugins listing.
type LoadingMechanism struct {
	Type        string `json:"type"`
	ElementName string `json:"element_name,omitempty"`
	ModulePath  string `json:"module_path,omitempty"`
}
