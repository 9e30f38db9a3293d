// Package metrics collects the dispatch counters of the core. The
// Prometheus backend is the only real implementation; Void is used when
// metrics are disabled.
package metrics

import (
	"time"
)

// Metrics is the instrumentation surface used by the dispatcher and the
// activity resolver.
type Metrics interface {

	// MeasureDispatch records a dispatched request for a plugin with its
	// handling duration.
	MeasureDispatch(pluginName string, start time.Time)

	// IncNotFound counts a request that no registered route covered.
	IncNotFound()

	// IncActivityCheckFailure counts a recovered IsActive failure.
	IncActivityCheckFailure(pluginName string)
}

// Void is a no-op implementation of Metrics.
type Void struct{}

func (Void) MeasureDispatch(string, time.Time) {}
func (Void) IncNotFound()                      {}
func (Void) IncActivityCheckFailure(string)    {}

// Default is the implementation used when none is configured.
var Default Metrics = Void{}
