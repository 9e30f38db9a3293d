package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrometheusCounters(t *testing.T) {
	p := NewPrometheus()

	p.MeasureDispatch("scalars", time.Now())
	p.MeasureDispatch("scalars", time.Now())
	p.IncNotFound()
	p.IncActivityCheckFailure("graphs")

	w := httptest.NewRecorder()
	p.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	body := w.Body.String()
	assert.Contains(t, body, `plugmux_dispatch_requests_total{plugin="scalars"} 2`)
	assert.Contains(t, body, "plugmux_dispatch_not_found_total 1")
	assert.Contains(t, body, `plugmux_plugin_activity_check_failures_total{plugin="graphs"} 1`)
}

func TestVoid(t *testing.T) {
	var m Metrics = Void{}
	m.MeasureDispatch("x", time.Now())
	m.IncNotFound()
	m.IncActivityCheckFailure("x")
	assert.Equal(t, Void{}, Default)
}
