// Package httpmetrics counts served requests with opencensus.
package httpmetrics

import (
	"net/http"
	"strconv"

	"github.com/golang/glog"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	pathKey   = tag.MustNewKey("path")
	methodKey = tag.MustNewKey("method")
	codeKey   = tag.MustNewKey("code")
)

type Wrapper struct {
	requestCount     *stats.Int64Measure
	requestCountView *view.View

	inner http.Handler
}

func New(inner http.Handler) *Wrapper {
	r := &Wrapper{}

	r.requestCount = stats.Int64("checkertrace/debug/requests", "", stats.UnitDimensionless)
	r.requestCountView = &view.View{
		Name:        "checkertrace/debug/requests",
		Description: "Counter of debug requests that have been handled",

		TagKeys: []tag.Key{pathKey, methodKey, codeKey},

		Measure:     r.requestCount,
		Aggregation: view.Count(),
	}

	r.inner = inner

	return r
}

func (h *Wrapper) RegisterMetrics() error {
	return view.Register(h.requestCountView)
}

func (h *Wrapper) UnregisterMetrics() {
	view.Unregister(h.requestCountView)
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Wrapper) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
	h.inner.ServeHTTP(rec, r)

	glog.V(1).Infof("Served path=%q method=%s code=%d remoteaddr=%q", r.URL.Path, r.Method, rec.code, r.RemoteAddr)

	stats.RecordWithOptions(
		r.Context(),
		stats.WithTags(
			tag.Insert(pathKey, r.URL.Path),
			tag.Insert(methodKey, r.Method),
			tag.Insert(codeKey, strconv.Itoa(rec.code)),
		),
		stats.WithMeasurements(h.requestCount.M(1)))
}
