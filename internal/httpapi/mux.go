package httpapi

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ModelDescriber identifies the loaded model in health responses.
type ModelDescriber interface {
	Name() string
	Version() string
}

// NewMux registers the operational endpoints. db may be nil when the audit
// log is disabled; a nil gatherer leaves /metrics unregistered.
func NewMux(db *sql.DB, model ModelDescriber, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db, model)
	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}
