package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"congress-hq/dashboard/pkg/catalog"
	"congress-hq/dashboard/pkg/congress"
	"congress-hq/dashboard/pkg/console"
	"congress-hq/dashboard/pkg/history"
	"congress-hq/dashboard/pkg/telemetry/health"
	"congress-hq/dashboard/pkg/violations"
)

// Dependencies are the collaborators the router serves from. Backend is
// required; every other field may be left zero.
type Dependencies struct {
	Backend congress.Client

	// History enables the /history routes.
	History history.Store

	// Health mounts the probes at LivenessPath and ReadinessPath.
	Health        *health.Checker
	LivenessPath  string
	ReadinessPath string

	// Metrics is mounted at MetricsPath. Recorder receives request outcomes.
	Metrics     http.Handler
	MetricsPath string
	Recorder    HTTPRecorder

	// CatalogRecorder and ViolationRecorder receive build and scan outcomes.
	CatalogRecorder   catalog.Recorder
	ViolationRecorder violations.Recorder

	// RequestTimeout bounds each API request. Zero disables it.
	RequestTimeout time.Duration

	// Version is served at /version.
	Version   string
	Commit    string
	BuildTime string

	Logger *slog.Logger
}

// NewRouter builds the HTTP handler.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "server.api")

	catalogOpts := []catalog.Option{catalog.WithLogger(logger)}
	if deps.CatalogRecorder != nil {
		catalogOpts = append(catalogOpts, catalog.WithRecorder(deps.CatalogRecorder))
	}

	a := &api{
		backend:    deps.Backend,
		console:    console.NewService(deps.Backend, logger),
		catalog:    catalog.NewAggregator(deps.Backend, catalogOpts...),
		violations: violations.NewAggregator(deps.Backend, deps.ViolationRecorder, logger),
		history:    deps.History,
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog(logger, deps.Recorder))
	r.Use(recovery(logger))

	if deps.Health != nil {
		r.Get(pathOr(deps.LivenessPath, "/health"), deps.Health.LivenessHandler())
		r.Get(pathOr(deps.ReadinessPath, "/ready"), deps.Health.ReadinessHandler())
	}
	r.Get("/version", health.VersionHandler(deps.Version, deps.Commit, deps.BuildTime))
	if deps.Metrics != nil {
		r.Handle(pathOr(deps.MetricsPath, "/metrics"), deps.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if deps.RequestTimeout > 0 {
			r.Use(chimw.Timeout(deps.RequestTimeout))
		}

		r.Get("/catalog", a.getCatalog)
		r.Get("/catalog/columns", a.getCatalogColumns)
		r.Get("/violations", a.getViolations)

		r.Route("/policies", func(r chi.Router) {
			r.Get("/", a.listPolicies)
			r.Get("/{policy}/rules", a.getPolicyRules)
			r.Get("/{policy}/tables/{table}/rows", a.getPolicyTableRows)
		})

		r.Route("/datasources", func(r chi.Router) {
			r.Get("/", a.listDatasources)
			r.Get("/statuses", a.getDatasourceStatuses)
			r.Get("/{id}", a.getDatasource)
			r.Get("/{id}/tables", a.getDatasourceTables)
			r.Get("/{id}/tables/{table}/rows", a.getDatasourceTableRows)
		})

		r.Post("/rules/format", a.formatRule)

		r.Get("/library", a.listLibrary)
		r.Get("/library/{name}", a.getLibraryPolicy)
		r.Get("/drivers", a.listDrivers)

		if a.history != nil {
			r.Get("/history", a.listHistory)
			r.Get("/history/{id}", a.getHistory)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, r.Method+" not allowed on "+r.URL.Path)
	})

	return r
}

func pathOr(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return path
}
