package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"congress-hq/dashboard/pkg/catalog"
	"congress-hq/dashboard/pkg/congress"
	"congress-hq/dashboard/pkg/console"
	"congress-hq/dashboard/pkg/history"
	"congress-hq/dashboard/pkg/rules"
	"congress-hq/dashboard/pkg/schema"
	"congress-hq/dashboard/pkg/telemetry/logging"
	"congress-hq/dashboard/pkg/violations"
)

// DefaultHistoryLimit caps /history when no limit is given.
const DefaultHistoryLimit = 50

const maxFormatBody = 1 << 20

type api struct {
	backend    congress.Client
	console    *console.Service
	catalog    *catalog.Aggregator
	violations *violations.Aggregator
	history    history.Store
	logger     *slog.Logger
}

// param returns a path parameter, unescaped.
func param(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func (a *api) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	level := slog.LevelWarn
	if status >= 500 {
		level = slog.LevelError
	}
	a.logger.Log(r.Context(), level, "request failed",
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)
	writeError(w, status, code, err.Error())
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func (a *api) getCatalog(w http.ResponseWriter, r *http.Request) {
	withColumns := false
	if v := r.URL.Query().Get("columns"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			a.fail(w, r, badRequest("columns must be a boolean, got %q", v))
			return
		}
		withColumns = b
	}

	if withColumns {
		writeJSON(w, http.StatusOK, a.catalog.BuildWithColumns(r.Context()))
		return
	}
	writeJSON(w, http.StatusOK, a.catalog.Build(r.Context()))
}

func (a *api) getCatalogColumns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.catalog.BuildWithColumns(r.Context()))
}

func (a *api) getViolations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.violations.Scan(r.Context()))
}

func (a *api) listPolicies(w http.ResponseWriter, r *http.Request) {
	policies, err := congress.ListPolicies(r.Context(), a.backend)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, policies)
}

func (a *api) getPolicyRules(w http.ResponseWriter, r *http.Request) {
	policy := param(r, "policy")
	ctx := logging.WithPolicy(r.Context(), policy)

	listed, err := a.console.PolicyRules(ctx, policy)
	if err != nil {
		a.fail(w, r.WithContext(ctx), err)
		return
	}
	writeJSON(w, http.StatusOK, listed)
}

func (a *api) getPolicyTableRows(w http.ResponseWriter, r *http.Request) {
	policy := param(r, "policy")
	ctx := logging.WithPolicy(r.Context(), policy)

	view, err := a.console.TableView(ctx, schema.OriginPolicy, policy, param(r, "table"))
	if err != nil {
		a.fail(w, r.WithContext(ctx), err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (a *api) listDatasources(w http.ResponseWriter, r *http.Request) {
	list, err := a.backend.ListDataSources(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *api) getDatasourceStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := a.console.DatasourceStatuses(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (a *api) getDatasource(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	ctx := logging.WithDatasource(r.Context(), id)

	detail, err := a.console.DatasourceDetail(ctx, id)
	if err != nil {
		a.fail(w, r.WithContext(ctx), err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (a *api) getDatasourceTables(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	ctx := logging.WithDatasource(r.Context(), id)

	tables, err := a.console.DatasourceTables(ctx, id)
	if err != nil {
		a.fail(w, r.WithContext(ctx), err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

func (a *api) getDatasourceTableRows(w http.ResponseWriter, r *http.Request) {
	id := param(r, "id")
	ctx := logging.WithDatasource(r.Context(), id)

	view, err := a.console.TableView(ctx, schema.OriginService, id, param(r, "table"))
	if err != nil {
		a.fail(w, r.WithContext(ctx), err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// FormatRequest is the body of POST /rules/format.
type FormatRequest struct {
	Rule string `json:"rule"`
}

// FormatResponse is the reply of POST /rules/format.
type FormatResponse struct {
	Rule      string `json:"rule"`
	Formatted string `json:"formatted"`
}

func (a *api) formatRule(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	body := http.MaxBytesReader(w, r.Body, maxFormatBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		a.fail(w, r, badRequest("invalid JSON body: %v", err))
		return
	}
	if req.Rule == "" {
		a.fail(w, r, badRequest("rule is required"))
		return
	}
	writeJSON(w, http.StatusOK, FormatResponse{Rule: req.Rule, Formatted: rules.Format(req.Rule)})
}

func (a *api) listLibrary(w http.ResponseWriter, r *http.Request) {
	policies, err := a.console.LibraryPolicies(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, policies)
}

func (a *api) getLibraryPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := a.console.LibraryPolicy(r.Context(), param(r, "name"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, policy)
}

func (a *api) listDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := a.console.Drivers(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, drivers)
}

func (a *api) listHistory(w http.ResponseWriter, r *http.Request) {
	query, err := historyQuery(r.URL.Query())
	if err != nil {
		a.fail(w, r, err)
		return
	}

	scans, err := a.history.List(r.Context(), query)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scans)
}

func historyQuery(values url.Values) (history.Query, error) {
	query := history.Query{
		Limit:  DefaultHistoryLimit,
		Policy: values.Get("policy"),
	}

	if v := values.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return query, badRequest("limit must be a positive integer, got %q", v)
		}
		query.Limit = n
	}
	if v := values.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return query, badRequest("since must be an RFC 3339 time, got %q", v)
		}
		query.Since = since
	}
	return query, nil
}

func (a *api) getHistory(w http.ResponseWriter, r *http.Request) {
	ctx := logging.WithScanID(r.Context(), param(r, "id"))

	scan, err := a.history.Get(ctx, param(r, "id"))
	if err != nil {
		a.fail(w, r.WithContext(ctx), err)
		return
	}
	writeJSON(w, http.StatusOK, scan)
}
