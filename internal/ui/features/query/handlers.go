package query

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/querylens-labs/querylens/internal/history"
	"github.com/querylens-labs/querylens/internal/session"
	"github.com/querylens-labs/querylens/internal/ui/features/common"
	"github.com/querylens-labs/querylens/pkg/analyze"
	"github.com/querylens-labs/querylens/pkg/chart"
	"github.com/querylens-labs/querylens/pkg/executor"
	"github.com/querylens-labs/querylens/pkg/sqlformat"
	"github.com/querylens-labs/querylens/pkg/tableview"
)

const browserSessionName = "querylens"

// Deps are the dependencies of the query feature.
type Deps struct {
	Session      *session.Session
	History      *history.Store
	SessionStore sessions.Store
	PageSize     int
	Logger       *slog.Logger
}

// Handlers provides HTTP handlers for the query feature.
type Handlers struct {
	deps Deps
}

// NewHandlers creates a Handlers instance.
func NewHandlers(deps Deps) *Handlers {
	if deps.PageSize <= 0 {
		deps.PageSize = tableview.DefaultPageSize
	}
	return &Handlers{deps: deps}
}

// Execute runs SQL and returns the result with its derived
// presentation values (column analysis, chart proposal, current page).
func (h *Handlers) Execute(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.SQL) == "" {
		common.Error(w, http.StatusBadRequest, "sql must not be empty")
		return
	}

	result, err := h.deps.Session.Execute(r.Context(), req.SQL)
	if err != nil {
		h.record(req.SQL, nil, err)
		if qerr, ok := executor.AsQueryError(err); ok {
			common.QueryError(w, http.StatusUnprocessableEntity, string(qerr.Kind), qerr.Message)
			return
		}
		common.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.record(req.SQL, result, nil)
	h.rememberLastSQL(w, r, req.SQL)

	infos := analyze.Columns(result.Columns, result.Rows)
	view := h.buildView(result, infos, req)

	common.JSON(w, http.StatusOK, Response{
		Result:     result,
		Columns:    infos,
		Chart:      chart.Select(result.Columns, result.Rows, infos),
		Page:       view.Page(),
		TotalPages: view.TotalPages(),
		Filtered:   view.FilteredCount(),
		PageRows:   view.PageRows(),
	})
}

// Export re-executes the query and streams the result in the requested
// format with the standard download filename.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.deps.Session.Execute(r.Context(), req.SQL)
	if err != nil {
		if qerr, ok := executor.AsQueryError(err); ok {
			common.QueryError(w, http.StatusUnprocessableEntity, string(qerr.Kind), qerr.Message)
			return
		}
		common.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	infos := analyze.Columns(result.Columns, result.Rows)
	view := h.buildView(result, infos, req)

	switch format {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", tableview.JSONFilename))
		if err := view.ExportJSON(w); err != nil {
			h.deps.Logger.Warn("json export failed", "error", err)
		}
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", tableview.CSVFilename))
		if err := view.ExportCSV(w); err != nil {
			h.deps.Logger.Warn("csv export failed", "error", err)
		}
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(view.PlainText()))
	default:
		common.Error(w, http.StatusBadRequest, "unknown export format: "+format)
	}
}

// Format pretty-prints SQL text for display.
func (h *Handlers) Format(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	common.JSON(w, http.StatusOK, FormatResponse{SQL: sqlformat.Format(req.SQL)})
}

// LastSQL returns the browser session's last executed query so a page
// reload can restore the editor.
func (h *Handlers) LastSQL(w http.ResponseWriter, r *http.Request) {
	browser, _ := h.deps.SessionStore.Get(r, browserSessionName)
	last, _ := browser.Values["last_sql"].(string)
	common.JSON(w, http.StatusOK, FormatResponse{SQL: last})
}

// History returns the most recent persisted executions.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	if h.deps.History == nil {
		common.JSON(w, http.StatusOK, []history.Entry{})
		return
	}
	entries, err := h.deps.History.ListRecent(50)
	if err != nil {
		common.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	common.JSON(w, http.StatusOK, entries)
}

// buildView applies the request's filter/sort/page state to the result.
func (h *Handlers) buildView(result *executor.QueryResult, infos []analyze.ColumnInfo, req Request) *tableview.View {
	view := tableview.New(result.Columns, result.Rows, infos,
		tableview.WithPageSize(h.deps.PageSize))
	if req.Search != "" {
		view.SetSearch(req.Search)
	}
	if req.SortColumn != nil {
		view.ToggleSort(*req.SortColumn)
		if strings.EqualFold(req.SortDir, "desc") {
			view.ToggleSort(*req.SortColumn)
		}
	}
	if req.Page > 0 {
		view.SetPage(req.Page)
	}
	return view
}

// record persists the execution outcome when a history store is wired.
func (h *Handlers) record(sql string, result *executor.QueryResult, err error) {
	if h.deps.History == nil {
		return
	}
	entry := history.Entry{SQL: sql, Status: history.StatusOK}
	if sch := h.deps.Session.Schema(); sch != nil {
		entry.Database = sch.DatabaseName
	}
	if err != nil {
		entry.Status = history.StatusError
		if qerr, ok := executor.AsQueryError(err); ok {
			entry.ErrorKind = string(qerr.Kind)
		}
	} else if result != nil {
		entry.RowCount = result.RowCount
		entry.DurationMs = result.ExecutionTimeMs
	}
	if _, rerr := h.deps.History.Record(entry); rerr != nil {
		h.deps.Logger.Warn("failed to record history", "error", rerr)
	}
}

// rememberLastSQL stores the query in the browser cookie session.
func (h *Handlers) rememberLastSQL(w http.ResponseWriter, r *http.Request, sql string) {
	browser, _ := h.deps.SessionStore.Get(r, browserSessionName)
	browser.Values["last_sql"] = sql
	if err := browser.Save(r, w); err != nil {
		h.deps.Logger.Debug("failed to save browser session", "error", err)
	}
}
