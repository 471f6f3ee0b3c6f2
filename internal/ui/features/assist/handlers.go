package assist

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/querylens-labs/querylens/internal/session"
	"github.com/querylens-labs/querylens/internal/ui/features/common"
	"github.com/querylens-labs/querylens/pkg/assist"
)

// Handlers provides HTTP handlers for the assist feature.
type Handlers struct {
	sess   *session.Session
	gen    assist.Generator
	logger *slog.Logger
}

// NewHandlers creates a Handlers instance. gen may be nil when no
// generation endpoint is configured.
func NewHandlers(sess *session.Session, gen assist.Generator, logger *slog.Logger) *Handlers {
	return &Handlers{sess: sess, gen: gen, logger: logger}
}

// Generate asks the collaborator for SQL, grounding the request with the
// loaded schema's DDL text. The returned SQL is advisory only; it still
// goes through the executor's safety checks when run.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	if h.gen == nil {
		common.Error(w, http.StatusServiceUnavailable, "no assist endpoint configured")
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.Error(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		common.Error(w, http.StatusBadRequest, "query must not be empty")
		return
	}

	genReq := assist.Request{Query: req.Query}
	if sch := h.sess.Schema(); sch != nil {
		genReq.Schema = sch.ToDDL()
	}

	resp, err := h.gen.Generate(r.Context(), genReq)
	if err != nil {
		h.logger.Warn("sql generation failed", "error", err)
		common.Error(w, http.StatusBadGateway, err.Error())
		return
	}

	common.JSON(w, http.StatusOK, Response{SQL: resp.SQL})
}
