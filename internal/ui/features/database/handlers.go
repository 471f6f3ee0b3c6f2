package database

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/querylens-labs/querylens/internal/session"
	"github.com/querylens-labs/querylens/internal/ui/features/common"
	"github.com/querylens-labs/querylens/pkg/database"
	"github.com/querylens-labs/querylens/pkg/schema"
)

// uploadMemoryLimit bounds the multipart parse buffer; the file itself
// is capped separately by the load layer.
const uploadMemoryLimit = 16 << 20

// Handlers provides HTTP handlers for the database feature.
type Handlers struct {
	sess   *session.Session
	logger *slog.Logger
}

// NewHandlers creates a Handlers instance.
func NewHandlers(sess *session.Session, logger *slog.Logger) *Handlers {
	return &Handlers{sess: sess, logger: logger}
}

// Upload loads an uploaded database file, replacing any current one.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(uploadMemoryLimit); err != nil {
		common.Error(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		common.Error(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, database.MaxFileBytes+1))
	if err != nil {
		common.Error(w, http.StatusBadRequest, "failed to read upload: "+err.Error())
		return
	}

	sch, err := h.sess.LoadBytes(r.Context(), header.Filename, data)
	if err != nil {
		h.logger.Warn("database load failed", "file", header.Filename, "error", err)
		common.Error(w, loadStatus(err), err.Error())
		return
	}

	common.JSON(w, http.StatusOK, sch)
}

// Remove closes the current database.
func (h *Handlers) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.sess.Remove(); err != nil {
		common.Error(w, http.StatusConflict, err.Error())
		return
	}
	common.JSON(w, http.StatusOK, Status{State: h.sess.State().String()})
}

// GetStatus reports the database slot state.
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	st := Status{State: h.sess.State().String()}
	if sch := h.sess.Schema(); sch != nil {
		st.DatabaseName = sch.DatabaseName
		st.FileSizeBytes = sch.FileSizeBytes
		st.TotalTables = sch.TotalTables
	}
	common.JSON(w, http.StatusOK, st)
}

// GetSchema returns the full schema snapshot.
func (h *Handlers) GetSchema(w http.ResponseWriter, r *http.Request) {
	sch := h.sess.Schema()
	if sch == nil {
		common.Error(w, http.StatusNotFound, "no database loaded")
		return
	}
	common.JSON(w, http.StatusOK, sch)
}

// GetDDL returns the CREATE TABLE-style schema text used to ground the
// SQL assist collaborator.
func (h *Handlers) GetDDL(w http.ResponseWriter, r *http.Request) {
	sch := h.sess.Schema()
	if sch == nil {
		common.Error(w, http.StatusNotFound, "no database loaded")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(sch.ToDDL()))
}

// GetExamples returns starter queries derived from the schema.
func (h *Handlers) GetExamples(w http.ResponseWriter, r *http.Request) {
	sch := h.sess.Schema()
	if sch == nil {
		common.Error(w, http.StatusNotFound, "no database loaded")
		return
	}
	examples := sch.Examples()
	if examples == nil {
		examples = []schema.ExampleQuery{}
	}
	common.JSON(w, http.StatusOK, examples)
}

// loadStatus maps load failures to HTTP statuses: validation errors are
// the client's fault, busy is a conflict, anything else is a bad upload.
func loadStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, database.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, database.ErrInvalidExtension):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusBadRequest
	}
}
