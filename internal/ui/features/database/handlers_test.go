package database

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querylens-labs/querylens/internal/session"
	"github.com/querylens-labs/querylens/internal/testutil"
	"github.com/querylens-labs/querylens/pkg/schema"

	_ "modernc.org/sqlite"
)

func fixtureBytes(t *testing.T) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT);
		INSERT INTO customers VALUES (1, 'alice'), (2, 'bob');
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func newTestRouter(t *testing.T) (*session.Session, http.Handler) {
	t.Helper()
	sess := session.New(session.WithLogger(testutil.NewTestLogger(t)))
	t.Cleanup(func() { _ = sess.Close() })

	r := chi.NewRouter()
	SetupRoutes(r, sess, testutil.NewTestLogger(t))
	return sess, r
}

func multipartUpload(t *testing.T, name string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadAndBrowse(t *testing.T) {
	_, router := newTestRouter(t)

	body, contentType := multipartUpload(t, "sales.db", fixtureBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/api/database", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var sch schema.Schema
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&sch))
	assert.Equal(t, "sales.db", sch.DatabaseName)
	assert.Equal(t, 1, sch.TotalTables)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/database", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var st Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	assert.Equal(t, "ready", st.State)
	assert.Equal(t, "sales.db", st.DatabaseName)
	assert.Equal(t, 1, st.TotalTables)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schema", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schema/ddl", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "CREATE TABLE customers")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schema/examples", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var examples []schema.ExampleQuery
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&examples))
	assert.NotEmpty(t, examples)
}

func TestUploadInvalidExtension(t *testing.T) {
	_, router := newTestRouter(t)

	body, contentType := multipartUpload(t, "notes.txt", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/database", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestUploadTooLarge(t *testing.T) {
	_, router := newTestRouter(t)

	big := make([]byte, 11<<20)
	body, contentType := multipartUpload(t, "big.db", big)
	req := httptest.NewRequest(http.MethodPost, "/api/database", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUploadNotADatabase(t *testing.T) {
	_, router := newTestRouter(t)

	body, contentType := multipartUpload(t, "fake.db", []byte("not sqlite"))
	req := httptest.NewRequest(http.MethodPost, "/api/database", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadMissingFileField(t *testing.T) {
	_, router := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "value"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/database", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemove(t *testing.T) {
	_, router := newTestRouter(t)

	body, contentType := multipartUpload(t, "sales.db", fixtureBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/api/database", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/database", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var st Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	assert.Equal(t, "empty", st.State)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/schema", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSchemaEndpointsWithoutDatabase(t *testing.T) {
	_, router := newTestRouter(t)

	for _, path := range []string{"/api/schema", "/api/schema/ddl", "/api/schema/examples"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/database", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var st Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	assert.Equal(t, "empty", st.State)
}
