package tableview

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querylens-labs/querylens/pkg/analyze"
)

func newExportView(t *testing.T) *View {
	t.Helper()
	columns := []string{"id", "comment"}
	rows := [][]any{
		{int64(1), `He said, "hi"`},
		{int64(2), "line1\nline2"},
		{int64(3), nil},
	}
	return New(columns, rows, analyze.Columns(columns, rows))
}

func TestExportCSVRoundTrip(t *testing.T) {
	v := newExportView(t)

	var buf bytes.Buffer
	require.NoError(t, v.ExportCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"id", "comment"}, records[0])
	assert.Equal(t, `He said, "hi"`, records[1][1])
	assert.Equal(t, "line1\nline2", records[2][1])
	assert.Equal(t, "", records[3][1])
}

func TestExportCSVRespectsViewState(t *testing.T) {
	v := newExportView(t)
	v.SetSearch("hi")

	var buf bytes.Buffer
	require.NoError(t, v.ExportCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1", records[1][0])
}

func TestExportJSON(t *testing.T) {
	v := newExportView(t)

	var buf bytes.Buffer
	require.NoError(t, v.ExportJSON(&buf))

	var payload JSONExport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))

	assert.Equal(t, []string{"id", "comment"}, payload.Columns)
	assert.Equal(t, 3, payload.Total)
	require.Len(t, payload.Data, 3)
	assert.Equal(t, `He said, "hi"`, payload.Data[0]["comment"])
	assert.Nil(t, payload.Data[2]["comment"])
	assert.NotEmpty(t, payload.ExportedAt)
}

func TestPlainText(t *testing.T) {
	v := newExportView(t)

	text := v.PlainText()
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	require.Len(t, lines, 5) // header + row 1 + row 2 (two lines) + row 3

	assert.Equal(t, "id\tcomment", lines[0])
	assert.Equal(t, "1\tHe said, \"hi\"", lines[1])
	assert.Equal(t, "3\tNULL", lines[4])
}

func TestRenderPretty(t *testing.T) {
	v := newExportView(t)

	var buf bytes.Buffer
	v.RenderPretty(&buf)

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "COMMENT")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(3 rows, page 1/1)")
}

func TestRenderAll(t *testing.T) {
	var buf bytes.Buffer
	RenderAll(&buf, []string{"a"}, [][]any{{int64(1)}, {nil}})

	out := buf.String()
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(2 rows)")
}

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteText(text string) error {
	f.text = text
	return f.err
}

func TestCopyToClipboard(t *testing.T) {
	v := newExportView(t)

	clip := &fakeClipboard{}
	require.NoError(t, v.CopyToClipboard(clip))
	assert.Equal(t, v.PlainText(), clip.text)

	failing := &fakeClipboard{err: errors.New("denied")}
	err := v.CopyToClipboard(failing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clipboard copy failed")

	assert.Error(t, v.CopyToClipboard(nil))
}
