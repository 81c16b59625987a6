package ui

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/codegen-studio/engine/internal/client"
	"github.com/codegen-studio/engine/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubServer answers requests by method and path. failures maps a route to
// the HTTP status it fails with.
type stubServer struct {
	mu       sync.Mutex
	routes   map[string]string
	failures map[string]int
	calls    []string
}

func (s *stubServer) Request(_ context.Context, method, path string, _ any) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, method+" "+path)
	rec := httptest.NewRecorder()
	if status, failed := s.failures[method+" "+path]; failed {
		rec.WriteHeader(status)
		_, _ = io.WriteString(rec, `{"success":false,"error":{"code":"internal","message":"internal error"}}`)
		return rec.Result(), nil
	}
	body, ok := s.routes[method+" "+path]
	if !ok {
		rec.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(rec, `{"success":false,"error":{"code":"not_found","message":"not found"}}`)
		return rec.Result(), nil
	}
	status := http.StatusOK
	if method == http.MethodPost {
		status = http.StatusCreated
	}
	rec.Header().Set("Content-Type", "application/json")
	rec.WriteHeader(status)
	_, _ = io.WriteString(rec, body)
	return rec.Result(), nil
}

func newTestModel(t *testing.T, routes map[string]string) (*Model, *stubServer) {
	t.Helper()
	srv := &stubServer{routes: routes}
	m := New(context.Background(), Options{
		API:              client.NewAPI(srv, client.NewCache(srv)),
		DownloadDir:      t.TempDir(),
		ProgressInterval: time.Hour,
		FilesInterval:    time.Hour,
	})
	t.Cleanup(m.Close)
	return m, srv
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+e":
		return tea.KeyMsg{Type: tea.KeyCtrlE}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// next waits for the next watch or notice message.
func next(t *testing.T, m *Model) tea.Msg {
	t.Helper()
	got := make(chan tea.Msg, 1)
	go func() { got <- m.listen()() }()
	select {
	case msg := <-got:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("no message")
		return nil
	}
}

func TestDashboardFileNavigation(t *testing.T) {
	m, _ := newTestModel(t, nil)
	id := uuid.New()
	m.session.SetActiveProject(id)

	files := []models.GeneratedFile{
		{ID: uuid.New(), ProjectID: id, Filename: "index.html", FileType: models.FileHTML, Content: "<h1>hi</h1>"},
		{ID: uuid.New(), ProjectID: id, Filename: "app.js", FileType: models.FileJavaScript, Content: "let a = 1"},
	}
	_, cmd := m.Update(filesMsg{projectID: id, files: files, state: client.StateOK})
	assert.NotNil(t, cmd)
	require.Len(t, m.files, 2)

	m.Update(keyMsg("tab"))
	assert.Equal(t, focusFiles, m.focus)

	m.Update(keyMsg("j"))
	m.Update(keyMsg("j"))
	assert.Equal(t, 1, m.cursor)
	m.Update(keyMsg("enter"))
	require.NotNil(t, m.session.SelectedFile())
	assert.Equal(t, "app.js", m.session.SelectedFile().Filename)

	// another project's files are ignored
	m.Update(filesMsg{projectID: uuid.New(), state: client.StateEmpty})
	assert.Len(t, m.files, 2)

	// the open file follows content updates
	updated := append([]models.GeneratedFile(nil), files...)
	updated[1].Content = "let a = 2"
	m.Update(filesMsg{projectID: id, files: updated, state: client.StateOK})
	assert.Equal(t, "let a = 2", m.session.SelectedFile().Content)

	// the cursor stays in range when the list shrinks
	m.Update(filesMsg{projectID: id, files: updated[:1], state: client.StateOK})
	assert.Equal(t, 0, m.cursor)
}

func TestDashboardIgnoresStaleProgress(t *testing.T) {
	m, _ := newTestModel(t, nil)
	id := uuid.New()
	m.session.SetActiveProject(id)

	m.Update(progressMsg{projectID: uuid.New(), records: progressOf(100, 100, 100)})
	assert.Empty(t, m.progress)

	m.Update(progressMsg{projectID: id, records: progressOf(100, 50, 0)})
	assert.Len(t, m.progress, 3)
	assert.Contains(t, m.View(), "50%")
}

func TestDashboardNoticeInView(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m.Update(noticeMsg{Title: "Download failed", Description: "Failed to download file", Destructive: true})
	assert.Contains(t, m.View(), "Download failed: Failed to download file")
}

func TestDashboardExamplePrompt(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m.Update(keyMsg("ctrl+e"))
	assert.Contains(t, ExamplePrompts, m.prompt.Value())
}

func TestDashboardEmptyPromptIsNotSubmitted(t *testing.T) {
	m, srv := newTestModel(t, nil)
	_, cmd := m.Update(keyMsg("ctrl+s"))
	require.NotNil(t, cmd)
	assert.False(t, m.submitting)

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	notice, ok := next(t, m).(noticeMsg)
	require.True(t, ok)
	assert.Equal(t, "Please enter a prompt", notice.Title)
	assert.Nil(t, <-done)
	assert.Empty(t, srv.calls)
}

func TestDashboardSubmitWatchesNewProject(t *testing.T) {
	id := uuid.New()
	project := models.Project{ID: id, Name: "Build a todo app", Prompt: "Build a todo app", Status: models.ProjectPending}
	file := models.GeneratedFile{ID: uuid.New(), ProjectID: id, Filename: "index.html", FileType: models.FileHTML, Content: "<p>"}
	m, _ := newTestModel(t, map[string]string{
		"POST /api/projects":                          mustJSON(t, project),
		"GET /api/projects/" + id.String() + "/files": mustJSON(t, []models.GeneratedFile{file}),
		"GET /api/projects/" + id.String() + "/progress": mustJSON(t, []models.GenerationProgress{
			{ProjectID: id, NodeType: models.NodePlanner, Status: models.ProgressInProgress, Progress: 30},
		}),
	})

	m.prompt.SetValue("  Build a todo app  ")
	_, cmd := m.Update(keyMsg("ctrl+s"))
	require.NotNil(t, cmd)
	assert.True(t, m.submitting)

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	notice, ok := next(t, m).(noticeMsg)
	require.True(t, ok)
	assert.Equal(t, "Project created successfully!", notice.Title)

	msg := (<-done).(submittedMsg)
	require.NoError(t, msg.err)
	m.Update(msg)
	assert.False(t, m.submitting)
	assert.Empty(t, m.prompt.Value())

	for i := 0; i < 2; i++ {
		m.Update(next(t, m))
	}
	require.Len(t, m.files, 1)
	assert.Equal(t, "index.html", m.files[0].Filename)
	require.Len(t, m.progress, 1)
	assert.Equal(t, 30, m.progress[0].Progress)
	assert.True(t, strings.Contains(m.View(), "index.html"))
}

func TestDashboardShowsUnavailableFiles(t *testing.T) {
	m, _ := newTestModel(t, nil)
	id := uuid.New()
	m.session.SetActiveProject(id)

	m.Update(filesMsg{projectID: id, state: client.StateUnavailable})
	view := m.View()
	assert.Contains(t, view, EmptyFilesText)
	assert.Contains(t, view, "server unavailable")
}

func TestDashboardFilesServerErrorShowsEmptyTree(t *testing.T) {
	m, srv := newTestModel(t, nil)
	id := uuid.New()
	srv.failures = map[string]int{"GET /api/projects/" + id.String() + "/files": http.StatusInternalServerError}
	m.session.SetActiveProject(id)
	m.watchProject(id)

	for i := 0; i < 2; i++ {
		m.Update(next(t, m))
	}
	assert.Equal(t, client.StateEmpty, m.filesState)
	view := m.View()
	assert.Contains(t, view, EmptyFilesText)
	assert.NotContains(t, view, "server unavailable")
}

func TestDecodeEntryWrongShapeIsEmpty(t *testing.T) {
	bad := client.Entry{Data: json.RawMessage(`{"filename":"index.html"}`), State: client.StateOK}
	assert.Nil(t, decodeEntry[models.GeneratedFile](bad))

	good := client.Entry{Data: json.RawMessage(`[{"filename":"index.html"}]`), State: client.StateOK}
	files := decodeEntry[models.GeneratedFile](good)
	require.Len(t, files, 1)
	assert.Equal(t, "index.html", files[0].Filename)
}
