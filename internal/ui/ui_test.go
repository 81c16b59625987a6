package ui

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/codegen-studio/engine/internal/models"
	"github.com/codegen-studio/engine/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	if _, err := logger.InitWriter("error", "json", io.Discard); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1024 * 1024, "1.0 MB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFileSize(tt.in), "size %d", tt.in)
	}
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 1, CountLines(""))
	assert.Equal(t, 2, CountLines("a\nb"))
	assert.Equal(t, 3, CountLines("a\nb\n"))

	files := []models.GeneratedFile{{Content: "a\nb"}, {Content: ""}}
	assert.Equal(t, 3, TotalLines(files))
}

func progressOf(planner, architect, coder int) []models.GenerationProgress {
	return []models.GenerationProgress{
		{NodeType: models.NodePlanner, Status: models.ProgressCompleted, Progress: planner},
		{NodeType: models.NodeArchitect, Status: models.ProgressInProgress, Progress: architect},
		{NodeType: models.NodeCoder, Status: models.ProgressPending, Progress: coder},
	}
}

func TestOverallProgress(t *testing.T) {
	assert.Equal(t, 50, OverallProgress(progressOf(100, 50, 0)))
	assert.Equal(t, 100, OverallProgress(progressOf(100, 100, 100)))
	assert.Equal(t, 0, OverallProgress(nil))
	// 1/3 rounds down, 2/3 rounds up
	assert.Equal(t, 0, OverallProgress(progressOf(1, 0, 0)))
	assert.Equal(t, 1, OverallProgress(progressOf(2, 0, 0)))
	// a missing node counts as zero
	assert.Equal(t, 33, OverallProgress(progressOf(100, 0, 0)[:1]))
}

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Pending", StatusText(nil))
	recs := progressOf(100, 50, 0)
	assert.Equal(t, "Complete", StatusText(&recs[0]))
	assert.Equal(t, "In Progress", StatusText(&recs[1]))
	assert.Equal(t, "Pending", StatusText(&recs[2]))
	assert.Equal(t, "Failed", StatusText(&models.GenerationProgress{Status: models.ProgressFailed}))
}

func TestRenderProgress(t *testing.T) {
	bar := progress.New(progress.WithoutPercentage())
	assert.Empty(t, RenderProgress(nil, bar, 40))

	out := RenderProgress(progressOf(100, 50, 0), bar, 40)
	assert.Contains(t, out, "Planner Node")
	assert.Contains(t, out, "Architect Node")
	assert.Contains(t, out, "Coder Node")
	assert.Contains(t, out, "50%")
}

func TestRenderFileTree(t *testing.T) {
	assert.Contains(t, RenderFileTree(nil, 0, uuid.Nil, 30), EmptyFilesText)

	files := []models.GeneratedFile{
		{ID: uuid.New(), Filename: "index.html", FileType: models.FileHTML, Size: 2048},
		{ID: uuid.New(), Filename: "app.js", FileType: models.FileType("js"), Size: 12},
	}
	out := RenderFileTree(files, 0, files[1].ID, 40)
	assert.Contains(t, out, "index.html")
	assert.Contains(t, out, "2.0 KB")
	assert.Contains(t, out, "▸ λ app.js")
}

func TestPreview(t *testing.T) {
	assert.Contains(t, PreviewBody(nil, false, 40), "No file selected")

	f := &models.GeneratedFile{Filename: "README.md", FileType: models.FileMarkdown, Content: "# Title\nbody", Size: 12}
	head := PreviewHeader(f, 60)
	assert.Contains(t, head, "README.md")
	assert.Contains(t, head, "2 lines")
	assert.Contains(t, head, "12 B")

	assert.Contains(t, PreviewBody(f, true, 60), "Title")
	assert.NotContains(t, PreviewBody(f, true, 60), "# Title")
}

func TestHighlightFallsBackToSource(t *testing.T) {
	out := Highlight("plain words", "no-such-language")
	assert.True(t, strings.Contains(out, "plain") && strings.Contains(out, "words"))
}
