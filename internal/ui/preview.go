package ui

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/codegen-studio/engine/internal/models"
	"github.com/codegen-studio/engine/pkg/logger"
	"go.uber.org/zap"
)

const (
	noSelectionTitle = "No file selected"
	noSelectionHint  = "Select a file from the project tree to view its content"
)

// Highlight colours source for a terminal. Unknown languages and highlighter
// failures fall back to the plain text.
func Highlight(source, language string) string {
	var b strings.Builder
	if err := quick.Highlight(&b, source, language, "terminal256", "monokai"); err != nil {
		logger.L().Debug("highlight failed", zap.String("language", language), zap.Error(err))
		return source
	}
	return b.String()
}

// RenderMarkdown renders markdown for a terminal of the given width.
func RenderMarkdown(source string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(max(20, width)),
	)
	if err != nil {
		return source
	}
	out, err := r.Render(source)
	if err != nil {
		logger.L().Debug("markdown render failed", zap.Error(err))
		return source
	}
	return out
}

// PreviewHeader is the filename, type badge, line count and size of f.
func PreviewHeader(f *models.GeneratedFile, width int) string {
	left := fmt.Sprintf("%s %s", headingStyle.Render(f.Filename), badgeStyle.Render(f.FileType.Label()))
	right := mutedStyle.Render(fmt.Sprintf("%d lines • %s", CountLines(f.Content), FormatFileSize(f.Size)))
	return spread(left, right, width)
}

// PreviewBody is the content of f, highlighted by file type, or rendered
// when f is markdown and rendered is set.
func PreviewBody(f *models.GeneratedFile, rendered bool, width int) string {
	if f == nil {
		return mutedStyle.Render(noSelectionTitle + "\n" + noSelectionHint)
	}
	if rendered && f.FileType.Kind() == models.FileMarkdown {
		return RenderMarkdown(f.Content, width)
	}
	return Highlight(f.Content, f.FileType.Language())
}
