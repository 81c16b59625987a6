package ui

import (
	"fmt"
	"strings"

	"github.com/codegen-studio/engine/internal/models"
	"github.com/google/uuid"
)

// EmptyFilesText is shown when a project has no files, including when the
// files read degraded after a server error.
const EmptyFilesText = "No files generated yet"

func fileIcon(t models.FileType) string {
	switch t.Kind() {
	case models.FileHTML:
		return "◇"
	case models.FileCSS:
		return "◆"
	case models.FileJavaScript:
		return "λ"
	case models.FileJSON:
		return "{}"
	case models.FileMarkdown:
		return "¶"
	default:
		return "·"
	}
}

// RenderFileTree lists files with their size; cursor marks the highlighted
// row and selected the file open in the preview.
func RenderFileTree(files []models.GeneratedFile, cursor int, selected uuid.UUID, width int) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Project Files"))
	b.WriteString("\n")
	if len(files) == 0 {
		b.WriteString(mutedStyle.Render(EmptyFilesText))
		return b.String()
	}
	for i, f := range files {
		marker := "  "
		if f.ID == selected && selected != uuid.Nil {
			marker = "▸ "
		}
		size := FormatFileSize(f.Size)
		name := truncate(fmt.Sprintf("%s%s %s", marker, fileIcon(f.FileType), f.Filename), width-len(size)-1)
		row := spread(name, mutedStyle.Render(size), width)
		if i == cursor {
			row = selectedStyle.Render(spread(name, size, width))
		}
		b.WriteString(row)
		if i < len(files)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// RenderStats shows the number of files and total lines.
func RenderStats(files []models.GeneratedFile, width int) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Session Stats"))
	b.WriteString("\n")
	b.WriteString(spread("Files Generated", activeStyle.Render(fmt.Sprint(len(files))), width))
	b.WriteString("\n")
	b.WriteString(spread("Lines of Code", successStyle.Render(fmt.Sprint(TotalLines(files))), width))
	return b.String()
}
