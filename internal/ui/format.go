// Package ui renders the studio dashboard in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/codegen-studio/engine/internal/models"
)

// FormatFileSize renders a byte count as B, KB or MB with one decimal.
func FormatFileSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}

// CountLines counts "\n"-separated segments, so "" is one line and a trailing
// newline adds an empty last line.
func CountLines(s string) int {
	return strings.Count(s, "\n") + 1
}

// TotalLines sums CountLines over every file.
func TotalLines(files []models.GeneratedFile) int {
	total := 0
	for _, f := range files {
		total += CountLines(f.Content)
	}
	return total
}
