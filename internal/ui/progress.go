package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/codegen-studio/engine/internal/models"
)

// OverallProgress is the mean of the three node percentages, rounded half up
// and capped at 100. Missing nodes count as zero.
func OverallProgress(records []models.GenerationProgress) int {
	sum := 0
	for _, r := range records {
		sum += r.Progress
	}
	overall := int(math.Floor(float64(sum)/float64(len(models.NodeOrder)) + 0.5))
	return max(0, min(100, overall))
}

// StatusText is the label shown next to a node; nil means no record yet.
func StatusText(rec *models.GenerationProgress) string {
	if rec == nil {
		return "Pending"
	}
	switch rec.Status {
	case models.ProgressCompleted:
		return "Complete"
	case models.ProgressInProgress:
		return "In Progress"
	case models.ProgressFailed:
		return "Failed"
	default:
		return "Pending"
	}
}

func statusIcon(rec *models.GenerationProgress) string {
	if rec == nil {
		return mutedStyle.Render("○")
	}
	switch rec.Status {
	case models.ProgressCompleted:
		return successStyle.Render("✓")
	case models.ProgressInProgress:
		return activeStyle.Render("◐")
	case models.ProgressFailed:
		return dangerStyle.Render("!")
	default:
		return mutedStyle.Render("○")
	}
}

func statusStyled(rec *models.GenerationProgress) string {
	text := StatusText(rec)
	if rec == nil {
		return mutedStyle.Render(text)
	}
	switch rec.Status {
	case models.ProgressCompleted:
		return successStyle.Render(text)
	case models.ProgressInProgress:
		return activeStyle.Render(text)
	case models.ProgressFailed:
		return dangerStyle.Render(text)
	default:
		return mutedStyle.Render(text)
	}
}

func findNode(records []models.GenerationProgress, node models.NodeType) *models.GenerationProgress {
	for i := range records {
		if records[i].NodeType == node {
			return &records[i]
		}
	}
	return nil
}

// RenderProgress draws one row per node and the overall bar. It renders
// nothing when there are no records.
func RenderProgress(records []models.GenerationProgress, bar progress.Model, width int) string {
	if len(records) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(headingStyle.Render("Generation Progress"))
	b.WriteString("\n")
	for _, node := range models.NodeOrder {
		rec := findNode(records, node)
		left := fmt.Sprintf("%s %s", statusIcon(rec), node.Label())
		right := statusStyled(rec)
		b.WriteString(spread(left, right, width))
		b.WriteString("\n")
	}
	overall := OverallProgress(records)
	b.WriteString(spread(mutedStyle.Render("Overall Progress"), mutedStyle.Render(fmt.Sprintf("%d%%", overall)), width))
	b.WriteString("\n")
	bar.Width = max(10, width)
	b.WriteString(bar.ViewAs(float64(overall) / 100))
	return b.String()
}
