package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/codegen-studio/engine/internal/ui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch [project-id]",
		Short: "Open the interactive dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id *uuid.UUID
			if len(args) == 1 {
				parsed, err := parseID(args[0])
				if err != nil {
					return err
				}
				id = &parsed
			}
			return a.runDashboard(cmd.Context(), id)
		},
	}
}

func (a *app) runDashboard(ctx context.Context, projectID *uuid.UUID) error {
	if ctx == nil {
		ctx = context.Background()
	}
	m := ui.New(ctx, ui.Options{
		API:         a.api,
		DownloadDir: a.cfg.DownloadDir,
		ProjectID:   projectID,
	})
	defer m.Close()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
