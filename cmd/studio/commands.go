package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/codegen-studio/engine/internal/client"
	"github.com/codegen-studio/engine/internal/models"
	"github.com/codegen-studio/engine/internal/ui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid project id %q", s)
	}
	return id, nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

// stateNote explains a degraded read; healthy reads print nothing.
func stateNote(s client.State) string {
	switch s {
	case client.StateUnavailable:
		return "server unavailable, showing nothing"
	case client.StateAbsent:
		return "project not found"
	default:
		return ""
	}
}

func (a *app) note(s client.State) {
	if n := stateNote(s); n != "" {
		fmt.Fprintln(a.err, n)
	}
}

func (a *app) createCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "create <prompt>",
		Short: "Create a project from a prompt and start generation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.session().Submit(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s\t%s\n", p.ID, p.Name)
			if watch {
				return a.runDashboard(cmd.Context(), &p.ID)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "open the dashboard on the new project")
	return cmd
}

func (a *app) projectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "projects",
		Aliases: []string{"ls"},
		Short:   "List projects, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, state, err := a.api.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			a.note(state)
			t := newTable("ID", "NAME", "STATUS", "CREATED")
			for _, p := range projects {
				t.Row(p.ID.String(), p.Name, string(p.Status), p.CreatedAt.Local().Format("2006-01-02 15:04"))
			}
			fmt.Fprintln(a.out, t.Render())
			return nil
		},
	}
}

type snapshot struct {
	project  *models.Project
	files    []models.GeneratedFile
	progress []models.GenerationProgress
}

// loadSnapshot reads a project with its files and progress in parallel.
func (a *app) loadSnapshot(ctx context.Context, id uuid.UUID) (*snapshot, error) {
	var s snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, _, err := a.api.GetProject(ctx, id)
		s.project = p
		return err
	})
	g.Go(func() error {
		files, _, err := a.api.ListFiles(ctx, id)
		s.files = files
		return err
	})
	g.Go(func() error {
		recs, _, err := a.api.ListProgress(ctx, id)
		s.progress = recs
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if s.project == nil {
		return nil, fmt.Errorf("project %s not found", id)
	}
	return &s, nil
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a project's status, progress and files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.loadSnapshot(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s (%s)\n", s.project.Name, s.project.Status)
			fmt.Fprintf(a.out, "Prompt: %s\n\n", s.project.Prompt)

			t := newTable("NODE", "STATUS", "PROGRESS")
			for _, node := range models.NodeOrder {
				var rec *models.GenerationProgress
				for i := range s.progress {
					if s.progress[i].NodeType == node {
						rec = &s.progress[i]
					}
				}
				pct := 0
				if rec != nil {
					pct = rec.Progress
				}
				t.Row(node.Label(), ui.StatusText(rec), fmt.Sprintf("%d%%", pct))
			}
			fmt.Fprintln(a.out, t.Render())
			fmt.Fprintf(a.out, "Overall Progress: %d%%\n", ui.OverallProgress(s.progress))
			fmt.Fprintf(a.out, "Files Generated: %d  Lines of Code: %d\n", len(s.files), ui.TotalLines(s.files))
			return nil
		},
	}
}

func (a *app) filesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files <project-id>",
		Short: "List a project's generated files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			files, state, err := a.api.ListFiles(cmd.Context(), id)
			if err != nil {
				return err
			}
			a.note(state)
			if len(files) == 0 {
				fmt.Fprintln(a.out, ui.EmptyFilesText)
				return nil
			}
			t := newTable("ID", "FILENAME", "TYPE", "SIZE", "LINES")
			for _, f := range files {
				t.Row(f.ID.String(), f.Filename, f.FileType.Label(), ui.FormatFileSize(f.Size), fmt.Sprint(ui.CountLines(f.Content)))
			}
			fmt.Fprintln(a.out, t.Render())
			return nil
		},
	}
}

// latestFile picks the newest file called name.
func latestFile(files []models.GeneratedFile, name string) (models.GeneratedFile, bool) {
	var found models.GeneratedFile
	ok := false
	for _, f := range files {
		if f.Filename == name && (!ok || !f.CreatedAt.Before(found.CreatedAt)) {
			found, ok = f, true
		}
	}
	return found, ok
}

func (a *app) findFile(ctx context.Context, id uuid.UUID, name string) (models.GeneratedFile, error) {
	files, state, err := a.api.ListFiles(ctx, id)
	if err != nil {
		return models.GeneratedFile{}, err
	}
	a.note(state)
	f, ok := latestFile(files, name)
	if !ok {
		return models.GeneratedFile{}, fmt.Errorf("no file named %q in project %s", name, id)
	}
	return f, nil
}

func (a *app) catCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "cat <project-id> <filename>",
		Short: "Print a generated file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			f, err := a.findFile(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			out := f.Content
			if !plain {
				out = ui.Highlight(f.Content, f.FileType.Language())
			}
			fmt.Fprintln(a.out, out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "disable syntax highlighting")
	return cmd
}

func (a *app) downloadCmd() *cobra.Command {
	var filename string
	cmd := &cobra.Command{
		Use:   "download <project-id>",
		Short: "Download a project as a ZIP archive, or one file with --file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s := a.session()
			var dest string
			if filename != "" {
				f, err := a.findFile(cmd.Context(), id, filename)
				if err != nil {
					return err
				}
				dest, err = s.DownloadFile(cmd.Context(), f)
				if err != nil {
					return err
				}
			} else {
				s.SetActiveProject(id)
				dest, err = s.DownloadProject(cmd.Context())
				if err != nil {
					return err
				}
			}
			if dest == "" {
				return errors.New("nothing downloaded")
			}
			fmt.Fprintln(a.out, dest)
			return nil
		},
	}
	cmd.Flags().StringVarP(&filename, "file", "f", "", "download only the latest file with this name")
	return cmd
}
