package main

import (
	"fmt"
	"io"

	"github.com/codegen-studio/engine/internal/client"
	"github.com/codegen-studio/engine/pkg/config"
	"github.com/codegen-studio/engine/pkg/logger"
	"github.com/spf13/cobra"
)

// app is shared by every subcommand once the root pre-run has loaded config.
type app struct {
	cfg *config.ClientConfig
	api *client.API
	out io.Writer
	err io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var apiURL, token, dir string

	root := &cobra.Command{
		Use:   "studio",
		Short: "Codegen Studio - describe an app, watch it being generated",
		Long: `studio talks to a Codegen Studio server.

Run without arguments to open the interactive dashboard.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("api-url") {
				cfg.APIURL = apiURL
			}
			if cmd.Flags().Changed("token") {
				cfg.Token = token
			}
			if cmd.Flags().Changed("dir") {
				cfg.DownloadDir = dir
			}
			// Logs go to a file so they never land on the dashboard.
			if _, err := logger.InitFile(cfg.LogLevel, cfg.LogFile); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			c := client.New(cfg.APIURL, client.WithToken(cfg.Token), client.WithTimeout(cfg.HTTPTimeout))
			a.cfg = cfg
			a.api = client.NewAPI(c, client.NewCache(c))
			a.out = cmd.OutOrStdout()
			a.err = cmd.ErrOrStderr()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDashboard(cmd.Context(), nil)
		},
	}

	root.PersistentFlags().StringVar(&apiURL, "api-url", "", "server base URL (default $STUDIO_API_URL)")
	root.PersistentFlags().StringVar(&token, "token", "", "bearer token (default $STUDIO_TOKEN)")
	root.PersistentFlags().StringVar(&dir, "dir", "", "download directory (default $STUDIO_DOWNLOAD_DIR)")

	root.AddCommand(
		a.createCmd(),
		a.projectsCmd(),
		a.showCmd(),
		a.filesCmd(),
		a.catCmd(),
		a.downloadCmd(),
		a.watchCmd(),
	)
	return root
}

// printNotice writes session notices to stderr.
func (a *app) printNotice(n client.Notice) {
	prefix := "✓"
	if n.Destructive {
		prefix = "✗"
	}
	fmt.Fprintf(a.err, "%s %s: %s\n", prefix, n.Title, n.Description)
}

func (a *app) session() *client.Session {
	return client.NewSession(a.api, client.NotifierFunc(a.printNotice), a.cfg.DownloadDir)
}
