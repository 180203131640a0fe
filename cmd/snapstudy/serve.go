package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/snapstudy/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve POST /upload, GET /health, /info and /version. With --watch the
watch folder configured under watch: is processed by the same process.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Bool("watch", false, "also process videos dropped into watch.input_dir")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, svc, err := newApp(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}

	if err := a.RegisterComponent(server.NewComponent(svc.NewServer())); err != nil {
		return err
	}
	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		if err := a.RegisterComponent(svc.NewWatcher()); err != nil {
			return err
		}
	}
	return a.Run(cmd.Context())
}
