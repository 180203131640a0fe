package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/kbukum/snapstudy/logger"
	"github.com/kbukum/snapstudy/pipeline"
)

var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Run the pipeline on one video and print the result",
	Long: `Run the pipeline on one local video. The result goes to stdout; logs
and the startup summary go to stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().String("lang", "", "target language for the translated summary (default: hi)")
	processCmd.Flags().StringP("output", "o", "json", "result format: json or yaml")
}

func runProcess(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output")
	if format != "json" && format != "yaml" {
		return fmt.Errorf("unknown output format %q", format)
	}
	if _, err := os.Stat(args[0]); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Logging.Output = "stderr"

	a, svc, err := newApp(cmd.Context(), cfg, os.Stderr)
	if err != nil {
		return err
	}
	lang, _ := cmd.Flags().GetString("lang")

	return a.RunTask(cmd.Context(), func(ctx context.Context) error {
		ctx = logger.ContextWithRequestID(ctx, uuid.NewString())
		res, err := svc.Coordinator.Run(ctx, pipeline.Request{SourcePath: args[0], TargetLang: lang})
		if err != nil {
			return err
		}
		return writePayload(cmd.OutOrStdout(), format, res.Payload())
	})
}

func writePayload(w io.Writer, format string, p pipeline.Payload) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(p); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}
