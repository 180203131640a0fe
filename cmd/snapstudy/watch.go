package main

import (
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Process videos dropped into a folder",
	Long: `Watch a folder and run the pipeline on every video that lands in it.
Each result is written to the output directory as <name>.result.yaml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("out", "", "directory for result files (default: <dir>/results)")
	watchCmd.Flags().String("lang", "", "target language for the translated summary")
	watchCmd.Flags().Bool("existing", false, "also process videos already in the folder")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Watch.InputDir = args[0]
	}
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		cfg.Watch.OutputDir = out
	}
	if lang, _ := cmd.Flags().GetString("lang"); lang != "" {
		cfg.Watch.TargetLang = lang
	}
	if existing, _ := cmd.Flags().GetBool("existing"); existing {
		cfg.Watch.ProcessExisting = true
	}

	a, svc, err := newApp(cmd.Context(), cfg, nil)
	if err != nil {
		return err
	}
	if err := a.RegisterComponent(svc.NewWatcher()); err != nil {
		return err
	}
	return a.Run(cmd.Context())
}
