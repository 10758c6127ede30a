package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/visp-2/osrm-backend/internal/publish"
)

var (
	runDataset     string
	runMaxWait     int
	runDatasetRoot string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Publish a dataset's static and updatable regions",
	Long: `run builds the layout descriptors, allocates and populates shared-memory
segments, and atomically swaps them into the region registry for both
"<dataset>/static" and "<dataset>/updatable".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if runDataset == "" {
			return fmt.Errorf("--dataset is required")
		}
		if runMaxWait < -1 {
			return fmt.Errorf("--max-wait must be -1 or a non-negative integer, got %d", runMaxWait)
		}

		cfg, err := publish.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if runDatasetRoot != "" {
			cfg.DatasetRoot = runDatasetRoot
		}

		ctl := publish.NewController(cfg)
		return ctl.Run(runDataset, runMaxWait)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runDataset, "dataset", "", "logical dataset name prefixing region names (required)")
	runCmd.Flags().IntVar(&runMaxWait, "max-wait", publish.InfiniteWait, "swap timeout in seconds, or -1 to block indefinitely")
	runCmd.Flags().StringVar(&runDatasetRoot, "dataset-root", "", "directory containing the dataset's .osrm.* files (overrides config)")
}
