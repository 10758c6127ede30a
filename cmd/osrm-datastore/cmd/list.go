package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/visp-2/osrm-backend/internal/publish"
	"github.com/visp-2/osrm-backend/internal/registry"
)

var listControlRegion string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the region registry's current entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := publish.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		name := cfg.ControlRegionName
		if listControlRegion != "" {
			name = listControlRegion
		}

		reg, err := registry.Open(name)
		if err != nil {
			return fmt.Errorf("open control region %q: %w", name, err)
		}
		defer reg.Close()

		entries := reg.Stat()
		if len(entries) == 0 {
			fmt.Println("(no regions published)")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%-32s key=%-3d timestamp=%d\n", e.Name, e.ShmKey, e.Timestamp)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listControlRegion, "control-region", "", "override the control region name from config")
}
