package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/visp-2/osrm-backend/internal/publish"
	"github.com/visp-2/osrm-backend/internal/registry"
)

var rootCmd = &cobra.Command{
	Use:   "osrm-datastore",
	Short: "Publish OSRM dataset regions into shared memory",
	Long: `osrm-datastore loads the on-disk files of a routing dataset, builds
the shared-memory regions consumer processes attach to, and atomically
swaps them into the region registry without interrupting in-flight
reads.

Commands:
  run     publish a dataset's regions
  list    show the registry's current entries`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree and returns the process exit code:
// 0 success, 1 configuration invalid, 2 required dataset file missing,
// 3 swap timed out, 4 SHM exhaustion.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "osrm-datastore: %v\n", err)
		return exitCodeFor(err)
	}
	return 0
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, publish.ErrMissingRequiredFile):
		return 2
	case errors.Is(err, publish.ErrSwapTimedOut):
		return 3
	case errors.Is(err, registry.ErrKeyExhausted), errors.Is(err, registry.ErrRegistryFull):
		return 4
	default:
		return 1
	}
}
