package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/cmd/audioanalysis/internal/build"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/seal"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(build.String())
		fmt.Printf("  pipeline: %s\n", seal.PipelineVersion)
		fmt.Printf("  protocol: %s\n", seal.Protocol)
		if verbose {
			fmt.Printf("  go:       %s\n", runtime.Version())
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
