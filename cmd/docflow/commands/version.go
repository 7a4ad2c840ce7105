package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docflow/docflow/internal/version"
)

// VersionCmd prints build version information
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print DocFlow version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("docflow %s (%s)\n", version.Version, version.Commit)
	},
}
