package cli

import (
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags "-X .../internal/cli.version=v1.2.3".
var version = "dev"

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("bookvault version %s\n", version)
		},
	}
}
