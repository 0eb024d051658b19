package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newExportCommand(a *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the catalog as plaintext JSON",
		Long: `Writes every record as an indented JSON manifest to stdout or to a file.
The export is NOT encrypted; it exists so the data can leave bookvault.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(ctx context.Context) error {
				fmt.Fprintln(os.Stderr, "Warning: the export is written in plaintext and is not protected by the catalog passphrase.")

				var w io.Writer = cmd.OutOrStdout()
				if output != "" {
					f, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}

				manifest, err := a.catalog.Export(ctx, w)
				if err != nil {
					return err
				}
				if output != "" {
					printlnFn(fmt.Sprintf("Exported %d books to %s (manifest %s)", len(manifest.Books), output, manifest.ID))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the manifest to this file instead of stdout")
	return cmd
}
