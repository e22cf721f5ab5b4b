// Command valisctl runs workspace maintenance tasks offline: sanitizing HTML,
// exporting a document file and issuing bearer tokens.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "valisctl",
		Short:         "Valis workspace tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSanitizeCmd(), newExportCmd(), newTokenCmd())
	return root
}
