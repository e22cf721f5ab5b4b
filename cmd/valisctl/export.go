package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valislegal/valis/internal/export"
	"github.com/valislegal/valis/internal/htmlclean"
)

func newExportCmd() *cobra.Command {
	var (
		format string
		outDir string
		name   string
	)
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Convert an HTML or text document to docx or html",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			artifact, err := export.NewExporter(export.Config{}).Export(cmd.Context(), export.Source{
				ID:      args[0],
				Name:    name,
				Content: htmlclean.Sanitize(string(data)),
			}, f)
			if err != nil {
				return err
			}

			target := filepath.Join(outDir, artifact.Filename)
			if err := os.WriteFile(target, artifact.Data, 0o644); err != nil {
				return err
			}
			if artifact.FellBack {
				fmt.Fprintln(cmd.ErrOrStderr(), "docx encoding failed, wrote html instead")
			}
			fmt.Fprintln(cmd.OutOrStdout(), target)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatDocx), "output format (docx or html)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&name, "name", "", "document name used for the title and filename")
	return cmd
}
