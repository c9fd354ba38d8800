package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newGenDocsCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:    "gendocs",
		Short:  "Generate markdown documentation for the CLI",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return doc.GenMarkdownTree(rootCmd, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "./docs", "output directory")
	return cmd
}
