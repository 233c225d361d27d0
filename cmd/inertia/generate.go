package main

import (
	"github.com/spf13/cobra"

	"github.com/pthm/inertia/lib/generator"
)

func generateCmd() *cobra.Command {
	var (
		out    string
		pkg    string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "generate <pages-dir>",
		Short: "Generate Go constants for page components",
		Long: `Scan a frontend pages directory (.vue, .jsx, .tsx, .svelte, .js, .ts)
and write a Go file with one constant per page component.

Examples:
  inertia generate resources/js/Pages
  inertia generate --out internal/pages/inertia_pages.go --package pages resources/js/Pages
  inertia generate --dry-run resources/js/Pages`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := generator.New(generator.Options{
				Out:     out,
				Package: pkg,
				DryRun:  dryRun,
				Log:     cmd.OutOrStdout(),
			})
			return gen.Generate(args[0])
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: inertia_pages.go)")
	cmd.Flags().StringVarP(&pkg, "package", "p", "", "Package name (default: pages)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the generated file without writing it")

	return cmd
}

func cleanCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean [dir]",
		Short: "Remove generated *_pages.go files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			gen := generator.New(generator.Options{DryRun: dryRun, Log: cmd.OutOrStdout()})
			return gen.Clean(dir)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List files without removing them")

	return cmd
}
