package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/inertia"
	"github.com/pthm/inertia/lib/vite"
)

func tagsCmd(g *globals) *cobra.Command {
	var react bool

	cmd := &cobra.Command{
		Use:   "tags <entry>",
		Short: "Print the HTML tags for a manifest entry",
		Long: `Print the <script> and <link> tags the server would render for an
entry. In dev mode the HMR client comes first.

Examples:
  inertia tags src/main.ts
  FV_VITE_DEV_MODE=1 inertia tags --react src/main.tsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			v, err := vite.New(cfg.ViteConfig(), vite.WithLogger(g.logger(cmd)))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if react {
				if s := v.ReactRefresh(); s != "" {
					fmt.Fprintln(out, s)
				}
			}
			if s := v.HMRClient(); s != "" {
				fmt.Fprintln(out, s)
			}
			tags, err := v.Asset(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, tags)
			return nil
		},
	}

	cmd.Flags().BoolVar(&react, "react", false, "Include the React refresh preamble in dev mode")

	return cmd
}

func versionCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the asset version sent to clients",
		Long: `Print the asset version: assets_version when configured, otherwise
the SHA-256 of the Vite manifest. Clients built against another version get
a 409 and reload.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			if cfg.AssetsVersion != "" {
				fmt.Fprintln(cmd.OutOrStdout(), cfg.AssetsVersion)
				return nil
			}

			v, err := vite.New(cfg.ViteConfig())
			if err != nil {
				return err
			}
			if v.DevMode() {
				return errors.New("no asset version in dev mode")
			}
			if _, err := v.Manifest(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v.Version())
			return nil
		},
	}
}

func checkCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "check [entry...]",
		Short: "Validate the configuration, templates and manifest",
		Long: `Load the configuration and root template the way the server does and,
outside dev mode, read the manifest and resolve each given entry.

Examples:
  inertia check
  inertia check src/main.ts src/admin.ts`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			_, v, err := inertia.FromConfig(cfg, inertia.WithLogger(g.logger(cmd)))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config ok (root template %s)\n", cfg.RootTemplate)
			if v.DevMode() {
				fmt.Fprintf(out, "dev mode, assets from %s\n", cfg.ViteConfig().DevServerURL())
				return nil
			}

			m, err := v.Manifest()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "manifest ok (%d entries, %d files, version %s)\n",
				len(m.Entries()), len(m.Files()), v.Version())

			for _, entry := range args {
				if _, err := v.Asset(entry); err != nil {
					return fmt.Errorf("%s: %w", entry, err)
				}
				fmt.Fprintf(out, "entry %s ok\n", entry)
			}
			return nil
		},
	}
}
