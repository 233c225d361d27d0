package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/inertia/lib/publish"
	"github.com/pthm/inertia/lib/vite"
)

func publishCmd(g *globals) *cobra.Command {
	var (
		dryRun      bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload built assets to S3",
		Long: `Upload every file the Vite manifest references to the [publish]
bucket, with immutable cache headers. Point static_url at the bucket (or a
CDN in front of it) afterwards.

Credentials are read from AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and
AWS_SESSION_TOKEN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			if cfg.Vite.DevMode {
				return errors.New("publish needs a production build; unset dev_mode")
			}

			logger := g.logger(cmd)
			v, err := vite.New(cfg.ViteConfig(), vite.WithLogger(logger))
			if err != nil {
				return err
			}
			m, err := v.Manifest()
			if err != nil {
				return err
			}

			opts := []publish.Option{publish.WithLogger(logger), publish.WithConcurrency(concurrency)}
			var client publish.ObjectPutter
			if dryRun {
				opts = append(opts, publish.DryRun())
			} else {
				client = publish.NewS3Client(publish.ClientConfig{
					Region:   cfg.Publish.Region,
					Endpoint: cfg.Publish.Endpoint,
				})
			}

			p, err := publish.New(client, publish.Config{
				Bucket:       cfg.Publish.Bucket,
				Prefix:       cfg.Publish.Prefix,
				CacheControl: cfg.Publish.CacheControl,
			}, opts...)
			if err != nil {
				return err
			}

			objects, err := p.Publish(cmd.Context(), cfg.Vite.DistPath, m)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var total int64
			for _, obj := range objects {
				fmt.Fprintf(out, "%s -> s3://%s/%s (%s)\n", obj.File, cfg.Publish.Bucket, obj.Key, obj.ContentType)
				total += obj.Size
			}
			verb := "uploaded"
			if dryRun {
				verb = "would upload"
			}
			fmt.Fprintf(out, "%s %d files, %d bytes\n", verb, len(objects), total)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List uploads without contacting S3")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Parallel uploads")

	return cmd
}
