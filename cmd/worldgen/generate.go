package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"worldgen/internal/export"
	"worldgen/internal/ledger"
	"worldgen/internal/pipeline"
	"worldgen/internal/world"
)

func newGenerateCmd(c *cli) *cobra.Command {
	var (
		out        string
		ledgerPath string
		layers     []string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a world and export its layers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.resolveParams(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			res, err := pipeline.Generate(ctx, p, pipeline.WithLogger(c.logger))
			if err != nil {
				return err
			}

			opts := export.Options{}
			for _, name := range layers {
				opts.Layers = append(opts.Layers, world.LayerName(name))
			}
			dir, err := export.Write(out, res, opts)
			if err != nil {
				return err
			}
			c.logger.Info("world exported", "dir", dir, "checksum", res.Checksum.String())

			if ledgerPath != "" {
				l, err := ledger.Open(ledger.Config{Path: ledgerPath, SyncWrites: true, Logger: c.logger})
				if err != nil {
					return err
				}
				defer l.Close()
				if err := l.Record(ctx, ledger.EntryFor(res, time.Now())); err != nil {
					return err
				}
				c.logger.Info("checksum recorded", "ledger", ledgerPath)
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Checksum.String())
			return nil
		},
	}
	c.bindParamFlags(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "out", "export root directory")
	cmd.Flags().StringVar(&ledgerPath, "ledger", "", "record the checksum in this ledger directory")
	cmd.Flags().StringSliceVar(&layers, "layers", nil, "layers to export (default: every image layer)")
	return cmd
}
