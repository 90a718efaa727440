package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"worldgen/internal/ledger"
	"worldgen/internal/pipeline"
)

var errNotReproduced = errors.New("world not reproduced")

func newVerifyCmd(c *cli) *cobra.Command {
	var ledgerPath string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Regenerate a world and compare it with the recorded checksum",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := c.resolveParams(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			l, err := ledger.Open(ledger.Config{Path: ledgerPath, Logger: c.logger})
			if err != nil {
				return err
			}
			defer l.Close()

			res, err := pipeline.Generate(ctx, p, pipeline.WithLogger(c.logger))
			if err != nil {
				return err
			}
			v, err := l.Verify(ctx, res)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s\n", v.Status, res.Checksum)
			switch v.Status {
			case ledger.Match:
				return nil
			case ledger.Mismatch:
				fmt.Fprintf(w, "recorded %s (run %s)\n", v.Recorded.Checksum, v.Recorded.RunID)
				if len(v.Differing) > 0 {
					fmt.Fprintf(w, "differing layers: %s\n", strings.Join(v.Differing, ", "))
				}
				return fmt.Errorf("%w: checksum mismatch", errNotReproduced)
			}
			return fmt.Errorf("%w: no entry for these params", errNotReproduced)
		},
	}
	c.bindParamFlags(cmd)
	cmd.Flags().StringVar(&ledgerPath, "ledger", "ledger", "ledger directory")
	return cmd
}
