package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"worldgen/internal/params"
)

func newParamsCmd(c *cli) *cobra.Command {
	var keys bool
	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print resolved parameters as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if keys {
				for _, k := range params.Keys() {
					fmt.Fprintln(w, k)
				}
				return nil
			}
			p, err := c.resolveParams(cmd)
			if err != nil {
				return err
			}
			if err := p.Validate(); err != nil {
				return err
			}
			raw, err := params.Marshal(p)
			if err != nil {
				return err
			}
			_, err = w.Write(raw)
			return err
		},
	}
	c.bindParamFlags(cmd)
	cmd.Flags().BoolVar(&keys, "keys", false, "list accepted --set keys")
	return cmd
}
