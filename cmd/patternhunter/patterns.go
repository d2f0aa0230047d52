package main

import (
	"github.com/spf13/cobra"
)

func newPatternsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List the registered patterns and whether the registry is valid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.printer(false).PrintPatterns(cmd.OutOrStdout(), a.registry); err != nil {
				return err
			}
			if !a.registry.Valid() {
				return &exitError{code: exitInvalidRegistry, err: a.registry.Err()}
			}
			return nil
		},
	}
}
