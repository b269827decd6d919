package main

import (
	"context"

	"github.com/spf13/cobra"

	"dockexplorer/internal/app"
)

func newTreeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the whole tree once and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.init(cmd, false); err != nil {
				return err
			}
			defer c.close()

			// 一次性输出不需要自动刷新
			c.cfg.RefreshInterval = 0
			a, err := app.New(c.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout*4)
			defer cancel()
			return app.PrintTree(ctx, cmd.OutOrStdout(), a.Controller)
		},
	}
}
