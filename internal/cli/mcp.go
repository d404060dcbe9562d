package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lintmux/lintmux/internal/config"
	"github.com/lintmux/lintmux/internal/diag"
	"github.com/lintmux/lintmux/internal/mcpsrv"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the lintmux_check tool over stdio (Model Context Protocol)",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv := mcpsrv.New(Version, func(ctx context.Context, root, filter string) (*mcpsrv.CheckResult, error) {
			cfg, err := config.Load(root)
			if err != nil {
				return nil, err
			}

			rep, err := runPipeline(ctx, root, cfg, filter)
			if err != nil {
				return nil, err
			}

			diags := make([]diag.Diagnostic, 0, len(rep.Items))
			for _, item := range rep.Items {
				diags = append(diags, item.Diag)
			}
			errors, warnings := rep.Counts()
			return &mcpsrv.CheckResult{
				Diagnostics: diags,
				Duplicates:  rep.Duplicates,
				Errors:      errors,
				Warnings:    warnings,
				Missing:     rep.MissingTools,
			}, nil
		})
		return srv.Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
