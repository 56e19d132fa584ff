package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gamestory/internal/mcp"
	"github.com/Sumatoshi-tech/gamestory/internal/observability"
)

func newMCPCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp [games.csv]",
		Short: "Start an MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes the loaded dataset as tools that AI agents can
discover and invoke:
  - gamestory_year_counts: releases per year, with a dataset summary
  - gamestory_compare_years: distinct developers and publishers for two years
  - gamestory_navigate: replay navigation actions against the scene machine

Logs are written as JSON to stderr; stdout carries the protocol.`,
		Args: cobra.MaximumNArgs(maxDatasetArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := root.openSession(cmd, observability.ModeMCP, args)
			if err != nil {
				return err
			}
			defer sess.close(cmd.Context())

			red, err := observability.NewREDMetrics(sess.providers.Meter)
			if err != nil {
				return err
			}

			srv, err := mcp.NewServer(mcp.ServerDeps{
				Records: sess.records(),
				Story:   sess.story,
				Logger:  sess.logger,
				Metrics: red,
				Tracer:  sess.providers.Tracer,
			})
			if err != nil {
				return err
			}

			return srv.Run(cmd.Context())
		},
	}
}
