package main

import (
	"github.com/spf13/cobra"

	"github.com/odvcencio/solls/internal/logger"
	"github.com/odvcencio/solls/pkg/lsp"
)

func newServeCmd(a *app) *cobra.Command {
	var tcp string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the language server",
		Long:  "Run the language server over stdio, or over TCP with --tcp. Logs never go to stdout.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := lsp.NewServer(cmd.Context(), a.cfg, version)
			if tcp != "" {
				logger.Info("listening", "address", tcp)
				return srv.RunTCP(tcp)
			}
			logger.Debug("serving over stdio")
			return srv.RunStdio()
		},
	}
	cmd.Flags().StringVar(&tcp, "tcp", "", "listen on this address instead of stdio, e.g. 127.0.0.1:7658")
	cmd.Flags().Bool("watch", true, "rebuild when files change on disk")
	return cmd
}
