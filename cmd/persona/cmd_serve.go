package main

import (
	"github.com/danielpatrickdp/persona-fusion/internal/api"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}
			srv := api.NewServer(api.Deps{
				Analyzer: a.orch,
				Intents:  a.orch,
				Context:  a.aggregator,
				Logger:   a.logger,
			})
			return srv.Run(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}
