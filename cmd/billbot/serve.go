package main

import (
	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"legislation-chat-bot/internal/adapter/httpapi"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.HTTPAddr
			}

			ctx := cmd.Context()
			srv := httpapi.NewServer(a.chat, a.registry)
			if err := srv.Run(ctx, addr); err != nil {
				if ctx.Err() != nil {
					log.Info().Msg("shutdown")
					return nil
				}
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default HTTP_ADDR)")
	return cmd
}
