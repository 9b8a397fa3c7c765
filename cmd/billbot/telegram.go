package main

import (
	"errors"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"legislation-chat-bot/internal/adapter/telegram"
)

func newTelegramCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "telegram",
		Short: "Run the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}

			bot, err := telegram.NewBot(a.cfg, a.chat)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := bot.Run(ctx); err != nil {
				if ctx.Err() != nil {
					log.Info().Err(err).Msg("shutdown")
					return nil
				}
				return errors.Join(errors.New("bot stopped"), err)
			}
			return nil
		},
	}
}
