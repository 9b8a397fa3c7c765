package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"legislation-chat-bot/internal/adapter/dataset"
	"legislation-chat-bot/internal/adapter/memory"
	openaiadapter "legislation-chat-bot/internal/adapter/openai"
	"legislation-chat-bot/internal/config"
	"legislation-chat-bot/internal/logging"
	"legislation-chat-bot/internal/metrics"
	"legislation-chat-bot/internal/usecase/catalog"
	"legislation-chat-bot/internal/usecase/chat"
	"legislation-chat-bot/internal/usecase/query"
)

type rootOptions struct {
	envFile  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "billbot",
		Short: "Answer questions about Indiana bills with an LLM and a fixed bill dataset",
		Long: `billbot lets a language model look up bills, sponsors and actions
from a small built-in dataset and answer in plain language.

Surfaces:
  billbot telegram          # run the Telegram bot
  billbot serve             # run the JSON HTTP API
  billbot chat              # interactive terminal chat
  billbot ask <question>    # one question, one answer
  billbot bill <number>     # print bill details without the model
  billbot search <query>    # print matching bill numbers without the model`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logLevel != "" {
				if err := config.ValidateLogLevel(opts.logLevel); err != nil {
					return err
				}
			}
			logging.Setup(levelOr(opts.logLevel, "info"))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file with settings; the environment overrides it")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newTelegramCmd(opts),
		newServeCmd(opts),
		newChatCmd(opts),
		newAskCmd(opts),
		newBillCmd(),
		newSearchCmd(),
	)
	return root
}

// app holds the wiring shared by every model-backed command.
type app struct {
	cfg      config.Config
	chat     *chat.Service
	registry *prometheus.Registry
}

func newApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = levelOr(opts.logLevel, cfg.LogLevel)
	logging.Setup(cfg.LogLevel)

	queries, err := newQueryService()
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	chatSvc := chat.NewService(
		memory.NewStore(),
		openaiadapter.NewClient(cfg),
		catalog.New(queries),
		cfg,
		metrics.New(reg),
	)

	return &app{cfg: cfg, chat: chatSvc, registry: reg}, nil
}

func newQueryService() (*query.Service, error) {
	ds := dataset.NewStore()
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	return query.NewService(ds), nil
}

func levelOr(level, def string) string {
	if level == "" {
		return def
	}
	return level
}
