package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/embedefy-bridge/internal/app"
	"github.com/samvad-hq/embedefy-bridge/internal/config"
	"github.com/samvad-hq/embedefy-bridge/internal/logger"
)

const rootLongDesc string = `Bridge text inputs to the Embedefy embeddings API.

Configuration is read from an optional YAML file (--config), EMBEDEFY_ prefixed
environment variables and configs/.env. Logs are written to stderr as JSON.`

const embedLongDesc string = `Embed a single input and print the embedding data as JSON.

Example:
  embedefy embed sentence-t5-large "the quick brown fox"`

const batchLongDesc string = `Embed every input of the configured sources and publish the results.

Runs a single pass unless batch_interval is set, in which case passes repeat
until interrupted.`

type rootCommander struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	cmder := &rootCommander{}

	cmd := &cobra.Command{
		Use:           "embedefy",
		Short:         "Embedefy embeddings bridge",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&cmder.configPath, "config", "", "path to a YAML config file")

	cmd.AddCommand(cmder.newEmbedCmd(), cmder.newBatchCmd())
	return cmd
}

// setup loads config and initializes the logger. The returned func flushes it.
func (c *rootCommander) setup() (*config.Config, logger.Logger, func(), error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, func() { _ = logger.Close() }, nil
}

func (c *rootCommander) newEmbedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "embed <model> <input>",
		Short: "Embed a single input",
		Long:  embedLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, done, err := c.setup()
			if err != nil {
				return err
			}
			defer done()

			bridge, err := app.NewBridge(cfg, log)
			if err != nil {
				return err
			}
			defer bridge.Close()

			data, err := bridge.Embed(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), data)
			return err
		},
	}
}

func (c *rootCommander) newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch",
		Short: "Embed configured sources and publish results",
		Long:  batchLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, done, err := c.setup()
			if err != nil {
				return err
			}
			defer done()

			log.InfoObj("batcher starting", "config", cfg)

			batcher, err := app.NewBatcher(cmd.Context(), cfg, log)
			if err != nil {
				log.ErrorObj("failed to initialize batcher", "error", err.Error())
				return err
			}
			if err := batcher.Run(cmd.Context()); err != nil {
				return fmt.Errorf("batch run: %w", err)
			}
			return nil
		},
	}
}
