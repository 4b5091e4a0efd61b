package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/open-teleop/turtlebridge/pkg/zeromq"
)

var brokerCmd = &cobra.Command{
	Use:   "broker",
	Short: "Run the ZeroMQ XSUB/XPUB broker the bridge connects to",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return zeromq.NewBroker(cfg.Broker, logger.WithField("component", "broker")).Run(ctx)
	},
}
