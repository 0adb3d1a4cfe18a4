/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/online-social/apiserver/config"
	"github.com/online-social/apiserver/internal/mq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// workerCmd consumes notification events published by the server.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consumes notification events from the message queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger, err := newLogger(cfg.Log)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg)
		if err != nil {
			return err
		}
		if queue == nil {
			return errors.New("message queue is disabled; set MQ_BACKEND")
		}
		defer func() {
			if err := queue.Close(); err != nil {
				logger.Warn("close mq", zap.Error(err))
			}
		}()

		channel := cfg.MQ.NotificationChannel
		logger.Info("consuming notifications", zap.String("channel", channel), zap.String("backend", cfg.MQ.Backend))
		err = queue.Subscribe(ctx, channel, func(ctx context.Context, msg mq.Message) error {
			n, err := mq.DecodeNotification(msg)
			if err != nil {
				// Malformed payloads are dropped rather than redelivered forever.
				logger.Warn("drop notification", zap.String("message_id", msg.ID), zap.Error(err))
				return nil
			}
			logger.Info("notification",
				zap.String("id", n.ID.String()),
				zap.String("type", string(n.Type)),
				zap.String("recipient_id", n.UserID.String()),
				zap.String("from_user_id", n.FromUserID.String()),
				zap.String("message", n.Message),
			)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("subscribe %s: %w", channel, err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
