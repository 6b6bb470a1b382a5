package main

import (
	"context"
	"errors"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	applog "fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentNotify)
	logger.Info("Starting notify-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		cli.Fatal(logger, "Configuration validation failed", errors.New("AMQP_URL is required for notify-worker"))
	}

	notifier, err := notify.Direct(logger.Logger, cfg.DiscordBotToken, cfg.DiscordChannelID)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize notifiers", err)
	}
	if len(notifier) == 1 {
		logger.Info("Discord disabled - notices will only be logged")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()
	ctx = applog.IntoContext(ctx, logger)

	w := worker.NewNoticeWorker(notifier)
	if err := client.ConsumeReminders(ctx, w.HandleNotice); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		return
	}
	logger.Info("Worker shutdown complete")
}
