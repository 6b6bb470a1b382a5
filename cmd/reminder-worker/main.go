package main

import (
	"context"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cli"
	applog "fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/services"
	"fintrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting reminder-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// With a broker, reminders are published and delivered by notify-worker.
	// Without one they are delivered in-process.
	var notifier notify.Notifier
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize AMQP client", err)
		}
		defer client.Close()
		notifier = notify.NewAMQPNotifier(client)
		logger.Info("Reminders will be published", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		direct, err := notify.Direct(logger.Logger, cfg.DiscordBotToken, cfg.DiscordChannelID)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize notifiers", err)
		}
		notifier = direct
		logger.Info("AMQP disabled - reminders delivered directly", "channels", len(direct))
	}

	processor := services.NewRecurringProcessor(repo)
	dispatcher := services.NewReminderDispatcher(repo, notifier, cfg.ReminderBatchSize)

	sched := worker.NewScheduler(cfg.Location(), logger)
	if err := sched.Add("recurring", cfg.RecurringSchedule, worker.RecurringJob(processor, time.Now)); err != nil {
		cli.Fatal(logger, "Invalid recurring schedule", err)
	}
	if err := sched.Add("reminders", cfg.ReminderSchedule, worker.ReminderJob(dispatcher, time.Now)); err != nil {
		cli.Fatal(logger, "Invalid reminder schedule", err)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	ctx = applog.IntoContext(ctx, logger)

	// Catch up on anything missed while the worker was down.
	logger.Info("Running startup pass")
	sched.RunAll(ctx)

	sched.Start(ctx)
	logger.Info("Schedules registered",
		"recurring", cfg.RecurringSchedule,
		"reminders", cfg.ReminderSchedule,
		"timezone", cfg.Location().String())

	<-ctx.Done()

	logger.Info("Shutting down worker...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
	defer shutdownCancel()
	if err := sched.Stop(shutdownCtx); err != nil {
		logger.Warn("Shutdown timeout reached", applog.FieldError, err)
		return
	}
	logger.Info("Worker shutdown complete")
}
