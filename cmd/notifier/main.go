package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/MrJamesThe3rd/projectlibrary/internal/config"
	"github.com/MrJamesThe3rd/projectlibrary/internal/kafka"
	"github.com/MrJamesThe3rd/projectlibrary/internal/logger"
	"github.com/MrJamesThe3rd/projectlibrary/internal/notify"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Init(cfg.App.Env)

	if len(cfg.Kafka.Brokers) == 0 {
		slog.Error("KAFKA_BROKERS is required for the notifier")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sender notify.Sender = notify.LogSender{}
	if cfg.SMTP.Host != "" {
		sender = notify.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		slog.Warn("SMTP_HOST not set, emails are logged instead of sent")
	}

	mailer := notify.NewMailer(sender, cfg.App.Name, cfg.AdminAddress())
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.Group, cfg.Kafka.Topic, cfg.Kafka.Workers)

	slog.Info("notifier started", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.Group, "workers", cfg.Kafka.Workers)

	err = consumer.Start(ctx, func(ctx context.Context, m kafkago.Message) error {
		return notify.Dispatch(ctx, mailer, m.Value)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("consumer stopped", "error", err)
		os.Exit(1)
	}

	slog.Info("notifier stopped")
}
