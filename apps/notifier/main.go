package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/apps/shared"
	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/services/events"
)

func main() {
	conf := core.NewConfig()
	logger, err := shared.NewLogger(conf, "notifier")
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Close()

	if err = run(conf, logger); err != nil {
		logger.Error(err.Error(), "error", err)
		logger.Close()
		os.Exit(1)
	}
}

func run(conf *core.Config, logger core.Logger) error {
	if len(conf.Kafka.Brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}

	repos, err := shared.OpenRepositories(conf, false)
	if err != nil {
		return err
	}
	defer repos.Close()

	notifSvc := shared.NewNotificationService(conf, repos, logger)

	reader := events.NewReader(conf.Kafka)
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("notifier: consuming", "topic", conf.Kafka.Topic, "group", conf.Kafka.GroupID)
	if err = events.Consume(ctx, reader, notifSvc, logger); err != nil {
		return errors.Wrap(err, "consuming events")
	}
	logger.Info("notifier: stopped")
	return nil
}
