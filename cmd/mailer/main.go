package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hireflow/hireflow/pkg/config"
	"github.com/hireflow/hireflow/pkg/dispatch"
	"github.com/hireflow/hireflow/pkg/eventbus"
	"github.com/hireflow/hireflow/pkg/mailqueue"
	"github.com/hireflow/hireflow/pkg/store/postgres"
	redisclient "github.com/hireflow/hireflow/pkg/store/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	db, err := postgres.NewStore(&cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	sender := dispatch.Sender{
		Name:  cfg.Mail.SenderName,
		Email: cfg.Mail.SenderEmail,
	}

	var dispatcher dispatch.Dispatcher
	if cfg.Mail.Driver == "smtp" {
		logger.Info("using smtp dispatcher", zap.String("host", cfg.Mail.SMTPHost))
		dispatcher = dispatch.NewSMTPDispatcher(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.SMTPUser, cfg.Mail.SMTPPassword, sender)
	} else {
		logger.Info("using http dispatcher", zap.String("endpoint", cfg.Mail.APIURL))
		dispatcher = dispatch.NewHTTPDispatcher(cfg.Mail.APIURL, cfg.Mail.APIKey, sender)
	}

	redis, err := redisclient.NewClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redis.Close()
	bus := eventbus.NewBus(redis.Client())

	repo := postgres.NewDelayedEmailRepository(db.DB())
	sendLog := postgres.NewEmailLogRepository(db.DB())
	drainer := mailqueue.NewDrainer(repo, sendLog, dispatcher, bus, logger, cfg.Drainer.PollInterval, cfg.Drainer.BatchSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Drainer.Schedule, func() {
		drainer.Drain(ctx)
	}); err != nil {
		logger.Fatal("invalid drainer schedule", zap.Error(err), zap.String("schedule", cfg.Drainer.Schedule))
	}

	logger.Info("mail drainer starting", zap.String("schedule", cfg.Drainer.Schedule))
	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("mail drainer shutting down")
	<-scheduler.Stop().Done()
}
