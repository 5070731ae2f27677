package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/peter-abel/healthcare/config"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// RedisOpt points asynq at the Redis server, on the DB reserved for queues
func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Worker.QueueDB,
	}
}

func NewClient(cfg *config.Config, log *logrus.Logger) (*asynq.Client, error) {
	client := asynq.NewClient(RedisOpt(cfg))

	if err := client.Ping(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to task queue: %w", err)
	}

	log.Info("Successfully connected to task queue")

	return client, nil
}

func NewServer(cfg *config.Config, log *logrus.Logger) *asynq.Server {
	concurrency := cfg.Worker.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	return asynq.NewServer(RedisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueNotifications: 6,
			QueueMaintenance:   1,
		},
		Logger:   log,
		LogLevel: asynqLogLevel(log.GetLevel()),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			log.WithFields(logrus.Fields{
				"task":      task.Type(),
				"retried":   retried,
				"max_retry": maxRetry,
			}).Warnf("Task failed: %+v", err)
		}),
	})
}

// NewScheduler registers the periodic no-show sweep and reminder jobs, evaluated in loc
func NewScheduler(cfg *config.Config, loc *time.Location, log *logrus.Logger) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(RedisOpt(cfg), &asynq.SchedulerOpts{
		Location: loc,
		Logger:   log,
		LogLevel: asynqLogLevel(log.GetLevel()),
	})

	periodic := []struct {
		spec     string
		taskType string
	}{
		{cfg.Worker.NoShowSweepCron, TypeNoShowSweep},
		{cfg.Worker.ReminderCron, TypeSendReminders},
	}

	for _, p := range periodic {
		if p.spec == "" {
			log.Warnf("No schedule configured for %s, skipping", p.taskType)
			continue
		}
		entryID, err := scheduler.Register(p.spec, newSweepTask(p.taskType))
		if err != nil {
			return nil, fmt.Errorf("register %s (%q): %w", p.taskType, p.spec, err)
		}
		log.Infof("Registered periodic task %s (%s) as %s", p.taskType, p.spec, entryID)
	}

	return scheduler, nil
}

func asynqLogLevel(level logrus.Level) asynq.LogLevel {
	switch level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return asynq.DebugLevel
	case logrus.InfoLevel:
		return asynq.InfoLevel
	case logrus.WarnLevel:
		return asynq.WarnLevel
	case logrus.ErrorLevel:
		return asynq.ErrorLevel
	}
	return asynq.FatalLevel
}
