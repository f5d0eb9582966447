package shared

import (
	"context"

	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/calendar"
	"github.com/womanacademy/renluyen/core/chat"
	"github.com/womanacademy/renluyen/core/evaluation"
	"github.com/womanacademy/renluyen/core/export"
	"github.com/womanacademy/renluyen/core/notification"
	"github.com/womanacademy/renluyen/core/student"
	"github.com/womanacademy/renluyen/core/upload"
	cachesvc "github.com/womanacademy/renluyen/services/cache"
	emailsvc "github.com/womanacademy/renluyen/services/email"
	"github.com/womanacademy/renluyen/services/events"
	logsvc "github.com/womanacademy/renluyen/services/logger"
	"github.com/womanacademy/renluyen/services/storage"
)

// NewLogger returns a Rollbar logger writing locally through zap. Rollbar is off in debug.
func NewLogger(conf *core.Config, name string) (*logsvc.RollbarLogger, error) {
	zl, err := logsvc.NewZapLogger(conf.Debug, name)
	if err != nil {
		return nil, errors.Wrap(err, "building zap logger")
	}
	logger := logsvc.NewRollbarLogger(zl, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger, nil
}

func NewMailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func NewStudentService(conf *core.Config, repos Repositories) *student.Service {
	return student.NewService(repos.Student, conf.DefaultClassID)
}

func NewNotificationService(conf *core.Config, repos Repositories, logger core.Logger) *notification.Service {
	return notification.NewService(repos.Notification, NewStudentService(conf, repos), NewMailService(conf, logger), logger)
}

type Services struct {
	Evaluation   *evaluation.Service
	Grading      *evaluation.GradingService
	Student      *student.Service
	Notification *notification.Service
	Chat         *chat.Service
	Calendar     *calendar.Service
	Export       *export.Service
	Upload       *upload.Service

	closers []func() error
}

// Close releases the event producer & cache connections.
func (s Services) Close() error {
	var firstErr error
	for _, c := range s.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// NewServices wires every domain service.
// Events go to Kafka when brokers are configured (consumed by the notifier),
// otherwise they are dispatched in-process to the notification service.
func NewServices(ctx context.Context, conf *core.Config, repos Repositories, logger core.Logger) (Services, error) {
	var svcs Services

	svcs.Student = NewStudentService(conf, repos)
	svcs.Notification = notification.NewService(repos.Notification, svcs.Student, NewMailService(conf, logger), logger)

	var publisher core.EventPublisher
	if len(conf.Kafka.Brokers) > 0 {
		producer := events.NewProducer(conf.Kafka)
		svcs.closers = append(svcs.closers, producer.Close)
		publisher = producer
	} else {
		publisher = events.NewDispatcher(logger, svcs.Notification)
	}

	svcs.Evaluation = evaluation.NewService(repos.Evaluation, publisher, logger)
	svcs.Grading = evaluation.NewGradingService(repos.Evaluation, svcs.Student, publisher, logger)
	svcs.Chat = chat.NewService(repos.Chat, svcs.Student)
	svcs.Calendar = calendar.NewService(repos.Calendar)

	var cache core.Cache
	if conf.Redis.Addr != "" {
		rdb := cachesvc.NewRedisClient(conf.Redis)
		svcs.closers = append(svcs.closers, rdb.Close)
		cache = cachesvc.NewRedisCache(rdb)
	} else {
		cache = cachesvc.NewMemoryCache()
	}
	svcs.Export = export.NewService(svcs.Evaluation, svcs.Student, cache, conf.Redis.PDFCacheTTL, conf.AppName, logger)

	// local disk is the primary store, or the fallback of S3
	var store, fallback upload.Storage
	disk := storage.NewDisk(conf.Upload.Dir, conf.Upload.PublicPath)
	if conf.Upload.Backend == "s3" {
		client, err := storage.NewS3Client(ctx, conf.Upload)
		if err != nil {
			return Services{}, err
		}
		store, fallback = storage.NewS3(client, conf.Upload), disk
	} else {
		store = disk
	}
	svcs.Upload = upload.NewService(store, fallback, conf.Upload.MaxSize, logger)

	return svcs, nil
}
