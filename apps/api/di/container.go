// Package di builds the dependency container of the API.
package di

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/womanacademy/renluyen/apps/api/echo"
	"github.com/womanacademy/renluyen/apps/shared"
	"github.com/womanacademy/renluyen/core"
	logsvc "github.com/womanacademy/renluyen/services/logger"
)

func newLogger(conf *core.Config) (*logsvc.RollbarLogger, error) {
	return shared.NewLogger(conf, "api")
}

func asCoreLogger(logger *logsvc.RollbarLogger) core.Logger {
	return logger
}

func newRepositories(conf *core.Config) (shared.Repositories, error) {
	return shared.OpenRepositories(conf, true /* migrate */)
}

func newServices(conf *core.Config, repos shared.Repositories, logger core.Logger) (shared.Services, error) {
	return shared.NewServices(context.Background(), conf, repos, logger)
}

func newServer(conf *core.Config, logger core.Logger, svcs shared.Services) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:            conf,
		Logger:          logger,
		DisableReqLogs:  conf.TestMode,
		EvaluationSvc:   svcs.Evaluation,
		GradingSvc:      svcs.Grading,
		StudentSvc:      svcs.Student,
		NotificationSvc: svcs.Notification,
		ChatSvc:         svcs.Chat,
		CalendarSvc:     svcs.Calendar,
		ExportSvc:       svcs.Export,
		UploadSvc:       svcs.Upload,
	})
}

// New returns a dig.Container providing conf, the loggers, the repositories,
// the domain services & the echo server.
func New(conf *core.Config) (*dig.Container, error) {
	c := dig.New()

	providers := []interface{}{
		func() *core.Config { return conf },
		newLogger,
		asCoreLogger,
		newRepositories,
		newServices,
		newServer,
	}
	for _, p := range providers {
		if err := c.Provide(p); err != nil {
			return nil, errors.Wrap(err, "failed to provide dependency")
		}
	}
	return c, nil
}
