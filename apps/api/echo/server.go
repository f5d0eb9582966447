package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/calendar"
	"github.com/womanacademy/renluyen/core/chat"
	"github.com/womanacademy/renluyen/core/evaluation"
	"github.com/womanacademy/renluyen/core/export"
	"github.com/womanacademy/renluyen/core/notification"
	"github.com/womanacademy/renluyen/core/student"
	"github.com/womanacademy/renluyen/core/upload"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool

		EvaluationSvc   *evaluation.Service
		GradingSvc      *evaluation.GradingService
		StudentSvc      *student.Service
		NotificationSvc *notification.Service
		ChatSvc         *chat.Service
		CalendarSvc     *calendar.Service
		ExportSvc       *export.Service
		UploadSvc       *upload.Service
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		shutdown chan os.Signal
		errors   chan error
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		shutdown: make(chan os.Signal, 1),
		errors:   make(chan error, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: []string{conf.FrontendBaseURL}}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	// uploaded evidence (also the fallback of remote storage)
	s.app.Static(conf.Upload.PublicPath, conf.Upload.Dir)

	api := s.app.Group("/api")
	authed := api.Group("", middleware.JWTWithConfig(newJWTConfig(conf.SecretKey)), knownRoleMiddleware())

	registerEvaluationAPI(authed, s.deps.EvaluationSvc)
	registerGradingAPI(authed, s.deps.GradingSvc)
	registerStudentAPI(authed, s.deps.StudentSvc, s.deps.ExportSvc)
	registerNotificationAPI(authed, s.deps.NotificationSvc)
	registerChatAPI(authed, s.deps.ChatSvc)
	registerCalendarAPI(authed, s.deps.CalendarSvc)
	registerUploadAPI(authed, s.deps.UploadSvc)
	registerExportAPI(authed, s.deps.ExportSvc, s.deps.EvaluationSvc)
}

// Start blocks until the server stops; errors are sent on Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
