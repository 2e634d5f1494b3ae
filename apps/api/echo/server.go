package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/billing"
	"github.com/mkuu/darasa/core/class"
	"github.com/mkuu/darasa/core/course"
	"github.com/mkuu/darasa/core/enrollment"
	"github.com/mkuu/darasa/core/lesson"
	"github.com/mkuu/darasa/core/module"
	"github.com/mkuu/darasa/core/notification"
	"github.com/mkuu/darasa/core/schedule"
	"github.com/mkuu/darasa/core/topic"
	"github.com/mkuu/darasa/core/user"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool

		// SignalShutdown is called when a handler reports an unrecoverable
		// error and the process should exit cleanly.
		SignalShutdown func()

		UserSvc         *user.Service
		CourseSvc       *course.Service
		ModuleSvc       *module.Service
		LessonSvc       *lesson.Service
		TopicSvc        *topic.Service
		ClassSvc        *class.Service
		EnrollmentSvc   *enrollment.Service
		ScheduleSvc     *schedule.Service
		NotificationSvc *notification.Service
		BillingSvc      *billing.Service
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	auth := authenticator{conf: conf, svc: s.opts.UserSvc}
	jwt := middleware.JWTWithConfig(auth.jwtConfig())
	teacher := teacherMiddleware()

	v1 := s.app.Group("/v1")
	registerUserAPI(v1, jwt, auth, s.opts)
	registerCourseAPI(v1, jwt, teacher, s.opts)
	registerModuleAPI(v1, jwt, teacher, s.opts)
	registerLessonAPI(v1, jwt, teacher, s.opts)
	registerTopicAPI(v1, jwt, teacher, s.opts)
	registerClassAPI(v1, jwt, teacher, s.opts)
	registerEnrollmentAPI(v1, jwt, teacher, s.opts)
	registerScheduleAPI(v1, jwt, teacher, s.opts)
	registerNotificationAPI(v1, jwt, s.opts)
	registerBillingAPI(v1, jwt, teacher, s.opts)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Conf.Server.Addr)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Darasa API!")
}
