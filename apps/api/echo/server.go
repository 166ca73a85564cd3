package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/curriculum"
	"github.com/trezcool/maendeleo/core/notification"
	"github.com/trezcool/maendeleo/core/student"
)

type (
	Options struct {
		Addr           string
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool

		// Validate/Translator are shared with the services; fresh ones are
		// set up when omitted.
		Validate   *validator.Validate
		Translator ut.Translator

		CurriculumSvc   curriculum.Service
		StudentSvc      student.Service
		NotificationSvc notification.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo

		validate   *validator.Validate
		translator ut.Translator
		shutdown   chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan os.Signal, 1),
	}
	s.setupValidation()
	s.setup()
	return s
}

func (s *server) setupValidation() {
	if s.opts.Validate != nil && s.opts.Translator != nil {
		s.validate = s.opts.Validate
		s.translator = s.opts.Translator
		return
	}
	enLocale := en.New()
	uniTranslator := ut.New(enLocale, enLocale)
	s.translator, _ = uniTranslator.GetTranslator("en")
	s.validate = validator.New()
	core.InitValidators(s.validate, s.translator)
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

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))

	registerCurriculumAPI(v1, jwt, s.opts.CurriculumSvc, s.validate)
	registerStudentAPI(v1, jwt, s.opts.StudentSvc)
	registerNotificationAPI(v1, jwt, s.opts.NotificationSvc)
}

func (s *server) Start() {
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		s.app.Logger.Fatal(s.app.Start(s.opts.Addr))
	}()

	<-s.shutdown
	ctx := context.Background()
	if err := s.Stop(ctx); err != nil {
		s.app.Logger.Fatal(err)
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

// signalShutdown gracefully shuts the server down when an integrity issue is caught.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Maendeleo API!")
}
