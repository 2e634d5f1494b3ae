package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	echoapi "github.com/mkuu/darasa/apps/api/echo"
	"github.com/mkuu/darasa/core"
	"github.com/mkuu/darasa/core/billing"
	"github.com/mkuu/darasa/core/class"
	"github.com/mkuu/darasa/core/course"
	"github.com/mkuu/darasa/core/enrollment"
	"github.com/mkuu/darasa/core/lesson"
	"github.com/mkuu/darasa/core/module"
	"github.com/mkuu/darasa/core/notification"
	"github.com/mkuu/darasa/core/schedule"
	"github.com/mkuu/darasa/core/schema"
	"github.com/mkuu/darasa/core/store"
	"github.com/mkuu/darasa/core/topic"
	"github.com/mkuu/darasa/core/user"
	emailsvc "github.com/mkuu/darasa/services/email"
	logsvc "github.com/mkuu/darasa/services/logger"
	"github.com/mkuu/darasa/storage/bootstrap"
	"github.com/mkuu/darasa/storage/snapshot/dummy"
	"github.com/mkuu/darasa/storage/snapshot/file"
	"github.com/mkuu/darasa/storage/snapshot/postgres"
)

func main() {
	conf := core.NewConfig()
	std := log.New(os.Stdout, conf.AppName+" : ", log.LstdFlags|log.Lshortfile)

	var logger core.Logger
	if !conf.Debug && conf.RollbarToken != "" {
		logger = logsvc.NewRollbarLogger(std, conf)
	} else {
		logger = logsvc.NewStdLogger(std)
	}

	if err := run(conf, std, logger); err != nil {
		logger.Fatal("api: startup failed", err)
	}
}

func run(conf *core.Config, std *log.Logger, logger core.Logger) error {
	// validation
	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.RegisterValidators(validate, translator, filepath.Join("assets", "common-passwords.txt.gz"))

	// snapshot persistence
	var persister store.Persister
	switch conf.Snapshot.Backend {
	case "postgres":
		pg, err := postgres.Open(conf.Snapshot.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "opening snapshot database")
		}
		defer func() { _ = pg.Close() }()
		persister = pg
	case "dummy":
		persister = dummy.NewPersister()
	default:
		persister = file.NewPersister(conf.Snapshot.Path)
	}

	st := store.New(store.Options{Persister: persister, Logger: logger})
	schema.Register(st)

	// services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	notifSvc := notification.NewService(st, logger)
	userSvc := user.NewService(st)
	topicSvc := topic.NewService(st, notifSvc)
	moduleSvc := module.NewService(st, notifSvc)
	lessonSvc := lesson.NewService(st, notifSvc, moduleSvc)
	courseSvc := course.NewService(st, notifSvc)
	classSvc := class.NewService(st, notifSvc)
	enrollSvc := enrollment.NewService(st, notifSvc)
	scheduleSvc := schedule.NewService(st, notifSvc, logger)
	billingSvc := billing.NewService(st, notifSvc, mailSvc, conf.Billing)

	// restore the persisted snapshot; fall back to the bootstrap documents
	// on first run
	if err := st.LoadSnapshot(); err != nil {
		if errors.Cause(err) != store.ErrNoSnapshot {
			return errors.Wrap(err, "restoring snapshot")
		}
		if err = st.Hydrate(bootstrap.NewDir(conf.BootstrapDir)); err != nil {
			return errors.Wrap(err, "seeding store")
		}
	}

	// start API server
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(&echoapi.Options{
		Conf:            conf,
		Logger:          logger,
		Validate:        validate,
		Translator:      translator,
		SignalShutdown:  func() { shutdown <- syscall.SIGTERM },
		UserSvc:         userSvc,
		CourseSvc:       courseSvc,
		ModuleSvc:       moduleSvc,
		LessonSvc:       lessonSvc,
		TopicSvc:        topicSvc,
		ClassSvc:        classSvc,
		EnrollmentSvc:   enrollSvc,
		ScheduleSvc:     scheduleSvc,
		NotificationSvc: notifSvc,
		BillingSvc:      billingSvc,
	})

	serverErrors := make(chan error, 1)
	go func() {
		std.Printf("api: listening on %s", conf.Server.Addr)
		serverErrors <- app.Start()
	}()

	select {
	case err := <-serverErrors:
		return errors.Wrap(err, "server error")
	case sig := <-shutdown:
		std.Printf("api: %v: starting shutdown", sig)
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			return errors.Wrap(err, "could not stop server gracefully")
		}
	}
	return nil
}
