package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/maendeleo/apps/api/echo"
	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/curriculum"
	"github.com/trezcool/maendeleo/core/notification"
	"github.com/trezcool/maendeleo/core/student"
	emailsvc "github.com/trezcool/maendeleo/services/email"
	logsvc "github.com/trezcool/maendeleo/services/logger"
	"github.com/trezcool/maendeleo/storage/database"
	"github.com/trezcool/maendeleo/storage/database/inmem"
	sqlxrepos "github.com/trezcool/maendeleo/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lshortfile)

	var logger core.Logger
	if conf.RollbarToken == "" || conf.Debug {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, conf)
	}

	// set up validation
	enLocale := en.New()
	uniTranslator := ut.New(enLocale, enLocale)
	translator, _ := uniTranslator.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)

	// set up repositories; DEV runs off the in-memory store
	var (
		subjRepo  curriculum.Repository
		stdRepo   student.Repository
		notifRepo notification.Repository
	)
	if conf.Debug {
		db, err := inmem.Open()
		errAndDie(std, err)
		subjRepo = inmem.NewSubjectRepository(db)
		stdRepo = inmem.NewStudentRepository(db)
		notifRepo = inmem.NewNotificationRepository(db)
	} else {
		db, err := database.Open(conf)
		errAndDie(std, err)
		defer db.Close()
		errAndDie(std, database.Migrate(db))
		subjRepo = sqlxrepos.NewSubjectRepository(db)
		stdRepo = sqlxrepos.NewStudentRepository(db)
		notifRepo = sqlxrepos.NewNotificationRepository(db)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	currSvc := curriculum.NewService(subjRepo)
	notifSvc := notification.NewService(notifRepo)
	stdSvc := student.NewService(stdRepo, currSvc, notifSvc, mailSvc, validate, logger)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:            conf.Server.Address(),
			Conf:            conf,
			Logger:          logger,
			Validate:        validate,
			Translator:      translator,
			CurriculumSvc:   currSvc,
			StudentSvc:      stdSvc,
			NotificationSvc: notifSvc,
		},
	)
	app.Start()
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
