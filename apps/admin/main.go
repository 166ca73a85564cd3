package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/curriculum"
	"github.com/trezcool/maendeleo/core/notification"
	"github.com/trezcool/maendeleo/core/student"
	emailsvc "github.com/trezcool/maendeleo/services/email"
	logsvc "github.com/trezcool/maendeleo/services/logger"
	"github.com/trezcool/maendeleo/storage/database"
	sqlxrepos "github.com/trezcool/maendeleo/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	// set up validation
	enLocale := en.New()
	uniTranslator := ut.New(enLocale, enLocale)
	translator, _ := uniTranslator.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)

	// set up services
	subjRepo := sqlxrepos.NewSubjectRepository(db)
	stdRepo := sqlxrepos.NewStudentRepository(db)
	notifRepo := sqlxrepos.NewNotificationRepository(db)
	currSvc := curriculum.NewService(subjRepo)
	notifSvc := notification.NewService(notifRepo)
	stdSvc := student.NewService(
		stdRepo, currSvc, notifSvc, emailsvc.NewConsoleService(conf), validate, logsvc.NewConsoleLogger(logger))

	// start CLI
	cli := commandLine{
		db:       db,
		currSvc:  currSvc,
		stdSvc:   stdSvc,
		validate: validate,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
