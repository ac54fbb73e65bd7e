package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studyflow/core"
	"github.com/trezcool/studyflow/core/assignment"
	"github.com/trezcool/studyflow/core/course"
	"github.com/trezcool/studyflow/core/reminder"
	appfs "github.com/trezcool/studyflow/fs"
	emailsvc "github.com/trezcool/studyflow/services/email"
	logsvc "github.com/trezcool/studyflow/services/logger"
	"github.com/trezcool/studyflow/storage/database"
	"github.com/trezcool/studyflow/storage/records"
	"github.com/trezcool/studyflow/storage/records/memstore"
	"github.com/trezcool/studyflow/storage/records/remote"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up the record store
	var (
		store records.Store
		db    *sql.DB
		err   error
	)
	switch conf.Store.Engine {
	case core.StorePostgres:
		if err = database.Provision(conf); err != nil {
			logger.Fatal(fmt.Sprintf("provisioning database: %v", err), err)
		}
		if db, err = database.Open(conf); err != nil {
			logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
		}
		defer func() { _ = db.Close() }()
		store = database.NewRecordStore(db)
	case core.StoreRemote:
		store = remote.NewClient(conf.Remote, logger)
	default:
		mem, _ := memstore.Open()
		defer func() { _ = mem.Close() }()
		store = mem
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	core.ParseEmailTemplates(appfs.FS, logger, conf.Debug)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	assignment.InitValidators(validate, translator)

	courseSvc := course.NewService(records.NewCourseRepository(store, logger))

	// start CLI
	cli := commandLine{
		conf:        conf,
		db:          db,
		courseSvc:   courseSvc,
		asgSvc:      assignment.NewService(records.NewAssignmentRepository(store, logger), courseSvc),
		reminderSvc: reminder.NewService(mailSvc),
		validate:    validate,
		out:         os.Stdout,
		outFd:       int(os.Stdout.Fd()),
		now:         time.Now,
	}
	err = cli.run(os.Args)
	if w, ok := mailSvc.(emailsvc.Waiter); ok {
		w.Wait()
	}
	if err != nil {
		if err != errHelp {
			log.Printf("\nerror: %+v\n", err)
		}
		os.Exit(1)
	}
}
