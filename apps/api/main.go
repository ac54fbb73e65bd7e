package main

import (
	"context"
	"expvar"
	"fmt"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	echoapi "github.com/trezcool/studyflow/apps/api/echo"
	"github.com/trezcool/studyflow/core"
	"github.com/trezcool/studyflow/core/assignment"
	"github.com/trezcool/studyflow/core/course"
	appfs "github.com/trezcool/studyflow/fs"
	logsvc "github.com/trezcool/studyflow/services/logger"
	"github.com/trezcool/studyflow/storage/database"
	"github.com/trezcool/studyflow/storage/records"
	"github.com/trezcool/studyflow/storage/records/memstore"
	"github.com/trezcool/studyflow/storage/records/remote"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	storeLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "STORE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	storeLogger.Enable(!conf.Debug)

	// set up the record store
	store, closer, err := setUpStore(conf, storeLogger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up record store: %v", err), err)
	}
	defer func() {
		if err = closer.Close(); err != nil {
			storeLogger.Error("Failed to close", err)
		}
	}()

	// set up services
	courseSvc := course.NewService(records.NewCourseRepository(store, storeLogger))
	asgSvc := assignment.NewService(records.NewAssignmentRepository(store, storeLogger), courseSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q : store %q", conf.Build, conf.Store.Engine))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	course.InitValidators(validate, translator)
	assignment.InitValidators(validate, translator)

	core.ParseEmailTemplates(appfs.FS, logger, conf.Debug)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("store").Set(conf.Store.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			CourseSvc:     courseSvc,
			AssignmentSvc: asgSvc,
			Validate:      validate,
			Translator:    translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// setUpStore opens the record store selected by `store.engine`.
func setUpStore(conf *core.Config, logger core.Logger) (records.Store, io.Closer, error) {
	switch conf.Store.Engine {
	case core.StoreMemory:
		db, err := memstore.Open()
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil

	case core.StoreRemote:
		return remote.NewClient(conf.Remote, logger), nopCloser{}, nil

	case core.StorePostgres:
		db, err := database.Bootstrap(conf)
		if err != nil {
			return nil, nil, err
		}
		return database.NewRecordStore(db), db, nil
	}
	return nil, nil, errors.Errorf("unknown store engine %q", conf.Store.Engine)
}
