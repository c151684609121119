package main

import (
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/learningopt/immersion/core"
	"github.com/learningopt/immersion/core/grading"
	"github.com/learningopt/immersion/services/logger"
	"github.com/learningopt/immersion/storage/database"
	"github.com/learningopt/immersion/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stderr, "ADMIN : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(conf.RollbarToken != "" && !conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stderr, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(conf.RollbarToken != "" && !conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db, conf.Database.Engine); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newCommandLine(
	conf *core.Config,
	db *sqlx.DB,
	svc *grading.Service,
	validate *validator.Validate,
	translator ut.Translator,
	logger core.Logger,
) *commandLine {
	return &commandLine{
		db:         db,
		engine:     conf.Database.Engine,
		svc:        svc,
		validate:   validate,
		translator: translator,
		logger:     logger,
		operator:   core.Operator{ID: conf.Operator, Name: conf.Operator},
		out:        os.Stdout,
	}
}

// newContainer returns the dependency injection dig.Container of the admin CLI.
func newContainer() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(sqlxrepos.NewRosterRepository))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(core.NewValidator))
	must(c.Provide(grading.NewCatalog))
	must(c.Provide(grading.NewService))
	must(c.Provide(newCommandLine))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
