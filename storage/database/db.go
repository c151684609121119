package database

import (
	"embed"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/learningopt/immersion/core"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsDir is the goose directory inside the embedded migrations FS.
const MigrationsDir = "migrations"

var driverNames = map[string]string{
	core.EnginePostgres: "postgres",
	core.EngineSQLite:   "sqlite",
}

var gooseDialects = map[string]string{
	core.EnginePostgres: "postgres",
	core.EngineSQLite:   "sqlite3",
}

func init() {
	sqlx.BindDriver(driverNames[core.EngineSQLite], sqlx.QUESTION)
}

func dataSourceName(dbName string, conf *core.Config) string {
	if conf.Database.Engine == core.EngineSQLite {
		return conf.Database.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(conf.Database.User, conf.Database.Password),
		Host:     conf.Database.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func open(dbName string, conf *core.Config) (*sqlx.DB, error) {
	driver, ok := driverNames[conf.Database.Engine]
	if !ok {
		return nil, fmt.Errorf("unsupported database engine %q", conf.Database.Engine)
	}
	db, err := sqlx.Open(driver, dataSourceName(dbName, conf))
	if err != nil {
		return nil, err
	}
	if conf.Database.Engine == core.EngineSQLite {
		db.SetMaxOpenConns(1) // single writer
	}
	return db, nil
}

// Open opens the configured database and waits for it to be ready.
func Open(conf *core.Config) (*sqlx.DB, error) {
	db, err := open(conf.Database.Name, conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func createDB(db *sqlx.DB, conf *core.Config) error {
	var exists bool
	err := db.Get(&exists, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", conf.Database.Name)
	if err != nil {
		return errors.Wrap(err, "checking DB")
	}
	if !exists {
		// identifiers cannot be bound
		if _, err = db.Exec(fmt.Sprintf("CREATE DATABASE %q", conf.Database.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// CreateIfNotExist creates the postgres database named in conf. SQLite files are created on open.
func CreateIfNotExist(conf *core.Config) error {
	if conf.Database.Engine != core.EnginePostgres {
		return nil
	}

	db, err := open("postgres", conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	if err = ping(db); err != nil {
		return errors.Wrap(err, "pinging database")
	}
	return createDB(db, conf)
}

// PrepareGoose points goose at the embedded migrations for `engine`.
func PrepareGoose(engine string) error {
	dialect, ok := gooseDialects[engine]
	if !ok {
		return fmt.Errorf("unsupported database engine %q", engine)
	}
	goose.SetBaseFS(migrationsFS)
	return goose.SetDialect(dialect)
}

// Migrate applies every pending migration.
func Migrate(db *sqlx.DB, engine string) error {
	if err := PrepareGoose(engine); err != nil {
		return errors.Wrap(err, "preparing migrations")
	}
	if err := goose.Up(db.DB, MigrationsDir); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}
