package database

import (
	"database/sql"
	"net/url"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/studyflow/core"
	appfs "github.com/trezcool/studyflow/fs"
)

const (
	migrationsDir = "migrations"
	maintenanceDB = "postgres"
)

var (
	openFunc     = func(dsn string) (*sql.DB, error) { return sql.Open("postgres", dsn) } // mockable
	migrateFunc  = Migrate                                                                 // mockable
	pingAttempts = 30
)

// credentials picks the role to connect as. The admin role falls back to the app role.
func credentials(dbConf core.DatabaseConfig, admin bool) *url.Userinfo {
	if admin && dbConf.AdminUser != "" {
		return url.UserPassword(dbConf.AdminUser, dbConf.AdminPassword)
	}
	return url.UserPassword(dbConf.User, dbConf.Password)
}

// dsn returns the postgres URL of `dbName` on the configured server.
func dsn(dbConf core.DatabaseConfig, dbName string, admin bool) string {
	sslMode := "require"
	if dbConf.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     credentials(dbConf, admin),
		Host:     dbConf.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// connect opens `dbName` and waits for it to answer. The handle is closed when it never does.
func connect(dbConf core.DatabaseConfig, dbName string, admin bool) (*sql.DB, error) {
	db, err := openFunc(dsn(dbConf, dbName, admin))
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", dbName)
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sql.DB) error {
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		if err = db.Ping(); err == nil {
			return nil
		}
		if attempt < pingAttempts {
			time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
		}
	}
	return errors.Wrap(err, "DB ping timeout")
}

func exists(db *sql.DB, query string, arg string) (bool, error) {
	var found bool
	if err := db.QueryRow(query, arg).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// ensureRole creates the app role, allowed to create its database.
func ensureRole(db *sql.DB, dbConf core.DatabaseConfig) error {
	if dbConf.User == "" || dbConf.User == dbConf.AdminUser {
		return nil
	}
	found, err := exists(db, "SELECT EXISTS (SELECT 1 FROM pg_roles WHERE rolname = $1)", dbConf.User)
	if err != nil {
		return errors.Wrap(err, "checking app role")
	}
	if found {
		return nil
	}
	stmt := "CREATE ROLE " + pq.QuoteIdentifier(dbConf.User) + " LOGIN CREATEDB PASSWORD " + pq.QuoteLiteral(dbConf.Password)
	if _, err = db.Exec(stmt); err != nil {
		return errors.Wrap(err, "creating app role")
	}
	return nil
}

// ensureDatabase creates the records database, owned by the role of `db`.
func ensureDatabase(db *sql.DB, name string) error {
	found, err := exists(db, "SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", name)
	if err != nil {
		return errors.Wrap(err, "checking database")
	}
	if found {
		return nil
	}
	if _, err = db.Exec("CREATE DATABASE " + pq.QuoteIdentifier(name)); err != nil {
		return errors.Wrap(err, "creating database")
	}
	return nil
}

// Provision creates the app role (as admin) then the records database (as the app role).
// Both steps are skipped when already done.
func Provision(conf *core.Config) error {
	admin, err := connect(conf.Database, maintenanceDB, true)
	if err != nil {
		return errors.Wrap(err, "connecting as admin")
	}
	err = ensureRole(admin, conf.Database)
	_ = admin.Close()
	if err != nil {
		return err
	}

	app, err := connect(conf.Database, maintenanceDB, false)
	if err != nil {
		return errors.Wrap(err, "connecting as app role")
	}
	defer func() { _ = app.Close() }()
	return ensureDatabase(app, conf.Database.Name)
}

// Open connects to the records database.
func Open(conf *core.Config) (*sql.DB, error) {
	return connect(conf.Database, conf.Database.Name, false)
}

// Bootstrap provisions & opens the records database, then creates or upgrades
// the `records` & `idempotency_keys` tables.
func Bootstrap(conf *core.Config) (*sql.DB, error) {
	if err := Provision(conf); err != nil {
		return nil, err
	}
	db, err := Open(conf)
	if err != nil {
		return nil, err
	}
	if err = migrateFunc(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func init() {
	goose.SetBaseFS(appfs.FS)
	_ = goose.SetDialect("postgres")
}

// Migrate applies every pending migration.
func Migrate(db *sql.DB) error {
	return RunMigration(db, "up")
}

// RunMigration runs a goose command (up, down, status, redo, version...) over the embedded migrations.
func RunMigration(db *sql.DB, command string, args ...string) error {
	if err := goose.Run(command, db, migrationsDir, args...); err != nil {
		return errors.Wrapf(err, "migrating database (%s)", command)
	}
	return nil
}
