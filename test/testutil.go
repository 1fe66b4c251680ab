//go:build integration
// +build integration

// Package test executes rendered statements against live database engines.
package test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/coregx/sqlforge"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO required)
)

// DatabaseSetup encapsulates a live connection, its detected dialect, and cleanup.
type DatabaseSetup struct {
	DB        *sql.DB
	Container testcontainers.Container
	Dialect   sqlforge.Dialect
}

// Close cleans up database resources.
func (ds *DatabaseSetup) Close() {
	if ds.DB != nil {
		ds.DB.Close() //nolint:errcheck
	}
	if ds.Container != nil {
		ds.Container.Terminate(context.Background()) //nolint:errcheck
	}
}

// Builder returns a statement builder bound to the detected dialect.
func (ds *DatabaseSetup) Builder() *sqlforge.Builder {
	return sqlforge.NewBuilder(sqlforge.WithDialect(ds.Dialect))
}

// connect opens driverName with dsn and detects the server dialect from the
// live connection.
func connect(t *testing.T, driverName, dsn string) (*sql.DB, sqlforge.Dialect) {
	db, err := sql.Open(driverName, dsn)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, db.PingContext(ctx))

	d, err := sqlforge.Detect(ctx, db, driverName)
	require.NoError(t, err)

	return db, d
}

// SetupPostgreSQLTestDB creates a PostgreSQL test database.
// Uses testcontainers if available, falls back to env DSN.
func SetupPostgreSQLTestDB(t *testing.T) *DatabaseSetup {
	ctx := context.Background()

	// Check for manual DSN first (allows testing without Docker)
	if dsn := os.Getenv("POSTGRES_TEST_DSN"); dsn != "" {
		db, d := connect(t, "postgres", dsn)
		return &DatabaseSetup{DB: db, Dialect: d}
	}

	// Start PostgreSQL in Docker via testcontainers
	pgContainer, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skip("Docker not available for PostgreSQL integration tests: " + err.Error())
	}

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, d := connect(t, "postgres", dsn)

	return &DatabaseSetup{
		DB:        db,
		Container: pgContainer,
		Dialect:   d,
	}
}

// SetupMySQLTestDB creates a MySQL test database.
// Uses testcontainers if available, falls back to env DSN.
func SetupMySQLTestDB(t *testing.T) *DatabaseSetup {
	ctx := context.Background()

	// Check for manual DSN first
	if dsn := os.Getenv("MYSQL_TEST_DSN"); dsn != "" {
		db, d := connect(t, "mysql", dsn)
		return &DatabaseSetup{DB: db, Dialect: d}
	}

	// Start MySQL in Docker via testcontainers
	mysqlContainer, err := mysql.Run(
		ctx,
		"mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("user"),
		mysql.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("port: 3306  MySQL Community Server").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skip("Docker not available for MySQL integration tests: " + err.Error())
	}

	dsn, err := mysqlContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, d := connect(t, "mysql", dsn)

	return &DatabaseSetup{
		DB:        db,
		Container: mysqlContainer,
		Dialect:   d,
	}
}

// SetupSQLiteTestDB creates an in-memory SQLite database.
// Always works, no external dependencies.
func SetupSQLiteTestDB(t *testing.T) *DatabaseSetup {
	db, d := connect(t, "sqlite", ":memory:")

	return &DatabaseSetup{
		DB:      db,
		Dialect: d,
	}
}

// CreateUsersTable creates the users table with a JSON settings column.
func CreateUsersTable(t *testing.T, ds *DatabaseSetup) {
	var createSQL string

	switch ds.Dialect.Name() {
	case "postgres":
		createSQL = `
			CREATE TABLE IF NOT EXISTS users (
				id SERIAL PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) UNIQUE NOT NULL,
				age INTEGER,
				status INTEGER DEFAULT 1,
				settings JSONB NOT NULL DEFAULT '{}'
			)
		`
	case "mysql":
		createSQL = `
			CREATE TABLE IF NOT EXISTS users (
				id INT AUTO_INCREMENT PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) UNIQUE NOT NULL,
				age INT,
				status INT DEFAULT 1,
				settings JSON
			)
		`
	case "sqlite":
		createSQL = `
			CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name VARCHAR(255) NOT NULL,
				email VARCHAR(255) UNIQUE NOT NULL,
				age INTEGER,
				status INTEGER DEFAULT 1,
				settings TEXT NOT NULL DEFAULT '{}'
			)
		`
	}

	_, err := ds.DB.ExecContext(context.Background(), createSQL)
	require.NoError(t, err)
}

// SeedUsers inserts the standard user fixture through the builder.
func SeedUsers(t *testing.T, ds *DatabaseSetup) {
	ins := ds.Builder().Insert("users").
		Columns("name", "email", "age", "status", "settings").
		Values("Alice", "alice@example.com", 30, 1, `{}`).
		Values("Bob", "bob@example.com", 17, 1, `{}`).
		Values("Charlie", "charlie@example.com", 25, 0, `{}`).
		Values("Diana", "diana@example.com", 22, 1, `{}`).
		Build()

	_, err := ds.DB.ExecContext(context.Background(), ins.SQL(), ins.Params()...)
	require.NoError(t, err)
}

// QueryNames runs a built query whose first column is a name and collects it.
func QueryNames(t *testing.T, ds *DatabaseSetup, q *sqlforge.Query) []string {
	rows, err := ds.DB.QueryContext(context.Background(), q.SQL(), q.Params()...)
	require.NoError(t, err)
	defer rows.Close() //nolint:errcheck

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())

	return names
}
