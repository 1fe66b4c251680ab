package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coregx/sqlforge/internal/errs"
)

// testBuilder is defined in builder_test.go.

func TestInsertQuery_Upsert_PostgreSQL_DoUpdate(t *testing.T) {
	q := testBuilder("postgres").
		Insert("users").
		Columns("email", "name").
		Values("alice@example.com", "Alice").
		OnConflict("email").
		DoUpdate("name").
		Build()

	assert.Equal(t,
		"INSERT INTO users (email, name) VALUES ($1, $2) ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name",
		q.sql)
	assert.Equal(t, []interface{}{"alice@example.com", "Alice"}, q.params)
}

// Without an explicit DoUpdate the conflict resolution updates every
// inserted column that is not part of the conflict target.
func TestInsertQuery_Upsert_DefaultUpdateColumns(t *testing.T) {
	q := testBuilder("postgres").
		Insert("users").
		Columns("email", "name", "age").
		Values("alice@example.com", "Alice", 30).
		OnConflict("email").
		Build()

	assert.Equal(t,
		"INSERT INTO users (email, name, age) VALUES ($1, $2, $3) "+
			"ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, age = EXCLUDED.age",
		q.sql)
}

// When every inserted column belongs to the conflict target there is nothing
// left to update and the statement degrades to DO NOTHING.
func TestInsertQuery_Upsert_AllColumnsConflict(t *testing.T) {
	q := testBuilder("postgres").
		Insert("tags").
		Columns("name").
		Values("golang").
		OnConflict("name").
		Build()

	assert.Equal(t, "INSERT INTO tags (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", q.sql)
}

func TestInsertQuery_Upsert_PostgreSQL_DoNothing(t *testing.T) {
	q := testBuilder("postgres").
		Insert("users").
		Columns("email", "name").
		Values("alice@example.com", "Alice").
		OnConflict("email").
		DoNothing().
		Build()

	assert.Equal(t,
		"INSERT INTO users (email, name) VALUES ($1, $2) ON CONFLICT (email) DO NOTHING",
		q.sql)
}

func TestInsertQuery_Upsert_SQLite(t *testing.T) {
	q := testBuilder("sqlite").
		Insert("users").
		Columns("email", "name").
		Values("alice@example.com", "Alice").
		OnConflict("email").
		DoUpdate("name").
		Build()

	assert.Equal(t,
		"INSERT INTO users (email, name) VALUES (?, ?) ON CONFLICT (email) DO UPDATE SET name = excluded.name",
		q.sql)
}

func TestInsertQuery_Upsert_MySQL(t *testing.T) {
	q := testBuilder("mysql").
		Insert("users").
		Columns("email", "name").
		Values("alice@example.com", "Alice").
		OnConflict("email").
		DoUpdate("name").
		Build()

	assert.Equal(t,
		"INSERT INTO users (email, name) VALUES (?, ?) ON DUPLICATE KEY UPDATE name = VALUES(name)",
		q.sql)
}

// MySQL has no DO NOTHING form; the no-op self-assignment of the first
// conflict column stands in for it.
func TestInsertQuery_Upsert_MySQL_DoNothing(t *testing.T) {
	q := testBuilder("mysql").
		Insert("users").
		Columns("email", "name").
		Values("alice@example.com", "Alice").
		OnConflict("email").
		DoNothing().
		Build()

	assert.Equal(t,
		"INSERT INTO users (email, name) VALUES (?, ?) ON DUPLICATE KEY UPDATE email = email",
		q.sql)
}

func TestInsertQuery_Upsert_SQLServer_Unsupported(t *testing.T) {
	b := testBuilder("sqlserver")
	requirePanicErrorIs(t, errs.ErrUnsupportedOperation, func() {
		b.Insert("users").Columns("email").Values("a@example.com").OnConflict("email")
	})
}

func TestInsertQuery_DoUpdateWithoutOnConflict(t *testing.T) {
	b := testBuilder("postgres")
	requirePanicErrorIs(t, errs.ErrInvalidArgument, func() {
		b.Insert("users").Columns("email").Values("a@example.com").DoUpdate("email")
	})
}

func TestInsertQuery_DoNothingWithoutOnConflict(t *testing.T) {
	b := testBuilder("postgres")
	requirePanicErrorIs(t, errs.ErrInvalidArgument, func() {
		b.Insert("users").Columns("email").Values("a@example.com").DoNothing()
	})
}

func TestInsertQuery_Upsert_MultiRow(t *testing.T) {
	q := testBuilder("postgres").
		Insert("users").
		Columns("email", "name").
		Values("a@example.com", "Alice").
		Values("b@example.com", "Bob").
		OnConflict("email").
		DoUpdate("name").
		Build()

	assert.Equal(t,
		"INSERT INTO users (email, name) VALUES ($1, $2), ($3, $4) "+
			"ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name",
		q.sql)
	assert.Equal(t, []interface{}{"a@example.com", "Alice", "b@example.com", "Bob"}, q.params)
}
