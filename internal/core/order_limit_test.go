package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coregx/sqlforge/internal/errs"
)

// testBuilder is defined in builder_test.go.

func TestSelectQuery_OrderBy_Single(t *testing.T) {
	q := testBuilder("postgres").Select("users").OrderBy("name").Build()
	assert.Equal(t, "SELECT * FROM users ORDER BY name", q.sql)
}

func TestSelectQuery_OrderBy_Multiple(t *testing.T) {
	q := testBuilder("postgres").Select("users").OrderBy("name", "id DESC").Build()
	assert.Equal(t, "SELECT * FROM users ORDER BY name, id DESC", q.sql)
}

// TestSelectQuery_OrderBy_Normalization covers direction casing and the raw
// passthrough for entries that are not a bare column plus direction.
func TestSelectQuery_OrderBy_Normalization(t *testing.T) {
	tests := []struct {
		name     string
		entry    string
		expected string
	}{
		{"lowercase asc", "name asc", "name ASC"},
		{"lowercase desc", "name desc", "name DESC"},
		{"mixed case", "name Desc", "name DESC"},
		{"already upper", "name DESC", "name DESC"},
		{"expression passthrough", "LENGTH(name) DESC", "LENGTH(name) DESC"},
		{"nulls clause passthrough", "name DESC NULLS LAST", "name DESC NULLS LAST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := testBuilder("postgres").Select("users").OrderBy(tt.entry).Build()
			assert.Equal(t, "SELECT * FROM users ORDER BY "+tt.expected, q.sql)
		})
	}
}

func TestSelectQuery_OrderBy_EmptyEntry(t *testing.T) {
	b := testBuilder("postgres")
	requirePanicErrorIs(t, errs.ErrInvalidArgument, func() {
		b.Select("users").OrderBy("")
	})
}

func TestSelectQuery_Limit(t *testing.T) {
	q := testBuilder("postgres").Select("users").Limit(100).Build()
	assert.Equal(t, "SELECT * FROM users LIMIT 100", q.sql)
}

func TestSelectQuery_LimitOffset(t *testing.T) {
	q := testBuilder("postgres").Select("users").Limit(100).Offset(200).Build()
	assert.Equal(t, "SELECT * FROM users LIMIT 100 OFFSET 200", q.sql)
}

// TestSelectQuery_OffsetOnly covers the offset-without-limit spelling of each
// dialect: PostgreSQL allows a bare OFFSET, MySQL needs its documented
// maximum row count sentinel, SQLite uses LIMIT -1, SQL Server uses the
// OFFSET ... ROWS form.
func TestSelectQuery_OffsetOnly(t *testing.T) {
	tests := []struct {
		dialect  string
		expected string
	}{
		{"postgres", "SELECT * FROM users OFFSET 50"},
		{"mysql", "SELECT * FROM users LIMIT 18446744073709551615 OFFSET 50"},
		{"sqlite", "SELECT * FROM users LIMIT -1 OFFSET 50"},
		{"sqlserver", "SELECT * FROM users OFFSET 50 ROWS"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			q := testBuilder(tt.dialect).Select("users").Offset(50).Build()
			assert.Equal(t, tt.expected, q.sql)
		})
	}
}

func TestSelectQuery_LimitOnly_SQLServer(t *testing.T) {
	q := testBuilder("sqlserver").Select("users").Limit(10).Build()
	assert.Equal(t, "SELECT * FROM users OFFSET 0 ROWS FETCH NEXT 10 ROWS ONLY", q.sql)
}

func TestSelectQuery_NoLimitNoOffset(t *testing.T) {
	for _, name := range []string{"postgres", "mysql", "sqlite", "sqlserver"} {
		t.Run(name, func(t *testing.T) {
			q := testBuilder(name).Select("users").Build()
			assert.Equal(t, "SELECT * FROM users", q.sql)
		})
	}
}

func TestSelectQuery_Limit_Invalid(t *testing.T) {
	b := testBuilder("postgres")
	requirePanicErrorIs(t, errs.ErrInvalidArgument, func() {
		b.Select("users").Limit(0)
	})
}

func TestSelectQuery_Limit_Negative(t *testing.T) {
	b := testBuilder("postgres")
	requirePanicErrorIs(t, errs.ErrInvalidArgument, func() {
		b.Select("users").Limit(-5)
	})
}

func TestSelectQuery_Offset_Negative(t *testing.T) {
	b := testBuilder("postgres")
	requirePanicErrorIs(t, errs.ErrInvalidArgument, func() {
		b.Select("users").Offset(-1)
	})
}

func TestSelectQuery_ZeroOffsetIsNoOp(t *testing.T) {
	q := testBuilder("postgres").Select("users").Limit(10).Offset(0).Build()
	assert.Equal(t, "SELECT * FROM users LIMIT 10", q.sql)
}
