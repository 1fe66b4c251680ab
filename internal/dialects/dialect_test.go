package dialects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/sqlforge/internal/errs"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		driver          string
		major           int
		expectedName    string
		expectedVersion int
	}{
		{"postgres default", "postgres", 0, "postgres", 16},
		{"postgres explicit", "postgres", 14, "postgres", 14},
		{"postgresql alias", "postgresql", 0, "postgres", 16},
		{"pgx alias", "pgx", 0, "postgres", 16},
		{"mysql default", "mysql", 0, "mysql", 8},
		{"sqlite default", "sqlite", 0, "sqlite", 3},
		{"sqlite3 alias", "sqlite3", 0, "sqlite", 3},
		{"sqlserver default", "sqlserver", 0, "sqlserver", 16},
		{"mssql alias", "mssql", 15, "sqlserver", 15},
		{"negative selects default", "mysql", -1, "mysql", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.driver, tt.major)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedName, d.Name())
			assert.Equal(t, tt.expectedVersion, d.Version())
		})
	}
}

func TestNew_UnknownDialect(t *testing.T) {
	_, err := New("oracle", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrUnknownDialect)
	assert.Contains(t, err.Error(), "oracle")
}

func TestGetDialect_PanicsOnUnknown(t *testing.T) {
	assert.NotPanics(t, func() { GetDialect("postgres") })
	assert.Panics(t, func() { GetDialect("oracle") })
}

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		dialect    string
		identifier string
		expected   string
	}{
		{"postgres", "postgres", "users", `"users"`},
		{"postgres doubles quotes", "postgres", `we"ird`, `"we""ird"`},
		{"mysql", "mysql", "users", "`users`"},
		{"mysql doubles backticks", "mysql", "we`ird", "`we``ird`"},
		{"sqlite", "sqlite", "users", `"users"`},
		{"sqlserver", "sqlserver", "users", "[users]"},
		{"sqlserver doubles brackets", "sqlserver", "we]ird", "[we]]ird]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetDialect(tt.dialect).QuoteIdentifier(tt.identifier))
		})
	}
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "$1", GetDialect("postgres").Placeholder(1))
	assert.Equal(t, "$5", GetDialect("postgres").Placeholder(5))
	assert.Equal(t, "?", GetDialect("mysql").Placeholder(1))
	assert.Equal(t, "?", GetDialect("mysql").Placeholder(9))
	assert.Equal(t, "?", GetDialect("sqlite").Placeholder(2))
	assert.Equal(t, "@p1", GetDialect("sqlserver").Placeholder(1))
	assert.Equal(t, "@p3", GetDialect("sqlserver").Placeholder(3))
}

func TestLimitOffset(t *testing.T) {
	tests := []struct {
		name     string
		dialect  string
		limit    int64
		offset   int64
		expected string
	}{
		{"postgres both", "postgres", 10, 20, "LIMIT 10 OFFSET 20"},
		{"postgres limit only", "postgres", 10, 0, "LIMIT 10"},
		{"postgres offset only", "postgres", -1, 20, "OFFSET 20"},
		{"postgres neither", "postgres", -1, 0, ""},
		{"mysql both", "mysql", 10, 20, "LIMIT 10 OFFSET 20"},
		{"mysql limit only", "mysql", 10, 0, "LIMIT 10"},
		{"mysql offset needs sentinel", "mysql", -1, 20, "LIMIT 18446744073709551615 OFFSET 20"},
		{"mysql neither", "mysql", -1, 0, ""},
		{"sqlite both", "sqlite", 10, 20, "LIMIT 10 OFFSET 20"},
		{"sqlite offset needs limit", "sqlite", -1, 20, "LIMIT -1 OFFSET 20"},
		{"sqlserver both", "sqlserver", 10, 20, "OFFSET 20 ROWS FETCH NEXT 10 ROWS ONLY"},
		{"sqlserver limit only", "sqlserver", 10, 0, "OFFSET 0 ROWS FETCH NEXT 10 ROWS ONLY"},
		{"sqlserver offset only", "sqlserver", -1, 20, "OFFSET 20 ROWS"},
		{"sqlserver clamps negative offset", "sqlserver", 10, -5, "OFFSET 0 ROWS FETCH NEXT 10 ROWS ONLY"},
		{"sqlserver neither", "sqlserver", -1, 0, ""},
		{"limit zero is a real limit", "postgres", 0, 0, "LIMIT 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetDialect(tt.dialect).LimitOffset(tt.limit, tt.offset))
		})
	}
}

func TestUUIDExpr(t *testing.T) {
	t.Run("postgres", func(t *testing.T) {
		expr, err := GetDialect("postgres").UUIDExpr()
		require.NoError(t, err)
		assert.Equal(t, "gen_random_uuid()", expr)
	})

	t.Run("postgres before 13", func(t *testing.T) {
		d, err := New("postgres", 12)
		require.NoError(t, err)
		_, err = d.UUIDExpr()
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrUnsupportedOperation)
	})

	t.Run("mysql", func(t *testing.T) {
		expr, err := GetDialect("mysql").UUIDExpr()
		require.NoError(t, err)
		assert.Equal(t, "UUID()", expr)
	})

	t.Run("sqlserver", func(t *testing.T) {
		expr, err := GetDialect("sqlserver").UUIDExpr()
		require.NoError(t, err)
		assert.Equal(t, "NEWID()", expr)
	})

	t.Run("sqlite", func(t *testing.T) {
		_, err := GetDialect("sqlite").UUIDExpr()
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrUnsupportedOperation)
	})
}

func TestSequenceNextExpr(t *testing.T) {
	t.Run("postgres", func(t *testing.T) {
		expr, err := GetDialect("postgres").SequenceNextExpr("order_seq")
		require.NoError(t, err)
		assert.Equal(t, "nextval('order_seq')", expr)
	})

	t.Run("sqlserver", func(t *testing.T) {
		expr, err := GetDialect("sqlserver").SequenceNextExpr("order_seq")
		require.NoError(t, err)
		assert.Equal(t, "NEXT VALUE FOR order_seq", expr)
	})

	t.Run("mysql", func(t *testing.T) {
		_, err := GetDialect("mysql").SequenceNextExpr("order_seq")
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrUnsupportedOperation)
	})

	t.Run("sqlite", func(t *testing.T) {
		_, err := GetDialect("sqlite").SequenceNextExpr("order_seq")
		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrUnsupportedOperation)
	})
}

func TestRegexpOp(t *testing.T) {
	tests := []struct {
		dialect  string
		expected string
		wantErr  bool
	}{
		{"postgres", "~", false},
		{"mysql", "REGEXP", false},
		{"sqlite", "REGEXP", false},
		{"sqlserver", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			op, err := GetDialect(tt.dialect).RegexpOp()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errs.ErrUnsupportedOperation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, op)
		})
	}
}

func TestFeatureFlags(t *testing.T) {
	t.Run("group by all", func(t *testing.T) {
		assert.False(t, GetDialect("postgres").SupportsGroupByAll())
		assert.False(t, GetDialect("mysql").SupportsGroupByAll())
		assert.False(t, GetDialect("sqlite").SupportsGroupByAll())
		// Removed in SQL Server 2022 (major 16).
		assert.False(t, GetDialect("sqlserver").SupportsGroupByAll())
		older, err := New("sqlserver", 15)
		require.NoError(t, err)
		assert.True(t, older.SupportsGroupByAll())
	})

	t.Run("cte materialization", func(t *testing.T) {
		assert.True(t, GetDialect("postgres").SupportsCTEMaterialization())
		old, err := New("postgres", 11)
		require.NoError(t, err)
		assert.False(t, old.SupportsCTEMaterialization())
		assert.True(t, GetDialect("sqlite").SupportsCTEMaterialization())
		assert.False(t, GetDialect("mysql").SupportsCTEMaterialization())
		assert.False(t, GetDialect("sqlserver").SupportsCTEMaterialization())
	})

	t.Run("upsert", func(t *testing.T) {
		assert.True(t, GetDialect("postgres").SupportsUpsert())
		assert.True(t, GetDialect("mysql").SupportsUpsert())
		assert.True(t, GetDialect("sqlite").SupportsUpsert())
		assert.False(t, GetDialect("sqlserver").SupportsUpsert())
	})
}

func TestUpsertSQL(t *testing.T) {
	tests := []struct {
		name        string
		dialect     string
		conflict    []string
		update      []string
		expectedSQL string
	}{
		{
			name:        "postgres do update",
			dialect:     "postgres",
			conflict:    []string{"email"},
			update:      []string{"name", "age"},
			expectedSQL: " ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, age = EXCLUDED.age",
		},
		{
			name:        "postgres do nothing with columns",
			dialect:     "postgres",
			conflict:    []string{"email", "tenant_id"},
			update:      nil,
			expectedSQL: " ON CONFLICT (email, tenant_id) DO NOTHING",
		},
		{
			name:        "postgres do nothing bare",
			dialect:     "postgres",
			conflict:    nil,
			update:      nil,
			expectedSQL: " ON CONFLICT DO NOTHING",
		},
		{
			name:        "sqlite do update",
			dialect:     "sqlite",
			conflict:    []string{"email"},
			update:      []string{"name"},
			expectedSQL: " ON CONFLICT (email) DO UPDATE SET name = excluded.name",
		},
		{
			name:        "mysql do update",
			dialect:     "mysql",
			conflict:    []string{"email"},
			update:      []string{"name", "age"},
			expectedSQL: " ON DUPLICATE KEY UPDATE name = VALUES(name), age = VALUES(age)",
		},
		{
			name:        "mysql do nothing self-assigns",
			dialect:     "mysql",
			conflict:    []string{"email"},
			update:      nil,
			expectedSQL: " ON DUPLICATE KEY UPDATE email = email",
		},
		{
			name:        "mysql do nothing without columns",
			dialect:     "mysql",
			conflict:    nil,
			update:      nil,
			expectedSQL: "",
		},
		{
			name:        "sqlserver has no conflict clause",
			dialect:     "sqlserver",
			conflict:    []string{"email"},
			update:      []string{"name"},
			expectedSQL: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := GetDialect(tt.dialect)
			assert.Equal(t, tt.expectedSQL, d.UpsertSQL("t", tt.conflict, tt.update))
		})
	}
}

func TestParseMajor(t *testing.T) {
	tests := []struct {
		version  string
		expected int
	}{
		{"16.2 (Debian 16.2-1.pgdg120+2)", 16},
		{"8.0.36", 8},
		{"10.11.2-MariaDB", 10},
		{"3.45.0", 3},
		{"15.00.2000.5", 15},
		{"garbage", 0},
		{"", 0},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseMajor(tt.version))
		})
	}
}
