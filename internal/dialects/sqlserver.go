package dialects

import (
	"fmt"
	"strings"
)

// DefaultSQLServerVersion is the major version assumed when detection is
// skipped or the version probe fails (16 = SQL Server 2022).
const DefaultSQLServerVersion = 16

// SQLServerDialect implements SQL Server-specific SQL generation.
type SQLServerDialect struct {
	major int
}

func init() {
	RegisterDialect("sqlserver", NewSQLServer)
	RegisterDialect("mssql", NewSQLServer)
}

// NewSQLServer returns the SQL Server dialect targeting the given major version.
func NewSQLServer(major int) Dialect {
	if major <= 0 {
		major = DefaultSQLServerVersion
	}
	return &SQLServerDialect{major: major}
}

// Name returns "sqlserver".
func (d *SQLServerDialect) Name() string { return "sqlserver" }

// Version returns the targeted major version.
func (d *SQLServerDialect) Version() int { return d.major }

// QuoteIdentifier quotes a SQL Server identifier using square brackets.
func (d *SQLServerDialect) QuoteIdentifier(s string) string {
	return "[" + strings.ReplaceAll(s, "]", "]]") + "]"
}

// Placeholder returns SQL Server placeholder format (@p1, @p2, etc.).
func (d *SQLServerDialect) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index)
}

// LimitOffset renders the OFFSET ... FETCH form. OFFSET is mandatory before
// FETCH, so a limit without an offset emits OFFSET 0 ROWS.
func (d *SQLServerDialect) LimitOffset(limit, offset int64) string {
	if offset < 0 {
		offset = 0
	}
	switch {
	case limit >= 0:
		return fmt.Sprintf("OFFSET %d ROWS FETCH NEXT %d ROWS ONLY", offset, limit)
	case offset > 0:
		return fmt.Sprintf("OFFSET %d ROWS", offset)
	default:
		return ""
	}
}

// UUIDExpr returns NEWID().
func (d *SQLServerDialect) UUIDExpr() (string, error) {
	return "NEWID()", nil
}

// SequenceNextExpr returns NEXT VALUE FOR the named sequence.
func (d *SQLServerDialect) SequenceNextExpr(name string) (string, error) {
	return "NEXT VALUE FOR " + name, nil
}

// RegexpOp returns an error; SQL Server has no regular expression operator.
func (d *SQLServerDialect) RegexpOp() (string, error) {
	return "", unsupportedConstructf(d, "regular expression matching")
}

// SupportsGroupByAll reports whether the legacy GROUP BY ALL syntax is still
// accepted; it was removed in SQL Server 2022.
func (d *SQLServerDialect) SupportsGroupByAll() bool { return d.major < 16 }

// SupportsCTEMaterialization reports false; SQL Server accepts no hints on
// common table expressions.
func (d *SQLServerDialect) SupportsCTEMaterialization() bool { return false }

// SupportsUpsert reports false; conflict handling requires a MERGE statement.
func (d *SQLServerDialect) SupportsUpsert() bool { return false }

// UpsertSQL returns ""; SQL Server has no INSERT conflict clause.
func (d *SQLServerDialect) UpsertSQL(string, []string, []string) string {
	return ""
}
