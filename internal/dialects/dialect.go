// Package dialects provides database-specific SQL generation strategies for
// PostgreSQL, MySQL, SQLite, and SQL Server, handling identifier quoting,
// placeholders, row limiting, version-gated features, and JSON operations.
package dialects

import (
	"fmt"
	"strings"

	"github.com/coregx/sqlforge/internal/errs"
)

// Dialect defines database-specific SQL generation behavior. Implementations
// are immutable once constructed and safe for concurrent use; version-gated
// features are resolved against the major version the dialect was built with.
type Dialect interface {
	// Name returns the canonical dialect name (postgres, mysql, sqlite, sqlserver).
	Name() string
	// Version returns the major server version this dialect targets.
	Version() int
	// QuoteIdentifier quotes a single table or column identifier.
	QuoteIdentifier(string) string
	// Placeholder returns the parameter placeholder for a 1-based position.
	Placeholder(int) string
	// LimitOffset renders the row limiting clause. A negative limit means
	// unlimited, a zero or negative offset means no offset; when neither is
	// set the result is empty.
	LimitOffset(limit, offset int64) string
	// UUIDExpr returns the server-side expression generating a random UUID.
	UUIDExpr() (string, error)
	// SequenceNextExpr returns the expression fetching the next value of the
	// named sequence.
	SequenceNextExpr(name string) (string, error)
	// RegexpOp returns the infix operator for regular expression matching.
	RegexpOp() (string, error)
	// SupportsGroupByAll reports whether GROUP BY ALL is accepted.
	SupportsGroupByAll() bool
	// SupportsCTEMaterialization reports whether MATERIALIZED and NOT
	// MATERIALIZED hints are accepted on common table expressions.
	SupportsCTEMaterialization() bool
	// SupportsUpsert reports whether the dialect has a native
	// single-statement upsert form.
	SupportsUpsert() bool
	// UpsertSQL returns the conflict resolution tail appended to an INSERT,
	// including its leading space, or "" when the dialect has none.
	UpsertSQL(table string, conflictColumns, updateCols []string) string
}

// Factory constructs a dialect instance targeting a major server version.
// Non-positive versions select the dialect's default.
type Factory func(major int) Dialect

var dialects = make(map[string]Factory)

// RegisterDialect registers a dialect factory under a driver or alias name.
// Registration happens during package initialization and is not synchronized;
// it must complete before any lookup.
func RegisterDialect(name string, f Factory) {
	dialects[name] = f
}

// New constructs a dialect by name targeting the given major version.
func New(name string, major int) (Dialect, error) {
	f, ok := dialects[name]
	if !ok {
		return nil, errs.UnknownDialectf(name)
	}
	return f(major), nil
}

// GetDialect retrieves a dialect by name at its default version, panics if
// the name is not registered.
func GetDialect(name string) Dialect {
	d, err := New(name, 0)
	if err != nil {
		panic(err)
	}
	return d
}

// quoteStringLiteral wraps s in single quotes for embedding in generated SQL,
// doubling any embedded quotes.
func quoteStringLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// unsupportedConstructf reports a construct the dialect cannot express.
func unsupportedConstructf(d Dialect, construct string) error {
	return errs.Unsupportedf(d.Name(), construct)
}

// unsupportedVersionf reports a construct gated behind a newer major version.
func unsupportedVersionf(d Dialect, construct string, minMajor int) error {
	return errs.Unsupportedf(d.Name(),
		fmt.Sprintf("%s before version %d (targeting %d)", construct, minMajor, d.Version()))
}
