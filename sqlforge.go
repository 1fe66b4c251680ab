// Package sqlforge provides a fluent SQL statement builder for Go with
// support for PostgreSQL, MySQL, SQLite, and SQL Server. It renders dialect-
// correct SQL text with an aligned parameter sequence, and offers identifier
// naming conversion, JSON document operations, and OpenTelemetry tracing out
// of the box. It never executes the statements it builds.
package sqlforge

import (
	"context"
	"database/sql"

	"github.com/coregx/sqlforge/internal/core"
	"github.com/coregx/sqlforge/internal/dialects"
	"github.com/coregx/sqlforge/internal/errs"
	"github.com/coregx/sqlforge/internal/logger"
	"github.com/coregx/sqlforge/internal/naming"
	"github.com/coregx/sqlforge/internal/tracer"
)

type (
	// Builder is the statement factory carrying dialect, naming, and
	// observability configuration.
	Builder = core.Builder
	// Option is a functional option for configuring a Builder.
	Option = core.Option
	// Query is a rendered statement: SQL text plus its parameter sequence.
	Query = core.Query
	// SelectQuery represents a SELECT statement being built.
	SelectQuery = core.SelectQuery
	// InsertQuery represents an INSERT statement being built.
	InsertQuery = core.InsertQuery
	// UpdateQuery represents an UPDATE statement being built.
	UpdateQuery = core.UpdateQuery
	// DeleteQuery represents a DELETE statement being built.
	DeleteQuery = core.DeleteQuery
	// Expr is a raw SQL fragment with its bound parameters.
	Expr = core.Expr
	// Op identifies the comparison operator of a structured predicate.
	Op = core.Op
	// Logic connects a predicate to the ones accumulated before it.
	Logic = core.Logic
	// ConditionList accumulates predicate fragments with their connectors.
	ConditionList = core.ConditionList

	// Dialect defines database-specific SQL generation behavior.
	Dialect = dialects.Dialect
	// JsonDialect generates JSON manipulation expressions.
	JsonDialect = dialects.JsonDialect
	// JSONType selects between the textual and binary JSON column types.
	JSONType = dialects.JSONType
	// Path addresses a location inside a JSON document.
	Path = dialects.Path
	// DetectOption configures dialect detection.
	DetectOption = dialects.DetectOption

	// Conversion maps Go identifiers to database identifiers.
	Conversion = naming.Conversion
	// Identity passes identifiers through unchanged.
	Identity = naming.Identity
	// SnakeCase converts identifiers to snake_case.
	SnakeCase = naming.SnakeCase
	// CamelCase converts identifiers to camelCase.
	CamelCase = naming.CamelCase

	// Logger receives a debug record for every built statement.
	Logger = logger.Logger
	// Tracer creates spans around statement assembly and dialect detection.
	Tracer = tracer.Tracer
	// Span captures one traced operation.
	Span = tracer.Span
)

// Operators accepted by Where, And, Or, Having and their multi-column variants.
const (
	EQ         = core.EQ
	NEQ        = core.NEQ
	GT         = core.GT
	GTE        = core.GTE
	LT         = core.LT
	LTE        = core.LTE
	IN         = core.IN
	NOTIN      = core.NOTIN
	LIKE       = core.LIKE
	NOTLIKE    = core.NOTLIKE
	STARTWITH  = core.STARTWITH
	ENDWITH    = core.ENDWITH
	BETWEEN    = core.BETWEEN
	NOTBETWEEN = core.NOTBETWEEN
	REGEXP     = core.REGEXP
	ISNULL     = core.ISNULL
	ISNOTNULL  = core.ISNOTNULL
)

// Connectors accepted by ConditionList.Add.
const (
	LogicAnd = core.LogicAnd
	LogicOr  = core.LogicOr
)

// JSON column types.
const (
	JSON  = dialects.JSON
	JSONB = dialects.JSONB
)

// Sentinel errors. Panics raised by builder methods carry error values that
// match these with errors.Is.
var (
	ErrInvalidArgument      = errs.ErrInvalidArgument
	ErrUnsupportedOperation = errs.ErrUnsupportedOperation
	ErrUnknownDialect       = errs.ErrUnknownDialect
)

// Re-export core functions.
var (
	NewBuilder          = core.NewBuilder
	WithDialect         = core.WithDialect
	WithNaming          = core.WithNaming
	WithLogger          = core.WithLogger
	WithTracer          = core.WithTracer
	WithSensitiveFields = core.WithSensitiveFields

	// Expression builders
	NewExpr   = core.NewExpr
	Not       = core.Not
	Exists    = core.Exists
	NotExists = core.NotExists
	Any       = core.Any
	All       = core.All
)

// Dialect construction and detection.
var (
	NewDialect   = dialects.New
	GetDialect   = dialects.GetDialect
	NewPostgres  = dialects.NewPostgres
	NewMySQL     = dialects.NewMySQL
	NewSQLite    = dialects.NewSQLite
	NewSQLServer = dialects.NewSQLServer
	JSONOf       = dialects.JSONOf

	Detect           = dialects.Detect
	WithDetectLogger = dialects.WithLogger
	WithDetectTracer = dialects.WithTracer
)

// Observability adapters.
var (
	NewSlogAdapter = logger.NewSlogAdapter
	NewOtelTracer  = tracer.NewOtelTracer
)

// Executor is the external execution contract a built Query targets: the
// placeholder markers in the SQL text are positional and their count equals
// len(params). sqlforge renders for this contract but never calls it;
// pass Query.SQL() and Query.Params() to your driver or pool.
type Executor interface {
	Execute(ctx context.Context, query string, params ...interface{}) (sql.Result, error)
}

// defaultBuilder serves the package-level statement constructors.
var defaultBuilder = core.NewBuilder()

// SetDefault replaces the Builder behind the package-level constructors.
// Call it once during program initialization; it is not synchronized.
func SetDefault(opts ...Option) {
	defaultBuilder = core.NewBuilder(opts...)
}

// Select starts a SELECT statement on the package-level Builder, which
// targets MySQL with identity naming until SetDefault changes it.
func Select(table string) *SelectQuery { return defaultBuilder.Select(table) }

// Insert starts an INSERT statement on the package-level Builder.
func Insert(table string) *InsertQuery { return defaultBuilder.Insert(table) }

// Update starts an UPDATE statement on the package-level Builder.
func Update(table string) *UpdateQuery { return defaultBuilder.Update(table) }

// Delete starts a DELETE statement on the package-level Builder.
func Delete(table string) *DeleteQuery { return defaultBuilder.Delete(table) }
