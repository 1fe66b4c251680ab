package core

import (
	"sort"
	"strings"

	"github.com/coregx/sqlforge/internal/dialects"
	"github.com/coregx/sqlforge/internal/logger"
	"github.com/coregx/sqlforge/internal/naming"
	"github.com/coregx/sqlforge/internal/tracer"
)

// Builder is the statement factory. It carries the dialect, the identifier
// naming strategy and the observability hooks shared by every statement it
// creates. A Builder is immutable after construction and safe for concurrent
// use; the statements it creates are single-writer values.
type Builder struct {
	dialect   dialects.Dialect
	naming    naming.Conversion
	logger    logger.Logger
	tracer    tracer.Tracer
	sanitizer *logger.Sanitizer
}

// Option configures a Builder.
type Option func(*Builder)

// WithDialect sets the SQL dialect statements render against.
func WithDialect(d dialects.Dialect) Option {
	return func(b *Builder) { b.dialect = d }
}

// WithNaming sets the identifier naming strategy. Conversion applies to
// structured table and column arguments only; raw fragments pass through
// untouched.
func WithNaming(c naming.Conversion) Option {
	return func(b *Builder) { b.naming = c }
}

// WithLogger sets the logger receiving a debug record for every built
// statement.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithTracer sets the tracer used by BuildContext.
func WithTracer(t tracer.Tracer) Option {
	return func(b *Builder) { b.tracer = t }
}

// WithSensitiveFields sets additional column names whose parameter values are
// masked in log output.
func WithSensitiveFields(fields ...string) Option {
	return func(b *Builder) { b.sanitizer = logger.NewSanitizer(fields) }
}

// NewBuilder constructs a Builder. The zero configuration targets MySQL with
// identity naming and no-op observability.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		dialect:   dialects.GetDialect("mysql"),
		naming:    naming.Identity{},
		logger:    &logger.NoopLogger{},
		tracer:    &tracer.NoopTracer{},
		sanitizer: logger.NewSanitizer(nil),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Dialect returns the dialect statements render against.
func (b *Builder) Dialect() dialects.Dialect {
	return b.dialect
}

// UUID returns an expression generating a random UUID server-side, for use
// as an inserted value or SET assignment. Dialects or versions without a
// UUID function reject the call with an unsupported-operation error.
func (b *Builder) UUID() Expr {
	expr, err := b.dialect.UUIDExpr()
	if err != nil {
		panic(err)
	}
	return Expr{SQL: expr}
}

// SequenceNext returns an expression fetching the next value of the named
// sequence.
func (b *Builder) SequenceNext(name string) Expr {
	if name == "" {
		argPanicf("empty sequence name")
	}
	expr, err := b.dialect.SequenceNextExpr(name)
	if err != nil {
		panic(err)
	}
	return Expr{SQL: expr}
}

// Select starts a SELECT statement reading from table. An empty table builds
// a FROM-less statement, the form recursive CTE anchors use.
func (b *Builder) Select(table string) *SelectQuery {
	return &SelectQuery{
		b:     b,
		table: b.convertTable(table),
		limit: -1,
	}
}

// Insert starts an INSERT statement into table.
func (b *Builder) Insert(table string) *InsertQuery {
	if table == "" {
		argPanicf("empty table identifier")
	}
	return &InsertQuery{b: b, table: b.convertTable(table)}
}

// Update starts an UPDATE statement on table.
func (b *Builder) Update(table string) *UpdateQuery {
	if table == "" {
		argPanicf("empty table identifier")
	}
	q := &UpdateQuery{b: b, table: b.convertTable(table)}
	q.sets.prefix = " SET "
	q.sets.separator = ", "
	return q
}

// Delete starts a DELETE statement on table.
func (b *Builder) Delete(table string) *DeleteQuery {
	if table == "" {
		argPanicf("empty table identifier")
	}
	return &DeleteQuery{b: b, table: b.convertTable(table)}
}

func (b *Builder) convertTable(name string) string {
	return convertIdentifier(name, b.naming.ConvertTableName)
}

func (b *Builder) convertColumn(name string) string {
	return convertIdentifier(name, b.naming.ConvertColumnName)
}

func (b *Builder) convertColumns(names []string) []string {
	converted := make([]string, len(names))
	for i, n := range names {
		converted[i] = b.convertColumn(n)
	}
	return converted
}

// logBuilt emits one debug record per built statement with masked parameters.
func (b *Builder) logBuilt(sql string, params []interface{}) {
	b.logger.Debug("statement built",
		"sql", sql,
		"params", b.sanitizer.FormatParams(b.sanitizer.MaskParams(sql, params)),
		"dialect", b.dialect.Name(),
		"operation", tracer.DetectOperation(sql),
	)
}

// convertIdentifier applies a naming conversion to bare identifiers. A
// qualified name converts segment by segment; anything else (expressions,
// aliases, quoted text) passes through untouched.
func convertIdentifier(name string, convert func(string) string) string {
	if isBareIdentifier(name) {
		return convert(name)
	}
	if !strings.Contains(name, ".") {
		return name
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if !isBareIdentifier(p) {
			return name
		}
		parts[i] = convert(p)
	}
	return strings.Join(parts, ".")
}

func isBareIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	return true
}

// getKeys returns map keys sorted for deterministic SQL generation.
func getKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
