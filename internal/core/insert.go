package core

import (
	"context"
	"strings"

	"github.com/coregx/sqlforge/internal/dialects"
	"github.com/coregx/sqlforge/internal/tracer"
)

// InsertQuery builds an INSERT statement, single or multi row, with optional
// conflict resolution on dialects that support a native upsert.
type InsertQuery struct {
	b            *Builder
	ctes         cteClause
	table        string
	columns      []string
	rows         [][]interface{}
	upsert       bool
	doNothing    bool
	conflictCols []string
	updateCols   []string
}

// With declares a common table expression the statement can reference.
func (s *InsertQuery) With(name string, sub *SelectQuery) *InsertQuery {
	s.ctes.add(s.b.convertTable(name), sub, "", false)
	return s
}

// Columns declares the column list. It must precede Values.
func (s *InsertQuery) Columns(columns ...string) *InsertQuery {
	if len(s.rows) > 0 {
		argPanicf("Columns must precede Values")
	}
	for _, c := range columns {
		s.columns = append(s.columns, s.b.convertColumn(c))
	}
	return s
}

// Values appends one row. Every row must have the same width as the declared
// column list, or as the first row when no columns were declared. A value of
// type Expr renders inline as a server-side expression; a *SelectQuery
// renders as a scalar subquery; anything else binds to a placeholder.
func (s *InsertQuery) Values(values ...interface{}) *InsertQuery {
	if len(values) == 0 {
		argPanicf("empty row")
	}
	if len(s.columns) > 0 && len(values) != len(s.columns) {
		argPanicf("row has %d values for %d columns", len(values), len(s.columns))
	}
	if len(s.columns) == 0 && len(s.rows) > 0 && len(values) != len(s.rows[0]) {
		argPanicf("row has %d values, previous rows have %d", len(values), len(s.rows[0]))
	}
	s.rows = append(s.rows, values)
	return s
}

// SetMap sets the columns and a single row from a map. Keys are sorted so the
// generated SQL is deterministic.
func (s *InsertQuery) SetMap(m map[string]interface{}) *InsertQuery {
	if len(m) == 0 {
		argPanicf("empty value map")
	}
	if len(s.columns) > 0 || len(s.rows) > 0 {
		argPanicf("SetMap cannot follow Columns or Values")
	}
	keys := getKeys(m)
	row := make([]interface{}, len(keys))
	for i, k := range keys {
		s.columns = append(s.columns, s.b.convertColumn(k))
		row[i] = m[k]
	}
	s.rows = append(s.rows, row)
	return s
}

// OnConflict turns the statement into an upsert keyed on the given columns.
// Without a following DoNothing or DoUpdate call, conflicting rows update
// every inserted column that is not a conflict key. Dialects without a native
// upsert reject the call with an unsupported-operation error.
func (s *InsertQuery) OnConflict(columns ...string) *InsertQuery {
	if !s.b.dialect.SupportsUpsert() {
		unsupportedPanic(s.b.dialect, "upsert")
	}
	s.upsert = true
	s.conflictCols = s.b.convertColumns(columns)
	return s
}

// DoNothing makes conflicting rows be skipped instead of updated.
func (s *InsertQuery) DoNothing() *InsertQuery {
	if !s.upsert {
		argPanicf("DoNothing requires OnConflict")
	}
	s.doNothing = true
	return s
}

// DoUpdate restricts the columns updated on conflict. Without arguments it
// keeps the default of every non-key column.
func (s *InsertQuery) DoUpdate(columns ...string) *InsertQuery {
	if !s.upsert {
		argPanicf("DoUpdate requires OnConflict")
	}
	s.doNothing = false
	s.updateCols = s.b.convertColumns(columns)
	return s
}

func (s *InsertQuery) clauses() []clause {
	return []clause{
		&s.ctes,
		textClause("INSERT INTO " + s.table),
		&insertBody{columns: s.columns, rows: s.rows},
		upsertClause{
			active:       s.upsert,
			table:        s.table,
			conflictCols: s.conflictCols,
			updateCols:   s.resolvedUpdateCols(),
		},
	}
}

// resolvedUpdateCols returns nil when conflicts are ignored, which the
// dialect renders as its skip form.
func (s *InsertQuery) resolvedUpdateCols() []string {
	if !s.upsert || s.doNothing {
		return nil
	}
	cols := s.updateCols
	if len(cols) == 0 {
		cols = filterKeys(s.columns, s.conflictCols)
	}
	if len(cols) == 0 {
		return nil
	}
	return cols
}

// Build renders the statement. At least one row must have been added.
func (s *InsertQuery) Build() *Query {
	if len(s.rows) == 0 {
		argPanicf("no rows to insert")
	}
	sql, params := assemble(s.b.dialect, s.clauses())
	sql = renumber(s.b.dialect, sql)
	s.b.logBuilt(sql, params)
	return &Query{sql: sql, params: params}
}

// BuildContext renders like Build and records the statement on a trace span.
func (s *InsertQuery) BuildContext(ctx context.Context) *Query {
	_, span := s.b.tracer.StartSpan(ctx, "sqlforge.build")
	defer span.End()
	q := s.Build()
	tracer.AddStatementAttributes(span, &tracer.StatementMetadata{
		SQL:        q.sql,
		ParamCount: len(q.params),
		Dialect:    s.b.dialect.Name(),
		Operation:  tracer.DetectOperation(q.sql),
		Table:      s.table,
	})
	return q
}

// insertBody renders the column list and the VALUES rows.
type insertBody struct {
	columns []string
	rows    [][]interface{}
}

func (c *insertBody) render(d dialects.Dialect) string {
	var sb strings.Builder
	if len(c.columns) > 0 {
		sb.WriteString(" (")
		sb.WriteString(strings.Join(c.columns, ", "))
		sb.WriteString(")")
	}
	sb.WriteString(" VALUES ")
	for i, row := range c.rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j, v := range row {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(valueMark(d, v))
		}
		sb.WriteString(")")
	}
	return sb.String()
}

func (c *insertBody) appendParams(sink *ParamSink) {
	for _, row := range c.rows {
		for _, v := range row {
			appendValueParams(sink, v)
		}
	}
}

// valueMark returns the text a bound value occupies: expressions render
// inline, subqueries render parenthesized, everything else is a placeholder.
func valueMark(d dialects.Dialect, v interface{}) string {
	switch t := v.(type) {
	case Expr:
		return t.SQL
	case *SelectQuery:
		return "(" + t.renderText(d) + ")"
	default:
		return "?"
	}
}

// appendValueParams mirrors valueMark for the parameter pass.
func appendValueParams(sink *ParamSink, v interface{}) {
	switch t := v.(type) {
	case Expr:
		sink.Add(t.Args...)
	case *SelectQuery:
		t.collectParams(sink)
	default:
		sink.Add(v)
	}
}

// filterKeys returns the entries of all that are not in exclude, preserving
// order.
func filterKeys(all, exclude []string) []string {
	excluded := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		excluded[e] = true
	}
	var kept []string
	for _, k := range all {
		if !excluded[k] {
			kept = append(kept, k)
		}
	}
	return kept
}
