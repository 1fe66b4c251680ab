// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import (
	"context"
	"strings"

	"github.com/coregx/sqlforge/internal/dialects"
	"github.com/coregx/sqlforge/internal/tracer"
)

// SelectQuery builds a SELECT statement. Clauses accumulate through the
// fluent methods and render in grammar order on Build: WITH, columns, FROM,
// JOIN, WHERE, GROUP BY, HAVING, set operations, ORDER BY, row limiting.
type SelectQuery struct {
	b          *Builder
	ctes       cteClause
	distinct   bool
	columns    []string
	table      string
	fromSub    *SelectQuery
	fromAlias  string
	joins      listClause
	where      ConditionList
	groupBy    []string
	groupByAll bool
	having     ConditionList
	unions     unionClause
	orderBy    []string
	limit      int64
	offset     int64
}

// Columns appends result columns. Without any call the statement selects *.
func (s *SelectQuery) Columns(columns ...string) *SelectQuery {
	for _, c := range columns {
		s.columns = append(s.columns, s.b.convertColumn(c))
	}
	return s
}

// Distinct makes the statement select distinct rows.
func (s *SelectQuery) Distinct() *SelectQuery {
	s.distinct = true
	return s
}

// From re-targets the statement, replacing the table or subquery given
// earlier.
func (s *SelectQuery) From(table string) *SelectQuery {
	s.table = s.b.convertTable(table)
	s.fromSub = nil
	s.fromAlias = ""
	return s
}

// FromSelect reads from a subquery instead of a table, rendering it
// parenthesized under the mandatory alias. The subquery is held by reference
// and rendered with the enclosing statement, like a CTE.
func (s *SelectQuery) FromSelect(sub *SelectQuery, alias string) *SelectQuery {
	if sub == nil {
		argPanicf("nil FROM subquery")
	}
	if alias == "" {
		argPanicf("FROM subquery requires an alias")
	}
	s.table = ""
	s.fromSub = sub
	s.fromAlias = s.b.convertTable(alias)
	return s
}

// InnerJoin appends an INNER JOIN. Values bind to placeholders inside the ON
// fragment.
func (s *SelectQuery) InnerJoin(table, on string, values ...interface{}) *SelectQuery {
	return s.join("INNER JOIN", table, on, values...)
}

// LeftJoin appends a LEFT JOIN.
func (s *SelectQuery) LeftJoin(table, on string, values ...interface{}) *SelectQuery {
	return s.join("LEFT JOIN", table, on, values...)
}

// RightJoin appends a RIGHT JOIN.
func (s *SelectQuery) RightJoin(table, on string, values ...interface{}) *SelectQuery {
	return s.join("RIGHT JOIN", table, on, values...)
}

// CrossJoin appends a CROSS JOIN, which takes no ON condition.
func (s *SelectQuery) CrossJoin(table string) *SelectQuery {
	return s.join("CROSS JOIN", table, "")
}

// InnerJoinSelect appends an INNER JOIN against a subquery, rendered
// parenthesized under the mandatory alias. The subquery snapshots at call
// time; its parameters precede the ON values.
func (s *SelectQuery) InnerJoinSelect(sub *SelectQuery, alias, on string, values ...interface{}) *SelectQuery {
	return s.joinSelect("INNER JOIN", sub, alias, on, values...)
}

// LeftJoinSelect appends a LEFT JOIN against a subquery.
func (s *SelectQuery) LeftJoinSelect(sub *SelectQuery, alias, on string, values ...interface{}) *SelectQuery {
	return s.joinSelect("LEFT JOIN", sub, alias, on, values...)
}

func (s *SelectQuery) join(kind, table, on string, values ...interface{}) *SelectQuery {
	if table == "" {
		argPanicf("empty join table")
	}
	fragment := " " + kind + " " + s.b.convertTable(table)
	if on != "" {
		fragment += " ON " + on
	}
	s.joins.add(fragment, values...)
	return s
}

func (s *SelectQuery) joinSelect(kind string, sub *SelectQuery, alias, on string, values ...interface{}) *SelectQuery {
	if sub == nil {
		argPanicf("nil %s subquery", kind)
	}
	if alias == "" {
		argPanicf("%s subquery requires an alias", kind)
	}
	text, params := sub.fragment(s.b.dialect)
	fragment := " " + kind + " (" + text + ") AS " + s.b.convertTable(alias)
	if on != "" {
		fragment += " ON " + on
	}
	s.joins.add(fragment, append(params, values...)...)
	return s
}

// Where adds a structured predicate, AND-connected to any predicate already
// present. The first predicate is kept verbatim whichever method adds it.
func (s *SelectQuery) Where(column string, op Op, values ...interface{}) *SelectQuery {
	s.addWhere(LogicAnd, column, op, values...)
	return s
}

// And adds an AND-connected structured predicate.
func (s *SelectQuery) And(column string, op Op, values ...interface{}) *SelectQuery {
	s.addWhere(LogicAnd, column, op, values...)
	return s
}

// Or adds an OR-connected structured predicate.
func (s *SelectQuery) Or(column string, op Op, values ...interface{}) *SelectQuery {
	s.addWhere(LogicOr, column, op, values...)
	return s
}

func (s *SelectQuery) addWhere(logic Logic, column string, op Op, values ...interface{}) {
	fragment, params := buildCondition(s.b.dialect, s.b.convertColumn(column), op, values...)
	s.where.Add(logic, fragment, params...)
}

// WhereExpr adds a raw predicate, AND-connected.
func (s *SelectQuery) WhereExpr(e Expr) *SelectQuery {
	s.where.Add(LogicAnd, e.SQL, e.Args...)
	return s
}

// AndExpr adds a raw predicate, AND-connected.
func (s *SelectQuery) AndExpr(e Expr) *SelectQuery {
	s.where.Add(LogicAnd, e.SQL, e.Args...)
	return s
}

// OrExpr adds a raw predicate, OR-connected.
func (s *SelectQuery) OrExpr(e Expr) *SelectQuery {
	s.where.Add(LogicOr, e.SQL, e.Args...)
	return s
}

// AndSome applies the predicate to several columns, matching rows where any
// column satisfies it.
func (s *SelectQuery) AndSome(columns []string, op Op, values ...interface{}) *SelectQuery {
	return s.addMulti(LogicAnd, "OR", columns, op, values...)
}

// OrSome is AndSome with an OR connection to the preceding predicates.
func (s *SelectQuery) OrSome(columns []string, op Op, values ...interface{}) *SelectQuery {
	return s.addMulti(LogicOr, "OR", columns, op, values...)
}

// AndEvery applies the predicate to several columns, matching rows where all
// columns satisfy it.
func (s *SelectQuery) AndEvery(columns []string, op Op, values ...interface{}) *SelectQuery {
	return s.addMulti(LogicAnd, "AND", columns, op, values...)
}

// OrEvery is AndEvery with an OR connection to the preceding predicates.
func (s *SelectQuery) OrEvery(columns []string, op Op, values ...interface{}) *SelectQuery {
	return s.addMulti(LogicOr, "AND", columns, op, values...)
}

func (s *SelectQuery) addMulti(logic Logic, connector string, columns []string, op Op, values ...interface{}) *SelectQuery {
	fragment, params := multiColumnCondition(s.b.dialect, connector, s.b.convertColumns(columns), op, values...)
	s.where.Add(logic, fragment, params...)
	return s
}

// GroupBy appends grouping columns.
func (s *SelectQuery) GroupBy(columns ...string) *SelectQuery {
	for _, c := range columns {
		s.groupBy = append(s.groupBy, s.b.convertColumn(c))
	}
	return s
}

// GroupByAll groups by all non-aggregated columns. It replaces any column
// list and panics with an unsupported-operation error on dialects without
// GROUP BY ALL.
func (s *SelectQuery) GroupByAll() *SelectQuery {
	if !s.b.dialect.SupportsGroupByAll() {
		unsupportedPanic(s.b.dialect, "GROUP BY ALL")
	}
	s.groupByAll = true
	return s
}

// Having adds a structured predicate on grouped rows, AND-connected.
func (s *SelectQuery) Having(column string, op Op, values ...interface{}) *SelectQuery {
	s.addHaving(LogicAnd, column, op, values...)
	return s
}

// AndHaving adds an AND-connected HAVING predicate.
func (s *SelectQuery) AndHaving(column string, op Op, values ...interface{}) *SelectQuery {
	s.addHaving(LogicAnd, column, op, values...)
	return s
}

// OrHaving adds an OR-connected HAVING predicate.
func (s *SelectQuery) OrHaving(column string, op Op, values ...interface{}) *SelectQuery {
	s.addHaving(LogicOr, column, op, values...)
	return s
}

func (s *SelectQuery) addHaving(logic Logic, column string, op Op, values ...interface{}) {
	fragment, params := buildCondition(s.b.dialect, s.b.convertColumn(column), op, values...)
	s.having.Add(logic, fragment, params...)
}

// HavingExpr adds a raw HAVING predicate, AND-connected. Aggregate
// expressions go through here since they are not bare column names.
func (s *SelectQuery) HavingExpr(e Expr) *SelectQuery {
	s.having.Add(LogicAnd, e.SQL, e.Args...)
	return s
}

// OrderBy appends ordering entries of the form "column" or "column DESC".
// The direction is normalized to upper case; entries that are not a bare
// column with an optional direction pass through as raw expressions.
func (s *SelectQuery) OrderBy(entries ...string) *SelectQuery {
	for _, e := range entries {
		if e == "" {
			argPanicf("empty ORDER BY entry")
		}
		s.orderBy = append(s.orderBy, orderEntry(s.b, e))
	}
	return s
}

func orderEntry(b *Builder, entry string) string {
	fields := strings.Fields(entry)
	switch len(fields) {
	case 1:
		return b.convertColumn(fields[0])
	case 2:
		dir := strings.ToUpper(fields[1])
		if dir == "ASC" || dir == "DESC" {
			return b.convertColumn(fields[0]) + " " + dir
		}
	}
	return entry
}

// Limit caps the number of returned rows. The limit must be positive.
func (s *SelectQuery) Limit(n int64) *SelectQuery {
	if n <= 0 {
		argPanicf("limit must be positive, got %d", n)
	}
	s.limit = n
	return s
}

// Offset skips the first n rows. The offset cannot be negative.
func (s *SelectQuery) Offset(n int64) *SelectQuery {
	if n < 0 {
		argPanicf("offset cannot be negative, got %d", n)
	}
	s.offset = n
	return s
}

// With declares a common table expression the statement can reference. CTE
// parameters precede all other parameters of the statement.
func (s *SelectQuery) With(name string, sub *SelectQuery) *SelectQuery {
	s.ctes.add(s.b.convertTable(name), sub, "", false)
	return s
}

// WithRecursive declares a self-referencing CTE. The subquery must carry a
// UNION or UNION ALL combining the anchor with the recursive branch.
func (s *SelectQuery) WithRecursive(name string, sub *SelectQuery) *SelectQuery {
	s.ctes.add(s.b.convertTable(name), sub, "", true)
	return s
}

// WithMaterialized declares a CTE with a MATERIALIZED hint. Dialects without
// materialization hints reject the call with an unsupported-operation error
// rather than dropping the hint.
func (s *SelectQuery) WithMaterialized(name string, sub *SelectQuery) *SelectQuery {
	if !s.b.dialect.SupportsCTEMaterialization() {
		unsupportedPanic(s.b.dialect, "CTE materialization hints")
	}
	s.ctes.add(s.b.convertTable(name), sub, " MATERIALIZED", false)
	return s
}

// WithNotMaterialized declares a CTE with a NOT MATERIALIZED hint.
func (s *SelectQuery) WithNotMaterialized(name string, sub *SelectQuery) *SelectQuery {
	if !s.b.dialect.SupportsCTEMaterialization() {
		unsupportedPanic(s.b.dialect, "CTE materialization hints")
	}
	s.ctes.add(s.b.convertTable(name), sub, " NOT MATERIALIZED", false)
	return s
}

// Union chains another SELECT with UNION, dropping duplicate rows.
func (s *SelectQuery) Union(other *SelectQuery) *SelectQuery {
	s.unions.add(" UNION ", other)
	return s
}

// UnionAll chains another SELECT with UNION ALL, keeping duplicates.
func (s *SelectQuery) UnionAll(other *SelectQuery) *SelectQuery {
	s.unions.add(" UNION ALL ", other)
	return s
}

// Intersect chains another SELECT with INTERSECT.
func (s *SelectQuery) Intersect(other *SelectQuery) *SelectQuery {
	s.unions.add(" INTERSECT ", other)
	return s
}

// Except chains another SELECT with EXCEPT.
func (s *SelectQuery) Except(other *SelectQuery) *SelectQuery {
	s.unions.add(" EXCEPT ", other)
	return s
}

// clauses returns the statement's clause sequence in grammar order. Both the
// text pass and the parameter pass iterate this same sequence.
func (s *SelectQuery) clauses() []clause {
	return []clause{
		&s.ctes,
		textClause(s.head()),
		s.fromClause(),
		&s.joins,
		condClause{" WHERE ", &s.where},
		s.groupByClause(),
		condClause{" HAVING ", &s.having},
		&s.unions,
		s.orderByClause(),
		limitClause{s.limit, s.offset},
	}
}

func (s *SelectQuery) head() string {
	head := "SELECT "
	if s.distinct {
		head += "DISTINCT "
	}
	if len(s.columns) == 0 {
		return head + "*"
	}
	return head + strings.Join(s.columns, ", ")
}

func (s *SelectQuery) fromClause() clause {
	if s.fromSub != nil {
		return derivedTableClause{sub: s.fromSub, alias: s.fromAlias}
	}
	if s.table == "" {
		return textClause("")
	}
	return textClause(" FROM " + s.table)
}

func (s *SelectQuery) groupByClause() clause {
	if s.groupByAll {
		return textClause(" GROUP BY ALL")
	}
	if len(s.groupBy) == 0 {
		return textClause("")
	}
	return textClause(" GROUP BY " + strings.Join(s.groupBy, ", "))
}

func (s *SelectQuery) orderByClause() clause {
	if len(s.orderBy) == 0 {
		return textClause("")
	}
	return textClause(" ORDER BY " + strings.Join(s.orderBy, ", "))
}

func (s *SelectQuery) renderText(d dialects.Dialect) string {
	var sb strings.Builder
	for _, c := range s.clauses() {
		sb.WriteString(c.render(d))
	}
	return sb.String()
}

func (s *SelectQuery) collectParams(sink *ParamSink) {
	for _, c := range s.clauses() {
		c.appendParams(sink)
	}
}

// fragment renders the statement for embedding in an enclosing one, keeping
// neutral placeholders.
func (s *SelectQuery) fragment(d dialects.Dialect) (string, []interface{}) {
	sink := &ParamSink{}
	s.collectParams(sink)
	return s.renderText(d), sink.Values()
}

// Build renders the statement. Rendering does not mutate the builder and may
// be repeated.
func (s *SelectQuery) Build() *Query {
	sql, params := assemble(s.b.dialect, s.clauses())
	sql = renumber(s.b.dialect, sql)
	s.b.logBuilt(sql, params)
	return &Query{sql: sql, params: params}
}

// BuildContext renders like Build and records the statement on a trace span.
func (s *SelectQuery) BuildContext(ctx context.Context) *Query {
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

// BuildCount renders the row-count companion of the statement: the column
// list becomes count(1) AS cnt and the ordering and row limiting clauses are
// dropped, while every predicate and its parameters stay identical.
func (s *SelectQuery) BuildCount() *Query {
	cs := []clause{
		&s.ctes,
		textClause("SELECT count(1) AS cnt"),
		s.fromClause(),
		&s.joins,
		condClause{" WHERE ", &s.where},
		s.groupByClause(),
		condClause{" HAVING ", &s.having},
		&s.unions,
	}
	sql, params := assemble(s.b.dialect, cs)
	sql = renumber(s.b.dialect, sql)
	s.b.logBuilt(sql, params)
	return &Query{sql: sql, params: params}
}
