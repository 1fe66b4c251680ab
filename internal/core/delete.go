package core

import (
	"context"

	"github.com/coregx/sqlforge/internal/tracer"
)

// DeleteQuery builds a DELETE statement.
type DeleteQuery struct {
	b     *Builder
	ctes  cteClause
	table string
	where ConditionList
}

// With declares a common table expression the statement can reference.
func (s *DeleteQuery) With(name string, sub *SelectQuery) *DeleteQuery {
	s.ctes.add(s.b.convertTable(name), sub, "", false)
	return s
}

// Where adds a structured predicate, AND-connected.
func (s *DeleteQuery) Where(column string, op Op, values ...interface{}) *DeleteQuery {
	s.addWhere(LogicAnd, column, op, values...)
	return s
}

// And adds an AND-connected structured predicate.
func (s *DeleteQuery) And(column string, op Op, values ...interface{}) *DeleteQuery {
	s.addWhere(LogicAnd, column, op, values...)
	return s
}

// Or adds an OR-connected structured predicate.
func (s *DeleteQuery) Or(column string, op Op, values ...interface{}) *DeleteQuery {
	s.addWhere(LogicOr, column, op, values...)
	return s
}

func (s *DeleteQuery) addWhere(logic Logic, column string, op Op, values ...interface{}) {
	fragment, params := buildCondition(s.b.dialect, s.b.convertColumn(column), op, values...)
	s.where.Add(logic, fragment, params...)
}

// WhereExpr adds a raw predicate, AND-connected.
func (s *DeleteQuery) WhereExpr(e Expr) *DeleteQuery {
	s.where.Add(LogicAnd, e.SQL, e.Args...)
	return s
}

// AndExpr adds a raw predicate, AND-connected.
func (s *DeleteQuery) AndExpr(e Expr) *DeleteQuery {
	s.where.Add(LogicAnd, e.SQL, e.Args...)
	return s
}

// OrExpr adds a raw predicate, OR-connected.
func (s *DeleteQuery) OrExpr(e Expr) *DeleteQuery {
	s.where.Add(LogicOr, e.SQL, e.Args...)
	return s
}

func (s *DeleteQuery) clauses() []clause {
	return []clause{
		&s.ctes,
		textClause("DELETE FROM " + s.table),
		condClause{" WHERE ", &s.where},
	}
}

// Build renders the statement. Rendering does not mutate the builder and may
// be repeated.
func (s *DeleteQuery) Build() *Query {
	sql, params := assemble(s.b.dialect, s.clauses())
	sql = renumber(s.b.dialect, sql)
	s.b.logBuilt(sql, params)
	return &Query{sql: sql, params: params}
}

// BuildContext renders like Build and records the statement on a trace span.
func (s *DeleteQuery) BuildContext(ctx context.Context) *Query {
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
