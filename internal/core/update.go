package core

import (
	"context"

	"github.com/coregx/sqlforge/internal/dialects"
	"github.com/coregx/sqlforge/internal/tracer"
)

// UpdateQuery builds an UPDATE statement. Joined tables render before SET on
// MySQL and as a FROM clause after SET elsewhere.
type UpdateQuery struct {
	b     *Builder
	ctes  cteClause
	table string
	from  string
	joins listClause
	sets  listClause
	where ConditionList
}

// With declares a common table expression the statement can reference.
func (s *UpdateQuery) With(name string, sub *SelectQuery) *UpdateQuery {
	s.ctes.add(s.b.convertTable(name), sub, "", false)
	return s
}

// Set assigns a value to a column. A value of type Expr renders inline as a
// server-side expression; a *SelectQuery renders as a scalar subquery,
// snapshotted at call time; anything else binds to a placeholder.
func (s *UpdateQuery) Set(column string, value interface{}) *UpdateQuery {
	if column == "" {
		argPanicf("empty column identifier")
	}
	col := s.b.convertColumn(column)
	switch t := value.(type) {
	case Expr:
		s.sets.add(col+" = "+t.SQL, t.Args...)
	case *SelectQuery:
		text, params := t.fragment(s.b.dialect)
		s.sets.add(col+" = ("+text+")", params...)
	default:
		s.sets.add(col+" = ?", value)
	}
	return s
}

// SetMap assigns several columns from a map. Keys are sorted so the generated
// SQL is deterministic.
func (s *UpdateQuery) SetMap(m map[string]interface{}) *UpdateQuery {
	if len(m) == 0 {
		argPanicf("empty value map")
	}
	for _, k := range getKeys(m) {
		s.Set(k, m[k])
	}
	return s
}

// SetJSONMerge shallow-merges a bound document into a JSON column.
func (s *UpdateQuery) SetJSONMerge(column string, typ dialects.JSONType, doc interface{}) *UpdateQuery {
	col := s.b.convertColumn(column)
	expr, err := s.jsonDialect().MergeExpr(col, typ)
	if err != nil {
		panic(err)
	}
	s.sets.add(col+" = "+expr, doc)
	return s
}

// SetJSONPath sets the value at path inside a JSON column to a bound value.
func (s *UpdateQuery) SetJSONPath(column string, typ dialects.JSONType, path dialects.Path, value interface{}) *UpdateQuery {
	col := s.b.convertColumn(column)
	expr, err := s.jsonDialect().SetPathExpr(col, typ, path)
	if err != nil {
		panic(err)
	}
	s.sets.add(col+" = "+expr, value)
	return s
}

// SetJSONRemoveKey removes a top-level key from a JSON column.
func (s *UpdateQuery) SetJSONRemoveKey(column string, typ dialects.JSONType, key string) *UpdateQuery {
	col := s.b.convertColumn(column)
	expr, err := s.jsonDialect().RemoveKeyExpr(col, typ, key)
	if err != nil {
		panic(err)
	}
	s.sets.add(col + " = " + expr)
	return s
}

// SetJSONRemovePath removes the value at path from a JSON column.
func (s *UpdateQuery) SetJSONRemovePath(column string, typ dialects.JSONType, path dialects.Path) *UpdateQuery {
	col := s.b.convertColumn(column)
	expr, err := s.jsonDialect().RemovePathExpr(col, typ, path)
	if err != nil {
		panic(err)
	}
	s.sets.add(col + " = " + expr)
	return s
}

// SetJSONArrayAppend appends a bound value to the array at path inside a JSON
// column.
func (s *UpdateQuery) SetJSONArrayAppend(column string, typ dialects.JSONType, path dialects.Path, value interface{}) *UpdateQuery {
	col := s.b.convertColumn(column)
	expr, err := s.jsonDialect().ArrayAppendExpr(col, typ, path)
	if err != nil {
		panic(err)
	}
	s.sets.add(col+" = "+expr, value)
	return s
}

// SetJSONArrayPrepend prepends a bound value to the array at path inside a
// JSON column.
func (s *UpdateQuery) SetJSONArrayPrepend(column string, typ dialects.JSONType, path dialects.Path, value interface{}) *UpdateQuery {
	col := s.b.convertColumn(column)
	expr, err := s.jsonDialect().ArrayPrependExpr(col, typ, path)
	if err != nil {
		panic(err)
	}
	s.sets.add(col+" = "+expr, value)
	return s
}

// SetJSONStripNulls removes null object fields from a JSON column.
func (s *UpdateQuery) SetJSONStripNulls(column string, typ dialects.JSONType) *UpdateQuery {
	col := s.b.convertColumn(column)
	expr, err := s.jsonDialect().StripNullsExpr(col, typ)
	if err != nil {
		panic(err)
	}
	s.sets.add(col + " = " + expr)
	return s
}

func (s *UpdateQuery) jsonDialect() dialects.JsonDialect {
	jd, err := dialects.JSONOf(s.b.dialect)
	if err != nil {
		panic(err)
	}
	return jd
}

// From adds tables the SET and WHERE clauses may reference. MySQL has no
// UPDATE ... FROM form and rejects the call; its updates join instead.
func (s *UpdateQuery) From(table string) *UpdateQuery {
	if s.b.dialect.Name() == "mysql" {
		unsupportedPanic(s.b.dialect, "UPDATE ... FROM")
	}
	if table == "" {
		argPanicf("empty table identifier")
	}
	s.from = s.b.convertTable(table)
	return s
}

// InnerJoin appends an INNER JOIN. On MySQL it renders between the table and
// SET; elsewhere it renders after the FROM clause.
func (s *UpdateQuery) InnerJoin(table, on string, values ...interface{}) *UpdateQuery {
	return s.join("INNER JOIN", table, on, values...)
}

// LeftJoin appends a LEFT JOIN.
func (s *UpdateQuery) LeftJoin(table, on string, values ...interface{}) *UpdateQuery {
	return s.join("LEFT JOIN", table, on, values...)
}

func (s *UpdateQuery) join(kind, table, on string, values ...interface{}) *UpdateQuery {
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

// Where adds a structured predicate, AND-connected.
func (s *UpdateQuery) Where(column string, op Op, values ...interface{}) *UpdateQuery {
	s.addWhere(LogicAnd, column, op, values...)
	return s
}

// And adds an AND-connected structured predicate.
func (s *UpdateQuery) And(column string, op Op, values ...interface{}) *UpdateQuery {
	s.addWhere(LogicAnd, column, op, values...)
	return s
}

// Or adds an OR-connected structured predicate.
func (s *UpdateQuery) Or(column string, op Op, values ...interface{}) *UpdateQuery {
	s.addWhere(LogicOr, column, op, values...)
	return s
}

func (s *UpdateQuery) addWhere(logic Logic, column string, op Op, values ...interface{}) {
	fragment, params := buildCondition(s.b.dialect, s.b.convertColumn(column), op, values...)
	s.where.Add(logic, fragment, params...)
}

// WhereExpr adds a raw predicate, AND-connected.
func (s *UpdateQuery) WhereExpr(e Expr) *UpdateQuery {
	s.where.Add(LogicAnd, e.SQL, e.Args...)
	return s
}

// AndExpr adds a raw predicate, AND-connected.
func (s *UpdateQuery) AndExpr(e Expr) *UpdateQuery {
	s.where.Add(LogicAnd, e.SQL, e.Args...)
	return s
}

// OrExpr adds a raw predicate, OR-connected.
func (s *UpdateQuery) OrExpr(e Expr) *UpdateQuery {
	s.where.Add(LogicOr, e.SQL, e.Args...)
	return s
}

func (s *UpdateQuery) clauses() []clause {
	cs := []clause{&s.ctes, textClause("UPDATE " + s.table)}
	if s.b.dialect.Name() == "mysql" {
		return append(cs, &s.joins, &s.sets, condClause{" WHERE ", &s.where})
	}
	cs = append(cs, &s.sets)
	if s.from != "" {
		cs = append(cs, textClause(" FROM "+s.from))
	}
	return append(cs, &s.joins, condClause{" WHERE ", &s.where})
}

// Build renders the statement. At least one SET assignment must be present.
func (s *UpdateQuery) Build() *Query {
	if s.sets.isEmpty() {
		argPanicf("UPDATE requires at least one SET assignment")
	}
	sql, params := assemble(s.b.dialect, s.clauses())
	sql = renumber(s.b.dialect, sql)
	s.b.logBuilt(sql, params)
	return &Query{sql: sql, params: params}
}

// BuildContext renders like Build and records the statement on a trace span.
func (s *UpdateQuery) BuildContext(ctx context.Context) *Query {
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
