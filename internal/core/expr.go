package core

// Expr is a raw SQL fragment with bound arguments. It is the escape hatch for
// predicates the structured operators cannot express; the text passes through
// untouched, so identifier naming conversion never applies to it.
type Expr struct {
	SQL  string
	Args []interface{}
}

// NewExpr wraps a raw fragment and its arguments.
func NewExpr(sql string, args ...interface{}) Expr {
	return Expr{SQL: sql, Args: args}
}

// Not negates an expression.
func Not(e Expr) Expr {
	return Expr{SQL: "NOT (" + e.SQL + ")", Args: e.Args}
}

// Exists wraps a subquery in an EXISTS predicate. The subquery is rendered at
// call time with the dialect of the builder that created it; later mutation
// of the subquery does not affect the returned expression.
func Exists(sub *SelectQuery) Expr {
	return quantified("EXISTS (", sub)
}

// NotExists wraps a subquery in a NOT EXISTS predicate.
func NotExists(sub *SelectQuery) Expr {
	return quantified("NOT EXISTS (", sub)
}

// Any compares a column against the rows of a subquery, matching when at
// least one row satisfies the comparison. Only the six comparison operators
// can be quantified.
func Any(column string, op Op, sub *SelectQuery) Expr {
	return quantifiedCompare(column, op, "ANY", sub)
}

// All compares a column against the rows of a subquery, matching only when
// every row satisfies the comparison.
func All(column string, op Op, sub *SelectQuery) Expr {
	return quantifiedCompare(column, op, "ALL", sub)
}

func quantified(prefix string, sub *SelectQuery) Expr {
	text, params := subqueryFragment(sub)
	return Expr{SQL: prefix + text + ")", Args: params}
}

func quantifiedCompare(column string, op Op, quantifier string, sub *SelectQuery) Expr {
	if column == "" {
		argPanicf("empty column identifier")
	}
	switch op {
	case EQ, NEQ, GT, GTE, LT, LTE:
	default:
		argPanicf("operator %s cannot be quantified", op)
	}
	text, params := subqueryFragment(sub)
	return Expr{SQL: column + " " + opNames[op] + " " + quantifier + " (" + text + ")", Args: params}
}

func subqueryFragment(sub *SelectQuery) (string, []interface{}) {
	if sub == nil {
		argPanicf("nil subquery")
	}
	return sub.fragment(sub.b.dialect)
}
