// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package core

import (
	"fmt"
	"strings"

	"github.com/coregx/sqlforge/internal/dialects"
)

// Logic connects a predicate to the ones accumulated before it.
type Logic string

// Connectors accepted by ConditionList.Add.
const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Op identifies the comparison operator of a structured predicate.
type Op int

// Operators accepted by Where, And, Or, Having and their multi-column
// variants.
const (
	EQ Op = iota
	NEQ
	GT
	GTE
	LT
	LTE
	IN
	NOTIN
	LIKE
	NOTLIKE
	STARTWITH
	ENDWITH
	BETWEEN
	NOTBETWEEN
	REGEXP
	ISNULL
	ISNOTNULL
)

var opNames = [...]string{
	EQ:         "=",
	NEQ:        "<>",
	GT:         ">",
	GTE:        ">=",
	LT:         "<",
	LTE:        "<=",
	IN:         "IN",
	NOTIN:      "NOT IN",
	LIKE:       "LIKE",
	NOTLIKE:    "NOT LIKE",
	STARTWITH:  "STARTWITH",
	ENDWITH:    "ENDWITH",
	BETWEEN:    "BETWEEN",
	NOTBETWEEN: "NOT BETWEEN",
	REGEXP:     "REGEXP",
	ISNULL:     "IS NULL",
	ISNOTNULL:  "IS NOT NULL",
}

// String returns the operator's SQL token, or a diagnostic name for operators
// without a single token.
func (op Op) String() string {
	if int(op) >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// DefaultLikeEscape holds the replacement pairs applied to LIKE values so
// that wildcard characters in user input match literally.
var DefaultLikeEscape = []string{"\\", "\\\\", "%", "\\%", "_", "\\_"}

var likeEscaper = strings.NewReplacer(DefaultLikeEscape...)

// ConditionList accumulates predicate fragments for a WHERE or HAVING clause.
// The first kept fragment is stored verbatim; every later fragment is stored
// as "{logic} ({fragment})". A blank fragment is dropped, except that a blank
// OR branch arriving after at least one kept predicate degrades to OR (1=1)
// so the boolean expression stays balanced. Dropped fragments never record
// parameters.
type ConditionList struct {
	parts  []string
	params []interface{}
}

// Add appends one predicate fragment and its parameter values.
func (c *ConditionList) Add(logic Logic, fragment string, values ...interface{}) {
	if logic != LogicAnd && logic != LogicOr {
		argPanicf("unknown logic connector %q", string(logic))
	}
	if fragment == "" {
		if logic == LogicOr && len(c.parts) > 0 {
			c.parts = append(c.parts, "OR (1=1)")
		}
		return
	}
	if len(c.parts) == 0 {
		c.parts = append(c.parts, fragment)
	} else {
		c.parts = append(c.parts, string(logic)+" ("+fragment+")")
	}
	c.params = append(c.params, values...)
}

// IsEmpty reports whether no predicate has been kept.
func (c *ConditionList) IsEmpty() bool {
	return len(c.parts) == 0
}

// Render joins the kept fragments. Rendering does not mutate the list and may
// be repeated.
func (c *ConditionList) Render() string {
	return strings.Join(c.parts, " ")
}

func (c *ConditionList) appendParams(sink *ParamSink) {
	sink.Add(c.params...)
}

// buildCondition renders one structured predicate against an already
// converted column. It returns the fragment text and the parameter values the
// fragment consumes; a blank fragment with no values means the predicate was
// skipped (blank guard value, empty NOT IN collection).
func buildCondition(d dialects.Dialect, column string, op Op, values ...interface{}) (string, []interface{}) {
	if column == "" {
		argPanicf("empty column identifier")
	}
	switch op {
	case EQ, NEQ, GT, GTE, LT, LTE:
		return compareCondition(d, column, op, values)
	case IN, NOTIN:
		return inCondition(d, column, op, values)
	case LIKE, NOTLIKE, STARTWITH, ENDWITH:
		return likeCondition(column, op, values)
	case REGEXP:
		return regexpCondition(d, column, values)
	case BETWEEN, NOTBETWEEN:
		return betweenCondition(column, op, values)
	case ISNULL:
		requireValueCount(op, values, 0)
		return column + " IS NULL", nil
	case ISNOTNULL:
		requireValueCount(op, values, 0)
		return column + " IS NOT NULL", nil
	default:
		argPanicf("unknown operator %s", op)
		return "", nil
	}
}

func compareCondition(d dialects.Dialect, column string, op Op, values []interface{}) (string, []interface{}) {
	requireValueCount(op, values, 1)
	v := values[0]
	if sub, params, ok := subquerySQL(d, v); ok {
		return column + " " + opNames[op] + " " + sub, params
	}
	if v == nil {
		switch op {
		case EQ:
			return column + " IS NULL", nil
		case NEQ:
			return column + " IS NOT NULL", nil
		default:
			argPanicf("operator %s cannot compare against nil", op)
		}
	}
	return column + " " + opNames[op] + " ?", []interface{}{v}
}

// inCondition renders IN and NOT IN. A single subquery value renders as
// IN (subquery). An empty collection renders 0=1 for IN and skips the
// predicate for NOT IN. A single-element collection degrades to the
// equivalent equality comparison rather than IN (?).
func inCondition(d dialects.Dialect, column string, op Op, values []interface{}) (string, []interface{}) {
	if len(values) == 1 {
		if sub, params, ok := subquerySQL(d, values[0]); ok {
			return column + " " + opNames[op] + " " + sub, params
		}
	}
	switch len(values) {
	case 0:
		if op == IN {
			return "0=1", nil
		}
		return "", nil
	case 1:
		collapsed := EQ
		if op == NOTIN {
			collapsed = NEQ
		}
		return buildCondition(d, column, collapsed, values[0])
	}
	marks := make([]string, len(values))
	var params []interface{}
	for i, v := range values {
		if v == nil {
			marks[i] = "NULL"
			continue
		}
		marks[i] = "?"
		params = append(params, v)
	}
	return column + " " + opNames[op] + " (" + strings.Join(marks, ", ") + ")", params
}

// likeCondition renders the LIKE family. The value is escaped so wildcard
// characters match literally, then wrapped per operator: LIKE and NOT LIKE
// match anywhere, STARTWITH anchors the prefix, ENDWITH anchors the suffix.
// A blank value skips the predicate.
func likeCondition(column string, op Op, values []interface{}) (string, []interface{}) {
	v := requireString(op, values)
	if strings.TrimSpace(v) == "" {
		return "", nil
	}
	escaped := likeEscaper.Replace(v)
	keyword := "LIKE"
	switch op {
	case NOTLIKE:
		keyword = "NOT LIKE"
		escaped = "%" + escaped + "%"
	case LIKE:
		escaped = "%" + escaped + "%"
	case STARTWITH:
		escaped += "%"
	case ENDWITH:
		escaped = "%" + escaped
	}
	return column + " " + keyword + " ?", []interface{}{escaped}
}

// regexpCondition renders a regular expression match with the dialect's
// operator. A blank pattern skips the predicate.
func regexpCondition(d dialects.Dialect, column string, values []interface{}) (string, []interface{}) {
	v := requireString(REGEXP, values)
	if strings.TrimSpace(v) == "" {
		return "", nil
	}
	token, err := d.RegexpOp()
	if err != nil {
		panic(err)
	}
	return column + " " + token + " ?", []interface{}{v}
}

func betweenCondition(column string, op Op, values []interface{}) (string, []interface{}) {
	requireValueCount(op, values, 2)
	if values[0] == nil || values[1] == nil {
		argPanicf("%s bounds cannot be nil", op)
	}
	return column + " " + opNames[op] + " ? AND ?", []interface{}{values[0], values[1]}
}

// multiColumnCondition applies the same predicate to several columns and
// joins the surviving fragments with connector, parenthesizing the group when
// more than one survives. Columns must already be converted.
func multiColumnCondition(d dialects.Dialect, connector string, columns []string, op Op, values ...interface{}) (string, []interface{}) {
	if len(columns) == 0 {
		argPanicf("multi-column predicate requires at least one column")
	}
	var frags []string
	var params []interface{}
	for _, col := range columns {
		frag, vals := buildCondition(d, col, op, values...)
		if frag == "" {
			continue
		}
		frags = append(frags, frag)
		params = append(params, vals...)
	}
	switch len(frags) {
	case 0:
		return "", nil
	case 1:
		return frags[0], params
	}
	return "(" + strings.Join(frags, " "+connector+" ") + ")", params
}

func requireValueCount(op Op, values []interface{}, want int) {
	if len(values) != want {
		argPanicf("operator %s takes %d value(s), got %d", op, want, len(values))
	}
}

func requireString(op Op, values []interface{}) string {
	requireValueCount(op, values, 1)
	v, ok := values[0].(string)
	if !ok {
		argPanicf("operator %s requires a string value, got %T", op, values[0])
	}
	return v
}

// subquerySQL renders v as a parenthesized subquery when it is a nested
// SELECT, keeping neutral placeholders so the enclosing statement renumbers
// the whole text in one pass.
func subquerySQL(d dialects.Dialect, v interface{}) (string, []interface{}, bool) {
	sub, ok := v.(*SelectQuery)
	if !ok {
		return "", nil, false
	}
	text, params := sub.fragment(d)
	return "(" + text + ")", params, true
}
