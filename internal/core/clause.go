package core

import (
	"strings"

	"github.com/coregx/sqlforge/internal/dialects"
)

// clause is one slot of a statement. render returns the clause's full text
// including its leading keyword and space, or "" when the clause is empty.
// Text and parameters are produced by two separate passes over the same
// clause sequence, which is what keeps the global parameter order aligned
// with the placeholder order of the text; a clause rendering "" must
// contribute no parameters.
type clause interface {
	render(d dialects.Dialect) string
	appendParams(sink *ParamSink)
}

// assemble runs the text pass and the parameter pass over clauses in the
// given grammar order.
func assemble(d dialects.Dialect, clauses []clause) (string, []interface{}) {
	var sb strings.Builder
	for _, c := range clauses {
		sb.WriteString(c.render(d))
	}
	sink := &ParamSink{}
	for _, c := range clauses {
		c.appendParams(sink)
	}
	return sb.String(), sink.Values()
}

// renumber rewrites neutral ? markers into the dialect's positional
// placeholders. Dialects whose placeholder is ? return the text unchanged.
func renumber(d dialects.Dialect, sql string) string {
	if d.Placeholder(1) == "?" {
		return sql
	}
	for i := 1; strings.Contains(sql, "?"); i++ {
		sql = strings.Replace(sql, "?", d.Placeholder(i), 1)
	}
	return sql
}

// textClause is a fixed fragment carrying no parameters.
type textClause string

func (c textClause) render(dialects.Dialect) string { return string(c) }

func (textClause) appendParams(*ParamSink) {}

// listClause accumulates fragments joined by separator behind a prefix.
// JOIN lists use self-prefixed fragments with an empty separator; SET lists
// use a " SET " prefix with ", ".
type listClause struct {
	prefix    string
	separator string
	fragments []string
	params    []interface{}
}

func (c *listClause) add(fragment string, values ...interface{}) {
	c.fragments = append(c.fragments, fragment)
	c.params = append(c.params, values...)
}

func (c *listClause) isEmpty() bool { return len(c.fragments) == 0 }

func (c *listClause) render(dialects.Dialect) string {
	if len(c.fragments) == 0 {
		return ""
	}
	return c.prefix + strings.Join(c.fragments, c.separator)
}

func (c *listClause) appendParams(sink *ParamSink) {
	sink.Add(c.params...)
}

// condClause renders a ConditionList behind its clause keyword.
type condClause struct {
	keyword string
	list    *ConditionList
}

func (c condClause) render(dialects.Dialect) string {
	if c.list.IsEmpty() {
		return ""
	}
	return c.keyword + c.list.Render()
}

func (c condClause) appendParams(sink *ParamSink) {
	c.list.appendParams(sink)
}

// derivedTableClause renders a FROM subquery with its mandatory alias. The
// subquery is held by reference, so its parameters land in FROM position
// between the column list and the joins.
type derivedTableClause struct {
	sub   *SelectQuery
	alias string
}

func (c derivedTableClause) render(d dialects.Dialect) string {
	return " FROM (" + c.sub.renderText(d) + ") AS " + c.alias
}

func (c derivedTableClause) appendParams(sink *ParamSink) {
	c.sub.collectParams(sink)
}

// cteEntry is one WITH list element. The subquery is held by reference and
// rendered during the statement's own passes, so its parameters land exactly
// where its placeholders appear.
type cteEntry struct {
	name      string
	sub       *SelectQuery
	hint      string
	recursive bool
}

// cteClause renders the WITH list. It leads the statement, so unlike every
// other clause its text ends with a trailing space.
type cteClause struct {
	entries []cteEntry
}

func (c *cteClause) add(name string, sub *SelectQuery, hint string, recursive bool) {
	if name == "" {
		argPanicf("CTE name cannot be empty")
	}
	if sub == nil {
		argPanicf("CTE query cannot be nil")
	}
	if recursive && len(sub.unions.entries) == 0 {
		argPanicf("recursive CTE requires UNION or UNION ALL")
	}
	c.entries = append(c.entries, cteEntry{name: name, sub: sub, hint: hint, recursive: recursive})
}

func (c *cteClause) render(d dialects.Dialect) string {
	if len(c.entries) == 0 {
		return ""
	}
	keyword := "WITH "
	parts := make([]string, len(c.entries))
	for i, e := range c.entries {
		if e.recursive {
			keyword = "WITH RECURSIVE "
		}
		parts[i] = e.name + " AS" + e.hint + " (" + e.sub.renderText(d) + ")"
	}
	return keyword + strings.Join(parts, ", ") + " "
}

func (c *cteClause) appendParams(sink *ParamSink) {
	for _, e := range c.entries {
		e.sub.collectParams(sink)
	}
}

// unionEntry is one set operation chained onto a SELECT.
type unionEntry struct {
	keyword string
	sub     *SelectQuery
}

type unionClause struct {
	entries []unionEntry
}

func (c *unionClause) add(keyword string, sub *SelectQuery) {
	if sub == nil {
		argPanicf("nil query in %s", strings.TrimSpace(keyword))
	}
	c.entries = append(c.entries, unionEntry{keyword: keyword, sub: sub})
}

func (c *unionClause) render(d dialects.Dialect) string {
	if len(c.entries) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, e := range c.entries {
		sb.WriteString(e.keyword)
		sb.WriteString(e.sub.renderText(d))
	}
	return sb.String()
}

func (c *unionClause) appendParams(sink *ParamSink) {
	for _, e := range c.entries {
		e.sub.collectParams(sink)
	}
}

// limitClause renders row limiting through the dialect. A negative limit
// means no limit was set; a zero offset means no offset was set. Value
// validation happens in the builder methods, render only delegates.
type limitClause struct {
	limit  int64
	offset int64
}

func (c limitClause) render(d dialects.Dialect) string {
	text := d.LimitOffset(c.limit, c.offset)
	if text == "" {
		return ""
	}
	return " " + text
}

func (limitClause) appendParams(*ParamSink) {}

// upsertClause renders the dialect's conflict resolution tail on an INSERT.
// updateCols nil means conflicts are ignored instead of updated.
type upsertClause struct {
	active       bool
	table        string
	conflictCols []string
	updateCols   []string
}

func (c upsertClause) render(d dialects.Dialect) string {
	if !c.active {
		return ""
	}
	return d.UpsertSQL(c.table, c.conflictCols, c.updateCols)
}

func (upsertClause) appendParams(*ParamSink) {}
