package core

// Query is a rendered statement: the SQL text plus the parameter sequence
// aligned, position for position, with the placeholders in the text. It is
// handed as-is to whatever executes the statement.
type Query struct {
	sql    string
	params []interface{}
}

// SQL returns the rendered statement text.
func (q *Query) SQL() string {
	return q.sql
}

// Params returns the parameter values in placeholder order. The returned
// slice is the query's backing storage and must not be mutated.
func (q *Query) Params() []interface{} {
	return q.params
}

// String returns the statement text.
func (q *Query) String() string {
	return q.sql
}
