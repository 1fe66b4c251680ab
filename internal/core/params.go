// Package core implements the statement builders: clause accumulation,
// condition composition, and the assembly pass that renders SQL text with a
// parameter sequence aligned to its placeholders.
package core

// ParamSink is an append-only ordered sequence of parameter values. Every
// clause of a statement pushes into a single sink during the parameter pass,
// so the collected order mirrors the placeholder order of the rendered text.
type ParamSink struct {
	values []interface{}
}

// Add appends values in call order.
func (s *ParamSink) Add(values ...interface{}) {
	s.values = append(s.values, values...)
}

// Len returns the number of collected values.
func (s *ParamSink) Len() int {
	return len(s.values)
}

// Values returns the collected values in insertion order. The returned slice
// is the sink's backing storage and must not be mutated.
func (s *ParamSink) Values() []interface{} {
	return s.values
}
