// Copyright (c) 2025 COREGX. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dialects

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coregx/sqlforge/internal/errs"
)

// JSONType selects between the textual and binary JSON column types.
// Only PostgreSQL distinguishes the two; the other backends have a single
// JSON representation and reject JSONB.
type JSONType int

const (
	// JSON is the textual JSON column type.
	JSON JSONType = iota
	// JSONB is the binary JSON column type (PostgreSQL only).
	JSONB
)

// String returns the lower-case type name.
func (t JSONType) String() string {
	if t == JSONB {
		return "jsonb"
	}
	return "json"
}

// Path addresses a location inside a JSON document. Elements are string keys
// for objects and int indices for arrays; any other element type is rejected
// with ErrInvalidArgument.
type Path []interface{}

// JsonDialect is implemented by dialects that can generate JSON manipulation
// expressions. Returned expressions embed "?" where the caller must bind a
// parameter; paths and keys are baked into the text.
type JsonDialect interface {
	// FormatPath translates a backend-neutral path into the dialect's native
	// path syntax ({a,b,0} for PostgreSQL, $.a.b[0] for MySQL and SQLite).
	FormatPath(path Path) (string, error)
	// CastExpr casts an arbitrary expression to the requested JSON type.
	CastExpr(expr string, typ JSONType) (string, error)
	// MergeExpr merges a bound document into col (one "?" placeholder).
	MergeExpr(col string, typ JSONType) (string, error)
	// SetPathExpr sets the value at path to a bound document (one "?").
	SetPathExpr(col string, typ JSONType, path Path) (string, error)
	// RemoveKeyExpr removes a top-level key from col (no placeholders).
	RemoveKeyExpr(col string, typ JSONType, key string) (string, error)
	// RemovePathExpr removes the value at path from col (no placeholders).
	RemovePathExpr(col string, typ JSONType, path Path) (string, error)
	// ArrayAppendExpr appends a bound value to the array at path (one "?").
	ArrayAppendExpr(col string, typ JSONType, path Path) (string, error)
	// ArrayPrependExpr prepends a bound value to the array at path (one "?").
	ArrayPrependExpr(col string, typ JSONType, path Path) (string, error)
	// StripNullsExpr removes all object fields with null values (no placeholders).
	StripNullsExpr(col string, typ JSONType) (string, error)
}

// JSONOf returns the JSON strategy of d, or an error when the dialect has none.
func JSONOf(d Dialect) (JsonDialect, error) {
	if j, ok := d.(JsonDialect); ok {
		return j, nil
	}
	return nil, errs.Unsupportedf(d.Name(), "JSON operations")
}

// validatePath checks element types. Negative indices are allowed only when
// allowNegative is set (PostgreSQL counts from the end with -1).
func validatePath(path Path, allowNegative bool) error {
	for i, el := range path {
		switch v := el.(type) {
		case string:
			if v == "" {
				return errs.InvalidArgumentf("json path element %d is empty", i)
			}
		case int:
			if v < 0 && !allowNegative {
				return errs.InvalidArgumentf("json path element %d: negative index %d", i, v)
			}
		default:
			return errs.InvalidArgumentf("json path element %d has type %T, want string or int", i, el)
		}
	}
	return nil
}

// bracesPath renders a PostgreSQL text[] style path: {a,b,0}.
func bracesPath(path Path) string {
	parts := make([]string, len(path))
	for i, el := range path {
		switch v := el.(type) {
		case string:
			if strings.ContainsAny(v, `,{}" `) {
				parts[i] = `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
			} else {
				parts[i] = v
			}
		case int:
			parts[i] = strconv.Itoa(v)
		}
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// dollarPath renders a MySQL/SQLite style path: $.a.b[0].
func dollarPath(path Path) string {
	var b strings.Builder
	b.WriteString("$")
	for _, el := range path {
		switch v := el.(type) {
		case string:
			if isPlainJSONKey(v) {
				b.WriteString("." + v)
			} else {
				b.WriteString(`."` + strings.ReplaceAll(v, `"`, `\"`) + `"`)
			}
		case int:
			fmt.Fprintf(&b, "[%d]", v)
		}
	}
	return b.String()
}

func isPlainJSONKey(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return s != ""
}

// unsupportedJSONTypef reports a construct the dialect cannot express for
// the given JSON type.
func unsupportedJSONTypef(d Dialect, construct string, typ JSONType) error {
	return errs.Unsupportedf(d.Name(), fmt.Sprintf("%s on %s", construct, typ))
}

func errInvalidJSONKey() error {
	return errs.InvalidArgumentf("json key is empty")
}
