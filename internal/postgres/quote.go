package postgres

import "strings"

// CREATE ROLE / CREATE DATABASE cannot take bind parameters, so names and
// the role password are spliced into the statement with standard quoting.

// QuoteIdent quotes an SQL identifier.
func QuoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// QuoteLiteral quotes an SQL string literal.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
