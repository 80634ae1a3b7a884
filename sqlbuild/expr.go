// Package sqlbuild implements the query interfaces over plain SQL text with
// placeholder arguments. Predicates are SQL fragments; Query renders a full
// SELECT with joins and an optional WHERE clause. The generated syntax is
// PostgreSQL-compatible and also accepted by DuckDB.
package sqlbuild

import "strings"

// Expr is a SQL fragment with its placeholder arguments. Placeholders use
// `?`; Positional rewrites them to `$1..$n` for drivers that need it.
type Expr struct {
	SQL  string
	Args []any
}

// joinExprs combines fragments with the given connective, parenthesizing
// each part. Nil fragments are skipped.
func joinExprs(op string, ps []*Expr) *Expr {
	parts := make([]*Expr, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	if len(parts) == 1 {
		return parts[0]
	}
	var sb strings.Builder
	var args []any
	sb.WriteString("(")
	for i, p := range parts {
		if i > 0 {
			sb.WriteString(")")
			sb.WriteString(op)
			sb.WriteString("(")
		}
		sb.WriteString(p.SQL)
		args = append(args, p.Args...)
	}
	sb.WriteString(")")
	return &Expr{SQL: sb.String(), Args: args}
}

// Positional rewrites `?` placeholders to `$1..$n`. Question marks inside
// single-quoted literals are left alone.
func Positional(sql string) string {
	var sb strings.Builder
	sb.Grow(len(sql) + 8)
	n := 0
	inString := false
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '\'':
			inString = !inString
			sb.WriteByte(c)
		case c == '?' && !inString:
			n++
			sb.WriteByte('$')
			sb.WriteString(itoa(n))
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// itoa converts a non-negative integer to a string without strconv.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[pos:])
}

// quoteIdentifier returns a quoted identifier if needed.
func quoteIdentifier(name string) string {
	if needsQuoting(name) {
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
	return name
}

// needsQuoting returns true if the identifier needs quoting.
func needsQuoting(name string) bool {
	if len(name) == 0 {
		return true
	}

	c := name[0]
	if !isLetter(c) && c != '_' {
		return true
	}

	for i := 1; i < len(name); i++ {
		c = name[i]
		if !isLetter(c) && !isDigit(c) && c != '_' {
			return true
		}
	}

	// Reserved words (simplified list).
	upper := strings.ToUpper(name)
	switch upper {
	case "SELECT", "FROM", "WHERE", "AND", "OR", "NOT", "NULL", "TRUE", "FALSE",
		"INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "ALTER", "TABLE", "INDEX",
		"JOIN", "LEFT", "RIGHT", "INNER", "OUTER", "ON", "AS", "IN", "IS", "LIKE",
		"BETWEEN", "EXISTS", "CASE", "WHEN", "THEN", "ELSE", "END", "ORDER", "BY",
		"GROUP", "HAVING", "LIMIT", "OFFSET", "UNION", "EXCEPT", "INTERSECT",
		"ALL", "DISTINCT", "VALUES", "SET", "INTO", "PRIMARY", "KEY", "FOREIGN",
		"REFERENCES", "CONSTRAINT", "DEFAULT", "CHECK", "UNIQUE", "ASC", "DESC",
		"NULLS", "FIRST", "LAST", "CAST", "INTERVAL", "DATE", "TIME", "TIMESTAMP":
		return true
	}

	return false
}

// isLetter returns true if c is an ASCII letter.
func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isDigit returns true if c is an ASCII digit.
func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
