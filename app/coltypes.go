package main

import (
	"strings"

	"github.com/xwb1989/sqlparser"
)

// enrichDeclaredTypes fills in cols[i].DeclaredType by feeding a
// MySQL-normalized rewrite of sql through sqlparser, matching columns
// by case-insensitive name. Failures are swallowed: this pass is diagnostic
// only (SPEC_FULL.md §4.6a) and never affects cols' names or order.
func enrichDeclaredTypes(sql string, cols []Column) {
	normalized := normalizeSQLiteToMySQL(sql)
	stmt, err := sqlparser.Parse(normalized)
	if err != nil {
		log.WithError(err).WithField("normalized_sql", normalized).Debug("column type enrichment: parse failed")
		return
	}
	ddl, ok := stmt.(*sqlparser.DDL)
	if !ok || ddl.Action != "create" || ddl.TableSpec == nil {
		return
	}
	byName := make(map[string]string, len(ddl.TableSpec.Columns))
	for _, col := range ddl.TableSpec.Columns {
		byName[strings.ToLower(col.Name.String())] = col.Type.Type
	}
	for i := range cols {
		if t, ok := byName[strings.ToLower(cols[i].Name)]; ok {
			cols[i].DeclaredType = t
		}
	}
}

// normalizeSQLiteToMySQL rewrites SQLite-flavored CREATE TABLE SQL into
// something sqlparser's MySQL grammar accepts: strips double-quoted
// identifiers (backtick-quoting any that contain whitespace so
// multi-word names survive as a single token) and reorders the
// SQLite-only "PRIMARY KEY AUTOINCREMENT" suffix into MySQL's
// "AUTO_INCREMENT PRIMARY KEY".
func normalizeSQLiteToMySQL(sql string) string {
	normalized := requoteDoubleQuotedIdents(sql)

	lower := strings.ToLower(normalized)
	for _, from := range []string{"primary key autoincrement", "autoincrement primary key"} {
		if idx := strings.Index(lower, from); idx >= 0 {
			normalized = normalized[:idx] + "AUTO_INCREMENT PRIMARY KEY" + normalized[idx+len(from):]
			lower = strings.ToLower(normalized)
		}
	}

	return strings.TrimSpace(normalized)
}

// requoteDoubleQuotedIdents converts `"name with spaces"` into a
// backtick-quoted identifier sqlparser's MySQL-style grammar accepts,
// and bare `"name"` into an unquoted token.
func requoteDoubleQuotedIdents(sql string) string {
	var b strings.Builder
	for i := 0; i < len(sql); {
		if sql[i] != '"' {
			b.WriteByte(sql[i])
			i++
			continue
		}
		end := strings.IndexByte(sql[i+1:], '"')
		if end < 0 {
			b.WriteString(sql[i:])
			break
		}
		ident := sql[i+1 : i+1+end]
		if strings.ContainsAny(ident, " \t") {
			b.WriteByte('`')
			b.WriteString(ident)
			b.WriteByte('`')
		} else {
			b.WriteString(ident)
		}
		i = i + 1 + end + 1
	}
	return b.String()
}
