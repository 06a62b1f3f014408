package stmts

import "strings"

// Table names can't be bound as parameters, so they're quoted as identifiers.
func quote(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}
