// Package migrations embeds the SQL schema migrations so the binary and
// the tests run against the exact same schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
