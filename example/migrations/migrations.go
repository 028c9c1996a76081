// Package migrations embeds the demo schema for goose.
package migrations

import "embed"

// FS holds the SQL migrations at its root.
//
//go:embed *.sql
var FS embed.FS
