// Package migrations embeds the PostgreSQL schema for the history backend.
package migrations

import "embed"

// FS holds the *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
