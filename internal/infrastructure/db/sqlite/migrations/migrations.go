// Package migrations embeds the goose migrations of the SQLite account store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
