// Package migrations contains embedded SQL migrations for the journal store.
package migrations

import "embed"

//go:embed journal/*.sql
var JournalFS embed.FS
