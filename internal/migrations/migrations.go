package migrations

import "embed"

// Files holds the console's SQL migrations, named NNN_description.sql and applied in name order.
//
//go:embed *.sql
var Files embed.FS
