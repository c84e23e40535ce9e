package migrations

import "embed"

// Files stores forward-only SQL migrations embedded into the binary. A file
// named NNNN_name.sql applies to every dialect; NNNN_name.<dialect>.sql only
// to that dialect.
//
//go:embed *.sql
var Files embed.FS
