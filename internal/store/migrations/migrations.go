// Package migrations embeds the SQL schema for the sqlite and postgres backends.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
