// Package migrations embeds the goose SQL migrations applied at startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

// LatestVersion is the version prefix of the newest file in Migrations.
const LatestVersion int64 = 1
