// Package db embeds the SQL migrations applied by cmd/tools/migrate.
package db

import "embed"

// Migrations holds the golang-migrate up/down files.
//
//go:embed migrations/*.sql
var Migrations embed.FS
