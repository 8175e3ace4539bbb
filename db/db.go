// Package db embeds the SQL migrations and seed files so binaries and tests
// can migrate a database without depending on the working directory.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

// SeedFiles holds the default activity metadata schemas.
//
//go:embed seed/*.json
var SeedFiles embed.FS
