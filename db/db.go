// Package db embeds the SQL migrations and the seeded prompt templates and
// response schemas shipped with the server binary.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed seed/*.*
var SeedFiles embed.FS
