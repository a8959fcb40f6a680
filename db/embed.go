// Package db ships the SQL migrations applied by the API on startup.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS
