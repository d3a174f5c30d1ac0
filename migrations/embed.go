// Package migrations embeds SQL migration files into the binary.
//
// This allows the daemon to run migrations without needing the SQL files
// present on the filesystem - they're compiled into the executable.
package migrations

import (
	"embed"

	"github.com/letung3105/serverless-iot-esp32/internal/infrastructure/journal"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	// Register embedded migrations with the journal package.
	// The embed directive above captures all .sql files in this directory.
	journal.MigrationsFS = migrationsFS
	journal.MigrationsDir = "." // Files are at root of embedded FS
}
