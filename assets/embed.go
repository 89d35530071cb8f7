// Package assets holds the files compiled into the server binary: the default
// riddle catalog, the SQLite migrations and the browser page.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed riddles.yaml sql/*.sql web
var FS embed.FS

// DefaultCatalog returns the raw YAML of the built-in riddle catalog.
func DefaultCatalog() ([]byte, error) {
	return FS.ReadFile("riddles.yaml")
}

// Migrations returns the SQL migration files rooted at their directory.
func Migrations() (fs.FS, error) {
	return fs.Sub(FS, "sql")
}

// Web returns the static browser client rooted at its directory.
func Web() (fs.FS, error) {
	return fs.Sub(FS, "web")
}
