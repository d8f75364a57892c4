package assets

import (
	"embed"
)

//go:embed catalog.yaml
var FS embed.FS

// Catalog returns the default mini-game content document.
func Catalog() ([]byte, error) {
	return FS.ReadFile("catalog.yaml")
}
