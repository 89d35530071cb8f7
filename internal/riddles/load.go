package riddles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/riddles/apps/go-server/assets"
)

const embeddedSource = "embedded"

// Source selects where the catalog is read from. Zero value means the embedded catalog.
type Source struct {
	DBPath   string // SQLite file; wins over FilePath when set
	FilePath string // .json, .yaml or .yml
	SeedDB   bool   // seed an empty SQLite table from the embedded catalog
}

// document is the on-disk shape shared by the JSON and YAML formats.
type document struct {
	Riddles []Entry `json:"riddles" yaml:"riddles"`
}

// Load resolves src and returns a validated catalog.
func Load(ctx context.Context, src Source, logger zerolog.Logger) (*Catalog, error) {
	var (
		cat *Catalog
		err error
	)
	switch {
	case src.DBPath != "":
		cat, err = LoadSQLite(ctx, src.DBPath, src.SeedDB, logger)
	case src.FilePath != "":
		cat, err = LoadFile(src.FilePath)
	default:
		cat, err = Default()
	}
	if err != nil {
		return nil, err
	}
	logger.Info().Str("source", cat.Source()).Int("entries", cat.Len()).Msg("riddle catalog loaded")
	return cat, nil
}

// Default parses the catalog compiled into the binary.
func Default() (*Catalog, error) {
	raw, err := assets.DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	entries, err := decodeYAML(raw)
	if err != nil {
		return nil, fmt.Errorf("decode embedded catalog: %w", err)
	}
	return New(embeddedSource, entries)
}

// LoadFile reads a JSON or YAML catalog, chosen by file extension.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var entries []Entry
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		entries, err = decodeJSON(raw)
	case ".yaml", ".yml":
		entries, err = decodeYAML(raw)
	default:
		return nil, fmt.Errorf("catalog %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return New(path, entries)
}

func decodeYAML(raw []byte) ([]Entry, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc.Riddles, nil
}

// decodeJSON accepts either {"riddles": [...]} or a bare array of entries.
func decodeJSON(raw []byte) ([]Entry, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []Entry
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return doc.Riddles, nil
}
