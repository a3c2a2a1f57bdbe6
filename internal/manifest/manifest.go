// Package manifest writes and reads a `<table>.schema.yaml` sidecar file
// next to each table's `<table>.db` heap file, so a data directory stays
// human-inspectable without opening the engine, and so a catalog can be
// rebuilt by re-registering every table's schema on open.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"minidb/internal/tuple"
)

// columnDoc is the YAML-facing shape of one tuple.Column.
type columnDoc struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`
}

// tableDoc is the YAML-facing shape of one table's schema manifest.
type tableDoc struct {
	Table   string      `yaml:"table"`
	Columns []columnDoc `yaml:"columns"`
}

// Path returns the manifest path for table name under dataDir.
func Path(dataDir, name string) string {
	return filepath.Join(dataDir, name+".schema.yaml")
}

// Write serializes schema to Path(dataDir, name), atomically.
func Write(dataDir, name string, schema *tuple.Schema) error {
	doc := tableDoc{Table: name, Columns: make([]columnDoc, schema.Len())}
	for i, c := range schema.Columns {
		doc.Columns[i] = columnDoc{Name: c.Name, Type: typeName(c.Type), Nullable: c.Nullable}
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("manifest: marshal %q: %w", name, err)
	}
	if err := atomic.WriteFile(Path(dataDir, name), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("manifest: write %q: %w", name, err)
	}
	return nil
}

// Read parses the manifest for table name under dataDir back into a
// schema.
func Read(dataDir, name string) (*tuple.Schema, error) {
	raw, err := os.ReadFile(Path(dataDir, name))
	if err != nil {
		return nil, fmt.Errorf("manifest: read %q: %w", name, err)
	}
	var doc tableDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("manifest: unmarshal %q: %w", name, err)
	}
	cols := make([]tuple.Column, len(doc.Columns))
	for i, c := range doc.Columns {
		dt, err := parseType(c.Type)
		if err != nil {
			return nil, fmt.Errorf("manifest: %q column %q: %w", name, c.Name, err)
		}
		cols[i] = tuple.Column{Name: c.Name, Type: dt, Nullable: c.Nullable}
	}
	return tuple.NewSchema(cols)
}

// ListTables returns every table name with a manifest under dataDir, used
// to re-register tables with a Catalog on startup.
func ListTables(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("manifest: list %q: %w", dataDir, err)
	}
	var names []string
	const suffix = ".schema.yaml"
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		n := e.Name()
		if len(n) > len(suffix) && n[len(n)-len(suffix):] == suffix {
			names = append(names, n[:len(n)-len(suffix)])
		}
	}
	return names, nil
}

// Describe renders schema as a human-readable column listing, the
// supplemented `DESCRIBE <table>` read spec.md's distillation dropped but
// the original catalog introspection carried (see SPEC_FULL.md §4).
func Describe(name string, schema *tuple.Schema) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n", name)
	for _, c := range schema.Columns {
		nullability := "NULL"
		if !c.Nullable {
			nullability = "NOT NULL"
		}
		fmt.Fprintf(&buf, "  %s %s %s\n", c.Name, typeName(c.Type), nullability)
	}
	return buf.String()
}

func typeName(dt tuple.DataType) string {
	switch dt {
	case tuple.Integer:
		return "integer"
	case tuple.Text:
		return "text"
	case tuple.Boolean:
		return "boolean"
	default:
		return "unknown"
	}
}

func parseType(s string) (tuple.DataType, error) {
	switch s {
	case "integer":
		return tuple.Integer, nil
	case "text":
		return tuple.Text, nil
	case "boolean":
		return tuple.Boolean, nil
	default:
		return 0, fmt.Errorf("unknown column type %q", s)
	}
}
