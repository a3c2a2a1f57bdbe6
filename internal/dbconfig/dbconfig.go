// Package dbconfig loads and saves MiniDB's on-disk configuration file:
// page size, buffer pool capacity, and data directory. The file is HuJSON
// (JSON with comments and trailing commas) standardized to plain JSON
// before unmarshaling, and written back atomically, the way
// calvinalkan-agent-task's config.go and internal/fs.Real.WriteFileAtomic
// handle its own JSONC config file.
package dbconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
)

// FileName is the default config file name MiniDB looks for in a data
// directory.
const FileName = "minidb.hujson"

// Config holds the tunables spec.md §4.1/§4.2 require a caller to supply:
// the fixed page size, how many frames the buffer pool holds, and where
// table files live.
type Config struct {
	PageSize   int    `json:"page_size"`
	PoolSize   int    `json:"pool_size"`
	DataDir    string `json:"data_dir"`
}

// Default returns the configuration spec.md's examples assume: 4096-byte
// pages, a 16-frame pool, and the current directory.
func Default() Config {
	return Config{PageSize: 4096, PoolSize: 16, DataDir: "."}
}

// Load reads and parses the HuJSON file at path, falling back to
// Default() for any field left unset (zero value) in the file.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("dbconfig: %s: %w", path, err)
	}
	standardized, err := hujson.Standardize(raw)
	if err != nil {
		return Config{}, fmt.Errorf("dbconfig: %s: invalid HuJSON: %w", path, err)
	}
	cfg := Default()
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("dbconfig: %s: invalid JSON: %w", path, err)
	}
	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("dbconfig: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as indented JSON, atomically: a crash mid-write
// leaves either the old file or the new one, never a half-written one.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("dbconfig: marshal: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("dbconfig: %s: %w", path, err)
	}
	return nil
}

func validate(cfg Config) error {
	if cfg.PageSize != 4096 {
		return fmt.Errorf("page_size must be 4096, got %d", cfg.PageSize)
	}
	if cfg.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be positive, got %d", cfg.PoolSize)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	return nil
}
