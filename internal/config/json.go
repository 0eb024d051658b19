package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer fields
// distinguish "absent" from "zero", so a partial config file only overrides
// the settings it names.
type JsonConfig struct {
	DBPath  *string `json:"db_path"`
	KeyMode *string `json:"key_mode"`
	Verbose *bool   `json:"verbose"`
}

// parseJSON overlays cfg with values loaded from the JSON file at path.
// An empty path means no config file was requested and cfg is left unchanged.
//
// Intended usage is: defaults -> parseJSON -> flag overrides, where later
// stages override earlier ones.
func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if jc.DBPath != nil {
		cfg.DBPath = *jc.DBPath
	}
	if jc.KeyMode != nil {
		cfg.KeyMode = *jc.KeyMode
	}
	if jc.Verbose != nil {
		cfg.Verbose = *jc.Verbose
	}
	return nil
}
