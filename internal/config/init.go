package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Init writes the default config to path, creating parent directories.
// Refuses to overwrite an existing file.
func Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}

	// JSON is valid JSON5; a header comment is fine too.
	out := append([]byte("// sweeper configuration. Edits are hot-reloaded while running.\n"), data...)
	out = append(out, '\n')

	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
