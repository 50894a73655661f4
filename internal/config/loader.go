package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Load reads settings from path. A missing file returns the defaults.
// Parse and validation failures return an error with the defaults, so
// callers can fall back without re-deriving them.
func Load(path string) (Settings, error) {
	if path == "" {
		return Default(), ErrNoPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	// Decode over the defaults so absent keys keep their default values.
	s := Default()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Default(), &ParseError{Path: path, Err: err}
	}
	if err := s.Validate(); err != nil {
		return Default(), err
	}
	return s, nil
}

// Save writes settings to path atomically: the file is fully written to a
// sibling temp file, then renamed over the target.
func Save(path string, s Settings) error {
	if path == "" {
		return ErrNoPath
	}
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".versepane-*.toml")
	if err != nil {
		return fmt.Errorf("creating temp config: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing config: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing config %s: %w", path, err)
	}
	return nil
}

// DefaultPath returns the conventional settings location under the user
// config directory.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}
	return filepath.Join(base, "versepane", "settings.toml"), nil
}
