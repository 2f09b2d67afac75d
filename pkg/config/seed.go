package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Seed file names recognized in a --config-dir directory.
var seedNames = []string{"minion", "master", "grains"}

// EnsureSaltDirs creates the salt configuration directory and the key
// material directories with tightened permissions.
func EnsureSaltDirs(etcDir, keysDir string) error {
	if err := os.MkdirAll(etcDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", etcDir, err)
	}
	for _, sub := range []string{"minion", "master"} {
		dir := filepath.Join(keysDir, sub)
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
		if err := os.Chmod(dir, 0o700); err != nil {
			return fmt.Errorf("failed to tighten %s: %w", dir, err)
		}
	}
	return nil
}

// WriteOnce writes a file unless it already exists. Force overwrites.
// Reports whether the file was written.
func WriteOnce(path string, data []byte, perm os.FileMode, force bool) (bool, error) {
	if _, err := os.Stat(path); err == nil && !force {
		log.Debug().Str("path", path).Msg("File already exists, leaving it alone")
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, perm); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}

// CopySeeds copies recognized seed configuration files from a source
// directory into the salt configuration directory. Existing files are
// preserved unless force is set. Returns the names copied.
func CopySeeds(srcDir, etcDir string, force bool) ([]string, error) {
	var copied []string
	for _, name := range seedNames {
		src := filepath.Join(srcDir, name)
		data, err := os.ReadFile(src)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return copied, fmt.Errorf("failed to read seed %s: %w", src, err)
		}

		wrote, err := WriteOnce(filepath.Join(etcDir, name), data, 0o644, force)
		if err != nil {
			return copied, err
		}
		if wrote {
			log.Info().Str("file", name).Str("dir", etcDir).Msg("Seeded configuration file")
			copied = append(copied, name)
		}
	}
	return copied, nil
}

// ApplyMinionSettings merges inline settings into the minion
// configuration file, preserving whatever the file already contains.
// Passing empty strings leaves the corresponding key untouched.
func ApplyMinionSettings(path, minionID, masterAddress string) error {
	if minionID == "" && masterAddress == "" {
		return nil
	}

	settings := make(map[string]interface{})
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}
	if settings == nil {
		settings = make(map[string]interface{})
	}

	if minionID != "" {
		settings["id"] = minionID
	}
	if masterAddress != "" {
		settings["master"] = masterAddress
	}

	out, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal minion configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	log.Info().Str("path", path).Msg("Updated minion configuration")
	return nil
}
