package configutil

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/titanous/json5"
)

func splitExt(f string) (string, string) {
	ext := filepath.Ext(f)
	return strings.TrimSuffix(f, ext), strings.TrimPrefix(ext, ".")
}

// LocalPath returns the override file for a config file,
// `config.json5` -> `config.local.json5`.
func LocalPath(name string) string {
	dirname := filepath.Dir(name)
	prefix, ext := splitExt(filepath.Base(name))
	return filepath.Join(dirname, fmt.Sprintf("%s.local.%s", prefix, ext))
}

// decodeJson5 decodes the file at path on top of out, fields the file does
// not mention keep their value. found is false when the file is missing.
func decodeJson5[T any](path string, out *T) (found bool, err error) {
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return true, nil
	}
	if err := json5.Unmarshal(contents, out); err != nil {
		return true, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// layer decodes name and then its local override on top of out.
func layer[T any](name string, out *T) (bool, error) {
	found, err := decodeJson5(name, out)
	if err != nil {
		return found, err
	}

	localPath := LocalPath(name)
	foundLocal, err := decodeJson5(localPath, out)
	if err != nil {
		return found, err
	}
	if foundLocal {
		slog.Info("merging config with local overrides", "local", localPath)
	}
	return found || foundLocal, nil
}

// ReadConfig reads a configuration file, `name` should come with a file extension.
// this function will layer the following files, where higher number is more prioritized.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
//
// os.ErrNotExist is returned when neither exists.
func ReadConfig[T any](name string) (T, error) {
	var out T
	found, err := layer(name, &out)
	if err != nil {
		return out, err
	}
	if !found {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadWithDefaults is ReadConfig where the files are decoded on top of
// defaults, so only the fields they set are replaced (explicit false and 0
// included). Pointer fields of defaults are decoded through, pass a fresh
// value. A missing file is not an error, defaults are returned as is.
func ReadWithDefaults[T any](name string, defaults T) (T, error) {
	out := defaults
	if _, err := layer(name, &out); err != nil {
		return out, err
	}
	return out, nil
}

// ReadRecursively is ReadConfig but it goes up the filesystem until the root
// to find a configuration file matching the name.
func ReadRecursively[T any](name string) (T, error) {
	var defaultOut T

	current, err := os.Getwd()
	if err != nil {
		return defaultOut, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return defaultOut, err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return defaultOut, os.ErrNotExist
		}
		current = parent
	}
}
