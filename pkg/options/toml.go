package options

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/nodescape/nodescape/pkg/errors"
)

// DefaultPath returns the default options file location,
// ~/.config/nodescape/options.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "nodescape", "options.toml"), nil
}

// Load reads a TOML options file and merges it over the defaults. Fields
// absent from the file keep their default values; unknown keys are
// ignored. A missing file yields the plain defaults without error.
func Load(path string) (Options, error) {
	opts := Defaults()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return opts, nil
	}
	if err != nil {
		return opts, errors.Wrap(errors.ErrCodeStore, err, "read options %s", path)
	}

	var p Partial
	if err := toml.Unmarshal(data, &p); err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidOptions, err, "parse options %s", path)
	}

	opts.Restore(p)
	return opts, nil
}

// Save writes the record as TOML, creating parent directories as needed.
func Save(opts Options, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "create options dir for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "create options %s", path)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(opts); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "encode options %s", path)
	}
	return nil
}
