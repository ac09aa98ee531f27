package octez

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

// ConfigPath returns the location of the client config file inside a data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// SearchClientConfig returns a string field of the client config file in dataDir.
// def is returned when the file does not exist or the field is absent.
func SearchClientConfig(dataDir, field, def string) (string, error) {
	data, err := os.ReadFile(ConfigPath(dataDir))
	if errors.Is(err, fs.ErrNotExist) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("failed to read client config: %w", err)
	}

	v := jsoniter.Get(data, field)
	if err := v.LastError(); err != nil {
		return def, nil
	}
	if v.ValueType() != jsoniter.StringValue {
		return def, nil
	}
	return v.ToString(), nil
}
