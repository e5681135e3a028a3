package testng

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// LoadOptions reads Options from a YAML or TOML file, chosen by file extension. Settings
// that the file does not mention keep their default values.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	options := NewOptions()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, options)
	case ".toml":
		err = toml.Unmarshal(data, options)
	default:
		return nil, fmt.Errorf("config load failed (%s): unsupported file type, expected .yaml, .yml or .toml", path)
	}
	if err != nil {
		return nil, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	options.IncludeGroups = distinct(options.IncludeGroups)
	options.ExcludeGroups = distinct(options.ExcludeGroups)
	return options, nil
}
