package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/reachout/internal/domain"
)

// FileLoader loads the monitored-post configuration from disk. Both YAML and
// JSON files are accepted; the decoder is picked by file extension.
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a loader. An empty path defers resolution to the
// REACHOUT_CONFIG environment variable and then the working directory.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. The returned config is fully
// validated and every post carries its derived ID.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path, err := l.resolvePath()
	if err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg domain.Config
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return domain.Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

func (l *FileLoader) resolvePath() (string, error) {
	if l.overridePath != "" {
		return l.overridePath, nil
	}
	if custom := os.Getenv(domain.EnvConfig); custom != "" {
		return custom, nil
	}
	for _, candidate := range []string{"config.yaml", "config.yml", "config.json"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no config file found (looked for config.yaml, config.yml, config.json; set %s or --config)", domain.EnvConfig)
}
