package app

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fortetroy/fedramp-explorer/internal/ports"
)

// Config is the on-disk configuration, usually fedramp-explorer.yaml in the
// mirror root. All fields have workable defaults; a missing config file just
// means defaults plus whatever flags override them.
type Config struct {
	MirrorID string        `yaml:"mirror_id"`
	Sources  ports.Sources `yaml:"sources"`

	SnippetWindow int    `yaml:"snippet_window"`
	MaxResults    int    `yaml:"max_results"`
	FuzzyDistance int    `yaml:"fuzzy_distance"` // 0 = length-based budget
	HTTPPort      int    `yaml:"http_port"`
	DBPath        string `yaml:"db_path"`
	LogLevel      string `yaml:"log_level"`
}

// DefaultConfigName is the config filename looked up in the working directory.
const DefaultConfigName = "fedramp-explorer.yaml"

// DefaultConfig returns the configuration used when no file is present,
// with source paths laid out the way the document mirror arranges them.
func DefaultConfig() Config {
	return Config{
		MirrorID: "default",
		Sources: ports.Sources{
			BaselinePath: filepath.Join("data", "baselines", "FedRAMP_Security_Controls_Baseline.xlsx"),
			KSIPath:      filepath.Join("fedramp-docs", "markdown", "FRMR.KSI.key-security-indicators-with-controls.md"),
			StandardsDir: filepath.Join("fedramp-docs", "markdown", "standards"),
			RFCDir:       filepath.Join("fedramp-docs", "markdown", "rfcs"),
			RoadmapDir:   filepath.Join("fedramp-docs", "markdown", "roadmap"),
		},
		SnippetWindow: 100,
		MaxResults:    20,
		HTTPPort:      0, // 0 = derive from mirror ID
		DBPath:        filepath.Join(".fedx", "snapshots.db"),
		LogLevel:      "info",
	}
}

// LoadConfig reads a YAML config file, layering it over defaults. An empty
// path tries DefaultConfigName and falls back to pure defaults if absent; an
// explicit path that cannot be read is an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigName
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.MirrorID == "" {
		cfg.MirrorID = "default"
	}
	return cfg, nil
}

// Save writes the config back as YAML, creating parent directories.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
