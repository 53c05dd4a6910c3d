package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SizeLimits caps rendered document length per map level, in lines.
type SizeLimits struct {
	L0 int `yaml:"l0,omitempty"`
	L1 int `yaml:"l1,omitempty"`
	L2 int `yaml:"l2,omitempty"`
}

// Config holds project-level settings loaded from codemap.yml.
type Config struct {
	ProjectName string     `yaml:"project_name,omitempty"`
	SourceRoot  string     `yaml:"source_root,omitempty"`
	MapRoot     string     `yaml:"map_root,omitempty"`
	Languages   []string   `yaml:"languages,omitempty"` // empty = every supported language
	Exclude     []string   `yaml:"exclude,omitempty"`
	Tolerance   int        `yaml:"tolerance,omitempty"`
	ReportCap   int        `yaml:"report_cap,omitempty"`
	SizeLimits  SizeLimits `yaml:"size_limits,omitempty"`
	Workers     int        `yaml:"workers,omitempty"` // 0 = NumCPU
	IndexPath   string     `yaml:"index_path,omitempty"`
}

// Default returns the settings used when codemap.yml is absent or silent on
// a key.
func Default() *Config {
	return &Config{
		SourceRoot: "src",
		MapRoot:    "docs/map",
		Tolerance:  5,
		ReportCap:  10,
		SizeLimits: SizeLimits{L0: 500, L1: 300, L2: 200},
	}
}

// Load attempts to read codemap.yml or codemap.yaml from the given directory.
// Keys the file does not set keep their defaults; if no config file exists,
// Load returns Default() without an error.
func Load(dir string) (*Config, error) {
	for _, name := range []string{"codemap.yml", "codemap.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		cfg := Default()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Default(), nil
}
