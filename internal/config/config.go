package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DataDir    string `yaml:"data_dir" json:"data_dir"`
	GamesDir   string `yaml:"games_dir" json:"games_dir"`
	ImagesDir  string `yaml:"images_dir" json:"images_dir"`
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`

	Board BoardConfig `yaml:"board" json:"board"`
	Relay RelayConfig `yaml:"relay" json:"relay"`
	Rules Rules       `yaml:"rules" json:"rules"`
	Log   LogConfig   `yaml:"log" json:"log"`
}

type BoardConfig struct {
	// CellSize is the pixel size of one grid or tile cell.
	CellSize int `yaml:"cell_size" json:"cell_size"`
	// SpriteSize is the hit box of an object on a free board.
	SpriteSize int `yaml:"sprite_size" json:"sprite_size"`
}

type RelayConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
	// Buffer is the per-client outbound queue; a full queue drops messages.
	Buffer int `yaml:"buffer" json:"buffer"`
}

type Rules struct {
	LuaEnabled bool          `yaml:"lua_enabled" json:"lua_enabled"`
	Stacking   StackingRules `yaml:"stacking" json:"stacking"`
}

type StackingRules struct {
	MaxHeight    int        `yaml:"max_height" json:"max_height"`
	AllowedPairs [][]string `yaml:"allowed_pairs" json:"allowed_pairs"`
	Disallowed   [][]string `yaml:"disallowed" json:"disallowed"`
}

type LogConfig struct {
	Level       string `yaml:"level" json:"level"`
	Development bool   `yaml:"development" json:"development"`
}

func (b *BoardConfig) ApplyDefaults() {
	if b.CellSize == 0 {
		b.CellSize = 64
	}
	if b.SpriteSize == 0 {
		b.SpriteSize = 64
	}
}

func (r *RelayConfig) ApplyDefaults() {
	if r.Path == "" {
		r.Path = "/relay"
	}
	if !strings.HasPrefix(r.Path, "/") {
		r.Path = "/" + r.Path
	}
	if r.Buffer == 0 {
		r.Buffer = 16
	}
}

func (c *Config) ApplyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.GamesDir == "" {
		c.GamesDir = filepath.Join(c.DataDir, "games")
	}
	if c.ImagesDir == "" {
		c.ImagesDir = filepath.Join(c.DataDir, "images")
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Board.ApplyDefaults()
	c.Relay.ApplyDefaults()
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// Load reads a YAML config file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var r Config
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	r.ApplyDefaults()
	return &r, nil
}
