package config

import (
	"os"
	"strconv"
)

// ApplyEnv overrides loaded values with TABLETOP_* environment variables.
// Directories derived from data_dir are recomputed when only the data dir
// is overridden.
func (c *Config) ApplyEnv() {
	if val := os.Getenv("TABLETOP_DATA_DIR"); val != "" {
		c.DataDir = val
		if os.Getenv("TABLETOP_GAMES_DIR") == "" {
			c.GamesDir = ""
		}
		if os.Getenv("TABLETOP_IMAGES_DIR") == "" {
			c.ImagesDir = ""
		}
	}
	if val := os.Getenv("TABLETOP_GAMES_DIR"); val != "" {
		c.GamesDir = val
	}
	if val := os.Getenv("TABLETOP_IMAGES_DIR"); val != "" {
		c.ImagesDir = val
	}
	if val := os.Getenv("TABLETOP_LISTEN_ADDR"); val != "" {
		c.ListenAddr = val
	}
	if val := getEnvInt("TABLETOP_CELL_SIZE"); val > 0 {
		c.Board.CellSize = val
	}
	if val, ok := getEnvBool("TABLETOP_RELAY_ENABLED"); ok {
		c.Relay.Enabled = val
	}
	if val, ok := getEnvBool("TABLETOP_LUA_ENABLED"); ok {
		c.Rules.LuaEnabled = val
	}
	if val := getEnvInt("TABLETOP_MAX_STACK"); val > 0 {
		c.Rules.Stacking.MaxHeight = val
	}
	if val := os.Getenv("TABLETOP_LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val, ok := getEnvBool("TABLETOP_LOG_DEV"); ok {
		c.Log.Development = val
	}
	c.ApplyDefaults()
}

// FromEnv loads path and applies environment overrides.
func FromEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

func getEnvBool(key string) (bool, bool) {
	val := os.Getenv(key)
	if val == "" {
		return false, false
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, false
	}
	return b, true
}
