// Package config loads settings from a config file, the environment and a
// .env file.
package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

type Config struct {
	// Type of store: sqlite, postgres, rqlite or sql.
	Type string
	// Driver is the database/sql driver used when Type is sql.
	Driver string
	// Connection is the connection string for postgres, rqlite and sql stores.
	Connection string
	// DataDir is the directory containing the sqlite database file.
	DataDir string
	// File is the name of the sqlite database file.
	File     string
	PoolSize int
	Timeout  time.Duration
	Listen   string
	LogLevel string
}

// StorePath is the path of the sqlite database file.
func (c Config) StorePath() string {
	return filepath.Join(c.DataDir, c.File)
}

func (c Config) Level() (level slog.Level, err error) {
	err = level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}

// Load reads .sqlbridge.yaml from the current directory, the home directory
// and ~/.config/sqlbridge, then SQLBRIDGE_ prefixed environment variables.
// Variables in .env are loaded into the environment first, if the file exists.
func Load(fs afero.Fs) (Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return Config{}, fmt.Errorf("config: error finding home directory: %w", err)
	}

	if _, err := fs.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("config: error loading .env: %w", err)
		}
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigName(".sqlbridge")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "sqlbridge"))

	v.SetEnvPrefix("SQLBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("type", "sqlite")
	v.SetDefault("driver", "sqlite3")
	v.SetDefault("connection", "")
	v.SetDefault("data_dir", filepath.Join(home, ".local", "share", "sqlbridge"))
	v.SetDefault("file", "sqlbridge.db")
	v.SetDefault("pool_size", 10)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("listen", "localhost:8080")
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("config: error reading config file: %w", err)
		}
	}

	dataDir, err := homedir.Expand(v.GetString("data_dir"))
	if err != nil {
		return Config{}, fmt.Errorf("config: error expanding data_dir: %w", err)
	}

	return Config{
		Type:       v.GetString("type"),
		Driver:     v.GetString("driver"),
		Connection: v.GetString("connection"),
		DataDir:    dataDir,
		File:       v.GetString("file"),
		PoolSize:   v.GetInt("pool_size"),
		Timeout:    v.GetDuration("timeout"),
		Listen:     v.GetString("listen"),
		LogLevel:   v.GetString("log_level"),
	}, nil
}
