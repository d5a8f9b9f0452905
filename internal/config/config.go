// Package config holds the runtime configuration for lodstream commands.
//
// Configuration is assembled explicitly in main and passed into each
// component at construction; nothing reads ambient process state after
// startup. Precedence: command-line flags > environment > config file >
// defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultEPSGPath is the proj.4 EPSG definitions file scanned as a last
// resort when a spatial reference carries no authority metadata.
const DefaultEPSGPath = "/usr/share/proj/epsg"

// ConfigError reports an invalid configuration or command argument. It is
// fatal and surfaced before any external call is made.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Config carries every parameter the load, demo and serve commands need.
type Config struct {
	// Postgres connection parameters for the pgpointcloud database.
	DBName     string `json:"db_name"`
	DBPort     int    `json:"db_port"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	SSLMode    string `json:"ssl_mode"`

	// Schema is the default schema used to qualify bare table names.
	Schema string `json:"schema"`

	// WorkDir is where pipeline files and LOD artifacts are written.
	// It must already exist.
	WorkDir string `json:"work_dir"`

	// ServerURL is the base URL of the streaming server, used for the
	// tileset content links and the demo browser tab.
	ServerURL string `json:"server_url"`

	// ListenAddr is the serve command's listen address.
	ListenAddr string `json:"listen_addr"`

	// LOD range and chipping capacity. Overridable, defaults match the
	// values the streaming server expects.
	LODMin       int `json:"lod_min"`
	LODMax       int `json:"lod_max"`
	ChipCapacity int `json:"chip_capacity"`

	// EPSGPath points at the proj.4 EPSG definitions file.
	EPSGPath string `json:"epsg_path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBName:       "pointclouds",
		DBPort:       5432,
		DBUser:       "postgres",
		DBPassword:   "",
		SSLMode:      "disable",
		Schema:       "public",
		ServerURL:    "http://localhost:5000",
		ListenAddr:   ":5000",
		LODMin:       0,
		LODMax:       5,
		ChipCapacity: 400,
		EPSGPath:     DefaultEPSGPath,
	}
}

// ApplyEnv overlays PG* environment variables onto c. An optional .env file
// in the working directory is loaded first; a missing file is not an error.
func (c *Config) ApplyEnv() {
	// Ignore the error: .env is optional and real env vars still apply.
	_ = godotenv.Load()

	if v := os.Getenv("PGDATABASE"); v != "" {
		c.DBName = v
	}
	if v := os.Getenv("PGPORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.DBPort = port
		}
	}
	if v := os.Getenv("PGUSER"); v != "" {
		c.DBUser = v
	}
	if v := os.Getenv("PGPASSWORD"); v != "" {
		c.DBPassword = v
	}
	if v := os.Getenv("PGSSLMODE"); v != "" {
		c.SSLMode = v
	}
}

// LoadFile overlays values from a JSON config file onto c. Fields omitted
// from the file keep their current values, so partial configs are safe.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the configuration before any external call is made.
func (c Config) Validate() error {
	if c.WorkDir == "" {
		return &ConfigError{Field: "work-dir", Reason: "a working directory is required"}
	}
	info, err := os.Stat(c.WorkDir)
	if err != nil {
		return &ConfigError{Field: "work-dir", Reason: fmt.Sprintf("%s does not exist", c.WorkDir)}
	}
	if !info.IsDir() {
		return &ConfigError{Field: "work-dir", Reason: fmt.Sprintf("%s is not a directory", c.WorkDir)}
	}
	if c.DBPort <= 0 || c.DBPort > 65535 {
		return &ConfigError{Field: "db-port", Reason: fmt.Sprintf("port %d out of range", c.DBPort)}
	}
	if c.LODMin < 0 || c.LODMax < c.LODMin {
		return &ConfigError{Field: "lod-range", Reason: fmt.Sprintf("range [%d, %d] is not ascending from zero", c.LODMin, c.LODMax)}
	}
	if c.ChipCapacity <= 0 {
		return &ConfigError{Field: "chip-capacity", Reason: "capacity must be positive"}
	}
	return nil
}

// DSN returns the keyword/value Postgres connection string used both by
// database/sql and the pgpointcloud writer stage.
func (c Config) DSN() string {
	return fmt.Sprintf("dbname=%s port=%d user=%s password=%s sslmode=%s",
		c.DBName, c.DBPort, c.DBUser, c.DBPassword, c.SSLMode)
}

// WriterConnection returns the connection string handed to the pipeline
// writer stage. The writer does not understand sslmode.
func (c Config) WriterConnection() string {
	return fmt.Sprintf("dbname=%s port=%d user=%s password=%s",
		c.DBName, c.DBPort, c.DBUser, c.DBPassword)
}
