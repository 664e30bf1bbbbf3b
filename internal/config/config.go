package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Last.fm API settings
	LastFM LastFMConfig

	// Bound on the chart request (in seconds)
	// Default: 30
	RequestTimeout int

	// Artwork downloads in flight at once
	// Default: 4
	FetchConcurrency int

	// Fill for empty grid cells: black, white, dominant or #rrggbb
	// Default: "black"
	Background string

	// Output path for the generate command
	// Default: "collage.png"
	Output string

	// Directory for the run history database
	// Default: ~/.local/share/collagefm
	DataDir string

	// HTTP server settings
	Server ServerConfig
}

// LastFMConfig holds Last.fm specific configuration
type LastFMConfig struct {
	APIKey  string
	BaseURL string
}

// ServerConfig holds settings for the serve command
type ServerConfig struct {
	Addr string
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	return load(getConfigDir())
}

func load(configDir string) (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config file locations (in order of precedence)
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	// Set defaults
	v.SetDefault("lastfm.base_url", "https://ws.audioscrobbler.com/2.0/")
	v.SetDefault("request_timeout", 30)
	v.SetDefault("fetch_concurrency", 4)
	v.SetDefault("background", "black")
	v.SetDefault("output", "collage.png")
	v.SetDefault("data_dir", defaultDataDir())
	v.SetDefault("server.addr", ":8080")

	// Read config file (optional - don't fail if missing)
	_ = v.ReadInConfig()

	// Read from environment variables, e.g. COLLAGEFM_LASTFM_API_KEY
	v.SetEnvPrefix("COLLAGEFM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Map config to struct
	cfg := &Config{
		LastFM: LastFMConfig{
			APIKey:  v.GetString("lastfm.api_key"),
			BaseURL: v.GetString("lastfm.base_url"),
		},
		RequestTimeout:   v.GetInt("request_timeout"),
		FetchConcurrency: v.GetInt("fetch_concurrency"),
		Background:       v.GetString("background"),
		Output:           v.GetString("output"),
		DataDir:          v.GetString("data_dir"),
		Server: ServerConfig{
			Addr: v.GetString("server.addr"),
		},
	}

	return cfg, nil
}

// getConfigDir returns the configuration directory path
// Creates the directory if it doesn't exist
func getConfigDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(homeDir, ".config", "collagefm")

	// Create config directory if it doesn't exist
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

// GetConfigDir returns the configuration directory path (public helper)
func GetConfigDir() string {
	return getConfigDir()
}

// defaultDataDir returns ~/.local/share/collagefm
func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".local", "share", "collagefm")
}

// Save writes configuration to file
func (c *Config) Save() error {
	return c.saveTo(getConfigDir())
}

func (c *Config) saveTo(configDir string) error {
	v := viper.New()

	// Set config file path
	configFile := filepath.Join(configDir, "config.yaml")

	// Set values in viper
	v.Set("lastfm.api_key", c.LastFM.APIKey)
	v.Set("lastfm.base_url", c.LastFM.BaseURL)
	v.Set("request_timeout", c.RequestTimeout)
	v.Set("fetch_concurrency", c.FetchConcurrency)
	v.Set("background", c.Background)
	v.Set("output", c.Output)
	v.Set("data_dir", c.DataDir)
	v.Set("server.addr", c.Server.Addr)

	// Write to file
	return v.WriteConfigAs(configFile)
}
