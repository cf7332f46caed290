package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Export modes
const (
	ModeOwn   = "own"
	ModeLiked = "liked"
)

// MaxParallelUsers caps how many users may be crawled at once
const MaxParallelUsers = 8

// Config holds all configuration options for the exporter
type Config struct {
	// API access
	API APIConfig `yaml:"api" json:"api"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Crawl settings
	Export ExportConfig `yaml:"export" json:"export"`

	// External executables
	Tools ToolsConfig `yaml:"tools" json:"tools"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// APIConfig holds platform API configuration
type APIConfig struct {
	BaseURL     string        `yaml:"base_url" json:"base_url"`
	BearerToken string        `yaml:"bearer_token" json:"-"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent   string        `yaml:"user_agent" json:"user_agent"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory     string `yaml:"base_directory" json:"base_directory"`
	CreateUserFolders bool   `yaml:"create_user_folders" json:"create_user_folders"`
}

// ExportConfig holds crawl configuration
type ExportConfig struct {
	Mode          string   `yaml:"mode" json:"mode"`
	Exclude       []string `yaml:"exclude" json:"exclude"`
	MaxResults    int      `yaml:"max_results" json:"max_results"`
	ParallelUsers int      `yaml:"parallel_users" json:"parallel_users"`
}

// ToolsConfig names the executables invoked for downloads
type ToolsConfig struct {
	Shell           string `yaml:"shell" json:"shell"`
	VideoDownloader string `yaml:"video_downloader" json:"video_downloader"`
	PhotoFetcher    string `yaml:"photo_fetcher" json:"photo_fetcher"`
	MetadataStamper string `yaml:"metadata_stamper" json:"metadata_stamper"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled    bool `yaml:"enabled" json:"enabled"`
	OnComplete bool `yaml:"on_complete" json:"on_complete"`
	OnError    bool `yaml:"on_error" json:"on_error"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "https://api.twitter.com/2",
			Timeout:   30 * time.Second,
			UserAgent: "uranus/1.0",
		},
		Output: OutputConfig{
			BaseDirectory:     ".",
			CreateUserFolders: false,
		},
		Export: ExportConfig{
			Mode:          ModeOwn,
			MaxResults:    100,
			ParallelUsers: 1,
		},
		Tools: ToolsConfig{
			Shell:           "bash",
			VideoDownloader: "yt-dlp",
			PhotoFetcher:    "wget",
			MetadataStamper: "exiftool",
		},
		Notifications: NotificationConfig{
			Enabled:    false,
			OnComplete: true,
			OnError:    true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if token := os.Getenv("URANUS_BEARER_TOKEN"); token != "" {
		c.API.BearerToken = token
	}
	if baseURL := os.Getenv("URANUS_BASE_URL"); baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if timeout := os.Getenv("URANUS_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid URANUS_TIMEOUT: %w", err)
		}
		c.API.Timeout = d
	}

	if outputDir := os.Getenv("URANUS_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if userFolders := os.Getenv("URANUS_USER_FOLDERS"); userFolders != "" {
		c.Output.CreateUserFolders = strings.ToLower(userFolders) == "true"
	}

	if mode := os.Getenv("URANUS_MODE"); mode != "" {
		c.Export.Mode = strings.ToLower(mode)
	}
	if parallel := os.Getenv("URANUS_PARALLEL_USERS"); parallel != "" {
		var val int
		fmt.Sscanf(parallel, "%d", &val)
		if val > 0 {
			c.Export.ParallelUsers = val
		}
	}

	if notifEnabled := os.Getenv("URANUS_NOTIFICATIONS_ENABLED"); notifEnabled != "" {
		c.Notifications.Enabled = strings.ToLower(notifEnabled) == "true"
	}

	if logLevel := os.Getenv("URANUS_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("URANUS_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".uranus.yaml",
		".uranus.yml",
		filepath.Join(home, ".config", "uranus", "config.yaml"),
		filepath.Join(home, ".config", "uranus", "config.yml"),
		filepath.Join(home, ".uranus.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.API.BearerToken) == "" {
		errs = append(errs, errors.New("bearer token is required"))
	}
	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("API base URL is required"))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("API timeout must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	switch c.Export.Mode {
	case ModeOwn, ModeLiked:
	default:
		errs = append(errs, fmt.Errorf("invalid export mode %q (want %q or %q)", c.Export.Mode, ModeOwn, ModeLiked))
	}
	if c.Export.MaxResults < 5 || c.Export.MaxResults > 100 {
		errs = append(errs, errors.New("max results must be between 5 and 100"))
	}
	if c.Export.ParallelUsers <= 0 {
		errs = append(errs, errors.New("parallel users must be positive"))
	}
	if c.Export.ParallelUsers > MaxParallelUsers {
		errs = append(errs, fmt.Errorf("parallel users should not exceed %d", MaxParallelUsers))
	}

	if c.Tools.Shell == "" {
		errs = append(errs, errors.New("shell is required"))
	}
	if c.Tools.VideoDownloader == "" || c.Tools.PhotoFetcher == "" || c.Tools.MetadataStamper == "" {
		errs = append(errs, errors.New("video downloader, photo fetcher and metadata stamper are required"))
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file. The bearer token is never written.
func (c *Config) Save(path string) error {
	clean := *c
	clean.API.BearerToken = ""

	data, err := yaml.Marshal(&clean)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if token, ok := flags["bearer-token"].(string); ok && token != "" {
		c.API.BearerToken = token
	}
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if userFolders, ok := flags["user-folders"].(bool); ok {
		c.Output.CreateUserFolders = userFolders
	}
	if mode, ok := flags["mode"].(string); ok && mode != "" {
		c.Export.Mode = mode
	}
	if exclude, ok := flags["exclude"].([]string); ok && len(exclude) > 0 {
		c.Export.Exclude = exclude
	}
	if parallel, ok := flags["parallel"].(int); ok && parallel > 0 {
		c.Export.ParallelUsers = parallel
	}
	if notify, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = notify
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".uranus.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
