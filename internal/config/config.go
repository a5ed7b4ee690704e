package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the exam curator MCP server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Data files
	DatasetFile      string
	BackupDir        string
	ReportFile       string
	ManualCheckFile  string
	ReviewStatusFile string

	// PDF archive
	ArchiveDir string
	UploadDir  string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:             ModeStdio, // Default to stdio mode for MCP compatibility
		Host:             DefaultHost,
		Port:             DefaultPort,
		DatasetFile:      filepath.Join("data", "cpa_dataset.jsonl"),
		BackupDir:        "backups",
		ReportFile:       filepath.Join("data", "error_report.md"),
		ManualCheckFile:  filepath.Join("data", "manual_check_status.json"),
		ReviewStatusFile: filepath.Join("data", "review_status.json"),
		ArchiveDir:       filepath.Join("data", "raw_pdfs"),
		UploadDir:        filepath.Join("data", "uploads"),
		Version:          "1.0.0",
		ServerName:       "mcp-exam-curator",
		LogLevel:         DefaultLogLevel,
		MaxFileSize:      DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	for _, p := range []*string{
		&cfg.DatasetFile, &cfg.BackupDir, &cfg.ReportFile,
		&cfg.ManualCheckFile, &cfg.ReviewStatusFile,
		&cfg.ArchiveDir, &cfg.UploadDir,
	} {
		if *p == "" {
			continue
		}
		if expandedPath, err := filepath.Abs(*p); err == nil {
			*p = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("EXAM_CURATOR")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dataset", cfg.DatasetFile)
	viper.SetDefault("backupdir", cfg.BackupDir)
	viper.SetDefault("report", cfg.ReportFile)
	viper.SetDefault("manualcheck", cfg.ManualCheckFile)
	viper.SetDefault("reviewstatus", cfg.ReviewStatusFile)
	viper.SetDefault("archivedir", cfg.ArchiveDir)
	viper.SetDefault("uploaddir", cfg.UploadDir)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dataset", cfg.DatasetFile, "Dataset JSONL file")
	pflag.String("backupdir", cfg.BackupDir, "Directory for dataset backups")
	pflag.String("report", cfg.ReportFile, "Missing-questions report file")
	pflag.String("manualcheck", cfg.ManualCheckFile, "Manual check status file")
	pflag.String("reviewstatus", cfg.ReviewStatusFile, "Review status file")
	pflag.String("archivedir", cfg.ArchiveDir, "Directory containing exam PDF archive")
	pflag.String("uploaddir", cfg.UploadDir, "Directory for uploaded PDFs")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "host", "port", "dataset", "backupdir", "report",
		"manualcheck", "reviewstatus", "archivedir", "uploaddir",
		"loglevel", "maxfilesize",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP Exam Curator - A Model Context Protocol server for curating an exam Q/A dataset\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          # stdio mode, default data layout\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dataset=/data/cpa.jsonl                # stdio mode with custom dataset\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --archivedir=/data/pdfs    # server mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  EXAM_CURATOR_MODE          Server mode\n")
		fmt.Fprintf(os.Stderr, "  EXAM_CURATOR_HOST          Server host\n")
		fmt.Fprintf(os.Stderr, "  EXAM_CURATOR_PORT          Server port\n")
		fmt.Fprintf(os.Stderr, "  EXAM_CURATOR_DATASET       Dataset JSONL file\n")
		fmt.Fprintf(os.Stderr, "  EXAM_CURATOR_BACKUPDIR     Backup directory\n")
		fmt.Fprintf(os.Stderr, "  EXAM_CURATOR_REPORT        Missing-questions report file\n")
		fmt.Fprintf(os.Stderr, "  EXAM_CURATOR_MANUALCHECK   Manual check status file\n")
		fmt.Fprintf(os.Stderr, "  EXAM_CURATOR_REVIEWSTATUS  Review status file\n")
		fmt.Fprintf(os.Stderr, "  EXAM_CURATOR_ARCHIVEDIR    Exam PDF archive directory\n")
		fmt.Fprintf(os.Stderr, "  EXAM_CURATOR_UPLOADDIR     Upload directory\n")
		fmt.Fprintf(os.Stderr, "  EXAM_CURATOR_LOGLEVEL      Log level\n")
		fmt.Fprintf(os.Stderr, "  EXAM_CURATOR_MAXFILESIZE   Maximum file size\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.DatasetFile = viper.GetString("dataset")
	cfg.BackupDir = viper.GetString("backupdir")
	cfg.ReportFile = viper.GetString("report")
	cfg.ManualCheckFile = viper.GetString("manualcheck")
	cfg.ReviewStatusFile = viper.GetString("reviewstatus")
	cfg.ArchiveDir = viper.GetString("archivedir")
	cfg.UploadDir = viper.GetString("uploaddir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.DatasetFile == "" {
		return errors.New("dataset file cannot be empty")
	}

	// Directories written at runtime are created up front
	for _, dir := range []string{c.BackupDir, c.UploadDir} {
		if dir == "" {
			continue
		}
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", dir, err)
			}
		} else if err != nil {
			return fmt.Errorf("cannot access directory %s: %w", dir, err)
		}
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, DatasetFile: %s, ArchiveDir: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.DatasetFile, c.ArchiveDir, c.LogLevel, c.MaxFileSize)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
