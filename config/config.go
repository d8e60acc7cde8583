// Package config loads newsfetch settings from a YAML file, .env files and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pevans/newsfetch/extract"
	"github.com/robfig/cron/v3"
)

// Config holds every setting the pipeline stages need.
type Config struct {
	Sources    []string          `yaml:"sources"`
	OutputPath string            `yaml:"output_path"`
	UserAgent  string            `yaml:"user_agent"`
	Selectors  extract.Selectors `yaml:"selectors"`
	Publish    PublishConfig     `yaml:"publish"`
	Schedule   string            `yaml:"schedule"`
	Server     ServerConfig      `yaml:"server"`
	Log        LogConfig         `yaml:"log"`
}

// PublishConfig describes the dvc and git invocations.
type PublishConfig struct {
	// RepoDir is the working directory for dvc and git. Empty means the
	// current directory.
	RepoDir string `yaml:"repo_dir"`
	DVCBin  string `yaml:"dvc_bin"`
	// DVCTarget is the path passed to "dvc add". Defaults to OutputPath.
	DVCTarget     string `yaml:"dvc_target"`
	GitBin        string `yaml:"git_bin"`
	Remote        string `yaml:"remote"`
	Branch        string `yaml:"branch"`
	CommitMessage string `yaml:"commit_message"`
}

// ServerConfig configures the task API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Sources:    []string{"https://www.dawn.com/", "https://www.bbc.com/"},
		OutputPath: "data/extracted.csv",
		UserAgent:  extract.DefaultUserAgent,
		Selectors:  extract.DefaultSelectors(),
		Publish: PublishConfig{
			DVCBin:        "dvc",
			GitBin:        "git",
			Remote:        "origin",
			Branch:        "main",
			CommitMessage: "updated automatically by dvc",
		},
		Schedule: "@daily",
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (if any), .env
// files and NEWSFETCH_* environment variables, in increasing order of
// precedence. An empty path means DefaultConfigFile, which may be absent.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	if err := LoadFile(path, cfg, explicit); err != nil {
		return nil, err
	}

	if err := loadEnvFiles(); err != nil {
		return nil, err
	}

	applyEnv(cfg)

	if cfg.Publish.DVCTarget == "" {
		cfg.Publish.DVCTarget = cfg.OutputPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overrides cfg with any NEWSFETCH_* variables that are set.
func applyEnv(cfg *Config) {
	if v := os.Getenv("NEWSFETCH_SOURCES"); v != "" {
		cfg.Sources = splitList(v)
	}
	cfg.OutputPath = getEnv("NEWSFETCH_OUTPUT_PATH", cfg.OutputPath)
	cfg.UserAgent = getEnv("NEWSFETCH_USER_AGENT", cfg.UserAgent)
	cfg.Publish.RepoDir = getEnv("NEWSFETCH_REPO_DIR", cfg.Publish.RepoDir)
	cfg.Publish.DVCBin = getEnv("NEWSFETCH_DVC_BIN", cfg.Publish.DVCBin)
	cfg.Publish.DVCTarget = getEnv("NEWSFETCH_DVC_TARGET", cfg.Publish.DVCTarget)
	cfg.Publish.GitBin = getEnv("NEWSFETCH_GIT_BIN", cfg.Publish.GitBin)
	cfg.Publish.Remote = getEnv("NEWSFETCH_GIT_REMOTE", cfg.Publish.Remote)
	cfg.Publish.Branch = getEnv("NEWSFETCH_GIT_BRANCH", cfg.Publish.Branch)
	cfg.Publish.CommitMessage = getEnv("NEWSFETCH_COMMIT_MESSAGE", cfg.Publish.CommitMessage)
	cfg.Schedule = getEnv("NEWSFETCH_SCHEDULE", cfg.Schedule)
	cfg.Server.Addr = getEnv("NEWSFETCH_LISTEN_ADDR", cfg.Server.Addr)
	cfg.Log.Level = getEnv("NEWSFETCH_LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("NEWSFETCH_LOG_FORMAT", cfg.Log.Format)
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that the configuration can drive a pipeline run.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return errors.New("at least one source URL is required")
	}
	for _, src := range c.Sources {
		if strings.TrimSpace(src) == "" {
			return errors.New("source URLs must not be empty")
		}
	}
	if c.OutputPath == "" {
		return errors.New("output_path is required")
	}
	if c.Publish.DVCBin == "" || c.Publish.GitBin == "" {
		return errors.New("publish.dvc_bin and publish.git_bin are required")
	}
	if c.Schedule != "" {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", c.Schedule, err)
		}
	}
	return nil
}
