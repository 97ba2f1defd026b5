// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type AuctionConfig struct {
	// LockTTL is how long a round finalization lease may be held before the
	// reaper clears it.
	LockTTL time.Duration `yaml:"lock_ttl"`
	// ExpirySweepCron drives the job that moves overdue manual rounds to
	// expired_pending_finalization.
	ExpirySweepCron string `yaml:"expiry_sweep_cron"`
	// LockReaperCron drives the stale-lease reaper.
	LockReaperCron string `yaml:"lock_reaper_cron"`
}

type EmailConfig struct {
	Enabled          bool   `yaml:"enabled"`
	Region           string `yaml:"region"`
	Sender           string `yaml:"sender"`
	CommitteeAddress string `yaml:"committee_address"`
	AccessKeyID      string `yaml:"-"` // Loaded from environment
	SecretAccessKey  string `yaml:"-"` // Loaded from environment
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
	} `yaml:"app"`

	Database DatabaseConfig `yaml:"database"`
	Auction  AuctionConfig  `yaml:"auction"`
	Email    EmailConfig    `yaml:"email"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	// Read and parse YAML config
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Load sensitive values from environment
	cfg.Email.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

	cfg.applyDefaults()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Auction.LockTTL == 0 {
		c.Auction.LockTTL = 5 * time.Minute
	}
	if c.Auction.ExpirySweepCron == "" {
		c.Auction.ExpirySweepCron = "* * * * *"
	}
	if c.Auction.LockReaperCron == "" {
		c.Auction.LockReaperCron = "*/5 * * * *"
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Auction.LockTTL < time.Minute {
		return fmt.Errorf("auction lock TTL must be at least one minute")
	}

	if c.Email.Enabled {
		if c.Email.Region == "" || c.Email.Sender == "" {
			return fmt.Errorf("email region and sender are required when email is enabled")
		}
		if c.Email.CommitteeAddress == "" {
			return fmt.Errorf("committee address is required when email is enabled")
		}
	}

	return nil
}
