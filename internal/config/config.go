package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete configuration of the accounting core. Values come
// from an optional YAML file overridden by MADARIS_* environment variables.
type Config struct {
	Remote  RemoteConfig  `yaml:"remote" envconfig:"REMOTE"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Cards   CardsConfig   `yaml:"cards" envconfig:"CARDS"`
	Vendor  VendorConfig  `yaml:"vendor" envconfig:"VENDOR"`
	DB      DBConfig      `yaml:"db" envconfig:"DB"`
}

// RemoteConfig describes the hosted row store backing the licenses table.
type RemoteConfig struct {
	BaseURL        string        `yaml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
	APIKey         string        `yaml:"api_key" envconfig:"API_KEY" validate:"required"`
	LookupTimeout  time.Duration `yaml:"lookup_timeout" envconfig:"LOOKUP_TIMEOUT"`
	UpdateTimeout  time.Duration `yaml:"update_timeout" envconfig:"UPDATE_TIMEOUT"`
	CheckinTimeout time.Duration `yaml:"checkin_timeout" envconfig:"CHECKIN_TIMEOUT"`
}

// PathsConfig carries the single configurable root; everything else is
// derived by Paths (paths.go).
type PathsConfig struct {
	BaseDir string `yaml:"base_dir" envconfig:"BASE_DIR"`
}

// LoggingConfig controls the slog handler the host installs at startup.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// CardsConfig holds the ID-card grid defaults. Distances are millimetres.
type CardsConfig struct {
	GridCols     int     `yaml:"grid_cols" envconfig:"GRID_COLS" validate:"min=1,max=4"`
	GridRows     int     `yaml:"grid_rows" envconfig:"GRID_ROWS" validate:"min=1,max=8"`
	MarginX      float64 `yaml:"margin_x" envconfig:"MARGIN_X"`
	MarginY      float64 `yaml:"margin_y" envconfig:"MARGIN_Y"`
	SpacingX     float64 `yaml:"spacing_x" envconfig:"SPACING_X"`
	SpacingY     float64 `yaml:"spacing_y" envconfig:"SPACING_Y"`
	CutMarks     bool    `yaml:"cut_marks" envconfig:"CUT_MARKS"`
	TemplateFile string  `yaml:"template_file" envconfig:"TEMPLATE_FILE"`
}

// VendorConfig is the hard-coded vendor identity printed in receipt footers.
// It is configuration in name only; deployments never change it.
type VendorConfig struct {
	Name        string `yaml:"name" envconfig:"NAME"`
	Phones      string `yaml:"phones" envconfig:"PHONES"`
	Description string `yaml:"description" envconfig:"DESCRIPTION"`
}

// DBConfig is the relational store connection used by the query facade.
type DBConfig struct {
	DSN             string        `yaml:"dsn" envconfig:"DSN"`
	MaxOpenConns    int           `yaml:"max_open_conns" envconfig:"MAX_OPEN_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME"`
}

// defaultConfig seeds the built-in settings. Defaults live here instead of
// envconfig `default` tags: envconfig applies tag defaults to every field
// whose variable is unset, which would clobber values read from the file.
func defaultConfig() Config {
	return Config{
		Remote: RemoteConfig{
			LookupTimeout:  10 * time.Second,
			UpdateTimeout:  10 * time.Second,
			CheckinTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Cards: CardsConfig{
			GridCols: 2,
			GridRows: 4,
			MarginX:  12,
			MarginY:  15,
			SpacingX: 6,
			SpacingY: 6,
			CutMarks: true,
		},
		Vendor: VendorConfig{
			Name:        "شركة التقنية الحديثة",
			Phones:      "07700000000 - 07800000000",
			Description: "نظام حسابات المدارس الأهلية",
		},
		DB: DBConfig{
			MaxOpenConns:    5,
			ConnMaxLifetime: time.Hour,
		},
	}
}

// Load loads configuration in three layers: built-in defaults, the optional
// YAML file over them, then MADARIS_* environment variables over both. A
// missing file is not an error; the environment always wins.
func Load(configFile string) (*Config, error) {
	// Best-effort .env bootstrap so desktop installs can keep secrets
	// next to the executable.
	_ = godotenv.Load()

	cfg := defaultConfig()

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	if err := envconfig.Process("MADARIS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.applyBuiltins()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded configuration with struct tags plus the grid
// sanity rules the card engine depends on.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Cards.SpacingX < 0 || c.Cards.SpacingY < 0 {
		return fmt.Errorf("invalid configuration: card spacing must not be negative")
	}
	if c.Cards.MarginX < 0 || c.Cards.MarginY < 0 {
		return fmt.Errorf("invalid configuration: card margins must not be negative")
	}
	return nil
}

// FileExists reports whether path exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
