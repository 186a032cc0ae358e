package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

type Config struct {
	CSVURL      string        `envconfig:"ADS_CSV_URL" validate:"required,url"`
	SinkURL     string        `envconfig:"SINK_URL" validate:"omitempty,url"`
	SinkSecret  string        `envconfig:"SINK_SECRET"`
	Port        string        `envconfig:"PORT" default:"8080" validate:"required,numeric"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s" validate:"gte=0"`
	MaxCSVBytes int64         `envconfig:"MAX_CSV_BYTES" default:"33554432" validate:"gt=0"`
	LogLevelRaw string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogLevel    slog.Level    `ignored:"true"`
	TopKeywords int           `envconfig:"TOP_KEYWORDS" default:"10" validate:"gte=0"`
	MemoEntries int64         `envconfig:"MEMO_MAX_ENTRIES" default:"64" validate:"gt=0"`
	RateLimit   RateLimit
	ColumnsFile string `envconfig:"CSV_COLUMNS_FILE"`
	Columns     Columns
}

type RateLimit struct {
	RPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"50" validate:"gte=0"`
	Burst int     `envconfig:"RATE_LIMIT_BURST" default:"100" validate:"gte=0"`
}

// Columns names the CSV header of each record field. The source spreadsheet
// owns these names, so they are configuration rather than constants.
type Columns struct {
	Date        string `yaml:"date" envconfig:"CSV_COL_DATE" default:"Date"`
	Campaign    string `yaml:"campaign" envconfig:"CSV_COL_CAMPAIGN" default:"Campaign"`
	Keyword     string `yaml:"keyword" envconfig:"CSV_COL_KEYWORD" default:"Keyword"`
	Impressions string `yaml:"impressions" envconfig:"CSV_COL_IMPRESSIONS" default:"Impressions"`
	Clicks      string `yaml:"clicks" envconfig:"CSV_COL_CLICKS" default:"Clicks"`
	Cost        string `yaml:"cost" envconfig:"CSV_COL_COST" default:"Cost"`
	Conversions string `yaml:"conversions" envconfig:"CSV_COL_CONVERSIONS" default:"Conversions"`
}

func DefaultColumns() Columns {
	return Columns{
		Date:        "Date",
		Campaign:    "Campaign",
		Keyword:     "Keyword",
		Impressions: "Impressions",
		Clicks:      "Clicks",
		Cost:        "Cost",
		Conversions: "Conversions",
	}
}

// Names returns the header names in positional order.
func (c Columns) Names() []string {
	return []string{c.Date, c.Campaign, c.Keyword, c.Impressions, c.Clicks, c.Cost, c.Conversions}
}

func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, fmt.Errorf("load config from env: %w", err)
	}
	if cfg.ColumnsFile != "" {
		cols, err := loadColumns(cfg.ColumnsFile, cfg.Columns)
		if err != nil {
			return cfg, err
		}
		cfg.Columns = cols
	}
	cfg.LogLevel = parseLevel(cfg.LogLevelRaw)
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadColumns overlays a YAML column mapping on top of base; keys missing
// from the file keep their base value.
func loadColumns(path string, base Columns) (Columns, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read columns file: %w", err)
	}
	var file Columns
	if err := yaml.Unmarshal(b, &file); err != nil {
		return base, fmt.Errorf("parse columns file: %w", err)
	}
	out := base
	overlay(&out.Date, file.Date)
	overlay(&out.Campaign, file.Campaign)
	overlay(&out.Keyword, file.Keyword)
	overlay(&out.Impressions, file.Impressions)
	overlay(&out.Clicks, file.Clicks)
	overlay(&out.Cost, file.Cost)
	overlay(&out.Conversions, file.Conversions)
	return out, nil
}

func overlay(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
