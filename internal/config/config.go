package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"

	"github.com/dgallion1/reportgest/internal/chunker"
	"github.com/dgallion1/reportgest/internal/jsonblock"
	"github.com/dgallion1/reportgest/internal/record"
)

// AppName names the data directory.
const AppName = "reportgest"

type Config struct {
	Port string

	// Auth
	APIKey string

	LogLevel string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Per-document extraction bound
	DocTimeout time.Duration

	// Storage
	DataDir string
	DBPath  string

	// Extraction
	PhrasesFile string
	JSONScan    jsonblock.Mode
	CellLimit   int
	Fixed       record.Fixed

	// Downstream catalog
	CatalogURL    string
	CatalogAPIKey string

	// PDF
	PDFFallbackPdftotext bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first; variables already set win.
func Load() Config {
	_ = godotenv.Load()

	def := record.DefaultFixed()
	dataDir := envOr("DATA_DIR", XDGDataDir())

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("REPORTGEST_API_KEY"),

		LogLevel: envOr("LOG_LEVEL", "info"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL:     envDuration("JOB_TTL", 1*time.Hour),
		DocTimeout: envDuration("DOC_TIMEOUT", 30*time.Second),

		DataDir: dataDir,
		DBPath:  envOr("DB_PATH", filepath.Join(dataDir, "records.db")),

		PhrasesFile: os.Getenv("PHRASES_FILE"),
		JSONScan:    jsonblock.ParseMode(os.Getenv("JSON_SCAN")),
		CellLimit:   envInt("CELL_LIMIT", chunker.DefaultCellLimit),
		Fixed: record.Fixed{
			Segmentation:    def.Segmentation,
			Currency:        envOr("CURRENCY", def.Currency),
			SinglePrice:     envInt("SINGLE_PRICE", def.SinglePrice),
			CorporatePrice:  envInt("CORPORATE_PRICE", def.CorporatePrice),
			EnterprisePrice: envInt("ENTERPRISE_PRICE", def.EnterprisePrice),
			BaseYear:        envOr("BASE_YEAR", def.BaseYear),
			History:         envOr("HISTORY_RANGE", def.History),
		},

		CatalogURL:    os.Getenv("CATALOG_URL"),
		CatalogAPIKey: os.Getenv("CATALOG_API_KEY"),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.DocTimeout <= 0 {
		cfg.DocTimeout = 30 * time.Second
	}
	if cfg.CellLimit <= 0 || cfg.CellLimit > chunker.DefaultCellLimit {
		cfg.CellLimit = chunker.DefaultCellLimit
	}

	return cfg
}

// Validate checks the settings the HTTP server cannot run without.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("REPORTGEST_API_KEY is required")
	}
	if c.CatalogURL != "" && c.CatalogAPIKey == "" {
		return fmt.Errorf("CATALOG_API_KEY is required when CATALOG_URL is set")
	}
	return nil
}

// RecordOptions builds assembler options from the config, loading the phrase
// file when one is configured.
func (c Config) RecordOptions() (record.Options, error) {
	phrases, err := LoadPhrases(c.PhrasesFile)
	if err != nil {
		return record.Options{}, err
	}
	opts := record.DefaultOptions()
	opts.Phrases = phrases
	opts.Fixed = c.Fixed
	opts.JSONMode = c.JSONScan
	opts.CellLimit = c.CellLimit
	return opts, nil
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// XDGDataDir returns the per-user data directory, e.g.
// ~/.local/share/reportgest on Linux.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
