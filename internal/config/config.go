// Package config loads the extraction pipeline's configuration from
// environment variables, optionally layered under a YAML file for the
// settings that are more comfortably edited as a file than exported
// shell variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds everything cmd/etymograph-extract needs to wire up a run
// of the pipeline.
type Config struct {
	// Environment selects the zap logger preset (internal/observability).
	Environment string
	LogLevel    string

	// IndexDatabaseURL, when set, backs the Lexicon's external dense
	// index with Postgres; when empty the Lexicon starts empty.
	IndexDatabaseURL string

	// LanguageTreeFile points at a JSON file of [older, newer] language
	// code pairs used to build the historical-swap ancestry tree.
	// Empty disables the swap rule (graphstore.New accepts a nil tree).
	LanguageTreeFile string

	// GlossModelFile points at a pre-fit glossmatch.Model JSON file.
	// Empty disables gloss disambiguation (resolver falls through to its
	// qualifier and first-homonym fallbacks).
	GlossModelFile string

	// BatchSize is loaded and validated (it must be positive); no
	// component in this module reads it.
	BatchSize int

	// EnableDescendants toggles the Descendants section extractor,
	// matching the teacher's feature-flag idiom for optional subsystems.
	EnableDescendants bool
}

// fileOverrides holds the subset of Config that may also be supplied via
// a YAML file, layered beneath environment variables (env wins).
type fileOverrides struct {
	LanguageTreeFile string `yaml:"language_tree_file"`
	GlossModelFile   string `yaml:"gloss_model_file"`
	BatchSize        int    `yaml:"batch_size"`
}

// Load builds a Config from environment variables, optionally layering
// in a YAML file named by ETYMOGRAPH_CONFIG_FILE first.
func Load() (*Config, error) {
	cfg := &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		IndexDatabaseURL:  getEnv("INDEX_DATABASE_URL", getEnv("DATABASE_URL", "")),
		LanguageTreeFile:  getEnv("LANGUAGE_TREE_FILE", ""),
		GlossModelFile:    getEnv("GLOSS_MODEL_FILE", ""),
		BatchSize:         getEnvInt("BATCH_SIZE", 500),
		EnableDescendants: getEnvBool("ENABLE_DESCENDANTS", true),
	}

	if path := os.Getenv("ETYMOGRAPH_CONFIG_FILE"); path != "" {
		if err := applyFileOverrides(cfg, path); err != nil {
			return nil, fmt.Errorf("config: load file overrides: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFileOverrides fills in fields the environment left at their zero
// value from the YAML file at path. Environment variables always win.
func applyFileOverrides(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var overrides fileOverrides
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return err
	}
	if cfg.LanguageTreeFile == "" {
		cfg.LanguageTreeFile = overrides.LanguageTreeFile
	}
	if cfg.GlossModelFile == "" {
		cfg.GlossModelFile = overrides.GlossModelFile
	}
	if overrides.BatchSize != 0 && os.Getenv("BATCH_SIZE") == "" {
		cfg.BatchSize = overrides.BatchSize
	}
	return nil
}

// Validate checks invariants that must hold regardless of source.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("config: BATCH_SIZE must be positive, got %d", c.BatchSize)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	return v == "true" || v == "1" || v == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}
