package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// AI contains the ensemble fusion and calibration settings.
type AI struct {
	ConfidenceThreshold float64            `toml:"confidence_threshold"`
	CacheSize           int                `toml:"cache_size"`
	FastPath            bool               `toml:"fast_path"`
	FastPathThreshold   float64            `toml:"fast_path_threshold"`
	BoostFactor         float64            `toml:"boost_factor"`
	BoostTrigger        float64            `toml:"boost_trigger"`
	UseBayes            bool               `toml:"use_bayes"`
	UseSemantic         bool               `toml:"use_semantic"`
	UseProfile          bool               `toml:"use_profile"`
	UseLLM              bool               `toml:"use_llm"`
	MethodWeights       map[string]float64 `toml:"method_weights"`
}

// LLM contains connection settings for the optional external classifier.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	RequestsPerMin int    `toml:"requests_per_min"`
}

// Store contains history database configuration.
type Store struct {
	Path string `toml:"path"`
}

// Batch contains worker pool configuration for bulk classification.
type Batch struct {
	Workers int `toml:"workers"`
}

// RuleSpec is one configuration-authored matcher. Match selects the matcher
// kind; the remaining fields apply as documented per kind.
type RuleSpec struct {
	Match              string   `toml:"match"`
	Keywords           []string `toml:"keywords"`
	Weight             float64  `toml:"weight"`
	MustNotContain     []string `toml:"must_not_contain"`
	SplitByPathSegment int      `toml:"split_by_path_segment"`
}

// RuleGroup holds the rules targeting a single category, with an optional
// per-group minimum score override.
type RuleGroup struct {
	MinScore float64    `toml:"min_score"`
	Rules    []RuleSpec `toml:"rules"`
}

// Rules contains the full rule engine configuration.
type Rules struct {
	ProcessingOrder []string             `toml:"processing_order"`
	MinScore        float64              `toml:"min_score"`
	Categories      map[string]RuleGroup `toml:"categories"`
}

// VocabEntry maps a canonical term to its accepted variants.
type VocabEntry struct {
	Preferred string   `toml:"preferred"`
	Variants  []string `toml:"variants"`
}

// Taxonomy contains the controlled vocabularies for subjects and resource
// types.
type Taxonomy struct {
	Subjects      []VocabEntry `toml:"subjects"`
	ResourceTypes []VocabEntry `toml:"resource_types"`
}

// Config is the root configuration structure.
type Config struct {
	Logging  Logging  `toml:"logging"`
	AI       AI       `toml:"ai"`
	LLM      LLM      `toml:"llm"`
	Store    Store    `toml:"store"`
	Batch    Batch    `toml:"batch"`
	Rules    Rules    `toml:"rules"`
	Taxonomy Taxonomy `toml:"taxonomy"`
}

// SampleConfig returns the embedded, commented sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/tidymark/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file is
// not an error; defaults apply. The returned bool reports whether a file was
// actually read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("tidymark.toml")
	if err == nil {
		if _, statErr := os.Stat(projectPath); statErr == nil {
			return projectPath, true, nil
		}
	}

	if _, err := os.Stat(defaultPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaultPath, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return defaultPath, true, nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves ~ and relative segments to an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path cannot be empty")
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		if trimmed == "~" {
			trimmed = home
		} else {
			trimmed = filepath.Join(home, trimmed[2:])
		}
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", trimmed, err)
	}
	return abs, nil
}
