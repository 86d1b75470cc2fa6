package main

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"tidymark/internal/bayes"
	"tidymark/internal/classify"
	"tidymark/internal/config"
	"tidymark/internal/logging"
	"tidymark/internal/profile"
	"tidymark/internal/store"
)

// commandContext lazily shares configuration, logging, and the history store
// across subcommands.
type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		// A local .env may carry the LLM API key; absence is fine.
		_ = godotenv.Load()

		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("TIDYMARK_LLM_API_KEY")
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var buildErr error
	c.loggerOnce.Do(func() {
		level := cfg.Logging.Level
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			level = strings.TrimSpace(*c.logLevelFlag)
		}
		format := cfg.Logging.Format
		if c.logFormatFlag != nil && strings.TrimSpace(*c.logFormatFlag) != "" {
			format = strings.TrimSpace(*c.logFormatFlag)
		}
		c.logger, buildErr = logging.New(logging.Options{
			Level:  level,
			Format: format,
			Writer: os.Stderr,
		})
	})
	if buildErr != nil {
		return nil, buildErr
	}
	return c.logger, nil
}

// openStore opens the history database at the configured path.
func (c *commandContext) openStore() (*store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	path, err := config.ExpandPath(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	return store.Open(path)
}

// buildClassifier assembles a classifier seeded from history. A nil store
// skips the learned methods' warm start; they abstain until they see data.
func (c *commandContext) buildClassifier(ctx context.Context, s *store.Store) (*classify.Classifier, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	var opts []classify.Option
	if s != nil {
		if cfg.AI.UseProfile {
			counts, err := s.CategoryCountsByDomain(ctx)
			if err != nil {
				return nil, err
			}
			scorer := profile.NewScorer(logger)
			scorer.ObserveCounts(counts)
			opts = append(opts, classify.WithProfile(scorer))
		}
		if cfg.AI.UseBayes {
			records, err := s.Classified(ctx, 0)
			if err != nil {
				return nil, err
			}
			classifier := bayes.NewClassifier(logger)
			classifier.Fit(trainingSamples(records))
			opts = append(opts, classify.WithBayes(classifier))
		}
	}

	return classify.New(cfg, logger, opts...)
}

func trainingSamples(records []store.Record) []bayes.Sample {
	samples := make([]bayes.Sample, 0, len(records))
	for _, record := range records {
		samples = append(samples, bayes.Sample{
			Features: featuresFor(record),
			Category: record.Category,
		})
	}
	return samples
}
