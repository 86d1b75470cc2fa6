// Package bayes implements a multinomial naive Bayes classifier over
// bookmark tokens. The model is trained from previously classified
// bookmarks and persisted as JSON alongside the history database.
package bayes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	"tidymark/internal/bookmark"
	"tidymark/internal/ensemble"
	"tidymark/internal/logging"
	"tidymark/internal/services"
	"tidymark/internal/textutil"
)

// minMargin is the posterior probability a class must reach before the
// classifier votes. Below this the evidence is too diffuse to be useful.
const minMargin = 0.4

// minDocuments is the smallest training set worth predicting from.
const minDocuments = 5

// model is the serialized form of the trained classifier.
type model struct {
	Documents   int                       `json:"documents"`
	ClassDocs   map[string]int            `json:"class_docs"`
	ClassTokens map[string]int            `json:"class_tokens"`
	TokenCounts map[string]map[string]int `json:"token_counts"`
	Vocabulary  map[string]struct{}       `json:"-"`
	VocabList   []string                  `json:"vocabulary"`
}

// Classifier predicts bookmark categories from token frequencies.
// Training and prediction must not run concurrently; the classify pipeline
// only reads, and retraining swaps the whole model.
type Classifier struct {
	m      model
	logger *slog.Logger
}

// NewClassifier creates an untrained classifier. It abstains until Fit or
// Load gives it a model.
func NewClassifier(logger *slog.Logger) *Classifier {
	return &Classifier{
		m: model{
			ClassDocs:   make(map[string]int),
			ClassTokens: make(map[string]int),
			TokenCounts: make(map[string]map[string]int),
			Vocabulary:  make(map[string]struct{}),
		},
		logger: logging.NewComponentLogger(logger, "bayes"),
	}
}

// Sample is one labeled training document.
type Sample struct {
	Features bookmark.Features
	Category string
}

// Fit replaces the model with one trained on samples. Samples labeled
// Unclassified are skipped.
func (c *Classifier) Fit(samples []Sample) {
	m := model{
		ClassDocs:   make(map[string]int),
		ClassTokens: make(map[string]int),
		TokenCounts: make(map[string]map[string]int),
		Vocabulary:  make(map[string]struct{}),
	}
	for _, sample := range samples {
		if sample.Category == "" || sample.Category == ensemble.Unclassified {
			continue
		}
		tokens := tokensFor(sample.Features)
		if len(tokens) == 0 {
			continue
		}
		m.Documents++
		m.ClassDocs[sample.Category]++
		counts, ok := m.TokenCounts[sample.Category]
		if !ok {
			counts = make(map[string]int)
			m.TokenCounts[sample.Category] = counts
		}
		for _, token := range tokens {
			counts[token]++
			m.ClassTokens[sample.Category]++
			m.Vocabulary[token] = struct{}{}
		}
	}
	c.m = m
	c.logger.Debug("model trained",
		logging.Int("documents", m.Documents),
		logging.Int("classes", len(m.ClassDocs)),
		logging.Int("vocabulary", len(m.Vocabulary)))
}

// Trained reports whether the model has enough documents to predict.
func (c *Classifier) Trained() bool {
	return c.m.Documents >= minDocuments && len(c.m.ClassDocs) >= 2
}

// Name implements ensemble.Method.
func (c *Classifier) Name() string { return ensemble.MethodBayes }

// Classify predicts the bookmark's category from its tokens. It abstains
// when the model is too small or no class clears the posterior margin.
func (c *Classifier) Classify(_ context.Context, features bookmark.Features) (ensemble.MethodResult, bool) {
	if !c.Trained() {
		return ensemble.MethodResult{}, false
	}
	tokens := tokensFor(features)
	if len(tokens) == 0 {
		return ensemble.MethodResult{}, false
	}

	vocabSize := float64(len(c.m.Vocabulary))
	totalDocs := float64(c.m.Documents)

	classes := make([]string, 0, len(c.m.ClassDocs))
	for class := range c.m.ClassDocs {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	// Log-space scores with Laplace smoothing, then softmax for a
	// comparable posterior.
	scores := make([]float64, len(classes))
	for i, class := range classes {
		score := math.Log(float64(c.m.ClassDocs[class]) / totalDocs)
		classTokens := float64(c.m.ClassTokens[class])
		counts := c.m.TokenCounts[class]
		for _, token := range tokens {
			score += math.Log((float64(counts[token]) + 1) / (classTokens + vocabSize))
		}
		scores[i] = score
	}

	maxScore := scores[0]
	for _, score := range scores[1:] {
		if score > maxScore {
			maxScore = score
		}
	}
	var sum float64
	for i := range scores {
		scores[i] = math.Exp(scores[i] - maxScore)
		sum += scores[i]
	}

	bestIdx := 0
	for i := range scores {
		if scores[i] > scores[bestIdx] {
			bestIdx = i
		}
	}
	posterior := scores[bestIdx] / sum
	if posterior < minMargin {
		return ensemble.MethodResult{}, false
	}

	return ensemble.MethodResult{
		Category:   classes[bestIdx],
		Confidence: posterior,
		Reasoning: []string{
			fmt.Sprintf("naive bayes posterior %.2f over %d classes", posterior, len(classes)),
		},
		Method: ensemble.MethodBayes,
	}, true
}

// Save writes the model as JSON.
func (c *Classifier) Save(path string) error {
	c.m.VocabList = make([]string, 0, len(c.m.Vocabulary))
	for token := range c.m.Vocabulary {
		c.m.VocabList = append(c.m.VocabList, token)
	}
	sort.Strings(c.m.VocabList)

	data, err := json.MarshalIndent(c.m, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrStore, "bayes", "save", "encode model", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrStore, "bayes", "save", "create model directory", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrStore, "bayes", "save", "write model file", err)
	}
	return nil
}

// Load reads a previously saved model. A missing file is not an error; the
// classifier simply stays untrained.
func (c *Classifier) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return services.Wrap(services.ErrStore, "bayes", "load", "read model file", err)
	}
	var m model
	if err := json.Unmarshal(data, &m); err != nil {
		return services.Wrap(services.ErrStore, "bayes", "load", "decode model file", err)
	}
	if m.ClassDocs == nil {
		m.ClassDocs = make(map[string]int)
	}
	if m.ClassTokens == nil {
		m.ClassTokens = make(map[string]int)
	}
	if m.TokenCounts == nil {
		m.TokenCounts = make(map[string]map[string]int)
	}
	m.Vocabulary = make(map[string]struct{}, len(m.VocabList))
	for _, token := range m.VocabList {
		m.Vocabulary[token] = struct{}{}
	}
	c.m = m
	return nil
}

func tokensFor(features bookmark.Features) []string {
	tokens := textutil.Tokenize(features.Title)
	tokens = append(tokens, textutil.Tokenize(features.Domain)...)
	for _, segment := range features.PathSegments {
		tokens = append(tokens, textutil.Tokenize(segment)...)
	}
	return tokens
}
