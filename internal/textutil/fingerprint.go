package textutil

import (
	"math"
	"strings"
	"unicode"
)

// Fingerprint represents a term-frequency vector for text similarity
// comparison.
type Fingerprint struct {
	tokens map[string]float64
	norm   float64
}

// NewFingerprint creates a fingerprint from the provided text. Returns nil if
// the text produces no valid tokens.
func NewFingerprint(text string) *Fingerprint {
	return fromCounts(countTokens(Tokenize(text)))
}

// NewFingerprintFromTokens builds a fingerprint from pre-split tokens, e.g. a
// category's configured keyword list. Multi-word keywords are tokenized
// individually.
func NewFingerprintFromTokens(tokens []string) *Fingerprint {
	flattened := make([]string, 0, len(tokens))
	for _, token := range tokens {
		flattened = append(flattened, Tokenize(token)...)
	}
	return fromCounts(countTokens(flattened))
}

func countTokens(tokens []string) map[string]float64 {
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]float64, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	return counts
}

func fromCounts(counts map[string]float64) *Fingerprint {
	if len(counts) == 0 {
		return nil
	}
	var norm float64
	for _, count := range counts {
		norm += count * count
	}
	return &Fingerprint{tokens: counts, norm: math.Sqrt(norm)}
}

// Tokenize splits text into lowercase tokens. Latin-script tokens shorter than
// two runes are dropped; CJK runes each become a single token.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	tokens := make([]string, 0, 16)
	var current strings.Builder
	var runes int
	flush := func() {
		if runes >= 2 {
			tokens = append(tokens, current.String())
		}
		current.Reset()
		runes = 0
	}
	for _, r := range lowered {
		switch {
		case unicode.Is(unicode.Han, r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			current.WriteRune(r)
			runes++
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// Cosine computes cosine similarity between two fingerprints in [0, 1].
func Cosine(a, b *Fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	smaller, larger := a, b
	if len(b.tokens) < len(a.tokens) {
		smaller, larger = b, a
	}
	var dot float64
	for token, count := range smaller.tokens {
		if other, ok := larger.tokens[token]; ok {
			dot += count * other
		}
	}
	return dot / (a.norm * b.norm)
}

// WithIDF returns a new fingerprint with TF-IDF weights applied. Terms absent
// from the IDF map retain their original weight; the norm is recomputed.
func (f *Fingerprint) WithIDF(idf map[string]float64) *Fingerprint {
	if f == nil || len(idf) == 0 {
		return f
	}
	weighted := make(map[string]float64, len(f.tokens))
	for token, count := range f.tokens {
		w := count
		if idfVal, ok := idf[token]; ok {
			w *= idfVal
		}
		if w == 0 {
			continue
		}
		weighted[token] = w
	}
	return fromCounts(weighted)
}

// Corpus collects document frequency statistics for IDF computation.
type Corpus struct {
	docCount int
	docFreq  map[string]int
}

// NewCorpus creates an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{docFreq: make(map[string]int)}
}

// Add registers a fingerprint's unique terms in the corpus.
func (c *Corpus) Add(fp *Fingerprint) {
	if c == nil || fp == nil {
		return
	}
	c.docCount++
	for token := range fp.tokens {
		c.docFreq[token]++
	}
}

// IDF computes inverse document frequency weights, log((N+1)/(1+df)) per term.
func (c *Corpus) IDF() map[string]float64 {
	if c == nil || c.docCount == 0 {
		return nil
	}
	idf := make(map[string]float64, len(c.docFreq))
	n := float64(c.docCount)
	for term, df := range c.docFreq {
		idf[term] = math.Log((n + 1) / (1 + float64(df)))
	}
	return idf
}
