// Package textutil provides tokenization and term-frequency fingerprints for
// text similarity over bookmark titles and URLs.
//
// Tokenization lowercases input, splits on non-alphanumeric runs, and keeps
// each CJK rune as its own token so Chinese titles compare sensibly without a
// segmenter. Fingerprints are normalized term-frequency vectors compared by
// cosine similarity, optionally re-weighted with IDF statistics from a corpus.
package textutil
