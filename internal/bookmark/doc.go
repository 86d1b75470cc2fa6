// Package bookmark defines the immutable feature record derived from a raw
// (url, title) pair and the pure extractor that produces it. Every
// classification method consumes the same Features value; nothing in this
// package performs I/O or keeps state.
package bookmark
