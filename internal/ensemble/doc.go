// Package ensemble defines the common output contract every classification
// method produces and the fusion step that combines method votes into one
// confidence-bounded verdict. Fusion is agnostic to how any method derived its
// confidence; it only sees MethodResult values, per-method weights, and the
// configured confidence threshold. The pipeline driver runs methods in
// priority order with an optional high-confidence fast path that affects
// latency only.
package ensemble
