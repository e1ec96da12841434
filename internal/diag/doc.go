// Package diag defines the diagnostic model shared by the lexer, the
// preprocessor, and the driver.
//
// Diagnostic is the central record: severity, stable code, message, primary
// span, optional notes. Producers emit through a Reporter so they stay
// decoupled from storage; BagReporter aggregates into a Bag, which supports
// sorting and deduplication for deterministic CLI output. Rendering lives in
// internal/diagfmt.
package diag
