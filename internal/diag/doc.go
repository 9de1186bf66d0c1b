// Package diag defines the diagnostic model shared by all expansion phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture
//     findings produced by attribute resolution, scheduling, macro
//     invocation, hygiene validation and merging.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting, IO, CLI integration, or
// interactive behaviour. Rendering responsibilities live in
// internal/diagfmt; orchestration lives in internal/driver.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//
// Notes should be used sparingly: each note must add new context (e.g.
// "declaration produced here") rather than repeating the diagnostic message.
//
// All failure classes of the expansion engine are diagnostics, never bare
// errors: a failed occurrence reports and yields zero fragments, while
// sibling occurrences proceed. Batch-fatal classes (dependency cycles,
// non-terminating feedback) are still reported through the same channel;
// the engine discards the batch instead of escalating a Go error.
package diag
