// Package tasks orchestrates a roster split with real-time progress reporting.
//
// # Core Operations
//
// [SplitEngine] exposes three operations:
//
//  1. [SplitEngine.Extract] : Spreadsheet bytes → classified batch
//     - Reads the first worksheet (or CSV) into a grid of tagged cells
//     - Classifies every row into faculty, student or other
//     - Fails as a whole; no partial batch is returned
//
//  2. [SplitEngine.ExportBatch] : Batch → one file per category
//     - Runs the three category exports concurrently
//     - A failed category does not stop the others
//     - Returns per-category results in faculty, student, other order
//
//  3. [SplitEngine.Run] : Extract followed by ExportBatch
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Export History
//
// The optional [ExportRecorder] interface stores each category outcome (repositories.ExportLedger).
// Recording happens on the collecting goroutine, so recorders need not be safe for concurrent use.
// Recorder failures are logged and never fail the export.
package tasks
