// Package tasks runs long operations over the cached uploads with real-time progress reporting.
//
// # Bulk Export
//
// [BulkExport] writes a report for each upload using a small worker pool:
//   - markdown: {dir}/{id}/README.md plus one PNG per chart
//   - csv: {dir}/{id}_types.csv and {dir}/{id}_summary.json
//   - text, json, yaml: {dir}/{id}.{ext}, with PNG charts when requested
//
// Failures are collected per upload and the outcome is written to {dir}/export_manifest.json.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
