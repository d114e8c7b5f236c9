// Package models defines the domain types shared by the session, cache and presentation layers.
//
//   - [UploadSummary] : the locally held statistical digest of one uploaded CSV file
//   - [TypeStats] : per equipment type averages inside a summary
//   - [Status] / [Session] : authentication state and the opaque session token
//   - [Store] : the durable key/value capability injected into session and cache components
//
// Summaries are immutable once created and identified by ID. Server payloads never reach this package
// directly; the services package validates and converts them first.
package models
