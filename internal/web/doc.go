// Package web renders the read-only HTML dashboard of the local preview server.
//
// # Page Layout
//
// The page mirrors the TUI dashboard view:
//
//  1. Header: session status and number of cached uploads
//  2. Upload list: newest first, the selected upload marked, each linking to ?id={id}
//  3. Summary: file name, upload time, total records and the three overall averages
//  4. Breakdown: per-type count, share and averages
//  5. Charts: one image per chart kind, served by the server package under /charts/{id}/{kind}.png
//
// Routes
//
//	GET /          → dashboard for the selected upload (newest when nothing is selected)
//	GET /?id={id}  → dashboard for a specific cached upload, 404 when it is not cached
//
// The page never changes state; selection and uploads happen through the CLI or TUI.
package web
