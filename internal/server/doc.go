// Package server provides HTTP routing, middleware, and the JSON/PNG handlers of the local preview server.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses a chi mux internally, so routes may carry {param} segments. Unknown routes
// answer with a JSON error body.
//
// # Preview Endpoints
//
// [UploadsHandler] reads from an [UploadSource] (the dashboard) and never mutates it:
//
//	GET /api/status              → authentication flag, cached upload count, selection
//	GET /api/uploads             → cached summaries, newest first
//	GET /api/uploads/{id}        → one summary, 404 when not cached
//	GET /charts/{id}/{kind}.png  → rendered chart (distribution, flowrate, pressure, temperature)
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// [ListenAndServe] binds before reporting readiness, so ":0" can be used to pick a free port.
package server
