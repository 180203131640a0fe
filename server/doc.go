// Package server provides the snapstudy HTTP server: Gin behind a root
// ServeMux, served with HTTP/2 cleartext (h2c) support.
//
// The server follows the component pattern with lifecycle management and
// a fixed middleware stack (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: X-Request-Id generation, propagated into the log context
//   - Metrics: in-flight and completed request counters
//   - CORS: the local frontend origins by default
//   - RateLimit: optional per-IP limit on /upload
//   - BodySizeLimit: 500MB upload cap
//   - RequestLogger: request/response logging with duration
//
// Routes (server/endpoint):
//
//   - POST /upload: run the pipeline on a multipart file
//   - GET /health: toolchain and capability health
//   - GET /info, GET /version: build information
//   - POST /admin/capabilities/reset: development only
package server
