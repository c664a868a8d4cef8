// Package app wires the read-only dataset server: services, chi router,
// middleware chain and the HTTP server lifecycle.
//
// The server only reads what the last successful preprocessing run
// published under the output directory. Routes:
//
//	GET /api/health, /api/health/ready, /api/health/live, /api/version
//	GET /api/manifest
//	GET /api/data, /api/data/{name}
//	GET /metrics
//	GET /*            static dashboard, when the web directory exists
//
// Run blocks until SIGINT or SIGTERM and then shuts the server down
// gracefully, flushing telemetry providers.
package app
