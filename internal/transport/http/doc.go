// Package http implements the read-only HTTP surface over the published
// dataset. Handlers only parse requests and format responses; the dataset
// service resolves names through the manifest.
//
// # Routes
//
//	GET /api/health            liveness summary
//	GET /api/health/ready      503 until a manifest is published
//	GET /api/health/live       runtime details
//	GET /api/version           build information
//	GET /api/manifest          the published manifest.json
//	GET /api/data              tables named by the manifest
//	GET /api/data/{name}       the CSV whose manifest key is name
//	GET /metrics               prometheus exposition
//	GET /*                     static dashboard (when a web dir is configured)
//
// GET /api/data/{name}?format=json&limit=N returns a decoded preview
// instead of the raw CSV.
//
// # Error Handling
//
// Errors are rendered as RFC 7807 problem details by errors.ErrorHandler:
//
//	{
//	    "type": "/errors/not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "Table 'marketYearShark' not found",
//	    "instance": "/api/data/marketYearShark"
//	}
//
// A missing manifest is 503 (nothing published yet); a manifest that names a
// missing or unsafe file is 500.
package http
