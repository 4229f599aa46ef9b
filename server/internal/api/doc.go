// Package api implements the HTTP surface of the usage service.
//
// New(service, gatherer) returns an http.Handler that serves:
//
//	GET /usage    : {"usage": [UsageResponse...]} for the current period
//	GET /usage/   : same as /usage
//	GET /         : pointer to /usage
//	GET /healthz  : liveness, no upstream call
//	GET /metrics  : Prometheus text exposition
//
// JSON endpoints respond with Content-Type: application/json, return 405 for
// non-GET methods and 404 for unknown paths. /usage always answers 200: an
// unavailable upstream yields an empty list. report_name is omitted, not
// null, when a message has no report.
//
// JSON types are defined in types.go. No external HTTP framework is used.
package api
