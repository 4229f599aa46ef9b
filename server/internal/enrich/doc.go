// Package enrich joins messages to their reports.
//
// Aggregator.Enrich schedules one report fetch per message that carries a
// report id (fetches are not de-duplicated), runs them with at most Limit in
// flight, waits for all of them and then attaches each fetched report to
// every message referencing that report id. Output order and length always
// match the input. A failed fetch leaves the message without a report.
package enrich
