// Package types defines the in-memory domain types shared by the remote
// client, the enrichment aggregator and the usage projection. All values are
// request-scoped and treated as immutable once fetched.
package types
