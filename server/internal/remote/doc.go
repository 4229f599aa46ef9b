// Package remote is the client for the upstream messages/reports source.
//
//	GET {base_url}/messages/current-period  -> {"messages": [...]}
//	GET {base_url}/reports/{id}             -> report object, non-200 when unknown
//
// Both operations report failure as an absent value (ok == false) plus a log
// line, never as an error: a report that does not exist is an expected
// outcome. Payloads are validated before use and a single invalid message
// rejects the whole batch.
//
// New builds one *http.Client per Client so connections are pooled across
// requests. Authentication (API key, bearer, basic, mTLS) is injected by
// authRoundTripper in transport.go. An optional token bucket limits the
// outbound request rate.
package remote
