package api

// UsageResponse is one entry of GET /usage.
type UsageResponse struct {
	MessageID   int64   `json:"message_id"`
	Timestamp   string  `json:"timestamp"`
	ReportName  *string `json:"report_name,omitempty"`
	CreditsUsed float64 `json:"credits_used"`
}

// UsageListResponse is the payload for GET /usage.
type UsageListResponse struct {
	Usage []UsageResponse `json:"usage"`
}

// rootResponse is the payload for GET /.
type rootResponse struct {
	Message string `json:"message"`
}

// healthResponse is the payload for GET /healthz.
type healthResponse struct {
	Status string `json:"status"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
