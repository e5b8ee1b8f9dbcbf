package types

// SuccessEnvelope wraps every 2xx payload. Warnings carries non-fatal notices
// (for example a priced-at-zero fallback during order reconciliation) without
// changing the response status.
type SuccessEnvelope struct {
	Data     any      `json:"data"`
	Warnings []string `json:"warnings,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
