package handlers

// ErrorResponse is the shared JSON error shape for the listing proxies.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
