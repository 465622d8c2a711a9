package api

// TokenRequest asks for a bridge client token.
type TokenRequest struct {
	ClientID string `json:"client_id"`
}

// TokenResponse carries the signed token.
type TokenResponse struct {
	Token    string `json:"token"`
	ClientID string `json:"client_id"`
}

// ErrorResponse is the generic API error shape.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
