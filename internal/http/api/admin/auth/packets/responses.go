package packets

type LoginResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresIn int64  `json:"expires_in"` // seconds
}

// returned for session endpoints
type SessionResponse struct {
	Username        string `json:"username"`
	IsAuthenticated bool   `json:"is_authenticated"`
}
