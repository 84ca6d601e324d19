package model

// Session is the single signed-in operator record.
type Session struct {
	Username        string `json:"username"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}
