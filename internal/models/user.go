package models

// UserInfo is the users collection document, keyed by a generated id.
type UserInfo struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"password_hash"`
	Nickname     string  `json:"nickname"`
	Height       float64 `json:"height"`
	Weight       float64 `json:"weight"`
	CreatedAt    string  `json:"created_at"`
}

// SessionDoc is the blob persisted under the unkeyed "session" cache key.
// It survives restarts so the device can come back up signed in while
// offline.
type SessionDoc struct {
	User UserInfo `json:"user"`
}
