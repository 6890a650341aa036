package sessions

import "time"

// Session associates an unguessable token with an authenticated username.
// Sessions live until explicit logout; the in-memory store additionally dies
// with the process. No TTL is enforced for memory-backed sessions.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}
