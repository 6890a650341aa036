package models

import "time"

// Snippet is a shared code snippet, keyed by an opaque snippet ID.
type Snippet struct {
	Title      string    `json:"title"`
	Code       string    `json:"code"`
	Language   string    `json:"language"`
	PostedBy   string    `json:"postedBy"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}
