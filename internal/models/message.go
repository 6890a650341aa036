package models

import "time"

// Message is a broadcast text message, keyed by an opaque message ID.
type Message struct {
	Content   string    `json:"content"`
	PostedBy  string    `json:"postedBy"`
	CreatedAt time.Time `json:"createdAt"`
}
