package models

import "time"

// ActivityEntry is one immutable line of the audit trail. Entries are only
// ever appended; insertion order is the persisted order.
type ActivityEntry struct {
	Username     string    `json:"username"`
	Operation    string    `json:"operation"`
	ResourceName string    `json:"resourceName"`
	ResourceType string    `json:"resourceType"`
	Timestamp    time.Time `json:"timestamp"`
}
