package activity

import (
	"sort"
	"time"

	"github.com/teamconnect/go-services/internal/models"
	"github.com/teamconnect/go-services/internal/store"
)

// Log is the append-only audit trail. Entries are never mutated or removed;
// the persisted order is append order.
type Log struct {
	store *store.Store
}

func NewLog(s *store.Store) *Log {
	return &Log{store: s}
}

// Append records one action at the current time.
func (l *Log) Append(username, operation, resourceName, resourceType string) error {
	entries := []models.ActivityEntry{}
	return l.store.Update(store.ActivityLog, &entries, func() error {
		entries = append(entries, models.ActivityEntry{
			Username:     username,
			Operation:    operation,
			ResourceName: resourceName,
			ResourceType: resourceType,
			Timestamp:    time.Now().UTC(),
		})
		return nil
	})
}

// All returns the full trail in append order.
func (l *Log) All() ([]models.ActivityEntry, error) {
	entries := []models.ActivityEntry{}
	l.store.Load(store.ActivityLog, &entries)
	return entries, nil
}

// Recent returns up to limit entries, newest first. This is a read-side
// convenience; the persisted order stays append order.
func (l *Log) Recent(limit int) ([]models.ActivityEntry, error) {
	entries := []models.ActivityEntry{}
	l.store.Load(store.ActivityLog, &entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
