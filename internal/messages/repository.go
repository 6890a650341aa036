package messages

import (
	"errors"

	"github.com/google/uuid"
	"github.com/teamconnect/go-services/internal/models"
	"github.com/teamconnect/go-services/internal/store"
)

// ErrNotFound is returned when a message ID is absent from the collection.
var ErrNotFound = errors.New("message not found")

// Repository persists messages in the shared document store, keyed by an
// opaque random ID.
type Repository struct {
	store *store.Store
}

func NewRepository(s *store.Store) *Repository {
	return &Repository{store: s}
}

// Get returns the message for id, or ErrNotFound.
func (r *Repository) Get(id string) (*models.Message, error) {
	recs := map[string]models.Message{}
	r.store.Load(store.Messages, &recs)
	m, ok := recs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

// All returns every message keyed by ID.
func (r *Repository) All() (map[string]models.Message, error) {
	recs := map[string]models.Message{}
	r.store.Load(store.Messages, &recs)
	return recs, nil
}

// Put stores rec under a freshly minted ID and returns it.
func (r *Repository) Put(rec models.Message) (string, error) {
	id := uuid.NewString()
	recs := map[string]models.Message{}
	err := r.store.Update(store.Messages, &recs, func() error {
		recs[id] = rec
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}
