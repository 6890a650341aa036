package snippets

import (
	"errors"

	"github.com/google/uuid"
	"github.com/teamconnect/go-services/internal/models"
	"github.com/teamconnect/go-services/internal/store"
)

// ErrNotFound is returned when a snippet ID is absent from the collection.
var ErrNotFound = errors.New("snippet not found")

// Repository persists code snippets in the shared document store, keyed by an
// opaque random ID.
type Repository struct {
	store *store.Store
}

func NewRepository(s *store.Store) *Repository {
	return &Repository{store: s}
}

// Get returns the snippet for id, or ErrNotFound.
func (r *Repository) Get(id string) (*models.Snippet, error) {
	recs := map[string]models.Snippet{}
	r.store.Load(store.Snippets, &recs)
	sn, ok := recs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sn, nil
}

// All returns every snippet keyed by ID.
func (r *Repository) All() (map[string]models.Snippet, error) {
	recs := map[string]models.Snippet{}
	r.store.Load(store.Snippets, &recs)
	return recs, nil
}

// Put stores rec under a freshly minted ID and returns it.
func (r *Repository) Put(rec models.Snippet) (string, error) {
	id := uuid.NewString()
	recs := map[string]models.Snippet{}
	err := r.store.Update(store.Snippets, &recs, func() error {
		recs[id] = rec
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes the snippet for id, or reports ErrNotFound.
func (r *Repository) Delete(id string) error {
	recs := map[string]models.Snippet{}
	return r.store.Update(store.Snippets, &recs, func() error {
		if _, ok := recs[id]; !ok {
			return ErrNotFound
		}
		delete(recs, id)
		return nil
	})
}
