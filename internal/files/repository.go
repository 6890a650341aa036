package files

import (
	"errors"

	"github.com/google/uuid"
	"github.com/teamconnect/go-services/internal/models"
	"github.com/teamconnect/go-services/internal/store"
)

// ErrNotFound is returned when a file ID is absent from the collection.
var ErrNotFound = errors.New("file not found")

// Repository persists upload metadata in the shared document store, keyed by
// an opaque random ID.
type Repository struct {
	store *store.Store
}

func NewRepository(s *store.Store) *Repository {
	return &Repository{store: s}
}

// Get returns the record for id, or ErrNotFound.
func (r *Repository) Get(id string) (*models.File, error) {
	recs := map[string]models.File{}
	r.store.Load(store.Files, &recs)
	f, ok := recs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &f, nil
}

// All returns every file record keyed by ID.
func (r *Repository) All() (map[string]models.File, error) {
	recs := map[string]models.File{}
	r.store.Load(store.Files, &recs)
	return recs, nil
}

// Put stores rec under a freshly minted ID and returns it.
func (r *Repository) Put(rec models.File) (string, error) {
	id := uuid.NewString()
	recs := map[string]models.File{}
	err := r.store.Update(store.Files, &recs, func() error {
		recs[id] = rec
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes the record for id, or reports ErrNotFound.
func (r *Repository) Delete(id string) error {
	recs := map[string]models.File{}
	return r.store.Update(store.Files, &recs, func() error {
		if _, ok := recs[id]; !ok {
			return ErrNotFound
		}
		delete(recs, id)
		return nil
	})
}
