package service

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/salesight/backend-go/internal/dataset"
)

// DatasetEntry is one uploaded dataset held in memory, keyed by a generated
// ID. Warning carries the date-normalization notice when some timestamps were
// dropped during ingestion.
type DatasetEntry struct {
	ID         string    `json:"dataset_id"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
	Rows       int       `json:"rows"`
	Warning    string    `json:"warning,omitempty"`

	Dataset *dataset.Dataset `json:"-"`
}

// DatasetRegistry is the in-memory store of uploaded datasets. Entries live
// for the process lifetime; there is no persistence layer behind it.
type DatasetRegistry struct {
	mu      sync.RWMutex
	entries map[string]*DatasetEntry
}

func NewDatasetRegistry() *DatasetRegistry {
	return &DatasetRegistry{entries: make(map[string]*DatasetEntry)}
}

// Add stores a validated dataset and returns its entry with a fresh ID.
func (r *DatasetRegistry) Add(filename string, ds *dataset.Dataset, warning string) *DatasetEntry {
	entry := &DatasetEntry{
		ID:         uuid.New().String(),
		Filename:   filename,
		UploadedAt: time.Now().UTC(),
		Rows:       ds.Len(),
		Warning:    warning,
		Dataset:    ds,
	}

	r.mu.Lock()
	r.entries[entry.ID] = entry
	r.mu.Unlock()

	return entry
}

func (r *DatasetRegistry) Get(id string) (*DatasetEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	return entry, ok
}

// List returns entries newest first.
func (r *DatasetRegistry) List() []*DatasetEntry {
	r.mu.RLock()
	out := make([]*DatasetEntry, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out
}

func (r *DatasetRegistry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}
