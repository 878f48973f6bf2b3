package journal

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/heirloom/internal/server/models"
)

// MemoryRepository keeps the journal in process memory. It backs tests and
// throwaway development servers where durability does not matter.
type MemoryRepository struct {
	mu      sync.Mutex
	records []*models.JournalRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Append(_ context.Context, record *models.JournalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.records); n > 0 && record.Seq <= r.records[n-1].Seq {
		return fmt.Errorf("journal conflict: seq %d already present", record.Seq)
	}
	cp := *record
	cp.Body = append([]byte(nil), record.Body...)
	r.records = append(r.records, &cp)
	return nil
}

func (r *MemoryRepository) SelectAll(_ context.Context) ([]*models.JournalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.JournalRecord, len(r.records))
	copy(out, r.records)
	return out, nil
}
