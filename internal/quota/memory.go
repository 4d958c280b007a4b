package quota

import (
	"context"
	"sync"
	"time"

	"github.com/simorghai/simorgh-bot/internal/models"
)

type MemoryStore struct {
	mu      sync.Mutex
	limit   int
	now     func() time.Time
	records map[int64]*models.UsageRecord
}

func NewMemoryStore(limit int) *MemoryStore {
	return &MemoryStore{
		limit:   limit,
		now:     time.Now,
		records: make(map[int64]*models.UsageRecord),
	}
}

// record returns the user's usage record, creating it lazily and resetting
// the count when the stored day is not today. Must be called with mu held.
func (s *MemoryStore) record(userID int64) *models.UsageRecord {
	today := utcDay(s.now())

	rec, exists := s.records[userID]
	if !exists {
		rec = &models.UsageRecord{UserID: userID, Date: today}
		s.records[userID] = rec
		return rec
	}

	if !rec.Date.Equal(today) {
		rec.Date = today
		rec.Count = 0
	}
	return rec
}

func (s *MemoryStore) CheckLimit(ctx context.Context, userID int64) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.record(userID)
	remaining := s.limit - rec.Count
	if remaining < 0 {
		remaining = 0
	}
	return rec.Count < s.limit, remaining, nil
}

func (s *MemoryStore) IncrementUsage(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record(userID).Count++
	return nil
}

func (s *MemoryStore) Close() error {
	// Nothing to close for in-memory storage
	return nil
}

// utcDay truncates t to its UTC calendar day.
func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
