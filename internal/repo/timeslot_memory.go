package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"interview-scheduler/internal/domain"
)

// TimeSlotMemoryRepo 进程内存储（store.driver=memory），用于本地演示和测试
type TimeSlotMemoryRepo struct {
	mu    sync.RWMutex
	slots map[string]domain.TimeSlot
}

func NewTimeSlotMemoryRepo() *TimeSlotMemoryRepo {
	return &TimeSlotMemoryRepo{slots: make(map[string]domain.TimeSlot)}
}

func (r *TimeSlotMemoryRepo) List(_ context.Context, hrID string) ([]domain.TimeSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.TimeSlot, 0)
	for _, s := range r.slots {
		if s.HRID == hrID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *TimeSlotMemoryRepo) FindByID(_ context.Context, id string) (*domain.TimeSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (r *TimeSlotMemoryRepo) FindOverlap(_ context.Context, hrID string, start, end time.Time, excludeID string) (*domain.TimeSlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id, s := range r.slots {
		if s.HRID != hrID || id == excludeID {
			continue
		}
		if domain.Overlaps(s.StartTime, s.EndTime, start, end) {
			return &s, nil
		}
	}
	return nil, nil
}

func (r *TimeSlotMemoryRepo) Insert(_ context.Context, s *domain.TimeSlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.slots[s.ID]; ok {
		return domain.ErrDuplicateID
	}
	r.slots[s.ID] = *s
	return nil
}

func (r *TimeSlotMemoryRepo) FindAndUpdate(_ context.Context, id string, p domain.SlotPatch) (*domain.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p.Apply(&s)
	r.slots[id] = s
	return &s, nil
}

func (r *TimeSlotMemoryRepo) FindAndDelete(_ context.Context, id string) (*domain.TimeSlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(r.slots, id)
	return &s, nil
}
