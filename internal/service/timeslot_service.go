package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"interview-scheduler/internal/core/cache"
	"interview-scheduler/internal/core/events"
	"interview-scheduler/internal/core/lock"
	"interview-scheduler/internal/domain"
	"interview-scheduler/pkg/utils"
)

type CreateInput struct {
	HRID          string
	StartTime     time.Time
	EndTime       time.Time
	CandidateName *string
	InterviewType *string
}

// TimeSlotService 时间段业务：校验 → 按 hr_id 加锁 → 冲突检查 → 写库 → 失效缓存 + 发事件
type TimeSlotService struct {
	store    domain.SlotStore
	locker   lock.Locker
	log      *zap.Logger
	cache    *cache.Cache
	cacheTTL time.Duration
	pub      events.Publisher
	newID    func() string
}

type Option func(*TimeSlotService)

func WithCache(c *cache.Cache, ttl time.Duration) Option {
	return func(s *TimeSlotService) { s.cache, s.cacheTTL = c, ttl }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *TimeSlotService) { s.pub = p }
}

func WithIDGenerator(f func() string) Option {
	return func(s *TimeSlotService) { s.newID = f }
}

func NewTimeSlotService(store domain.SlotStore, locker lock.Locker, l *zap.Logger, opts ...Option) *TimeSlotService {
	s := &TimeSlotService{
		store:  store,
		locker: locker,
		log:    l,
		pub:    &events.Dummy{},
		newID:  utils.NewID,
	}
	if s.locker == nil {
		s.locker = lock.NewLocal()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *TimeSlotService) List(ctx context.Context, hrID string) ([]domain.TimeSlot, error) {
	hrID = strings.TrimSpace(hrID)
	if hrID == "" {
		return nil, domain.Invalid("hr_id", "is required")
	}
	if s.cache == nil {
		return s.store.List(ctx, hrID)
	}
	return cache.GetOrLoadJSON(s.cache, ctx, s.cache.Key("hr", hrID), s.cacheTTL,
		func(ctx context.Context) ([]domain.TimeSlot, error) { return s.store.List(ctx, hrID) })
}

func (s *TimeSlotService) Create(ctx context.Context, in CreateInput) (*domain.TimeSlot, error) {
	in.HRID = strings.TrimSpace(in.HRID)
	if in.HRID == "" {
		return nil, domain.Invalid("hr_id", "is required")
	}
	start, end := domain.Normalize(in.StartTime), domain.Normalize(in.EndTime)
	if err := domain.ValidateRange(start, end); err != nil {
		return nil, err
	}
	slot := &domain.TimeSlot{
		ID:            s.newID(),
		HRID:          in.HRID,
		StartTime:     start,
		EndTime:       end,
		CandidateName: domain.NullIfEmpty(in.CandidateName),
		InterviewType: domain.NullIfEmpty(in.InterviewType),
	}

	err := s.withOwnerLock(ctx, slot.HRID, func() error {
		hit, err := s.store.FindOverlap(ctx, slot.HRID, slot.StartTime, slot.EndTime, "")
		if err != nil {
			return fmt.Errorf("check overlap: %w", err)
		}
		if hit != nil {
			s.conflict("create", slot.HRID, hit)
			return domain.ErrConflict
		}
		return s.store.Insert(ctx, slot)
	})
	if err != nil {
		s.countConflict("create", err)
		return nil, err
	}
	s.afterWrite(ctx, "create", events.TypeCreated, *slot)
	return slot, nil
}

// Update 只允许修改时间和预约信息；owner 非空时只能改自己的时间段
func (s *TimeSlotService) Update(ctx context.Context, owner, id string, p domain.SlotPatch) (*domain.TimeSlot, error) {
	p.StartTime, p.EndTime = domain.Normalize(p.StartTime), domain.Normalize(p.EndTime)
	if err := domain.ValidateRange(p.StartTime, p.EndTime); err != nil {
		return nil, err
	}

	cur, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	var out *domain.TimeSlot
	err = s.withOwnerLock(ctx, cur.HRID, func() error {
		hit, err := s.store.FindOverlap(ctx, cur.HRID, p.StartTime, p.EndTime, id)
		if err != nil {
			return fmt.Errorf("check overlap: %w", err)
		}
		if hit != nil {
			s.conflict("update", cur.HRID, hit)
			return domain.ErrConflict
		}
		out, err = s.store.FindAndUpdate(ctx, id, p)
		return err
	})
	if err != nil {
		s.countConflict("update", err)
		return nil, err
	}
	s.afterWrite(ctx, "update", events.TypeUpdated, *out)
	return out, nil
}

func (s *TimeSlotService) Delete(ctx context.Context, owner, id string) error {
	if _, err := s.owned(ctx, owner, id); err != nil {
		return err
	}
	removed, err := s.store.FindAndDelete(ctx, id)
	if err != nil {
		return err
	}
	s.afterWrite(ctx, "delete", events.TypeDeleted, *removed)
	return nil
}

// Overlaps audits an owner's existing slots for pairs that violate the no-overlap rule.
func (s *TimeSlotService) Overlaps(ctx context.Context, hrID string) ([]domain.OverlapPair, error) {
	hrID = strings.TrimSpace(hrID)
	if hrID == "" {
		return nil, domain.Invalid("hr_id", "is required")
	}
	slots, err := s.store.List(ctx, hrID)
	if err != nil {
		return nil, err
	}
	pairs := domain.FindOverlaps(slots)
	if pairs == nil {
		pairs = []domain.OverlapPair{}
	}
	return pairs, nil
}

// owned 查出时间段；属于其他 hr 时按不存在处理，不泄露存在性
func (s *TimeSlotService) owned(ctx context.Context, owner, id string) (*domain.TimeSlot, error) {
	cur, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if owner != "" && cur.HRID != owner {
		return nil, domain.ErrNotFound
	}
	return cur, nil
}

func (s *TimeSlotService) withOwnerLock(ctx context.Context, hrID string, fn func() error) error {
	unlock, err := s.locker.Lock(ctx, "hr:"+hrID)
	if err != nil {
		return fmt.Errorf("acquire owner lock: %w", err)
	}
	defer unlock()
	return fn()
}

func (s *TimeSlotService) conflict(op, hrID string, hit *domain.TimeSlot) {
	s.log.Debug("time slot conflict",
		zap.String("op", op),
		zap.String("hr_id", hrID),
		zap.String("existing_id", hit.ID),
	)
}

// 包括 postgres exclusion 约束兜底拒绝的情况
func (s *TimeSlotService) countConflict(op string, err error) {
	if errors.Is(err, domain.ErrConflict) {
		slotConflicts.WithLabelValues(op).Inc()
	}
}

// afterWrite 写入已提交，请求取消也要完成失效
func (s *TimeSlotService) afterWrite(ctx context.Context, op, evType string, slot domain.TimeSlot) {
	slotWrites.WithLabelValues(op).Inc()
	ctx = context.WithoutCancel(ctx)
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, s.cache.Key("hr", slot.HRID)); err != nil {
			s.log.Warn("cache invalidate failed", zap.String("hr_id", slot.HRID), zap.Error(err))
		}
	}
	// 事件发送失败不影响已提交的写入
	if err := s.pub.Publish(ctx, events.New(evType, slot)); err != nil {
		s.log.Warn("publish event failed", zap.String("type", evType), zap.String("id", slot.ID), zap.Error(err))
	}
}
