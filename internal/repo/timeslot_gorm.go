package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"interview-scheduler/internal/domain"
	"interview-scheduler/internal/feature/timeslot"
)

const pgOverlapConstraint = "timeslots_no_overlap"

type TimeSlotSQLRepo struct{ db *gorm.DB }

func NewTimeSlotSQLRepo(db *gorm.DB) *TimeSlotSQLRepo { return &TimeSlotSQLRepo{db: db} }

// Migrate 建表；postgres 额外加排他约束，库层面禁止同一 hr_id 的区间重叠
func (r *TimeSlotSQLRepo) Migrate(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&timeslot.TimeSlotModel{}); err != nil {
		return err
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
		return err
	}
	var n int64
	if err := db.Raw("SELECT count(*) FROM pg_constraint WHERE conname = ?", pgOverlapConstraint).Scan(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return db.Exec(`ALTER TABLE timeslots ADD CONSTRAINT ` + pgOverlapConstraint +
		` EXCLUDE USING gist (hr_id WITH =, tstzrange(start_time, end_time, '[)') WITH &&)`).Error
}

func (r *TimeSlotSQLRepo) List(ctx context.Context, hrID string) ([]domain.TimeSlot, error) {
	var rows []timeslot.TimeSlotModel
	if err := r.db.WithContext(ctx).Where("hr_id = ?", hrID).Order("start_time").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.TimeSlot, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.ToDomain())
	}
	return out, nil
}

func (r *TimeSlotSQLRepo) FindByID(ctx context.Context, id string) (*domain.TimeSlot, error) {
	var m timeslot.TimeSlotModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s := m.ToDomain()
	return &s, nil
}

func (r *TimeSlotSQLRepo) FindOverlap(ctx context.Context, hrID string, start, end time.Time, excludeID string) (*domain.TimeSlot, error) {
	q := r.db.WithContext(ctx).
		Where("hr_id = ? AND start_time < ? AND end_time > ?", hrID, end.UTC(), start.UTC())
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var rows []timeslot.TimeSlotModel
	if err := q.Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	s := rows[0].ToDomain()
	return &s, nil
}

func (r *TimeSlotSQLRepo) Insert(ctx context.Context, s *domain.TimeSlot) error {
	m := timeslot.FromDomain(*s)
	return translate(r.db.WithContext(ctx).Create(&m).Error)
}

func (r *TimeSlotSQLRepo) FindAndUpdate(ctx context.Context, id string, p domain.SlotPatch) (*domain.TimeSlot, error) {
	var out domain.TimeSlot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m timeslot.TimeSlotModel
		if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
			return err
		}
		s := m.ToDomain()
		p.Apply(&s)
		res := tx.Model(&timeslot.TimeSlotModel{}).Where("id = ?", id).Updates(map[string]any{
			"start_time":     s.StartTime.UTC(),
			"end_time":       s.EndTime.UTC(),
			"candidate_name": s.CandidateName,
			"interview_type": s.InterviewType,
		})
		if res.Error != nil {
			return res.Error
		}
		out = s
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (r *TimeSlotSQLRepo) FindAndDelete(ctx context.Context, id string) (*domain.TimeSlot, error) {
	var out domain.TimeSlot
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m timeslot.TimeSlotModel
		if err := tx.Where("id = ?", id).First(&m).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&timeslot.TimeSlotModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		out = m.ToDomain()
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// translate 把驱动错误映射成领域错误
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDupKey(err) {
		return domain.ErrDuplicateID
	}
	if isExclusionViolation(err) {
		return domain.ErrConflict
	}
	return err
}

func isDupKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}

// SQLSTATE 23P01 exclusion_violation
func isExclusionViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "23P01") || strings.Contains(msg, pgOverlapConstraint)
}
