package timeslot

import (
	"time"

	"interview-scheduler/internal/domain"
)

// TimeSlotModel SQL 存储行；Pk 只在库内使用，对外只暴露 ID
type TimeSlotModel struct {
	Pk            uint      `gorm:"primaryKey;autoIncrement"`
	ID            string    `gorm:"column:id;uniqueIndex;size:36;not null"`
	HRID          string    `gorm:"column:hr_id;index:idx_timeslots_owner_start,priority:1;size:191;not null"`
	StartTime     time.Time `gorm:"column:start_time;index:idx_timeslots_owner_start,priority:2;not null"`
	EndTime       time.Time `gorm:"column:end_time;not null"`
	CandidateName *string   `gorm:"column:candidate_name;size:255"`
	InterviewType *string   `gorm:"column:interview_type;size:64"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (TimeSlotModel) TableName() string { return "timeslots" }

func FromDomain(s domain.TimeSlot) TimeSlotModel {
	return TimeSlotModel{
		ID:            s.ID,
		HRID:          s.HRID,
		StartTime:     s.StartTime.UTC(),
		EndTime:       s.EndTime.UTC(),
		CandidateName: s.CandidateName,
		InterviewType: s.InterviewType,
	}
}

func (m TimeSlotModel) ToDomain() domain.TimeSlot {
	return domain.TimeSlot{
		ID:            m.ID,
		HRID:          m.HRID,
		StartTime:     m.StartTime.UTC(),
		EndTime:       m.EndTime.UTC(),
		CandidateName: m.CandidateName,
		InterviewType: m.InterviewType,
	}
}
