package domain

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("time slot not found")
	ErrConflict    = errors.New("time slot conflicts with an existing slot")
	ErrDuplicateID = errors.New("time slot id already exists")
)

// ValidationError 入参校验失败（映射为 400）
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func Invalid(field, msg string) error { return &ValidationError{Field: field, Msg: msg} }

type TimeSlot struct {
	ID            string    `json:"id"`
	HRID          string    `json:"hr_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	CandidateName *string   `json:"candidate_name"`
	InterviewType *string   `json:"interview_type"` // "Technical" / "HR" / "Final Round"
}

// Booked reports whether a candidate has been placed in the slot.
func (s TimeSlot) Booked() bool { return s.CandidateName != nil }

// Normalize 统一为 UTC 并截断到毫秒（JSON / mongo 都只保留毫秒）
func Normalize(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

// OptString 更新用的三态字段：未传（保持不变）/ null（清空）/ 值
type OptString struct {
	Set   bool
	Value *string
}

func SetTo(v string) OptString { return OptString{Set: true, Value: &v} }

func Clear() OptString { return OptString{Set: true} }

// UnmarshalJSON marks the field present; JSON null clears it.
func (o *OptString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Resolve returns the value to store given the current one.
func (o OptString) Resolve(cur *string) *string {
	if !o.Set {
		return cur
	}
	return NullIfEmpty(o.Value)
}

// SlotPatch 更新字段；时间必填，预约信息未传时保持不变
type SlotPatch struct {
	StartTime     time.Time
	EndTime       time.Time
	CandidateName OptString
	InterviewType OptString
}

// Apply writes the patch onto s. Null or a blank string clears an optional field.
func (p SlotPatch) Apply(s *TimeSlot) {
	s.StartTime = p.StartTime
	s.EndTime = p.EndTime
	s.CandidateName = p.CandidateName.Resolve(s.CandidateName)
	s.InterviewType = p.InterviewType.Resolve(s.InterviewType)
}

func NullIfEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// Overlaps is the half-open interval test: [aStart,aEnd) and [bStart,bEnd) share an instant.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// ValidateRange 校验时间区间
func ValidateRange(start, end time.Time) error {
	if start.IsZero() {
		return Invalid("start_time", "is required")
	}
	if end.IsZero() {
		return Invalid("end_time", "is required")
	}
	if !start.Before(end) {
		return Invalid("end_time", "must be after start_time")
	}
	return nil
}

type OverlapPair struct {
	A TimeSlot `json:"a"`
	B TimeSlot `json:"b"`
}

// FindOverlaps returns every overlapping pair among slots of a single owner.
func FindOverlaps(slots []TimeSlot) []OverlapPair {
	sorted := append([]TimeSlot(nil), slots...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	var out []OverlapPair
	for i := range sorted {
		for j := i + 1; j < len(sorted); j++ {
			// 已按开始时间排序，后面的不会再与 i 重叠
			if !sorted[j].StartTime.Before(sorted[i].EndTime) {
				break
			}
			if Overlaps(sorted[i].StartTime, sorted[i].EndTime, sorted[j].StartTime, sorted[j].EndTime) {
				out = append(out, OverlapPair{A: sorted[i], B: sorted[j]})
			}
		}
	}
	return out
}

type SlotStore interface {
	List(ctx context.Context, hrID string) ([]TimeSlot, error)
	FindByID(ctx context.Context, id string) (*TimeSlot, error)
	FindOverlap(ctx context.Context, hrID string, start, end time.Time, excludeID string) (*TimeSlot, error)
	Insert(ctx context.Context, s *TimeSlot) error
	FindAndUpdate(ctx context.Context, id string, p SlotPatch) (*TimeSlot, error)
	FindAndDelete(ctx context.Context, id string) (*TimeSlot, error)
}
