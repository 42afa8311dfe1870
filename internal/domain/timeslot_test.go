package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(h, m int) time.Time { return time.Date(2025, 1, 6, h, m, 0, 0, time.UTC) }

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"adjacent after", at(9, 0), at(9, 30), at(9, 30), at(10, 0), false},
		{"adjacent before", at(9, 30), at(10, 0), at(9, 0), at(9, 30), false},
		{"partial", at(9, 0), at(9, 30), at(9, 15), at(9, 45), true},
		{"contained", at(9, 0), at(10, 0), at(9, 15), at(9, 45), true},
		{"identical", at(9, 0), at(9, 30), at(9, 0), at(9, 30), true},
		{"disjoint", at(9, 0), at(9, 30), at(11, 0), at(11, 30), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
		})
	}
}

func TestValidateRange(t *testing.T) {
	require.NoError(t, ValidateRange(at(9, 0), at(9, 30)))

	var ve *ValidationError
	err := ValidateRange(at(9, 30), at(9, 30))
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "end_time", ve.Field)

	err = ValidateRange(time.Time{}, at(9, 30))
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "start_time", ve.Field)
}

func TestSlotPatchApply(t *testing.T) {
	name := "Ada"
	kind := "HR"
	base := TimeSlot{ID: "1", HRID: "hr", StartTime: at(9, 0), EndTime: at(9, 30), CandidateName: &name, InterviewType: &kind}

	cases := []struct {
		name      string
		candidate OptString
		kind      OptString
		wantName  *string
		wantKind  *string
	}{
		{"omitted keeps", OptString{}, OptString{}, &name, &kind},
		{"null clears", Clear(), Clear(), nil, nil},
		{"blank clears", SetTo("  "), OptString{}, nil, &kind},
		{"value replaces", SetTo("Grace"), SetTo("Final Round"), strPtr("Grace"), strPtr("Final Round")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := base
			SlotPatch{StartTime: at(10, 0), EndTime: at(10, 30), CandidateName: tc.candidate, InterviewType: tc.kind}.Apply(&s)
			assert.Equal(t, at(10, 0), s.StartTime)
			assert.Equal(t, at(10, 30), s.EndTime)
			assert.Equal(t, tc.wantName, s.CandidateName)
			assert.Equal(t, tc.wantKind, s.InterviewType)
			assert.Equal(t, "1", s.ID)
			assert.Equal(t, "hr", s.HRID)
		})
	}
}

func TestOptStringJSON(t *testing.T) {
	var in struct {
		A OptString `json:"a"`
		B OptString `json:"b"`
		C OptString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":null,"b":"Alice"}`), &in))

	assert.True(t, in.A.Set)
	assert.Nil(t, in.A.Value)
	assert.True(t, in.B.Set)
	assert.Equal(t, "Alice", *in.B.Value)
	assert.False(t, in.C.Set)

	assert.Error(t, json.Unmarshal([]byte(`{"a":42}`), &in))
}

func strPtr(s string) *string { return &s }

func TestFindOverlaps(t *testing.T) {
	slots := []TimeSlot{
		{ID: "c", StartTime: at(11, 0), EndTime: at(11, 30)},
		{ID: "a", StartTime: at(9, 0), EndTime: at(10, 0)},
		{ID: "b", StartTime: at(9, 30), EndTime: at(10, 30)},
		{ID: "d", StartTime: at(10, 30), EndTime: at(11, 0)},
	}
	got := FindOverlaps(slots)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].A.ID)
	assert.Equal(t, "b", got[0].B.ID)

	assert.Empty(t, FindOverlaps(nil))
}
