package conflict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atiapp/inviteboard/internal/model"
)

func inv(id uint, personID uint, date string, clock string, status string) *model.Invitation {
	i := &model.Invitation{ID: id, Status: status}

	if personID != 0 {
		i.PersonID = &personID
	}

	if d := model.ParseDateFlexible(date); d != nil {
		i.Date = d
	}

	if c := model.ParseClockFlexible(clock); c != nil {
		i.Time = c
	}

	return i
}

func target(id, personID uint, date, clock string) Target {
	return TargetOf(inv(id, 0, date, clock, ""), personID)
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name     string
		target   Target
		other    *model.Invitation
		expected model.ConflictLevel
	}{
		{"different day", target(1, 5, "2026-09-10", "10:00"), inv(2, 5, "2026-09-11", "10:00", model.StatusConfirmed), model.LevelNone},
		{"same minute active", target(1, 5, "2026-09-10", "10:00"), inv(2, 5, "2026-09-10", "10:00", model.StatusConfirmed), model.LevelHard},
		{"same minute substituted", target(1, 5, "2026-09-10", "10:00"), inv(2, 5, "2026-09-10", "10:00", model.StatusSubstituted), model.LevelHard},
		{"same minute pending", target(1, 5, "2026-09-10", "10:00"), inv(2, 5, "2026-09-10", "10:00", model.StatusPending), model.LevelNone},
		{"30 min apart", target(1, 5, "2026-09-10", "10:00"), inv(2, 5, "2026-09-10", "10:30", model.StatusConfirmed), model.LevelTight1h},
		{"exactly 60 min", target(1, 5, "2026-09-10", "10:00"), inv(2, 5, "2026-09-10", "11:00", model.StatusConfirmed), model.LevelTight1h},
		{"90 min apart", target(1, 5, "2026-09-10", "10:00"), inv(2, 5, "2026-09-10", "11:30", model.StatusConfirmed), model.LevelTight2h},
		{"exactly 120 min", target(1, 5, "2026-09-10", "10:00"), inv(2, 5, "2026-09-10", "12:00", model.StatusConfirmed), model.LevelTight2h},
		{"150 min apart", target(1, 5, "2026-09-10", "10:00"), inv(2, 5, "2026-09-10", "12:30", model.StatusConfirmed), model.LevelNone},
		{"earlier same day", target(1, 5, "2026-09-10", "10:00"), inv(2, 5, "2026-09-10", "09:15", model.StatusConfirmed), model.LevelTight1h},
		{"no target time", target(1, 5, "2026-09-10", ""), inv(2, 5, "2026-09-10", "10:00", model.StatusConfirmed), model.LevelNone},
		{"no candidate date", target(1, 5, "2026-09-10", "10:00"), inv(2, 5, "", "10:00", model.StatusConfirmed), model.LevelNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Classify(tc.target, tc.other))
		})
	}
}

func TestEvaluate_WorstLevelWins(t *testing.T) {
	tgt := target(1, 5, "2026-09-10", "10:00")

	snapshot := []*model.Invitation{
		inv(2, 5, "2026-09-10", "11:30", model.StatusConfirmed),
		inv(3, 5, "2026-09-10", "10:00", model.StatusConfirmed),
		inv(4, 5, "2026-09-10", "10:30", model.StatusConfirmed),
	}

	v := Evaluate(tgt, snapshot)

	assert.Equal(t, model.LevelHard, v.Level)
	require.Len(t, v.Conflicts, 3)
	assert.Equal(t, uint(2), v.Conflicts[0].ID)
}

func TestEvaluate_Skips(t *testing.T) {
	tgt := target(1, 5, "2026-09-10", "10:00")

	snapshot := []*model.Invitation{
		inv(1, 5, "2026-09-10", "10:00", model.StatusConfirmed),
		inv(2, 7, "2026-09-10", "10:00", model.StatusConfirmed),
		inv(3, 5, "2026-09-10", "10:00", model.StatusCancelled),
		inv(4, 0, "2026-09-10", "10:00", model.StatusConfirmed),
	}

	v := Evaluate(tgt, snapshot)

	assert.True(t, v.None())
	assert.Empty(t, v.Conflicts)
}

func TestEvaluate_Idempotent(t *testing.T) {
	tgt := target(1, 5, "2026-09-10", "10:00")

	snapshot := []*model.Invitation{
		inv(2, 5, "2026-09-10", "10:45", model.StatusConfirmed),
	}

	v1 := Evaluate(tgt, snapshot)
	v2 := Evaluate(tgt, snapshot)

	assert.Equal(t, v1, v2)
	assert.Equal(t, model.LevelTight1h, v1.Level)
}

func TestVerdictString(t *testing.T) {
	var v *Verdict

	assert.Equal(t, "none", v.String())
	assert.True(t, v.None())

	v = Evaluate(target(1, 5, "2026-09-10", "10:00"), []*model.Invitation{
		{ID: 2, PersonID: ptr(uint(5)), Date: model.ParseDateFlexible("2026-09-10"),
			Time: model.ParseClockFlexible("10:00"), Status: model.StatusConfirmed, Event: "Sesión"},
	})

	assert.Contains(t, v.String(), "hard")
	assert.Contains(t, v.String(), "Sesión")
}

func ptr[T any](v T) *T {
	return &v
}
