// Package conflict decides whether assigning a person to an invitation
// collides with that person's other commitments. Evaluation is pure: it
// works on the snapshot it is given and never fetches.
package conflict

import (
	"fmt"
	"strings"

	"github.com/atiapp/inviteboard/internal/model"
)

const (
	tight1hMinutes = 60
	tight2hMinutes = 120
)

// Verdict is the result of one evaluation. It is recomputed on every attempt
// and never persisted.
type Verdict struct {
	Level     model.ConflictLevel  `json:"level"`
	Conflicts []model.ConflictItem `json:"conflicts"`
}

func (v *Verdict) None() bool {
	return v == nil || v.Level == model.LevelNone
}

func (v *Verdict) String() string {
	if v.None() {
		return "none"
	}

	items := make([]string, len(v.Conflicts))
	for i, c := range v.Conflicts {
		items[i] = fmt.Sprintf("#%d %s %s %s (%s)", c.ID, c.DateFmt, c.TimeFmt, c.Event, c.Status)
	}

	return string(v.Level) + ": " + strings.Join(items, ", ")
}

// Error carries a non-none verdict across an API boundary. The server answers
// 409 with it; the client decodes it back.
type Error struct {
	Verdict Verdict
}

func (e *Error) Error() string {
	return "assignment conflict: " + e.Verdict.String()
}

// Target identifies the assignment attempt under evaluation.
type Target struct {
	InvitationID uint
	PersonID     uint
	Date         *model.DateOnly
	Time         *model.ClockTime
}

func TargetOf(inv *model.Invitation, personID uint) Target {
	return Target{
		InvitationID: inv.ID,
		PersonID:     personID,
		Date:         inv.Date,
		Time:         inv.Time,
	}
}

// Classify rates a single candidate against the target time. Candidates on a
// different day never conflict; an exact-minute collision is hard only when
// the candidate is a live commitment.
func Classify(t Target, c *model.Invitation) model.ConflictLevel {
	if t.Date == nil || t.Time == nil || c.Date == nil || c.Time == nil {
		return model.LevelNone
	}

	if !t.Date.Same(*c.Date) {
		return model.LevelNone
	}

	dm := t.Time.DiffMinutes(*c.Time)

	switch {
	case dm == 0 && model.ActiveStatus(c.StatusOrDefault()):
		return model.LevelHard
	case dm > 0 && dm <= tight1hMinutes:
		return model.LevelTight1h
	case dm > tight1hMinutes && dm <= tight2hMinutes:
		return model.LevelTight2h
	default:
		return model.LevelNone
	}
}

// Evaluate scans the snapshot for commitments of the target person that
// collide with the target invitation. The target itself and cancelled
// invitations are skipped. Conflicting invitations are reported in snapshot
// order; the verdict level is the worst one found.
func Evaluate(t Target, snapshot []*model.Invitation) *Verdict {
	v := &Verdict{Level: model.LevelNone}

	for _, c := range snapshot {
		if c.ID == t.InvitationID {
			continue
		}

		if c.PersonID == nil || *c.PersonID != t.PersonID {
			continue
		}

		if c.StatusOrDefault() == model.StatusCancelled {
			continue
		}

		lev := Classify(t, c)
		if lev == model.LevelNone {
			continue
		}

		v.Conflicts = append(v.Conflicts, model.ToConflictItem(c))
		v.Level = v.Level.Max(lev)
	}

	return v
}
