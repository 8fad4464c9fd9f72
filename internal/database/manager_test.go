package database

import (
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/atiapp/inviteboard/internal/conflict"
	"github.com/atiapp/inviteboard/internal/model"
)

func getTestDatabase() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		panic("failed to connect database")
	}

	db.AutoMigrate(&model.Person{}, &model.Invitation{}, &model.Notification{})

	return db
}

func prepare() *Manager {
	return New(getTestDatabase())
}

func date(s string) *model.DateOnly {
	d := model.ParseDateFlexible(s)
	if d == nil {
		panic("bad date " + s)
	}

	return d
}

func clock(s string) *model.ClockTime {
	c := model.ParseClockFlexible(s)
	if c == nil {
		panic("bad time " + s)
	}

	return c
}

func TestAssign(t *testing.T) {
	m := prepare()

	p := &model.Person{Name: "Laura Díaz", Title: "Secretaria"}
	require.NoError(t, m.Create(p))

	inv := &model.Invitation{Event: "Inauguración", Date: date("2026-09-10"), Time: clock("10:00")}
	require.NoError(t, m.Create(inv))

	got, err := m.Assign(inv.ID, p.ID, "", "por instrucción", false)
	require.NoError(t, err)

	assert.Equal(t, model.StatusConfirmed, got.Status)
	assert.Equal(t, "Laura Díaz", got.AssignedName)
	assert.Equal(t, "Secretaria", got.Role)
	assert.NotNil(t, got.AssignedAt)
	assert.Equal(t, ModifiedBy, got.UpdatedBy)
	assert.Contains(t, got.Notes, "por instrucción")

	ns := m.NotificationQuery().Get()
	require.NotEmpty(t, ns)

	var found bool

	for _, n := range ns {
		if n.Field == "Asignado A" {
			found = true

			assert.Equal(t, "Laura Díaz", n.NewValue)
			assert.False(t, n.Sent)
		}
	}

	assert.True(t, found)
}

func TestAssign_Conflict(t *testing.T) {
	m := prepare()

	p := &model.Person{Name: "Laura Díaz"}
	require.NoError(t, m.Create(p))

	busy := &model.Invitation{
		Event: "Sesión de cabildo", Date: date("2026-09-10"), Time: clock("10:00"),
		Status: model.StatusConfirmed, PersonID: &p.ID,
	}
	require.NoError(t, m.Create(busy))

	inv := &model.Invitation{Event: "Inauguración", Date: date("2026-09-10"), Time: clock("10:00")}
	require.NoError(t, m.Create(inv))

	_, err := m.Assign(inv.ID, p.ID, "", "", false)
	require.Error(t, err)

	var ce *conflict.Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, model.LevelHard, ce.Verdict.Level)
	require.Len(t, ce.Verdict.Conflicts, 1)
	assert.Equal(t, busy.ID, ce.Verdict.Conflicts[0].ID)

	// nothing mutated
	fresh := m.InvitationQuery().Id(inv.ID).One()
	assert.Equal(t, model.StatusPending, fresh.StatusOrDefault())
	assert.Nil(t, fresh.PersonID)
}

func TestAssign_Force(t *testing.T) {
	m := prepare()

	p := &model.Person{Name: "Laura Díaz"}
	require.NoError(t, m.Create(p))

	busy := &model.Invitation{
		Event: "Sesión de cabildo", Date: date("2026-09-10"), Time: clock("10:00"),
		Status: model.StatusConfirmed, PersonID: &p.ID,
	}
	require.NoError(t, m.Create(busy))

	inv := &model.Invitation{Event: "Inauguración", Date: date("2026-09-10"), Time: clock("10:00")}
	require.NoError(t, m.Create(inv))

	got, err := m.Assign(inv.ID, p.ID, "", "se acordó doble presencia", true)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, got.Status)
}

func TestReassign(t *testing.T) {
	m := prepare()

	p1 := &model.Person{Name: "Laura Díaz"}
	p2 := &model.Person{Name: "Mario Ruiz", Title: "Director"}
	require.NoError(t, m.Create(p1))
	require.NoError(t, m.Create(p2))

	inv := &model.Invitation{Event: "Foro", Date: date("2026-09-12"), Time: clock("17:00")}
	require.NoError(t, m.Create(inv))

	_, err := m.Assign(inv.ID, p1.ID, "", "", false)
	require.NoError(t, err)

	before := m.InvitationQuery().Id(inv.ID).One().AssignedAt
	require.NotNil(t, before)

	got, err := m.Reassign(inv.ID, p2.ID, "", "", false)
	require.NoError(t, err)

	assert.Equal(t, model.StatusSubstituted, got.Status)
	assert.Equal(t, "Mario Ruiz", got.AssignedName)
	assert.Contains(t, got.Notes, "Sustitución por instrucción")

	// original assignment moment survives the substitution
	require.NotNil(t, got.AssignedAt)
	assert.WithinDuration(t, *before, *got.AssignedAt, time.Second)
}

func TestSetStatus_BackToPending(t *testing.T) {
	m := prepare()

	p := &model.Person{Name: "Laura Díaz"}
	require.NoError(t, m.Create(p))

	inv := &model.Invitation{Event: "Foro", Date: date("2026-09-12"), Time: clock("17:00")}
	require.NoError(t, m.Create(inv))

	_, err := m.Assign(inv.ID, p.ID, "Representante", "", false)
	require.NoError(t, err)

	got, err := m.SetStatus(inv.ID, model.StatusPending, "se repone la convocatoria")
	require.NoError(t, err)

	assert.Nil(t, got.PersonID)
	assert.Empty(t, got.AssignedName)
	assert.Empty(t, got.Role)
	assert.Nil(t, got.AssignedAt)

	_, err = m.SetStatus(inv.ID, "Aplazado", "")
	assert.ErrorIs(t, err, ErrBadStatus)
}

func TestCancel(t *testing.T) {
	m := prepare()

	inv := &model.Invitation{Event: "Foro", Date: date("2026-09-12"), Time: clock("17:00")}
	require.NoError(t, m.Create(inv))

	got, err := m.Cancel(inv.ID, "")
	require.NoError(t, err)

	assert.Equal(t, model.StatusCancelled, got.Status)
	assert.Contains(t, got.Notes, "Motivo cancelación: Cancelado por indicación")
}

func TestDeletePerson_Unassigns(t *testing.T) {
	m := prepare()

	p := &model.Person{Name: "Laura Díaz"}
	require.NoError(t, m.Create(p))

	inv1 := &model.Invitation{Event: "Foro", Date: date("2026-09-12"), Time: clock("17:00")}
	inv2 := &model.Invitation{Event: "Gira", Date: date("2026-09-13"), Time: clock("09:00")}
	require.NoError(t, m.Create(inv1))
	require.NoError(t, m.Create(inv2))

	_, err := m.Assign(inv1.ID, p.ID, "", "", false)
	require.NoError(t, err)
	_, err = m.Assign(inv2.ID, p.ID, "", "", false)
	require.NoError(t, err)

	n, err := m.DeletePerson(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Nil(t, m.PersonQuery().Id(p.ID).One())

	for _, id := range []uint{inv1.ID, inv2.ID} {
		got := m.InvitationQuery().Id(id).One()
		require.NotNil(t, got)
		assert.Equal(t, model.StatusPending, got.Status)
		assert.Nil(t, got.PersonID)
		// name kept for history
		assert.Equal(t, "Laura Díaz", got.AssignedName)
		assert.Contains(t, got.Notes, "Auto-desasignación")
	}
}

func TestCheckConflict(t *testing.T) {
	m := prepare()

	p := &model.Person{Name: "Laura Díaz"}
	require.NoError(t, m.Create(p))

	busy := &model.Invitation{
		Event: "Sesión", Date: date("2026-09-10"), Time: clock("10:00"),
		Status: model.StatusConfirmed, PersonID: &p.ID,
	}
	require.NoError(t, m.Create(busy))

	v := m.CheckConflict(p.ID, *date("2026-09-10"), *clock("10:45"), 0)
	assert.Equal(t, model.LevelTight1h, v.Level)

	v = m.CheckConflict(p.ID, *date("2026-09-10"), *clock("11:30"), 0)
	assert.Equal(t, model.LevelTight2h, v.Level)

	v = m.CheckConflict(p.ID, *date("2026-09-11"), *clock("10:00"), 0)
	assert.True(t, v.None())

	v = m.CheckConflict(p.ID, *date("2026-09-10"), *clock("10:00"), busy.ID)
	assert.True(t, v.None())
}

func TestStats(t *testing.T) {
	m := prepare()

	require.NoError(t, m.Create(&model.Invitation{Event: "a", Date: date("2026-09-10"), Status: model.StatusConfirmed}))
	require.NoError(t, m.Create(&model.Invitation{Event: "b", Date: date("2026-09-11"), Status: model.StatusPending}))
	require.NoError(t, m.Create(&model.Invitation{Event: "c", Date: date("2026-10-01"), Status: model.StatusConfirmed}))

	all := m.Stats(nil, nil)
	assert.Equal(t, int64(2), all[model.StatusConfirmed])
	assert.Equal(t, int64(1), all[model.StatusPending])
	assert.Equal(t, int64(0), all[model.StatusCancelled])

	sept := m.Stats(date("2026-09-01"), date("2026-09-30"))
	assert.Equal(t, int64(1), sept[model.StatusConfirmed])

	c := m.Counters()
	assert.Equal(t, int64(3), c["Total"])
}

func TestMarkNotificationsSent(t *testing.T) {
	m := prepare()

	p := &model.Person{Name: "Laura Díaz"}
	require.NoError(t, m.Create(p))

	inv := &model.Invitation{Event: "Inauguración", Date: date("2026-09-10"), Time: clock("10:00")}
	require.NoError(t, m.Create(inv))

	_, err := m.Assign(inv.ID, p.ID, "", "", false)
	require.NoError(t, err)

	pending := m.NotificationQuery().Unsent().Get()
	require.NotEmpty(t, pending)

	ids := make([]uint, len(pending))
	for i, n := range pending {
		ids[i] = n.ID
	}

	require.NoError(t, m.MarkNotificationsSent(ids))

	assert.Empty(t, m.NotificationQuery().Unsent().Get())

	for _, n := range m.NotificationQuery().Ids(ids).Get() {
		assert.True(t, n.Sent)
		require.NotNil(t, n.SentTS)
		assert.WithinDuration(t, time.Now(), *n.SentTS, time.Minute)
	}

	require.NoError(t, m.MarkNotificationsSent(nil))
}
