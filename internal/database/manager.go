package database

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/atiapp/inviteboard/internal/callbacks"
	"github.com/atiapp/inviteboard/internal/conflict"
	"github.com/atiapp/inviteboard/internal/model"
)

// ModifiedBy marks rows touched by this application.
const ModifiedBy = "atiapp"

var (
	ErrNotFound  = errors.New("not found")
	ErrBadStatus = errors.New("unknown status")
)

type Manager struct {
	db      *gorm.DB
	logger  *slog.Logger
	notifCb *callbacks.Callback[*model.Notification]
}

func New(db *gorm.DB) *Manager {
	return &Manager{
		db:     db,
		logger: slog.With("logger", "dbm"),
	}
}

// OnNotification registers the fan-out target for snapshot rows created by
// status and assignment transitions.
func (m *Manager) OnNotification(cb *callbacks.Callback[*model.Notification]) {
	m.notifCb = cb
}

func (m *Manager) Migrate() error {
	if m == nil || m.db == nil {
		return fmt.Errorf("no database")
	}

	return m.db.AutoMigrate(
		&model.Person{},
		&model.Invitation{},
		&model.Notification{},
	)
}

func (m *Manager) Create(s any) error {
	if m == nil || m.db == nil {
		return nil
	}

	err := m.db.Create(s).Error

	if err != nil {
		m.logger.Error("error create object", slog.Any("error", err))
	}

	return err
}

func (m *Manager) Save(s any) error {
	if m == nil || m.db == nil {
		return nil
	}

	err := m.db.Save(s).Error

	if err != nil {
		m.logger.Error("error saving object", slog.Any("error", err))
	}

	return err
}

func (m *Manager) PersonQuery() *PersonQuery {
	return NewPersonQuery(m.db)
}

func (m *Manager) InvitationQuery() *InvitationQuery {
	return NewInvitationQuery(m.db)
}

func (m *Manager) NotificationQuery() *NotificationQuery {
	return NewNotificationQuery(m.db)
}

// MarkNotificationsSent stamps the given snapshot rows as delivered so
// pollers stop picking them up.
func (m *Manager) MarkNotificationsSent(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	now := time.Now()

	return m.NotificationQuery().Ids(ids).Update(map[string]any{
		"sent":    true,
		"sent_ts": &now,
	})
}

func (m *Manager) notify(ns []*model.Notification) {
	if m.notifCb == nil {
		return
	}

	for _, n := range ns {
		m.notifCb.AddMessage(n)
	}
}

// Assign confirms an invitation for a person. Unless force is set, it
// re-validates the person's same-day commitments first and returns a
// *conflict.Error when they collide; the caller renders it as 409.
func (m *Manager) Assign(id, personID uint, role, comment string, force bool) (*model.Invitation, error) {
	return m.assign(id, personID, role, comment, force, model.StatusConfirmed, true)
}

// Reassign substitutes the assigned person, with the same conflict check.
func (m *Manager) Reassign(id, personID uint, role, comment string, force bool) (*model.Invitation, error) {
	if comment == "" {
		comment = "Sustitución por instrucción"
	}

	return m.assign(id, personID, role, comment, force, model.StatusSubstituted, false)
}

func (m *Manager) assign(id, personID uint, role, comment string, force bool, status string, stampAssigned bool) (*model.Invitation, error) {
	inv := m.InvitationQuery().Id(id).One()
	if inv == nil {
		return nil, fmt.Errorf("invitation %d: %w", id, ErrNotFound)
	}

	p := m.PersonQuery().Id(personID).One()
	if p == nil {
		return nil, fmt.Errorf("person %d: %w", personID, ErrNotFound)
	}

	if inv.Date != nil && inv.Time != nil && !force {
		candidates := m.InvitationQuery().Person(p.ID).Date(inv.Date).Active().Exclude(inv.ID).Get()

		if v := conflict.Evaluate(conflict.TargetOf(inv, p.ID), candidates); !v.None() {
			return nil, &conflict.Error{Verdict: *v}
		}
	}

	prevStatus := inv.Status
	prevName := inv.AssignedName
	prevRole := inv.Role

	now := time.Now()

	inv.PersonID = &p.ID
	inv.AssignedName = p.Name

	if role != "" {
		inv.Role = role
	} else {
		inv.Role = p.Title
	}

	inv.Status = status
	inv.AppendNote(comment)

	if stampAssigned {
		inv.AssignedAt = &now
	}

	inv.UpdatedAt = now
	inv.UpdatedBy = ModifiedBy

	ns := []*model.Notification{
		model.Snapshot(inv, "Asignado A", prevName, inv.AssignedName, comment),
	}

	if prevRole != inv.Role {
		ns = append(ns, model.Snapshot(inv, "Rol", prevRole, inv.Role, comment))
	}

	if prevStatus != inv.Status {
		ns = append(ns, model.Snapshot(inv, "Estatus", prevStatus, inv.Status, comment))
	}

	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(inv).Error; err != nil {
			return err
		}

		return tx.Create(&ns).Error
	})

	if err != nil {
		m.logger.Error("assign failed", slog.Any("error", err))

		return nil, err
	}

	m.notify(ns)

	return inv, nil
}

// SetStatus moves an invitation to an arbitrary status. Going back to
// Pendiente clears the assignment fields but keeps the denormalized name in
// the notification history.
func (m *Manager) SetStatus(id uint, status, comment string) (*model.Invitation, error) {
	if !model.ValidStatus(status) {
		return nil, fmt.Errorf("%q: %w", status, ErrBadStatus)
	}

	inv := m.InvitationQuery().Id(id).One()
	if inv == nil {
		return nil, fmt.Errorf("invitation %d: %w", id, ErrNotFound)
	}

	prevStatus := inv.Status
	prevName := inv.AssignedName
	prevRole := inv.Role

	inv.Status = status
	inv.UpdatedAt = time.Now()
	inv.UpdatedBy = ModifiedBy

	if status == model.StatusPending {
		inv.PersonID = nil
		inv.AssignedName = ""
		inv.Role = ""
		inv.AssignedAt = nil
	}

	inv.AppendNote(comment)

	ns := []*model.Notification{
		model.Snapshot(inv, "Estatus", prevStatus, inv.Status, comment),
	}

	if status == model.StatusPending {
		if prevName != "" {
			ns = append(ns, model.Snapshot(inv, "Asignado A", prevName, "", "Se limpió la asignación"))
		}

		if prevRole != "" {
			ns = append(ns, model.Snapshot(inv, "Rol", prevRole, "", "Se limpió la asignación"))
		}
	}

	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(inv).Error; err != nil {
			return err
		}

		return tx.Create(&ns).Error
	})

	if err != nil {
		return nil, err
	}

	m.notify(ns)

	return inv, nil
}

// Cancel marks an invitation cancelled and records the reason.
func (m *Manager) Cancel(id uint, reason string) (*model.Invitation, error) {
	if reason == "" {
		reason = "Cancelado por indicación"
	}

	inv := m.InvitationQuery().Id(id).One()
	if inv == nil {
		return nil, fmt.Errorf("invitation %d: %w", id, ErrNotFound)
	}

	prevStatus := inv.Status

	inv.Status = model.StatusCancelled
	inv.AppendNote("Motivo cancelación: " + reason)
	inv.UpdatedAt = time.Now()
	inv.UpdatedBy = ModifiedBy

	ns := []*model.Notification{
		model.Snapshot(inv, "Estatus", prevStatus, model.StatusCancelled, reason),
	}

	err := m.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(inv).Error; err != nil {
			return err
		}

		return tx.Create(&ns).Error
	})

	if err != nil {
		return nil, err
	}

	m.notify(ns)

	return inv, nil
}

// DeletePerson removes a catalog entry. Its invitations go back to Pendiente;
// the denormalized name stays on the card so history remains readable.
// Returns the number of invitations unassigned.
func (m *Manager) DeletePerson(id uint) (int, error) {
	p := m.PersonQuery().Id(id).One()
	if p == nil {
		return 0, fmt.Errorf("person %d: %w", id, ErrNotFound)
	}

	invs := m.InvitationQuery().Person(p.ID).Get()

	ns := make([]*model.Notification, 0, len(invs))

	err := m.db.Transaction(func(tx *gorm.DB) error {
		for _, inv := range invs {
			prevStatus := inv.Status

			inv.PersonID = nil
			inv.Status = model.StatusPending
			inv.AppendNote("Auto-desasignación: persona eliminada")
			inv.UpdatedAt = time.Now()
			inv.UpdatedBy = ModifiedBy

			if err := tx.Save(inv).Error; err != nil {
				return err
			}

			ns = append(ns, model.Snapshot(inv, "Estatus", prevStatus, model.StatusPending,
				"Persona eliminada: "+p.Name))
		}

		if len(ns) > 0 {
			if err := tx.Create(&ns).Error; err != nil {
				return err
			}
		}

		return tx.Delete(p).Error
	})

	if err != nil {
		return 0, err
	}

	m.notify(ns)

	return len(invs), nil
}

// CheckConflict evaluates a hypothetical assignment without mutating
// anything. Only live commitments of the person on that day are considered;
// the server is authoritative over any client-computed verdict.
func (m *Manager) CheckConflict(personID uint, date model.DateOnly, t model.ClockTime, excludeID uint) *conflict.Verdict {
	q := m.InvitationQuery().Person(personID).Date(&date).Active()

	if excludeID != 0 {
		q = q.Exclude(excludeID)
	}

	target := conflict.Target{
		InvitationID: excludeID,
		PersonID:     personID,
		Date:         &date,
		Time:         &t,
	}

	return conflict.Evaluate(target, q.Get())
}

// Stats returns invitation counts per status, optionally date-bounded.
// All four statuses are always present in the result.
func (m *Manager) Stats(from, to *model.DateOnly) map[string]int64 {
	counts := map[string]int64{
		model.StatusPending:     0,
		model.StatusConfirmed:   0,
		model.StatusSubstituted: 0,
		model.StatusCancelled:   0,
	}

	var rows []struct {
		Status string
		N      int64
	}

	tx := m.db.Model(&model.Invitation{}).Select("status, count(id) as n").Group("status")

	if from != nil {
		tx = tx.Where("date >= ?", from.String())
	}

	if to != nil {
		tx = tx.Where("date <= ?", to.String())
	}

	if err := tx.Find(&rows).Error; err != nil {
		m.logger.Error("stats query failed", slog.Any("error", err))

		return counts
	}

	for _, r := range rows {
		if r.Status == "" {
			r.Status = model.StatusPending
		}

		counts[r.Status] += r.N
	}

	return counts
}

// Counters are the header KPIs: per-status counts plus a total.
func (m *Manager) Counters() map[string]int64 {
	counts := m.Stats(nil, nil)

	var total int64
	for _, n := range counts {
		total += n
	}

	counts["Total"] = total

	return counts
}
