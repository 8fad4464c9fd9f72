package database

import (
	"gorm.io/gorm"

	"github.com/atiapp/inviteboard/internal/model"
)

type InvitationQuery struct {
	Query[model.Invitation]
	id        uint
	excludeID uint
	personID  uint
	status    string
	active    bool
	date      *model.DateOnly
	dateFrom  *model.DateOnly
	dateTo    *model.DateOnly
	full      bool
}

func NewInvitationQuery(db *gorm.DB) *InvitationQuery {
	return &InvitationQuery{
		Query: Query[model.Invitation]{
			db:    db,
			limit: 1000,
			order: "date DESC, time DESC, id DESC",
		},
	}
}

func (q *InvitationQuery) Order(s string) *InvitationQuery {
	q.order = s
	return q
}

func (q *InvitationQuery) Limit(n int) *InvitationQuery {
	q.limit = n
	return q
}

func (q *InvitationQuery) Offset(n int) *InvitationQuery {
	q.offset = n
	return q
}

func (q *InvitationQuery) Id(id uint) *InvitationQuery {
	q.id = id
	return q
}

func (q *InvitationQuery) Exclude(id uint) *InvitationQuery {
	q.excludeID = id
	return q
}

func (q *InvitationQuery) Person(id uint) *InvitationQuery {
	q.personID = id
	return q
}

func (q *InvitationQuery) Status(s string) *InvitationQuery {
	q.status = s
	return q
}

// Active keeps only live commitments (Confirmado/Sustituido).
func (q *InvitationQuery) Active() *InvitationQuery {
	q.active = true
	return q
}

func (q *InvitationQuery) Date(d *model.DateOnly) *InvitationQuery {
	q.date = d
	return q
}

func (q *InvitationQuery) From(d *model.DateOnly) *InvitationQuery {
	q.dateFrom = d
	return q
}

func (q *InvitationQuery) To(d *model.DateOnly) *InvitationQuery {
	q.dateTo = d
	return q
}

func (q *InvitationQuery) Full() *InvitationQuery {
	q.full = true
	return q
}

func (q *InvitationQuery) where() *gorm.DB {
	tx := q.db

	if q.id != 0 {
		tx = tx.Where("id = ?", q.id)
	}

	if q.excludeID != 0 {
		tx = tx.Where("id <> ?", q.excludeID)
	}

	if q.personID != 0 {
		tx = tx.Where("person_id = ?", q.personID)
	}

	if q.status != "" {
		tx = tx.Where("status = ?", q.status)
	}

	if q.active {
		tx = tx.Where("status in ?", []string{model.StatusConfirmed, model.StatusSubstituted})
	}

	if q.date != nil {
		tx = tx.Where("date = ?", q.date.String())
	}

	if q.dateFrom != nil {
		tx = tx.Where("date >= ?", q.dateFrom.String())
	}

	if q.dateTo != nil {
		tx = tx.Where("date <= ?", q.dateTo.String())
	}

	if q.full {
		tx = tx.Joins("Person")
	}

	return tx
}

func (q *InvitationQuery) Get() []*model.Invitation {
	return q.get(q.where().Model(&model.Invitation{}))
}

func (q *InvitationQuery) One() *model.Invitation {
	return q.one(q.where().Model(&model.Invitation{}))
}

func (q *InvitationQuery) Count() int64 {
	return q.count(q.where().Model(&model.Invitation{}))
}

func (q *InvitationQuery) Update(updates map[string]any) error {
	return q.updateOrError(q.where().Model(&model.Invitation{}), updates)
}

func (q *InvitationQuery) Delete() error {
	return q.where().Delete(&model.Invitation{}).Error
}
