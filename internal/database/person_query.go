package database

import (
	"gorm.io/gorm"

	"github.com/atiapp/inviteboard/internal/model"
)

type PersonQuery struct {
	Query[model.Person]
	id     uint
	active bool
	full   bool
}

func NewPersonQuery(db *gorm.DB) *PersonQuery {
	return &PersonQuery{
		Query: Query[model.Person]{
			db:    db,
			limit: 1000,
			order: "name",
		},
	}
}

func (q *PersonQuery) Order(s string) *PersonQuery {
	q.order = s
	return q
}

func (q *PersonQuery) Limit(n int) *PersonQuery {
	q.limit = n
	return q
}

func (q *PersonQuery) Id(id uint) *PersonQuery {
	q.id = id
	return q
}

func (q *PersonQuery) Active() *PersonQuery {
	q.active = true
	return q
}

func (q *PersonQuery) Full() *PersonQuery {
	q.full = true
	return q
}

func (q *PersonQuery) where() *gorm.DB {
	tx := q.db

	if q.id != 0 {
		tx = tx.Where("id = ?", q.id)
	}

	if q.active {
		tx = tx.Where("active = ?", true)
	}

	if q.full {
		tx = tx.Preload("Invitations")
	}

	return tx
}

func (q *PersonQuery) Get() []*model.Person {
	return q.get(q.where().Model(&model.Person{}))
}

func (q *PersonQuery) One() *model.Person {
	return q.one(q.where().Model(&model.Person{}))
}

func (q *PersonQuery) Update(updates map[string]any) error {
	return q.updateOrError(q.where().Model(&model.Person{}), updates)
}

func (q *PersonQuery) Delete() error {
	return q.where().Delete(&model.Person{}).Error
}
