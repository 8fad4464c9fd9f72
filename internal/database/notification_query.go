package database

import (
	"gorm.io/gorm"

	"github.com/atiapp/inviteboard/internal/model"
)

type NotificationQuery struct {
	Query[model.Notification]
	invitationID string
	ids          []uint
	unsent       bool
}

func NewNotificationQuery(db *gorm.DB) *NotificationQuery {
	return &NotificationQuery{
		Query: Query[model.Notification]{
			db:    db,
			limit: 1000,
			order: "ts",
		},
	}
}

func (q *NotificationQuery) Limit(n int) *NotificationQuery {
	q.limit = n
	return q
}

func (q *NotificationQuery) Invitation(id string) *NotificationQuery {
	q.invitationID = id
	return q
}

func (q *NotificationQuery) Ids(ids []uint) *NotificationQuery {
	q.ids = ids
	return q
}

func (q *NotificationQuery) Unsent() *NotificationQuery {
	q.unsent = true
	return q
}

func (q *NotificationQuery) where() *gorm.DB {
	tx := q.db

	if q.invitationID != "" {
		tx = tx.Where("invitation_id = ?", q.invitationID)
	}

	if len(q.ids) > 0 {
		tx = tx.Where("id in ?", q.ids)
	}

	if q.unsent {
		tx = tx.Where("sent = ?", false)
	}

	return tx
}

func (q *NotificationQuery) Get() []*model.Notification {
	return q.get(q.where().Model(&model.Notification{}))
}

func (q *NotificationQuery) Update(updates map[string]any) error {
	return q.updateOrError(q.where().Model(&model.Notification{}), updates)
}
