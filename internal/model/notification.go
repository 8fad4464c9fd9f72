package model

import (
	"strconv"
	"time"
)

func itoa(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}

// Notification is a point-in-time snapshot of a tracked field change on an
// invitation. Rows are append-only and consumed by external senders.
type Notification struct {
	ID uint `gorm:"primaryKey"`
	TS time.Time

	InvitationID string `gorm:"index"`

	Event        string
	Organizer    string
	Status       string
	AssignedName string
	Role         string

	Field    string
	OldValue string
	NewValue string
	Comment  string

	Date *DateOnly  `gorm:"type:date"`
	Time *ClockTime `gorm:"type:text"`

	Municipality   string
	Venue          string
	OrganizerTitle string

	Sent   bool `gorm:"index"`
	SentTS *time.Time
}

type NotificationDTO struct {
	ID           uint   `json:"ID"`
	TS           string `json:"TS"`
	InvitationID string `json:"InvitacionID"`
	Event        string `json:"Evento"`
	Status       string `json:"Estatus"`
	AssignedName string `json:"Asignado A"`
	Field        string `json:"Campo"`
	OldValue     string `json:"Valor Anterior"`
	NewValue     string `json:"Valor Nuevo"`
	Comment      string `json:"Comentario"`
	DateFmt      string `json:"FechaFmt"`
	TimeFmt      string `json:"HoraFmt"`
	Venue        string `json:"Lugar"`
}

func (n *Notification) DTO() *NotificationDTO {
	d := &NotificationDTO{
		ID:           n.ID,
		TS:           n.TS.Format(stampLayout),
		InvitationID: n.InvitationID,
		Event:        n.Event,
		Status:       n.Status,
		AssignedName: n.AssignedName,
		Field:        n.Field,
		OldValue:     n.OldValue,
		NewValue:     n.NewValue,
		Comment:      n.Comment,
		Venue:        n.Venue,
	}

	if n.Date != nil {
		d.DateFmt = n.Date.Fmt()
	}

	if n.Time != nil {
		d.TimeFmt = n.Time.String()
	}

	return d
}

// Snapshot builds a notification row for a single field change on inv.
func Snapshot(inv *Invitation, field, oldVal, newVal, comment string) *Notification {
	return &Notification{
		TS:             time.Now(),
		InvitationID:   itoa(inv.ID),
		Event:          inv.Event,
		Organizer:      inv.Organizer,
		Status:         inv.StatusOrDefault(),
		AssignedName:   inv.AssignedName,
		Role:           inv.Role,
		Field:          field,
		OldValue:       oldVal,
		NewValue:       newVal,
		Comment:        comment,
		Date:           inv.Date,
		Time:           inv.Time,
		Municipality:   inv.Municipality,
		Venue:          inv.Venue,
		OrganizerTitle: inv.OrganizerTitle,
	}
}
