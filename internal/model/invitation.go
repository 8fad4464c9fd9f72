package model

import (
	"time"
)

// Invitation statuses as stored and sent on the wire.
const (
	StatusPending     = "Pendiente"
	StatusConfirmed   = "Confirmado"
	StatusSubstituted = "Sustituido"
	StatusCancelled   = "Cancelado"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusSubstituted, StatusCancelled:
		return true
	default:
		return false
	}
}

// ActiveStatus reports whether the status counts as a live commitment for
// double-booking purposes.
func ActiveStatus(s string) bool {
	return s == StatusConfirmed || s == StatusSubstituted
}

type Invitation struct {
	ID uint `gorm:"primaryKey"`

	Date *DateOnly  `gorm:"type:date;index"`
	Time *ClockTime `gorm:"type:text"`

	Event          string `gorm:"not null"`
	OrganizerTitle string
	Organizer      string
	Party          string
	Municipality   string
	Venue          string

	Status       string `gorm:"index;default:Pendiente"`
	AssignedName string
	Role         string
	Notes        string

	AssignedAt *time.Time
	UpdatedAt  time.Time
	UpdatedBy  string

	PersonID *uint `gorm:"index"`
	Person   *Person

	FileURL  string
	FileName string
	FileMime string
	FileSize int64
	FileTS   *time.Time
}

// AssigneeName prefers the live catalog name over the denormalized copy.
func (inv *Invitation) AssigneeName() string {
	if inv.Person != nil && inv.Person.Name != "" {
		return inv.Person.Name
	}

	return inv.AssignedName
}

func (inv *Invitation) StatusOrDefault() string {
	if inv.Status == "" {
		return StatusPending
	}

	return inv.Status
}

// AppendNote extends the observations field with the separator used on cards.
func (inv *Invitation) AppendNote(note string) {
	if note == "" {
		return
	}

	if inv.Notes == "" {
		inv.Notes = note
	} else {
		inv.Notes += " | " + note
	}
}

type InvitationDTO struct {
	ID       uint   `json:"ID"`
	PersonID *uint  `json:"PersonaID"`
	Event    string `json:"Evento"`

	OrganizerTitle string `json:"Convoca Cargo"`
	Organizer      string `json:"Convoca"`
	Party          string `json:"Partido Político"`

	Date *DateOnly  `json:"Fecha"`
	Time *ClockTime `json:"Hora"`

	DateFmt string `json:"FechaFmt"`
	TimeFmt string `json:"HoraFmt"`

	Municipality string `json:"Municipio/Dependencia"`
	Venue        string `json:"Lugar"`

	Status       string `json:"Estatus"`
	AssignedName string `json:"Asignado A"`
	PersonName   string `json:"PersonaNombre,omitempty"`
	Role         string `json:"Rol"`
	Notes        string `json:"Observaciones"`

	AssignedAt string `json:"Fecha Asignación"`
	UpdatedAt  string `json:"Última Modificación"`
	UpdatedBy  string `json:"Modificado Por"`

	FileURL  string `json:"ArchivoURL"`
	FileName string `json:"ArchivoNombre"`
	FileMime string `json:"ArchivoMime"`
	FileSize int64  `json:"ArchivoTamano"`
	FileTS   string `json:"ArchivoTS"`

	DaysToEvent *int `json:"DiasParaEvento"`
}

// ToInvitation rebuilds the fields needed for client side scheduling checks.
func (d *InvitationDTO) ToInvitation() *Invitation {
	return &Invitation{
		ID:           d.ID,
		PersonID:     d.PersonID,
		Event:        d.Event,
		Date:         d.Date,
		Time:         d.Time,
		Venue:        d.Venue,
		Status:       d.Status,
		AssignedName: d.AssignedName,
		Role:         d.Role,
	}
}

func (inv *Invitation) DTO() *InvitationDTO {
	d := &InvitationDTO{
		ID:             inv.ID,
		PersonID:       inv.PersonID,
		Event:          inv.Event,
		OrganizerTitle: inv.OrganizerTitle,
		Organizer:      inv.Organizer,
		Party:          inv.Party,
		Date:           inv.Date,
		Time:           inv.Time,
		Municipality:   inv.Municipality,
		Venue:          inv.Venue,
		Status:         inv.StatusOrDefault(),
		AssignedName:   inv.AssigneeName(),
		Role:           inv.Role,
		Notes:          inv.Notes,
		AssignedAt:     fmtStamp(inv.AssignedAt),
		UpdatedBy:      inv.UpdatedBy,
		FileURL:        inv.FileURL,
		FileName:       inv.FileName,
		FileMime:       inv.FileMime,
		FileSize:       inv.FileSize,
		FileTS:         fmtStamp(inv.FileTS),
	}

	if !inv.UpdatedAt.IsZero() {
		d.UpdatedAt = inv.UpdatedAt.Format(stampLayout)
	}

	if inv.Person != nil {
		d.PersonName = inv.Person.Name
	}

	if inv.Date != nil {
		d.DateFmt = inv.Date.Fmt()
		days := inv.Date.DaysUntil(time.Now())
		d.DaysToEvent = &days
	}

	if inv.Time != nil {
		d.TimeFmt = inv.Time.String()
	}

	return d
}
