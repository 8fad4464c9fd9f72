package model

// ConflictLevel classifies the temporal overlap between two invitations
// assigned to the same person on the same day.
type ConflictLevel string

const (
	LevelNone    ConflictLevel = "none"
	LevelTight2h ConflictLevel = "tight2h"
	LevelTight1h ConflictLevel = "tight1h"
	LevelHard    ConflictLevel = "hard"
)

var levelOrder = map[ConflictLevel]int{
	LevelNone:    0,
	LevelTight2h: 1,
	LevelTight1h: 2,
	LevelHard:    3,
}

func (l ConflictLevel) Severity() int {
	return levelOrder[l]
}

// Max returns the more severe of the two levels.
func (l ConflictLevel) Max(o ConflictLevel) ConflictLevel {
	if o.Severity() > l.Severity() {
		return o
	}

	return l
}

// ConflictItem is the wire form of a conflicting invitation, as listed in a
// 409 payload and in confirmation dialogs.
type ConflictItem struct {
	ID      uint   `json:"ID"`
	Event   string `json:"Evento"`
	DateFmt string `json:"FechaFmt"`
	TimeFmt string `json:"HoraFmt"`
	Status  string `json:"Estatus"`
	Venue   string `json:"Lugar"`
}

func ToConflictItem(inv *Invitation) ConflictItem {
	it := ConflictItem{
		ID:     inv.ID,
		Event:  inv.Event,
		Status: inv.StatusOrDefault(),
		Venue:  inv.Venue,
	}

	if inv.Date != nil {
		it.DateFmt = inv.Date.Fmt()
	}

	if inv.Time != nil {
		it.TimeFmt = inv.Time.String()
	}

	return it
}
