// Package report renders the confirmed-invitations workbook handed out before
// each week's events.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/atiapp/inviteboard/internal/model"
)

const sheetName = "Confirmados"

var headers = []string{
	"Municipio/Dependencia",
	"Partido Político",
	"Quien Convoca",
	"Asignado",
	"Cargo del Asignado",
	"Fecha",
	"Lugar",
	"Hora",
	"Convoca Cargo",
}

// WriteConfirmed renders the workbook for the given invitations. Callers
// filter to confirmed ones; rows come out in the given order.
func WriteConfirmed(w io.Writer, invitations []*model.Invitation, titleOf func(personID *uint) string) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	f.SetActiveSheet(idx)

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E9ECEF"}},
	})
	if err != nil {
		return err
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)

		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}

		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))

	if err := f.SetColWidth(sheetName, "A", lastCol, 24); err != nil {
		return err
	}

	for i, inv := range invitations {
		row := i + 2

		title := ""
		if titleOf != nil {
			title = titleOf(inv.PersonID)
		}

		dateFmt := ""
		if inv.Date != nil {
			dateFmt = inv.Date.Fmt()
		}

		timeFmt := ""
		if inv.Time != nil {
			timeFmt = inv.Time.String()
		}

		values := []any{
			inv.Municipality,
			inv.Party,
			inv.Organizer,
			inv.AssigneeName(),
			title,
			dateFmt,
			inv.Venue,
			timeFmt,
			inv.OrganizerTitle,
		}

		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)

			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
	}

	filterRange := fmt.Sprintf("A1:%s%d", lastCol, len(invitations)+1)

	if err := f.AutoFilter(sheetName, filterRange, nil); err != nil {
		return err
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	return f.Write(w)
}
