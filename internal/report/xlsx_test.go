package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/atiapp/inviteboard/internal/model"
)

func TestWriteConfirmed(t *testing.T) {
	pid := uint(5)

	invs := []*model.Invitation{
		{
			ID:           1,
			Event:        "Inauguración",
			Municipality: "Centro",
			Party:        "PRI",
			Organizer:    "Juan López",
			AssignedName: "Laura Díaz",
			Venue:        "Salón Principal",
			Date:         model.ParseDateFlexible("2026-09-10"),
			Time:         model.ParseClockFlexible("10:00"),
			Status:       model.StatusConfirmed,
			PersonID:     &pid,
		},
	}

	titleOf := func(personID *uint) string {
		if personID != nil && *personID == pid {
			return "Secretaria"
		}

		return ""
	}

	var buf bytes.Buffer

	require.NoError(t, WriteConfirmed(&buf, invs, titleOf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)

	defer f.Close()

	assert.Contains(t, f.GetSheetList(), "Confirmados")

	cell := func(ref string) string {
		v, err := f.GetCellValue("Confirmados", ref)
		require.NoError(t, err)

		return v
	}

	assert.Equal(t, "Municipio/Dependencia", cell("A1"))
	assert.Equal(t, "Convoca Cargo", cell("I1"))

	assert.Equal(t, "Centro", cell("A2"))
	assert.Equal(t, "Laura Díaz", cell("D2"))
	assert.Equal(t, "Secretaria", cell("E2"))
	assert.Equal(t, "10/09/26", cell("F2"))
	assert.Equal(t, "10:00", cell("H2"))
}

func TestWriteConfirmed_Empty(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, WriteConfirmed(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)

	defer f.Close()

	rows, err := f.GetRows("Confirmados")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 9)
}
