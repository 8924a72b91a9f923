package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
)

func readSheet(t *testing.T, buf *bytes.Buffer, sheet string) [][]string {
	t.Helper()
	wb, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestExportService_Participants(t *testing.T) {
	f := newFixture(t)
	pe := setupPricedEvent(t, f)
	withdrawn := f.register(t, pe.event.ID, participantInput("Paul", "Beispiel"))
	_, err := f.participations.ChangeStatus(f.ctx, admin, pe.event.ID, withdrawn.Participants[0].ID, &dto.ChangeStatusRequest{Status: domain.StatusWithdrawn})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.exports.Participants(f.ctx, pe.event.ID, "de", &buf))

	rows := readSheet(t, &buf, "Teilnehmende")
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Nachname", "Vorname", "Geburtsdatum", "Alter", "Geschlecht", "Status", "Preis", "offen", "Bus", "Zimmer"}, rows[0])

	lena := rows[1]
	assert.Equal(t, "Muster", lena[0])
	assert.Equal(t, "Lena", lena[1])
	assert.Equal(t, "04.03.2014", lena[2])
	assert.Equal(t, "12", lena[3])
	assert.Equal(t, "weiblich", lena[4])
	assert.Equal(t, "135", lena[6])
	assert.Equal(t, "ja", lena[8])
	assert.Equal(t, "Einzel", lena[9])
	assert.Equal(t, "Tom", rows[2][1])
}

func TestExportService_Participations(t *testing.T) {
	f := newFixture(t)
	pe := setupPricedEvent(t, f)

	var buf bytes.Buffer
	require.NoError(t, f.exports.Participations(f.ctx, pe.event.ID, "de", &buf))

	rows := readSheet(t, &buf, "Anmeldungen")
	require.Len(t, rows, 2)
	assert.Equal(t, "Anrede", rows[0][0])
	row := rows[1]
	assert.Equal(t, "Frau", row[0])
	assert.Equal(t, "maria@example.com", row[3])
	assert.Equal(t, "0711 123456", row[4])
	assert.Equal(t, "2", row[6])
	assert.Equal(t, "235", row[7])
}

func TestExportService_Employees(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, nil, nil)
	_, err := f.employees.Create(f.ctx, admin, event.ID, employeeRequest())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.exports.Employees(f.ctx, event.ID, "de", &buf))

	rows := readSheet(t, &buf, "Mitarbeitende")
	require.Len(t, rows, 2)
	assert.Equal(t, "Leiter", rows[1][1])
	assert.Equal(t, "Tom", rows[1][2])

	assert.ErrorIs(t, f.exports.Employees(f.ctx, "missing", "de", &buf), ErrEventNotFound)
}
