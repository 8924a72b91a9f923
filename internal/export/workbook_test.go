package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	participants := &Table{
		Sheet:   "Teilnehmende",
		Headers: []string{"Vorname", "Nachname", "Preis"},
		Widths:  []float64{20, 20, 10},
	}
	participants.AddRow("Ben", "Muster", 120.5)
	participants.AddRow("Clara", "Muster", nil)

	employees := &Table{Sheet: "Mitarbeitende", Headers: []string{"Name"}}
	employees.AddRow("Dora")

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, participants, employees))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Teilnehmende", "Mitarbeitende"}, f.GetSheetList())

	rows, err := f.GetRows("Teilnehmende")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Vorname", "Nachname", "Preis"}, rows[0])
	assert.Equal(t, []string{"Ben", "Muster", "120.5"}, rows[1])
	assert.Equal(t, []string{"Clara", "Muster"}, rows[2])

	rows, err = f.GetRows("Mitarbeitende")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Name"}, {"Dora"}}, rows)
}

func TestWriteWorkbook_NoTables(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteWorkbook(&buf))
}

func TestCents(t *testing.T) {
	v := int64(1999)
	assert.Equal(t, 19.99, Cents(&v))
	assert.Nil(t, Cents(nil))
}
