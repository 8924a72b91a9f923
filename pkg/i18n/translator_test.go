package i18n

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTranslator(t *testing.T) *Translator {
	t.Helper()
	tr, err := NewTranslator("de")
	require.NoError(t, err)
	return tr
}

func TestTranslator_T(t *testing.T) {
	tr := newTranslator(t)

	assert.Equal(t, "Rechnung", tr.T("", "invoice_title", nil))
	assert.Equal(t, "Invoice", tr.T("en", "invoice_title", nil))
	assert.Equal(t, "Rechnung", tr.T("fr", "invoice_title", nil), "unknown locale falls back to default")
	assert.Equal(t, "missing_key", tr.T("de", "missing_key", nil))
	assert.Equal(t, "", tr.T("de", "", nil))
	assert.Contains(t, tr.T("en", "invoice_intro", map[string]any{"Event": "Summer Camp"}), "Summer Camp")
}

func TestTranslator_Bool(t *testing.T) {
	tr := newTranslator(t)
	assert.Equal(t, "ja", tr.Bool("de", true))
	assert.Equal(t, "nein", tr.Bool("de", false))
	assert.Equal(t, "yes", tr.Bool("en", true))
}

func TestTranslator_Money(t *testing.T) {
	tr := newTranslator(t)
	amount := int64(123450)

	assert.Equal(t, "1.234,50 EUR", tr.Money("de", &amount, "EUR"))
	assert.Equal(t, "1,234.50 EUR", tr.Money("en", &amount, "EUR"))
	assert.Equal(t, "kein Preis festgelegt", tr.Money("de", nil, "EUR"))
}

func TestTranslator_Date(t *testing.T) {
	tr := newTranslator(t)
	d := time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "01.05.2019", tr.Date("de", d))
	assert.Equal(t, "01.05.2019", tr.Date("en", d))
	assert.Equal(t, "01.05.2019", tr.Date("", d))
	assert.Equal(t, "", tr.Date("de", time.Time{}))
}

func TestTranslator_Number(t *testing.T) {
	tr := newTranslator(t)
	assert.Equal(t, "2,5", tr.Number("de", 2.5))
	assert.Equal(t, "2.5", tr.Number("en", 2.5))
	assert.Equal(t, "3", tr.Number("de", 3))
}
