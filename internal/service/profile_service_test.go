package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/internal/dto"
	"github.com/theoboldt/juvem-sub001/pkg/config"
)

func TestProfileService_HTML(t *testing.T) {
	f := newFixture(t)
	pe := setupPricedEvent(t, f)

	_, err := f.comments.Create(f.ctx, admin, &dto.CreateCommentRequest{
		Subject:   domain.OwnerParticipant,
		SubjectID: pe.first.ID,
		Content:   "Schwimmabzeichen vorhanden",
	})
	require.NoError(t, err)

	doc, err := f.profiles.Render(f.ctx, pe.event.ID, pe.first.ID, "de", "")
	require.NoError(t, err)
	assert.Equal(t, "profile-"+pe.first.ID+".html", doc.Name)
	assert.Equal(t, domain.ContentTypeHTML, doc.ContentType)

	body := string(doc.Data)
	assert.Contains(t, body, "Lena Muster")
	assert.Contains(t, body, "Einzel")
	assert.Contains(t, body, "135,00 EUR")
	assert.Contains(t, body, "Schwimmabzeichen vorhanden")
}

func TestProfileService_Formats(t *testing.T) {
	f := newFixture(t)
	pe := setupPricedEvent(t, f)

	_, err := f.profiles.Render(f.ctx, pe.event.ID, pe.first.ID, "de", "docx")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.profiles.Render(f.ctx, pe.event.ID, pe.first.ID, "de", FormatPDF)
	assert.ErrorIs(t, err, ErrPDFUnavailable)

	_, err = f.profiles.Render(f.ctx, pe.event.ID, "missing", "de", FormatHTML)
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestProfileService_PDF(t *testing.T) {
	converter := &fakeConverter{}
	f := newFixtureWithConverter(t, converter, config.InvoiceConfig{Currency: "EUR"})
	pe := setupPricedEvent(t, f)

	doc, err := f.profiles.Render(f.ctx, pe.event.ID, pe.second.ID, "de", FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, domain.ContentTypePDF, doc.ContentType)
	assert.Equal(t, "%PDF-1.7 profile-"+pe.second.ID, string(doc.Data))

	converter.err = errors.New("gotenberg down")
	_, err = f.profiles.Render(f.ctx, pe.event.ID, pe.second.ID, "de", FormatPDF)
	assert.ErrorIs(t, err, ErrPDFUnavailable)
}
