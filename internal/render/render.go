// Package render produces the html documents handed out to organizers:
// invoices and participant profiles.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/theoboldt/juvem-sub001/internal/domain"
	"github.com/theoboldt/juvem-sub001/pkg/i18n"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// InvoiceItem is one participant line of an invoice
type InvoiceItem struct {
	Name  string
	Price *int64
	Paid  int64
	ToPay *int64
}

// InvoiceView holds everything printed on an invoice
type InvoiceView struct {
	Locale           string
	Number           string
	Date             time.Time
	IssuerName       string
	IssuerAddress    string
	EventTitle       string
	RecipientName    string
	RecipientAddress string
	Items            []InvoiceItem
	Total            *int64
	Paid             int64
	ToPay            *int64
}

// Field is a labelled display value
type Field struct {
	Label string
	Value string
}

// ProfileView holds everything printed on a participant profile
type ProfileView struct {
	Locale          string
	EventTitle      string
	ParticipantName string
	Birthday        time.Time
	Gender          string
	Status          domain.ParticipantStatus
	Food            []string
	Info            string
	ContactName     string
	ContactEmail    string
	ContactAddress  string
	Phones          []domain.Phone
	Fields          []Field
	Price           *int64
	Paid            int64
	ToPay           *int64
	Payments        []*domain.PaymentEvent
	Comments        []*domain.Comment
}

// Renderer executes the embedded templates with localized helpers
type Renderer struct {
	templates  *template.Template
	translator *i18n.Translator
	currency   string
}

// New parses the embedded templates
func New(translator *i18n.Translator, currency string) (*Renderer, error) {
	r := &Renderer{translator: translator, currency: currency}
	tmpl, err := template.New("documents").Funcs(r.funcs(translator.DefaultLocale())).ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.templates = tmpl
	return r, nil
}

func (r *Renderer) funcs(locale string) template.FuncMap {
	return template.FuncMap{
		"t": func(key string) string { return r.translator.T(locale, key, nil) },
		"tdata": func(key, name string, value any) string {
			return r.translator.T(locale, key, map[string]any{name: value})
		},
		"money": func(cents *int64) string { return r.translator.Money(locale, cents, r.currency) },
		"cents": func(cents int64) string { return r.translator.Money(locale, &cents, r.currency) },
		"date":  func(d time.Time) string { return r.translator.Date(locale, d) },
		"status": func(s domain.ParticipantStatus) string {
			return r.translator.T(locale, "status_"+string(s), nil)
		},
		"gender": func(g string) string {
			if g == "" {
				return ""
			}
			return r.translator.T(locale, "gender_"+g, nil)
		},
		"join": func(items []string) string { return strings.Join(items, ", ") },
	}
}

func (r *Renderer) execute(name, locale string, data any) ([]byte, error) {
	if locale == "" {
		locale = r.translator.DefaultLocale()
	}
	tmpl, err := r.templates.Clone()
	if err != nil {
		return nil, err
	}
	tmpl.Funcs(r.funcs(locale))

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// Invoice renders an invoice document
func (r *Renderer) Invoice(view *InvoiceView) ([]byte, error) {
	return r.execute("invoice", view.Locale, view)
}

// Profile renders a participant profile document
func (r *Renderer) Profile(view *ProfileView) ([]byte, error) {
	return r.execute("profile", view.Locale, view)
}
