// Package i18n localizes document labels, export headers and value formatting.
package i18n

import (
	"embed"
	"fmt"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

//go:embed active.*.toml
var localeFS embed.FS

var catalogs = []string{"active.de.toml", "active.en.toml"}

// Translator wraps a go-i18n bundle with a default locale
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
}

// NewTranslator loads the embedded catalogs. Unknown locales fall back to German.
func NewTranslator(defaultLocale string) (*Translator, error) {
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.German
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range catalogs {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			return nil, fmt.Errorf("i18n: failed to load %s: %w", file, err)
		}
	}

	return &Translator{bundle: bundle, defaultLanguage: tag}, nil
}

// DefaultLocale returns the locale used when none is requested
func (t *Translator) DefaultLocale() string {
	return t.defaultLanguage.String()
}

// T renders the message identified by key for locale, falling back to the
// default locale and finally to the key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	if key == "" {
		return ""
	}

	languages := make([]string, 0, 2)
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String())

	msg, err := i18n.NewLocalizer(t.bundle, languages...).Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		return key
	}
	return msg
}

// Bool renders a boolean as ja/nein (or the locale's equivalent)
func (t *Translator) Bool(locale string, v bool) string {
	if v {
		return t.T(locale, "bool_yes", nil)
	}
	return t.T(locale, "bool_no", nil)
}

// Money formats cents with two decimals and the currency code, e.g. "1.234,50 EUR".
// A nil amount renders the "no price" label.
func (t *Translator) Money(locale string, cents *int64, currency string) string {
	if cents == nil {
		return t.T(locale, "price_none", nil)
	}
	p := message.NewPrinter(t.tag(locale))
	return p.Sprintf("%v %s", number.Decimal(float64(*cents)/100, number.Scale(2)), currency)
}

// Number formats a plain number with the locale's separators
func (t *Translator) Number(locale string, v float64) string {
	return message.NewPrinter(t.tag(locale)).Sprint(number.Decimal(v, number.MaxFractionDigits(4)))
}

// DateLayout is used for dates in every locale; exports and profiles are read
// alongside German paperwork.
const DateLayout = "02.01.2006"

// Date formats a calendar date; the zero time renders empty
func (t *Translator) Date(locale string, d time.Time) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (t *Translator) tag(locale string) language.Tag {
	if locale == "" {
		return t.defaultLanguage
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return t.defaultLanguage
	}
	return tag
}
