package timefmt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

const (
	// ShortDateLayout is used for episode publication dates ("8 jan 21").
	ShortDateLayout = "2 Jan 06"
	// LongDateLayout is used for the header banner ("sex, 8 janeiro").
	LongDateLayout = "Mon, 2 January"
)

// ErrUnsupportedLocale is returned when no translation table matches a locale tag.
var ErrUnsupportedLocale = errors.New("unsupported locale")

// DateFormatter renders timestamps for display.
type DateFormatter interface {
	ShortDate(t time.Time) string
	LongDate(t time.Time) string
}

// LocaleFormatter formats dates with month and weekday names of a single locale.
type LocaleFormatter struct {
	locale   monday.Locale
	location *time.Location
}

// NewLocaleFormatter resolves a BCP 47 tag such as "pt-BR" to a translation
// table. Times are converted to location before formatting (UTC when nil).
func NewLocaleFormatter(tag string, location *time.Location) (*LocaleFormatter, error) {
	locale, err := resolveLocale(tag)
	if err != nil {
		return nil, err
	}
	if location == nil {
		location = time.UTC
	}
	return &LocaleFormatter{locale: locale, location: location}, nil
}

// Locale returns the resolved translation table name, e.g. "pt_BR".
func (f *LocaleFormatter) Locale() string {
	return string(f.locale)
}

func (f *LocaleFormatter) ShortDate(t time.Time) string {
	return monday.Format(t.In(f.location), ShortDateLayout, f.locale)
}

func (f *LocaleFormatter) LongDate(t time.Time) string {
	return monday.Format(t.In(f.location), LongDateLayout, f.locale)
}

func resolveLocale(tag string) (monday.Locale, error) {
	parsed, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		return "", fmt.Errorf("parse locale %q: %w", tag, err)
	}

	base, _ := parsed.Base()
	region, _ := parsed.Region()

	supported := monday.ListLocales()
	exact := monday.Locale(base.String() + "_" + region.String())
	for _, candidate := range supported {
		if candidate == exact {
			return candidate, nil
		}
	}

	prefix := base.String() + "_"
	for _, candidate := range supported {
		if strings.HasPrefix(string(candidate), prefix) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedLocale, tag)
}
