package timefmt

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocaleFormatterEnglish(t *testing.T) {
	f, err := NewLocaleFormatter("en-US", nil)
	require.NoError(t, err)
	assert.Equal(t, "en_US", f.Locale())

	ts := time.Date(2021, time.January, 8, 16, 0, 0, 0, time.UTC)
	assert.Equal(t, "8 Jan 21", f.ShortDate(ts))
	assert.Equal(t, "Fri, 8 January", f.LongDate(ts))
}

func TestLocaleFormatterPortuguese(t *testing.T) {
	f, err := NewLocaleFormatter("pt-BR", nil)
	require.NoError(t, err)
	assert.Equal(t, "pt_BR", f.Locale())

	ts := time.Date(2021, time.January, 8, 16, 0, 0, 0, time.UTC)
	assert.True(t, strings.HasPrefix(f.ShortDate(ts), "8 "))
	assert.Contains(t, strings.ToLower(f.LongDate(ts)), "janeiro")
}

func TestLocaleFormatterBaseLanguageFallback(t *testing.T) {
	f, err := NewLocaleFormatter("pt", nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(f.Locale(), "pt_"))
}

func TestLocaleFormatterUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*3600)
	f, err := NewLocaleFormatter("en-US", loc)
	require.NoError(t, err)

	ts := time.Date(2021, time.January, 8, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, "7 Jan 21", f.ShortDate(ts))
}

func TestLocaleFormatterRejectsUnknownTag(t *testing.T) {
	_, err := NewLocaleFormatter("not a locale", nil)
	require.Error(t, err)

	_, err = NewLocaleFormatter("tlh", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedLocale))
}
