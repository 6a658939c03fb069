package i18n

import (
	"testing"

	"desktimer/internal/core/model"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	cases := map[string]string{
		"en-US": "en",
		"pt_BR": "pt",
		"es-MX": "es",
		"ru":    "ru",
		"de":    "en",
		"%%":    "en",
	}
	for candidate, want := range cases {
		assert.Equal(t, want, Match(candidate), candidate)
	}
	assert.Equal(t, "es", Match("xx", "es-ES"))
	assert.Equal(t, "en", Match())
}

func TestDetectPrefersForcedLanguage(t *testing.T) {
	assert.Equal(t, "ru", Detect(" ru "))
}

func TestTranslate(t *testing.T) {
	t.Cleanup(func() { SetLanguage(defaultLang) })

	SetLanguage("pt")
	assert.Equal(t, "pt", Language())
	assert.Equal(t, "Pausa longa", ModeLabel(model.ModeLong))
	assert.Equal(t, "untranslated key", T("untranslated key"))

	SetLanguage("en")
	assert.Equal(t, "Focus", ModeLabel(model.ModeFocus))
	assert.Equal(t, "Break", ModeLabel(model.ModeShort))
	assert.Equal(t, "Session", ModeLabel(model.Mode("other")))
}

func TestEveryTranslationCoversEveryLanguage(t *testing.T) {
	for key, entries := range translations {
		for _, code := range supportedCodes[1:] {
			assert.NotEmpty(t, entries[code], "%s lacks %s", key, code)
		}
	}
}
