package i18n

import (
	"strings"
	"sync"

	"desktimer/internal/core/model"

	"github.com/jeandeaual/go-locale"
	"golang.org/x/text/language"
)

const defaultLang = "en"

var (
	mu   sync.RWMutex
	lang = defaultLang
)

var supported = []language.Tag{
	language.English,
	language.Portuguese,
	language.Spanish,
	language.Russian,
}

var supportedCodes = []string{"en", "pt", "es", "ru"}

var translations = map[string]map[string]string{
	"Desk Timer": {
		"pt": "Desk Timer",
		"es": "Desk Timer",
		"ru": "Desk Timer",
	},
	"Focus": {
		"pt": "Foco",
		"es": "Enfoque",
		"ru": "Фокус",
	},
	"Break": {
		"pt": "Pausa",
		"es": "Descanso",
		"ru": "Перерыв",
	},
	"Long Break": {
		"pt": "Pausa longa",
		"es": "Descanso largo",
		"ru": "Длинный перерыв",
	},
	"Session": {
		"pt": "Sessão",
		"es": "Sesión",
		"ru": "Сессия",
	},
	"Start": {
		"pt": "Iniciar",
		"es": "Iniciar",
		"ru": "Старт",
	},
	"Pause": {
		"pt": "Pausar",
		"es": "Pausar",
		"ru": "Пауза",
	},
	"Session complete!": {
		"pt": "Sessão concluída!",
		"es": "¡Sesión completada!",
		"ru": "Сессия завершена!",
	},
	"%s session complete.": {
		"pt": "Sessão de %s concluída.",
		"es": "Sesión de %s completada.",
		"ru": "Сессия «%s» завершена.",
	},
	"Preferences": {
		"pt": "Preferências",
		"es": "Preferencias",
		"ru": "Настройки",
	},
	"Show timer": {
		"pt": "Mostrar timer",
		"es": "Mostrar temporizador",
		"ru": "Показать таймер",
	},
	"Presets": {
		"pt": "Predefinições",
		"es": "Preajustes",
		"ru": "Пресеты",
	},
	"Mode": {
		"pt": "Modo",
		"es": "Modo",
		"ru": "Режим",
	},
	"Quit": {
		"pt": "Sair",
		"es": "Salir",
		"ru": "Выход",
	},
	"Save": {
		"pt": "Salvar",
		"es": "Guardar",
		"ru": "Сохранить",
	},
	"Cancel": {
		"pt": "Cancelar",
		"es": "Cancelar",
		"ru": "Отмена",
	},
	"min": {
		"pt": "min",
		"es": "min",
		"ru": "мин",
	},
}

// Detect picks the UI language. A non-empty forced value wins over the
// system locale; anything unsupported resolves to English.
func Detect(forced string) string {
	if forced = strings.TrimSpace(forced); forced != "" {
		return Match(forced)
	}
	userLocales, err := locale.GetLocales()
	if err != nil || len(userLocales) == 0 {
		return defaultLang
	}
	return Match(userLocales...)
}

// Match returns the supported language closest to the candidates.
func Match(candidates ...string) string {
	tags := make([]language.Tag, 0, len(candidates))
	for _, candidate := range candidates {
		tag, err := language.Parse(strings.ReplaceAll(candidate, "_", "-"))
		if err != nil {
			continue
		}
		tags = append(tags, tag)
	}
	if len(tags) == 0 {
		return defaultLang
	}

	_, index, confidence := language.NewMatcher(supported).Match(tags...)
	if confidence == language.No {
		return defaultLang
	}
	return supportedCodes[index]
}

// SetLanguage switches the active language.
func SetLanguage(code string) {
	mu.Lock()
	defer mu.Unlock()
	lang = code
}

// Language returns the active language code.
func Language() string {
	mu.RLock()
	defer mu.RUnlock()
	return lang
}

// Languages lists the supported language codes.
func Languages() []string {
	return append([]string(nil), supportedCodes...)
}

// T translates key into the active language, returning key when no entry exists.
func T(key string) string {
	current := Language()
	if translated, ok := translations[key][current]; ok {
		return translated
	}
	return key
}

// ModeLabel returns the translated display name of mode.
func ModeLabel(mode model.Mode) string {
	switch mode {
	case model.ModeFocus:
		return T("Focus")
	case model.ModeShort:
		return T("Break")
	case model.ModeLong:
		return T("Long Break")
	default:
		return T("Session")
	}
}
