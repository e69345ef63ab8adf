package model

import (
	"fmt"
	"strings"
)

// Language selects the meaning column.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageKyrgyz  Language = "kg"
	LanguageRussian Language = "ru"
)

// Languages lists the supported meaning languages in table order.
var Languages = []Language{LanguageEnglish, LanguageKyrgyz, LanguageRussian}

// ParseLanguage accepts a language code case-insensitively. An empty value
// defaults to English.
func ParseLanguage(code string) (Language, error) {
	normalized := Language(strings.ToLower(strings.TrimSpace(code)))
	if normalized == "" {
		return LanguageEnglish, nil
	}
	for _, lang := range Languages {
		if lang == normalized {
			return lang, nil
		}
	}
	return "", fmt.Errorf("unsupported language %q (expected en, kg or ru)", code)
}

// MeaningEntry is one row of the meanings table.
type MeaningEntry struct {
	Name      string `json:"name"`
	MeaningEN string `json:"en"`
	MeaningKG string `json:"kg"`
	MeaningRU string `json:"ru"`
}

// Meaning returns the column for lang.
func (e MeaningEntry) Meaning(lang Language) string {
	switch lang {
	case LanguageKyrgyz:
		return e.MeaningKG
	case LanguageRussian:
		return e.MeaningRU
	default:
		return e.MeaningEN
	}
}
