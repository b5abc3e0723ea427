package lingocache

import "strings"

// LanguageNames maps language codes to human-readable names, used by
// the admin CLI and model metadata.
var LanguageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"nl": "Dutch",
	"pl": "Polish",
	"ru": "Russian",
	"uk": "Ukrainian",
	"tr": "Turkish",
	"ar": "Arabic",
	"he": "Hebrew",
	"hi": "Hindi",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"th": "Thai",
	"vi": "Vietnamese",
	"id": "Indonesian",
}

// GetLanguageName returns the human-readable name for a language code,
// falling back to the code itself.
func GetLanguageName(langCode string) string {
	if name, ok := LanguageNames[BaseLang(langCode)]; ok {
		return name
	}
	return langCode
}

// NormalizeLocale converts a locale code to the canonical underscore
// form (e.g., "es-ES" -> "es_ES").
func NormalizeLocale(langCode string) string {
	return strings.ReplaceAll(langCode, "-", "_")
}

// BaseLang extracts the lowercase base language code from a locale
// (e.g., "en" from "en_US" or "en-US").
func BaseLang(langCode string) string {
	normalized := NormalizeLocale(langCode)
	return strings.ToLower(strings.Split(normalized, "_")[0])
}
