package translate

import "unicode"

// DetectLanguage guesses the source language of a chat message from
// its script. Hiragana, katakana or kanji means Japanese; hangul means
// Korean; otherwise any Latin letters mean English. Returns "" when no
// recognizable script is present (digits, emoji, punctuation only).
func DetectLanguage(text string) string {
	hasLatin := false
	for _, r := range text {
		switch {
		case unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r), unicode.Is(unicode.Han, r):
			return "ja"
		case unicode.Is(unicode.Hangul, r):
			return "ko"
		case unicode.Is(unicode.Latin, r):
			hasLatin = true
		}
	}
	if hasLatin {
		return "en"
	}
	return ""
}
