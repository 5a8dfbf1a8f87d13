// Package i18n holds the supported languages and the translation catalog
// shared by every screen of the app.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Tag is a supported locale tag.
type Tag string

const (
	// English is the default locale.
	English Tag = "en"
	// Hindi is the secondary locale.
	Hindi Tag = "hi"
)

// Default is the locale used whenever a requested tag is not supported.
const Default = English

var supported = []Tag{English, Hindi}

// matcher order must mirror supported so Match indexes line up.
var matcher = language.NewMatcher([]language.Tag{language.English, language.Hindi})

// Supported returns the supported tags in display order.
func Supported() []Tag {
	out := make([]Tag, len(supported))
	copy(out, supported)
	return out
}

// IsSupported reports whether tag is exactly one of the supported tags.
func IsSupported(tag string) bool {
	for _, t := range supported {
		if string(t) == tag {
			return true
		}
	}
	return false
}

// Resolve returns tag when it is supported and Default otherwise.
// Matching is exact: no trimming, no case folding, no region stripping.
func Resolve(tag string) Tag {
	if IsSupported(tag) {
		return Tag(tag)
	}
	return Default
}

// Suggest picks the best supported tag for an Accept-Language header.
// It only pre-selects a choice on the language gate; lookups go through Resolve.
func Suggest(acceptLanguage string) Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(supported) {
		return Default
	}
	return supported[idx]
}

// DisplayName returns tag's name in English and in the language itself.
func DisplayName(tag Tag) (english, native string) {
	t := language.Make(string(tag))
	return display.English.Languages().Name(t), display.Self.Name(t)
}
