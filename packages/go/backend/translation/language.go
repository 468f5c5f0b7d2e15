// Package translation holds the language enumeration and the translation
// collaborators: a deterministic dictionary stub, an AWS Lambda client and a
// Gemini client.
package translation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownLanguage is returned by strict lookups of unsupported codes.
var ErrUnknownLanguage = errors.New("translation: unknown language")

// Language is one of the fixed set of supported languages.
type Language int

const (
	English Language = iota
	Spanish
	French
	German
	Italian
	Portuguese
	Japanese
	Korean
	Chinese
	Russian
)

var languageInfo = [...]struct {
	code string
	name string
}{
	English:    {"en", "English"},
	Spanish:    {"es", "Spanish"},
	French:     {"fr", "French"},
	German:     {"de", "German"},
	Italian:    {"it", "Italian"},
	Portuguese: {"pt", "Portuguese"},
	Japanese:   {"ja", "Japanese"},
	Korean:     {"ko", "Korean"},
	Chinese:    {"zh", "Chinese"},
	Russian:    {"ru", "Russian"},
}

// Languages returns every supported language in enumeration order.
func Languages() []Language {
	out := make([]Language, len(languageInfo))
	for i := range languageInfo {
		out[i] = Language(i)
	}
	return out
}

func (l Language) valid() bool { return l >= 0 && int(l) < len(languageInfo) }

// Code returns the short lowercase identifier, e.g. "es".
func (l Language) Code() string {
	if !l.valid() {
		return English.Code()
	}
	return languageInfo[l].code
}

// String returns the English name of the language.
func (l Language) String() string {
	if !l.valid() {
		return fmt.Sprintf("Language(%d)", int(l))
	}
	return languageInfo[l].name
}

// LookupLanguage resolves a code strictly.
func LookupLanguage(code string) (Language, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	for i, info := range languageInfo {
		if info.code == code {
			return Language(i), nil
		}
	}
	return English, fmt.Errorf("%w: %q", ErrUnknownLanguage, code)
}

// ParseLanguage resolves a code, falling back to English for anything
// unknown. It is the decoder used on the translation wire.
func ParseLanguage(code string) Language {
	l, err := LookupLanguage(code)
	if err != nil {
		return English
	}
	return l
}

// MarshalText encodes the language as its code.
func (l Language) MarshalText() ([]byte, error) {
	return []byte(l.Code()), nil
}

// UnmarshalText decodes a code strictly so configuration typos surface.
func (l *Language) UnmarshalText(text []byte) error {
	parsed, err := LookupLanguage(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// LanguagePair is a translation direction.
type LanguagePair struct {
	Source Language `json:"source" toml:"source"`
	Target Language `json:"target" toml:"target"`
}

// Swapped returns the reverse direction.
func (p LanguagePair) Swapped() LanguagePair {
	return LanguagePair{Source: p.Target, Target: p.Source}
}

func (p LanguagePair) String() string {
	return p.Source.Code() + "->" + p.Target.Code()
}
