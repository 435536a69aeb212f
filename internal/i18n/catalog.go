// Package i18n holds the localized messages shown by the views.
package i18n

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fr"
	localeid "github.com/go-playground/locales/id"
	ut "github.com/go-playground/universal-translator"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

var supported = map[string]func() locales.Translator{
	"en": en.New,
	"fr": fr.New,
	"id": localeid.New,
}

// SupportedLocales returns the locales a catalog can serve, sorted
func SupportedLocales() []string {
	names := make([]string, 0, len(supported))
	for name := range supported {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Catalog resolves message keys to localized text
type Catalog struct {
	uni           *ut.UniversalTranslator
	defaultLocale string
}

// NewCatalog builds a catalog from the built-in messages and the given overrides
// (locale -> key -> text). Overrides replace built-in texts.
func NewCatalog(defaultLocale string, overrides map[string]map[string]string) (*Catalog, error) {
	defaultLocale = strings.ToLower(defaultLocale)
	newFallback, ok := supported[defaultLocale]
	if !ok {
		return nil, fmt.Errorf("unsupported default locale: %s", defaultLocale)
	}

	translators := make([]locales.Translator, 0, len(supported))
	for _, name := range SupportedLocales() {
		translators = append(translators, supported[name]())
	}
	uni := ut.New(newFallback(), translators...)

	for locale, messages := range builtinMessages {
		if err := addMessages(uni, locale, messages, false); err != nil {
			return nil, err
		}
	}
	for locale, messages := range overrides {
		if err := addMessages(uni, strings.ToLower(locale), messages, true); err != nil {
			return nil, err
		}
	}

	return &Catalog{uni: uni, defaultLocale: defaultLocale}, nil
}

func addMessages(uni *ut.UniversalTranslator, locale string, messages map[string]string, override bool) error {
	trans, found := uni.GetTranslator(locale)
	if !found {
		return fmt.Errorf("unsupported locale: %s", locale)
	}
	for key, text := range messages {
		// Lines are looked up without parameters, so placeholders can never be filled
		if strings.ContainsAny(text, "{}") {
			return fmt.Errorf("message %s/%s: braces are not allowed in message text", locale, key)
		}
		if err := trans.Add(key, text, override); err != nil {
			return fmt.Errorf("failed to add message %s/%s: %w", locale, key, err)
		}
	}
	return nil
}

// DefaultLocale returns the locale used when no requested locale is supported
func (c *Catalog) DefaultLocale() string {
	return c.defaultLocale
}

// Lang returns the lookup for the first supported locale among the
// candidates, or the default locale. Candidates may carry a region
// ("fr-CA"); only the base language is matched.
func (c *Catalog) Lang(candidates ...string) Lang {
	fallback, _ := c.uni.GetTranslator(c.defaultLocale)

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		base := strings.ToLower(candidate)
		if tag, err := language.Parse(candidate); err == nil {
			b, _ := tag.Base()
			base = b.String()
		}
		if trans, found := c.uni.GetTranslator(base); found {
			return Lang{trans: trans, fallback: fallback}
		}
	}

	return Lang{trans: fallback, fallback: fallback}
}

// Lang looks up messages for one locale
type Lang struct {
	trans    ut.Translator
	fallback ut.Translator
}

// Locale returns the locale of the lookup
func (l Lang) Locale() string {
	return l.trans.Locale()
}

// Line returns the message for key. Missing messages fall back to the
// default locale, then to the key itself.
func (l Lang) Line(key string) string {
	if text, err := l.trans.T(key); err == nil {
		return text
	}
	if l.fallback != nil {
		if text, err := l.fallback.T(key); err == nil {
			return text
		}
	}
	log.Debugf("Missing message %q for locale %s", key, l.trans.Locale())
	return key
}
