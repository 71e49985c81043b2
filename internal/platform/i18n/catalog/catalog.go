// Package catalog embeds the Sho message catalogs. The game namespace is
// registered with golang.org/x/text/message for printf-style copy; the errors
// namespace holds text/template strings rendered by the errors package.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BaseLocale is the locale every other locale falls back to.
const BaseLocale = "en-US"

// gameNamespace owns every key prefixed with "game.".
const gameNamespace = "game"

//go:embed locales/*/*.yaml
var embedded embed.FS

var defaultBundle = mustLoadEmbedded()

// Default returns the bundle built from the embedded catalogs.
func Default() *Bundle {
	return defaultBundle
}

// Bundle is the set of loaded locales plus a matcher over their tags.
type Bundle struct {
	// locale -> namespace -> key -> message
	byLocale map[string]map[string]map[string]string
	tags     []language.Tag
	matcher  language.Matcher
}

// LoadEmbedded loads the catalogs compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embedded)
}

// LoadFromFS loads files laid out as locales/<locale>/<namespace>.yaml.
// Keys must be unique within a locale and the base locale must exist.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	files, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob catalogs: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no catalogs under locales/")
	}
	slices.Sort(files)

	b := &Bundle{byLocale: map[string]map[string]map[string]string{}}
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		file, err := parseCatalogFile(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if err := b.add(name, file); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	if !b.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s has no catalogs", BaseLocale)
	}

	b.tags = []language.Tag{language.MustParse(BaseLocale)}
	for _, locale := range b.Locales() {
		if locale == BaseLocale {
			continue
		}
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("locale %q: %w", locale, err)
		}
		b.tags = append(b.tags, tag)
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

func (b *Bundle) add(name string, file catalogFile) error {
	dir, base := path.Split(name)
	if want := path.Base(dir); file.Locale != want {
		return fmt.Errorf("locale %q does not match directory %q", file.Locale, want)
	}
	if want := strings.TrimSuffix(base, path.Ext(base)); file.Namespace != want {
		return fmt.Errorf("namespace %q does not match file name %q", file.Namespace, want)
	}

	namespaces := b.byLocale[file.Locale]
	if namespaces == nil {
		namespaces = map[string]map[string]string{}
		b.byLocale[file.Locale] = namespaces
	}
	if _, dup := namespaces[file.Namespace]; dup {
		return fmt.Errorf("namespace %q defined twice for %s", file.Namespace, file.Locale)
	}
	for key := range file.Messages {
		if strings.HasPrefix(key, gameNamespace+".") != (file.Namespace == gameNamespace) {
			return fmt.Errorf("key %q does not belong in namespace %q", key, file.Namespace)
		}
		for other, messages := range namespaces {
			if _, dup := messages[key]; dup {
				return fmt.Errorf("key %q already defined in namespace %q", key, other)
			}
		}
	}
	namespaces[file.Namespace] = file.Messages
	return nil
}

// registerGameMessages makes the game namespace available to message.Printer.
func (b *Bundle) registerGameMessages() error {
	for _, tag := range b.tags {
		messages := b.byLocale[tag.String()][gameNamespace]
		for _, key := range slices.Sorted(maps.Keys(messages)) {
			if err := message.SetString(tag, key, messages[key]); err != nil {
				return fmt.Errorf("register %s %s: %w", tag, key, err)
			}
		}
	}
	return nil
}

// ResolveLocale matches a locale tag or Accept-Language value against the
// loaded locales. Anything unmatched resolves to BaseLocale.
func (b *Bundle) ResolveLocale(preference string) string {
	preference = strings.TrimSpace(preference)
	if b == nil || b.matcher == nil || preference == "" {
		return BaseLocale
	}
	tags, _, err := language.ParseAcceptLanguage(preference)
	if err != nil || len(tags) == 0 {
		return BaseLocale
	}
	_, index, confidence := b.matcher.Match(tags...)
	if confidence == language.No {
		return BaseLocale
	}
	return b.tags[index].String()
}

// Printer returns a printer for the game namespace in the resolved locale.
func (b *Bundle) Printer(preference string) *message.Printer {
	return message.NewPrinter(language.MustParse(b.ResolveLocale(preference)))
}

// HasLocale reports whether any catalog was loaded for locale.
func (b *Bundle) HasLocale(locale string) bool {
	if b == nil {
		return false
	}
	_, ok := b.byLocale[strings.TrimSpace(locale)]
	return ok
}

// Locales lists the loaded locales in sorted order.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(b.byLocale))
}

// Message looks key up in locale, then in BaseLocale.
func (b *Bundle) Message(locale string, key string) (string, bool) {
	if b == nil {
		return "", false
	}
	key = strings.TrimSpace(key)
	for _, candidate := range []string{strings.TrimSpace(locale), BaseLocale} {
		for _, messages := range b.byLocale[candidate] {
			if value, ok := messages[key]; ok {
				return value, true
			}
		}
	}
	return "", false
}

// NamespaceMessages returns a copy of one namespace for locale, without fallback.
func (b *Bundle) NamespaceMessages(locale string, namespace string) map[string]string {
	if b == nil {
		return map[string]string{}
	}
	messages := b.byLocale[strings.TrimSpace(locale)][strings.TrimSpace(namespace)]
	if messages == nil {
		return map[string]string{}
	}
	return maps.Clone(messages)
}

// NamespaceMessagesWithFallback returns the namespace for locale, or for
// BaseLocale when locale has none, along with the locale actually used.
func (b *Bundle) NamespaceMessagesWithFallback(locale string, namespace string) (string, map[string]string) {
	locale = strings.TrimSpace(locale)
	if messages := b.NamespaceMessages(locale, namespace); len(messages) > 0 {
		return locale, messages
	}
	return BaseLocale, b.NamespaceMessages(BaseLocale, namespace)
}

func mustLoadEmbedded() *Bundle {
	b, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	if err := b.registerGameMessages(); err != nil {
		panic(err)
	}
	return b
}
