// Package i18n renders localized error messages from the embedded catalog.
package i18n

import (
	"strings"
	"sync"
	"text/template"

	i18ncatalog "github.com/louisbranch/sho/internal/platform/i18n/catalog"
)

// Code is an error code string. The errors package converts its own Code type.
type Code = string

// Catalog holds the error message templates of one locale.
type Catalog struct {
	locale   string
	messages map[Code]string

	mu     sync.Mutex
	parsed map[Code]*template.Template
}

// catalogs caches one Catalog per resolved locale.
var catalogs sync.Map

// GetCatalog returns the catalog for the locale that best matches preference,
// a locale tag or an Accept-Language value. Unknown locales get en-US.
func GetCatalog(preference string) *Catalog {
	bundle := i18ncatalog.Default()
	locale := bundle.ResolveLocale(preference)
	if cached, ok := catalogs.Load(locale); ok {
		return cached.(*Catalog)
	}
	resolved, messages := bundle.NamespaceMessagesWithFallback(locale, "errors")
	cat, _ := catalogs.LoadOrStore(resolved, NewCatalog(resolved, messages))
	return cat.(*Catalog)
}

// NewCatalog copies messages into a catalog for locale.
func NewCatalog(locale string, messages map[Code]string) *Catalog {
	cloned := make(map[Code]string, len(messages))
	for code, message := range messages {
		cloned[code] = message
	}
	return &Catalog{locale: locale, messages: cloned, parsed: map[Code]*template.Template{}}
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for code with metadata as template data.
// A missing message yields the code; a broken template yields its raw text.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	raw, ok := c.messages[code]
	if !ok {
		return code
	}
	tmpl, err := c.template(code, raw)
	if err != nil {
		return raw
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, metadata); err != nil {
		return raw
	}
	return strings.TrimSpace(out.String())
}

func (c *Catalog) template(code Code, raw string) (*template.Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tmpl, ok := c.parsed[code]; ok {
		return tmpl, nil
	}
	tmpl, err := template.New(code).Parse(raw)
	if err != nil {
		return nil, err
	}
	c.parsed[code] = tmpl
	return tmpl, nil
}
