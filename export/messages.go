package export

import (
	"sync"

	i18n "github.com/goliatone/go-i18n"
	"golang.org/x/text/language"
)

// MessageCatalog resolves localized UI strings by key.
type MessageCatalog interface {
	Message(tag language.Tag, key string) string
}

// CatalogMessages is a MessageCatalog backed by a go-i18n translator. Lookups
// walk the tag parents before falling back.
type CatalogMessages struct {
	mu         sync.RWMutex
	data       i18n.Translations
	fallback   language.Tag
	translator i18n.Translator
}

// defaultMessages is shared by exporters built without WithMessages.
var defaultMessages = sync.OnceValue(func() *CatalogMessages {
	return NewCatalogMessages(language.English)
})

// NewCatalogMessages creates a catalog seeded with the exporter captions.
func NewCatalogMessages(fallback language.Tag) *CatalogMessages {
	if fallback == language.Und {
		fallback = language.English
	}
	c := &CatalogMessages{
		data:     make(i18n.Translations, len(defaultCaptions)),
		fallback: fallback,
	}
	for tag, entries := range defaultCaptions {
		for key, msg := range entries {
			c.put(tag, key, msg)
		}
	}
	_ = c.rebuild()
	return c
}

// Set registers msg for key in tag.
func (c *CatalogMessages) Set(tag language.Tag, key, msg string) error {
	if tag == language.Und || key == "" {
		return NewError(KindValidation, "message tag and key are required", nil)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(tag, key, msg)
	return c.rebuild()
}

// Message implements MessageCatalog. Unknown keys resolve to the fallback
// language, then to the key itself.
func (c *CatalogMessages) Message(tag language.Tag, key string) string {
	c.mu.RLock()
	translator := c.translator
	c.mu.RUnlock()
	if translator == nil {
		return key
	}
	msg, err := translator.Translate(tag.String(), key)
	if err != nil {
		return key
	}
	return msg
}

func (c *CatalogMessages) put(tag language.Tag, key, msg string) {
	code := tag.String()
	catalog := c.data[code]
	if catalog == nil {
		catalog = &i18n.TranslationCatalog{
			Locale:   i18n.Locale{Code: code},
			Messages: make(map[string]i18n.Message),
		}
		c.data[code] = catalog
	}
	entry := i18n.Message{MessageMetadata: i18n.MessageMetadata{ID: key, Locale: code}}
	entry.SetContent(msg)
	catalog.Messages[key] = entry
}

// rebuild swaps in a translator over a fresh store snapshot. Callers hold mu
// or own c exclusively.
func (c *CatalogMessages) rebuild() error {
	translator, err := i18n.NewSimpleTranslator(
		i18n.NewStaticStore(c.data),
		i18n.WithTranslatorDefaultLocale(c.fallback.String()),
		i18n.WithTranslatorFallbackResolver(i18n.NewStaticFallbackResolver()),
	)
	if err != nil {
		return NewError(KindInternal, "build message catalog", err)
	}
	c.translator = translator
	return nil
}

// CaptionKey returns the catalog key for a format caption.
func CaptionKey(format Format) string {
	switch format {
	case FormatNDJSON:
		return "ndjsonExporter.caption"
	case FormatCSV:
		return "csvExporter.caption"
	case FormatXLSX:
		return "excelExporter.caption"
	case FormatSQLite:
		return "sqliteExporter.caption"
	default:
		return "jsonExporter.caption"
	}
}

var defaultCaptions = map[language.Tag]map[string]string{
	language.English: {
		"jsonExporter.caption":   "Export to JSON",
		"ndjsonExporter.caption": "Export to JSON Lines",
		"csvExporter.caption":    "Export to CSV",
		"excelExporter.caption":  "Export to Excel",
		"sqliteExporter.caption": "Export to SQLite",
	},
	language.German: {
		"jsonExporter.caption":   "Export nach JSON",
		"ndjsonExporter.caption": "Export nach JSON Lines",
		"csvExporter.caption":    "Export nach CSV",
		"excelExporter.caption":  "Export nach Excel",
		"sqliteExporter.caption": "Export nach SQLite",
	},
	language.French: {
		"jsonExporter.caption":   "Exporter en JSON",
		"ndjsonExporter.caption": "Exporter en JSON Lines",
		"csvExporter.caption":    "Exporter en CSV",
		"excelExporter.caption":  "Exporter vers Excel",
		"sqliteExporter.caption": "Exporter vers SQLite",
	},
	language.Spanish: {
		"jsonExporter.caption":   "Exportar a JSON",
		"ndjsonExporter.caption": "Exportar a JSON Lines",
		"csvExporter.caption":    "Exportar a CSV",
		"excelExporter.caption":  "Exportar a Excel",
		"sqliteExporter.caption": "Exportar a SQLite",
	},
}
