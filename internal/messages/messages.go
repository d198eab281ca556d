// Package messages holds the localized notification strings returned with
// mutation responses.
package messages

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Key names one message in the catalog.
type Key string

const (
	BookmarkAdded         Key = "bookmark.added"
	BookmarkExists        Key = "bookmark.exists"
	BookmarkRemoved       Key = "bookmark.removed"
	BookmarkRenamed       Key = "bookmark.renamed"
	BookmarkMoved         Key = "bookmark.moved"
	BookmarkNotFound      Key = "bookmark.notFound"
	BookmarkInvalid       Key = "bookmark.invalid"
	DirectoryAdded        Key = "directory.added"
	DirectoryRemoved      Key = "directory.removed"
	DirectoryRenamed      Key = "directory.renamed"
	DirectoryNotFound     Key = "directory.notFound"
	DirectoryNameRequired Key = "directory.nameRequired"
	StoreCleared          Key = "store.cleared"
	StoreRenumbered       Key = "store.renumbered"
	StoreUnchanged        Key = "store.unchanged"
	TreeDropIgnored       Key = "tree.dropIgnored"
	RequestInvalid        Key = "request.invalid"
)

// LanguageAuto picks the language from each request.
const LanguageAuto = "auto"

// supported is ordered by preference; the first entry is the fallback.
var supported = []language.Tag{
	language.English,
	language.MustParse("zh-CN"),
}

// Catalog resolves message keys to text in a supported language.
type Catalog struct {
	matcher language.Matcher
	tables  map[language.Tag]map[Key]string
	forced  *language.Tag
}

// Load parses the embedded catalog. A language other than "auto" or ""
// is used for every request regardless of Accept-Language.
func Load(lang string) (*Catalog, error) {
	return Parse(catalogYAML, lang)
}

// Parse builds a catalog from YAML keyed by BCP 47 tag.
func Parse(data []byte, lang string) (*Catalog, error) {
	var raw map[string]map[Key]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse message catalog: %w", err)
	}

	c := &Catalog{
		matcher: language.NewMatcher(supported),
		tables:  make(map[language.Tag]map[Key]string, len(raw)),
	}
	for name, table := range raw {
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("invalid catalog language %q: %w", name, err)
		}
		c.tables[tag] = table
	}
	if _, ok := c.tables[supported[0]]; !ok {
		return nil, fmt.Errorf("message catalog has no %s table", supported[0])
	}

	if lang != "" && !strings.EqualFold(lang, LanguageAuto) {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("invalid language %q: %w", lang, err)
		}
		matched := c.match(tag)
		c.forced = &matched
	}
	return c, nil
}

func (c *Catalog) match(tags ...language.Tag) language.Tag {
	_, i, _ := c.matcher.Match(tags...)
	return supported[i]
}

// Printer formats messages in one language.
type Printer struct {
	tag      language.Tag
	table    map[Key]string
	fallback map[Key]string
}

// For returns a printer for an Accept-Language header value.
func (c *Catalog) For(acceptLanguage string) *Printer {
	tag := supported[0]
	switch {
	case c.forced != nil:
		tag = *c.forced
	case acceptLanguage != "":
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(tags) > 0 {
			tag = c.match(tags...)
		}
	}
	return c.printer(tag)
}

// Tag returns a printer for tag.
func (c *Catalog) Tag(tag language.Tag) *Printer {
	return c.printer(c.match(tag))
}

func (c *Catalog) printer(tag language.Tag) *Printer {
	return &Printer{
		tag:      tag,
		table:    c.tables[tag],
		fallback: c.tables[supported[0]],
	}
}

// Language returns the printer's language tag.
func (p *Printer) Language() language.Tag {
	return p.tag
}

// Sprintf formats key with positional arguments. Unknown keys fall back to
// English, then to the key itself.
func (p *Printer) Sprintf(key Key, args ...any) string {
	text, ok := p.table[key]
	if !ok {
		if text, ok = p.fallback[key]; !ok {
			text = string(key)
		}
	}
	return Format(text, args...)
}

// Format replaces {0}, {1}... with args. Placeholders without a matching
// argument are left as they are.
func Format(text string, args ...any) string {
	if len(args) == 0 {
		return text
	}
	pairs := make([]string, 0, len(args)*2)
	for i, arg := range args {
		pairs = append(pairs, "{"+strconv.Itoa(i)+"}", fmt.Sprint(arg))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
