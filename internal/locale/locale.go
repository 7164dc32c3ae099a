// Package locale loads the operator-facing message catalogs.
package locale

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// ErrMissingKey indicates a catalog lacks a message the shell needs.
var ErrMissingKey = errors.New("locale: missing message")

// Message keys used by the shell.
const (
	MenuPrompt = "menu.prompt"
	MenuCreate = "menu.create"
	MenuList   = "menu.list"
	MenuEdit   = "menu.edit"
	MenuDelete = "menu.delete"
	MenuExit   = "menu.exit"

	ListPrompt     = "list.prompt"
	ListAll        = "list.all"
	ListComplete   = "list.complete"
	ListIncomplete = "list.incomplete"
	ListNone       = "list.none"
	ListHeader     = "list.header"
	ListItem       = "list.item"

	StatusComplete   = "status.complete"
	StatusIncomplete = "status.incomplete"

	FieldName    = "field.name"
	FieldEmail   = "field.email"
	FieldPhone   = "field.phone"
	FieldAddress = "field.address"

	EditTarget  = "edit.target"
	EditName    = "edit.name"
	EditEmail   = "edit.email"
	EditPhone   = "edit.phone"
	EditAddress = "edit.address"

	DeleteTarget = "delete.target"

	ResultCreated  = "result.created"
	ResultUpdated  = "result.updated"
	ResultDeleted  = "result.deleted"
	ResultNotFound = "result.not_found"
	ResultEmpty    = "result.empty"

	Goodbye = "goodbye"
)

// Keys lists every message a catalog must define.
var Keys = []string{
	MenuPrompt, MenuCreate, MenuList, MenuEdit, MenuDelete, MenuExit,
	ListPrompt, ListAll, ListComplete, ListIncomplete, ListNone, ListHeader, ListItem,
	StatusComplete, StatusIncomplete,
	FieldName, FieldEmail, FieldPhone, FieldAddress,
	EditTarget, EditName, EditEmail, EditPhone, EditAddress,
	DeleteTarget,
	ResultCreated, ResultUpdated, ResultDeleted, ResultNotFound, ResultEmpty,
	Goodbye,
}

// Catalog holds the parsed messages for one language.
type Catalog struct {
	lang      string
	templates map[string]*template.Template
}

// Load reads <lang>.yaml from fsys. Every value is parsed as a text/template
// and every key in Keys must be present.
func Load(fsys fs.FS, lang string) (*Catalog, error) {
	if lang == "" || strings.ContainsAny(lang, `/\.`) {
		return nil, fmt.Errorf("locale: invalid language %q", lang)
	}

	data, err := fs.ReadFile(fsys, lang+".yaml")
	if err != nil {
		return nil, fmt.Errorf("locale: loading %s: %w", lang, err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("locale: parsing %s: %w", lang, err)
	}

	return New(lang, raw)
}

// New builds a Catalog from an in-memory message map.
func New(lang string, messages map[string]string) (*Catalog, error) {
	var missing []string
	for _, k := range Keys {
		if _, ok := messages[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w in %s: %s", ErrMissingKey, lang, strings.Join(missing, ", "))
	}

	c := &Catalog{lang: lang, templates: make(map[string]*template.Template, len(messages))}
	for k, v := range messages {
		tmpl, err := template.New(k).Option("missingkey=error").Parse(v)
		if err != nil {
			return nil, fmt.Errorf("locale: parsing template %s.%s: %w", lang, k, err)
		}
		c.templates[k] = tmpl
	}
	return c, nil
}

// Lang returns the catalog's language code.
func (c *Catalog) Lang() string {
	return c.lang
}

// Text renders the message for key with data. Unknown keys and failed
// renders return the key itself so a broken catalog never hides output.
func (c *Catalog) Text(key string, data any) string {
	tmpl, ok := c.templates[key]
	if !ok {
		return key
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return key
	}
	return buf.String()
}
