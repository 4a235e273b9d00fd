// Package codegen turns an event manifest into Go source.
//
// The generated file declares one event.ID constant per manifest entry,
// grouped by category, and an All slice in manifest order. Producers and
// consumers refer to the constants instead of spelling out strings, so a
// renamed event breaks the build rather than silently creating a second
// pending entry in the registry.
package codegen

import (
	"bytes"
	"fmt"
	"go/token"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/tools/imports"

	"github.com/dshills/gamebus/internal/manifest"
)

// DefaultEventImport is the import path of the event package referenced by
// generated code.
const DefaultEventImport = "github.com/dshills/gamebus/internal/event"

// Options configures generation.
type Options struct {
	// Package is the generated package name. Defaults to the manifest's
	// package, then "events".
	Package string

	// Prefix is prepended to every constant name.
	Prefix string

	// Source names the manifest in the generated header.
	Source string

	// EventImport overrides DefaultEventImport.
	EventImport string
}

// Constant is one generated declaration.
type Constant struct {
	Ident string
	Name  string
	Doc   []string
}

// Group is a category block of constants.
type Group struct {
	Category  string
	Constants []Constant
}

type fileData struct {
	Source      string
	Package     string
	EventImport string
	Groups      []Group
	All         []string
}

var fileTemplate = template.Must(template.New("events").Funcs(template.FuncMap{
	"quote": strconv.Quote,
	"title": func(s string) string {
		if s == "" {
			return "Uncategorized"
		}
		return cases.Title(language.English).String(s)
	},
}).Parse(`// Code generated by eventgen{{if .Source}} from {{.Source}}{{end}}; DO NOT EDIT.

package {{.Package}}

import "{{.EventImport}}"
{{range .Groups}}
// {{title .Category}} events.
const (
{{- range .Constants}}
{{- range .Doc}}
	// {{.}}
{{- end}}
	{{.Ident}} event.ID = {{quote .Name}}
{{- end}}
)
{{end}}
// All lists every declared event in manifest order.
var All = []event.ID{
{{- range .All}}
	{{.}},
{{- end}}
}
`))

// Generate renders m as a formatted Go file.
func Generate(m *manifest.Manifest, opts Options) ([]byte, error) {
	data, err := buildData(m, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	out, err := imports.Process(data.Package+".go", buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("formatting generated source: %w", err)
	}
	return out, nil
}

func buildData(m *manifest.Manifest, opts Options) (*fileData, error) {
	pkg := opts.Package
	if pkg == "" {
		pkg = m.Package
	}
	if pkg == "" {
		pkg = "events"
	}
	if !token.IsIdentifier(pkg) || token.IsKeyword(pkg) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPackage, pkg)
	}

	importPath := opts.EventImport
	if importPath == "" {
		importPath = DefaultEventImport
	}

	data := &fileData{
		Source:      opts.Source,
		Package:     pkg,
		EventImport: importPath,
	}

	caser := cases.Title(language.English, cases.NoLower)
	owners := make(map[string]string, len(m.Events))
	groups := make(map[string]int)

	for _, e := range m.Events {
		ident := opts.Prefix + Identifier(caser, e.Name)
		if !token.IsIdentifier(ident) || token.IsKeyword(ident) || ident == "All" {
			return nil, fmt.Errorf("%w: %q from event %q", ErrInvalidIdentifier, ident, e.Name)
		}
		if prev, dup := owners[ident]; dup {
			return nil, fmt.Errorf("%w: %s from %q and %q", ErrIdentifierCollision, ident, prev, e.Name)
		}
		owners[ident] = e.Name

		idx, ok := groups[e.Category]
		if !ok {
			idx = len(data.Groups)
			groups[e.Category] = idx
			data.Groups = append(data.Groups, Group{Category: e.Category})
		}
		data.Groups[idx].Constants = append(data.Groups[idx].Constants, Constant{
			Ident: ident,
			Name:  e.Name,
			Doc:   docLines(ident, e),
		})
		data.All = append(data.All, ident)
	}
	return data, nil
}

// Identifier converts an event name to a PascalCase Go identifier.
// Separators (space, dot, dash, underscore) are dropped and each word is
// title-cased; existing capitals are kept, so "ui.HUD-open" becomes
// "UiHUDOpen".
func Identifier(caser cases.Caser, name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, w := range words {
		b.WriteString(caser.String(w))
	}
	return b.String()
}

func docLines(ident string, e manifest.Entry) []string {
	lines := []string{fmt.Sprintf("%s is the %q event.", ident, e.Name)}
	for _, l := range strings.Split(strings.TrimSpace(e.Description), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(e.Params) > 0 {
		lines = append(lines, "Params: "+strings.Join(e.Params, ", ")+".")
	}
	return lines
}
