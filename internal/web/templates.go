package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// pageNames are the content templates, each rendered inside layout.html.
var pageNames = []string{"index", "item", "entries", "signin", "register"}

var funcs = template.FuncMap{
	"price":      formatPrice,
	"discounted": discountedPrice,
	"title":      categoryTitle,
	"text":       optionalText,
}

// page is the data handed to layout.html.
type page struct {
	Title string
	Nav   NavData
	Flash string
	Data  any
}

type pageSet map[string]*template.Template

func parsePages() (pageSet, error) {
	pages := make(pageSet, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/nav.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// render executes a page into memory so a template error never leaves a
// half-written response.
func (p pageSet) render(name string, data page) ([]byte, error) {
	tmpl, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func staticFiles() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// formatPrice renders a price with two decimals, e.g. 9.9 -> "$9.90".
func formatPrice(p float64) string {
	return "$" + decimal.NewFromFloat(p).StringFixed(2)
}

// discountedPrice applies a percentage discount. A nil percentage leaves the
// price unchanged.
func discountedPrice(p float64, pct *float64) string {
	if pct == nil {
		return formatPrice(p)
	}
	hundred := decimal.NewFromInt(100)
	factor := hundred.Sub(decimal.NewFromFloat(*pct)).Div(hundred)
	return "$" + decimal.NewFromFloat(p).Mul(factor).StringFixed(2)
}

// sumPrices totals line subtotals without float drift.
func sumPrices(subtotals []float64) string {
	total := decimal.Zero
	for _, s := range subtotals {
		total = total.Add(decimal.NewFromFloat(s))
	}
	return "$" + total.StringFixed(2)
}

// categoryTitle turns catalog slugs into labels: "mens-shirts" -> "Mens Shirts".
func categoryTitle(slug string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
}

// optionalText renders an absent optional field like an empty one.
func optionalText(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
