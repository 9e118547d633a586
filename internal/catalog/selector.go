package catalog

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selector locates elements by tag plus an attribute signature. Matching
// depends on the attribute: style values are compared declaration by
// declaration, class values token by token, anything else by substring.
type Selector struct {
	Tag    string   `mapstructure:"tag" validate:"required"`
	Attr   string   `mapstructure:"attr"`
	Values []string `mapstructure:"values"`
}

// FindAll returns every descendant of root the selector matches, in
// document order.
func (s Selector) FindAll(root *goquery.Selection) *goquery.Selection {
	return root.Find(s.Tag).FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return s.matchesAttr(sel)
	})
}

// FindFirst returns the first match or an empty selection.
func (s Selector) FindFirst(root *goquery.Selection) *goquery.Selection {
	return s.FindAll(root).First()
}

func (s Selector) matchesAttr(sel *goquery.Selection) bool {
	if s.Attr == "" {
		return true
	}
	attr, ok := sel.Attr(s.Attr)
	if !ok {
		return false
	}
	for _, want := range s.Values {
		if !matchValue(s.Attr, attr, want) {
			return false
		}
	}
	return true
}

func matchValue(attr, have, want string) bool {
	switch strings.ToLower(attr) {
	case "style":
		for _, decl := range strings.Split(have, ";") {
			if strings.EqualFold(strings.TrimSpace(decl), strings.TrimSpace(want)) {
				return true
			}
		}
		return false
	case "class":
		for _, token := range strings.Fields(have) {
			if strings.EqualFold(token, want) {
				return true
			}
		}
		return false
	default:
		return strings.Contains(have, want)
	}
}
