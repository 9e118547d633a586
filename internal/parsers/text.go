package parsers

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/SShSoftwareEngineer/Job-Posting-Parser/internal/catalog"
)

var (
	newlinesRe   = regexp.MustCompile(`\n+`)
	blockTagsRe  = regexp.MustCompile(`</?(p|div)[^>]*>`)
	lineBreakRe  = regexp.MustCompile(`<br\s*/?>`)
	anyTagRe     = regexp.MustCompile(`<[^>]+>`)
	lineEdgesRe  = regexp.MustCompile(`(?m)^[ \t]+|[ \t]+$`)
	multiSpaceRe = regexp.MustCompile(` +`)
)

// StrToNumeric converts a string to a number, accepting a comma as the
// decimal separator. The second return value reports success.
func StrToNumeric(value string) (float64, bool) {
	if value == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NumericString renders a number the way it is stored as an attribute
// value: whole numbers without a decimal part.
func NumericString(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// HTMLToText flattens an HTML fragment to plain text: block tags and line
// breaks become newlines, all other tags are stripped, whitespace is
// collapsed.
func HTMLToText(html string) string {
	text := newlinesRe.ReplaceAllString(html, " ")
	text = blockTagsRe.ReplaceAllString(text, "\n")
	text = lineBreakRe.ReplaceAllString(text, "\n")
	text = anyTagRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(newlinesRe.ReplaceAllString(text, "\n"))
	text = lineEdgesRe.ReplaceAllString(text, "")
	return multiSpaceRe.ReplaceAllString(text, " ")
}

// RemoveRepl canonicalizes a value against a replacement table: when the
// whole text equals one of a canonical label's raw spellings it becomes
// that label, then the removal fragments are stripped longest first.
func RemoveRepl(text string, patterns catalog.Repls) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	for _, replDict := range patterns.Repl {
		for key, values := range replDict {
			for _, value := range values {
				if text == value {
					text = key
				}
			}
		}
	}
	remove := make([]string, len(patterns.Remove))
	copy(remove, patterns.Remove)
	sort.Slice(remove, func(i, j int) bool { return len(remove[i]) > len(remove[j]) })
	for _, pattern := range remove {
		text = strings.ReplaceAll(text, pattern, "")
	}
	return strings.TrimSpace(text)
}

// ParseSalary extracts a salary range from the tail of a string. A range
// pattern is preferred; a single value fills both bounds. Missing values
// come back as empty strings.
func ParseSalary(cat *catalog.Catalog, text string) (from, to string) {
	if m := cat.SalaryRangeEndRe().FindStringSubmatch(text); len(m) >= 3 {
		if f, ok := StrToNumeric(m[len(m)-2]); ok {
			from = NumericString(f)
		}
		if f, ok := StrToNumeric(m[len(m)-1]); ok {
			to = NumericString(f)
		}
		return from, to
	}
	if m := cat.SalaryEndRe().FindStringSubmatch(text); len(m) >= 2 {
		if f, ok := StrToNumeric(m[len(m)-1]); ok {
			from = NumericString(f)
			to = from
		}
	}
	return from, to
}
